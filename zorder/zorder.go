// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package zorder linearizes a box of coordinates along a Z-order
// (Morton) curve.
//
// Lengths do not need to be powers of two. The low bits of an index are
// decoded by a pure bit de-interleave over aligned blocks of
// 2^SpecialLevel elements along each dimension. The remaining high bits
// are decoded level by level, counting at each level how many elements
// the partial tiles at the end of each dimension hold.
package zorder

import (
	"math/bits"

	"github.com/pkg/errors"
)

// MaxDims is the maximum number of dimensions merged by a curve.
const MaxDims = 64

// Curve is a Z-order curve over boxes whose lengths are multiples of
// 2^SpecialLevel and at most 2^GeneralLevel.
type Curve struct {
	SpecialLevel int
	GeneralLevel int
}

func log2(name string, n int) (int, error) {
	if n <= 0 || n&(n-1) != 0 {
		return 0, errors.Errorf("%s %d is not a positive power of two", name, n)
	}
	return bits.TrailingZeros64(uint64(n)), nil
}

// New returns a curve supporting lengths up to maxLen that are multiples
// of alignment. Both must be powers of two.
func New(maxLen, alignment int) (Curve, error) {
	gl, err := log2("maximum length", maxLen)
	if err != nil {
		return Curve{}, err
	}
	sl, err := log2("alignment", alignment)
	if err != nil {
		return Curve{}, err
	}
	if sl > gl {
		return Curve{}, errors.Errorf("alignment %d larger than the maximum length %d", alignment, maxLen)
	}
	return Curve{SpecialLevel: sl, GeneralLevel: gl}, nil
}

// MaxLen returns the maximum length supported along each dimension.
func (c Curve) MaxLen() int {
	return 1 << c.GeneralLevel
}

// Alignment returns the number all lengths must be a multiple of.
func (c Curve) Alignment() int {
	return 1 << c.SpecialLevel
}

// Validate returns an error if the curve cannot linearize a box of
// the given lengths.
func (c Curve) Validate(lengths []int) error {
	if len(lengths) == 0 {
		return errors.Errorf("no dimension to merge")
	}
	if len(lengths) > MaxDims {
		return errors.Errorf("cannot merge %d dimensions: maximum is %d", len(lengths), MaxDims)
	}
	if c.SpecialLevel*len(lengths) >= 64 {
		return errors.Errorf("alignment %d too large to merge %d dimensions", c.Alignment(), len(lengths))
	}
	for i, l := range lengths {
		if l <= 0 {
			return errors.Errorf("length %d of dimension %d is not positive", l, i)
		}
		if l > c.MaxLen() {
			return errors.Errorf("length %d of dimension %d is larger than the maximum length %d", l, i, c.MaxLen())
		}
		if l%c.Alignment() != 0 {
			return errors.Errorf("length %d of dimension %d is not a multiple of the alignment %d", l, i, c.Alignment())
		}
	}
	return nil
}

// Size returns the number of elements in a box.
func Size(lengths []int) int {
	size := 1
	for _, l := range lengths {
		size *= l
	}
	return size
}

// Decode returns the coordinates of the z-th point along the curve.
func (c Curve) Decode(z int, lengths []int) ([]int, error) {
	if err := c.Validate(lengths); err != nil {
		return nil, err
	}
	if z < 0 || z >= Size(lengths) {
		return nil, errors.Errorf("index %d out of bounds [0, %d)", z, Size(lengths))
	}
	n := len(lengths)
	specialBits := uint(c.SpecialLevel * n)
	general := decodeGeneral(c.GeneralLevel-c.SpecialLevel, z>>specialBits, shifted(lengths, c.SpecialLevel))
	special := uint64(z) & (uint64(1)<<specialBits - 1)
	coords := make([]int, n)
	for d := range coords {
		coords[d] = general[d]<<c.SpecialLevel + int(deinterleave(n, d, special))
	}
	return coords, nil
}

// Encode returns the position along the curve of a point.
func (c Curve) Encode(coords, lengths []int) (int, error) {
	if err := c.Validate(lengths); err != nil {
		return 0, err
	}
	if len(coords) != len(lengths) {
		return 0, errors.Errorf("%d coordinates for %d dimensions", len(coords), len(lengths))
	}
	for i, x := range coords {
		if x < 0 || x >= lengths[i] {
			return 0, errors.Errorf("coordinate %d of dimension %d out of bounds [0, %d)", x, i, lengths[i])
		}
	}
	n := len(lengths)
	z := encodeGeneral(c.GeneralLevel-c.SpecialLevel, shifted(coords, c.SpecialLevel), shifted(lengths, c.SpecialLevel))
	z <<= uint(c.SpecialLevel * n)
	for d, x := range coords {
		z |= int(interleave(n, d, uint64(x), c.SpecialLevel))
	}
	return z, nil
}

func shifted(vals []int, n int) []int {
	r := make([]int, len(vals))
	for i, v := range vals {
		r[i] = v >> n
	}
	return r
}

// facet returns the number of elements, with dimension i excluded, in the
// tile of the current level containing res.
func facet(level, i int, size, res []int) int {
	small := 1 << level
	f := 1
	for j, sz := range size {
		if j == i {
			continue
		}
		tile := small
		if j > i {
			tile *= 2
		}
		if sz&^(tile-1) == res[j] {
			f *= (sz-1)&(tile-1) + 1
		} else {
			f *= tile
		}
	}
	return f
}

func decodeGeneral(levels, z int, size []int) []int {
	res := make([]int, len(size))
	for level := levels - 1; level >= 0; level-- {
		small := 1 << level
		for i := range size {
			half := facet(level, i, size, res) << level
			if z >= half {
				z -= half
				res[i] += small
			}
		}
	}
	return res
}

func encodeGeneral(levels int, coords, size []int) int {
	res := make([]int, len(size))
	z := 0
	for level := levels - 1; level >= 0; level-- {
		small := 1 << level
		for i := range size {
			if coords[i]&small == 0 {
				continue
			}
			z += facet(level, i, size, res) << level
			res[i] += small
		}
	}
	return z
}

// repeat copies a bit pattern every period bits over 64 bits.
func repeat(period int, pattern uint64) uint64 {
	for ; period < 64; period *= 2 {
		pattern |= pattern << uint(period)
	}
	return pattern
}

func numIterations(n int) int {
	count := 0
	for period := n; period < 64; period *= 2 {
		count++
	}
	return count
}

// deinterleave extracts the coordinate d out of n dimensions from bits
// interleaved with dimension 0 as the most significant.
func deinterleave(n, d int, z uint64) uint64 {
	if n == 1 {
		return z
	}
	tmp := z >> uint(n-d-1)
	iters := numIterations(n)
	for i := 0; i < iters; i++ {
		tmp &= repeat(n<<i, uint64(1)<<(uint(1)<<i)-1)
		tmp |= tmp >> uint((n-1)<<i)
	}
	return tmp & (uint64(1)<<(uint(1)<<iters) - 1)
}

// interleave spreads the low bits of coordinate d among n dimensions.
func interleave(n, d int, x uint64, numBits int) uint64 {
	var z uint64
	for b := 0; b < numBits; b++ {
		if x>>uint(b)&1 != 0 {
			z |= uint64(1) << uint(b*n+n-d-1)
		}
	}
	return z
}
