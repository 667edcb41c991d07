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

package traverser

import (
	"fmt"
	"iter"

	"github.com/gx-org/layout/base/fmterr"
	"github.com/gx-org/layout/dim"
	"github.com/gx-org/layout/length"
	"github.com/gx-org/layout/sig"
	"github.com/gx-org/layout/state"
	"github.com/gx-org/layout/structs"
)

// Range is a contiguous window of indices along the outermost dimension
// of a traverser.
type Range struct {
	trav       *Traverser
	dim        dim.Dim
	begin, end int
}

// Range returns the range of all the indices of the outermost dimension.
// The outermost dimension must be a uniform axis with a known length.
func (t *Traverser) Range() (*Range, error) {
	axis, ok := t.top.Signature().(*sig.Axis)
	if !ok {
		return nil, fmterr.Contractf("range", fmterr.NoDim, "outermost dimension of %s is not a uniform axis", t.top.Signature())
	}
	n, err := t.axisLength(axis, state.Empty)
	if err != nil {
		return nil, err
	}
	return &Range{trav: t, dim: axis.Dim, begin: 0, end: n}, nil
}

// Dim returns the dimension of the range.
func (r *Range) Dim() dim.Dim { return r.dim }

// Begin returns the first index of the range.
func (r *Range) Begin() int { return r.begin }

// End returns the index following the last index of the range.
func (r *Range) End() int { return r.end }

// Len returns the number of indices in the range.
func (r *Range) Len() int { return r.end - r.begin }

// Empty returns true if the range has no index.
func (r *Range) Empty() bool { return r.begin == r.end }

// IsDivisible returns true if the range can be split into two non-empty
// ranges.
func (r *Range) IsDivisible() bool { return r.Len() > 1 }

// At returns a traverser fixing the i-th index of the range.
func (r *Range) At(i int) (*Traverser, error) {
	if i < 0 || i >= r.Len() {
		return nil, fmterr.Contractf("range", r.dim, "index %d out of range [0, %d)", i, r.Len())
	}
	return r.trav.Order(structs.Fix(r.dim, length.Of(r.begin+i)))
}

// SplitAt partitions the range into the first k indices and the others.
func (r *Range) SplitAt(k int) (*Range, *Range, error) {
	if k < 0 || k > r.Len() {
		return nil, nil, fmterr.Contractf("range", r.dim, "cannot split a range of %d indices at %d", r.Len(), k)
	}
	mid := r.begin + k
	return &Range{trav: r.trav, dim: r.dim, begin: r.begin, end: mid},
		&Range{trav: r.trav, dim: r.dim, begin: mid, end: r.end},
		nil
}

// Split partitions the range in two halves.
func (r *Range) Split() (*Range, *Range) {
	left, right, _ := r.SplitAt(r.Len() / 2)
	return left, right
}

// AsTraverser returns a traverser restricted to the indices of the range.
func (r *Range) AsTraverser() (*Traverser, error) {
	return r.trav.Order(structs.Slice(r.dim, length.Of(r.begin), length.Of(r.Len())))
}

// Order returns a traverser restricted to the range with a prototype
// appended to its order.
func (r *Range) Order(p structs.Proto) (*Traverser, error) {
	t, err := r.AsTraverser()
	if err != nil {
		return nil, err
	}
	return t.Order(p)
}

// ForEach calls f for every combination of indices of the range.
func (r *Range) ForEach(f func(state.State) error) error {
	t, err := r.AsTraverser()
	if err != nil {
		return err
	}
	return t.ForEach(f)
}

// All returns an iterator over the traversers fixing each index of the
// range. The iteration stops after the first error.
func (r *Range) All() iter.Seq2[*Traverser, error] {
	return func(yield func(*Traverser, error) bool) {
		for i := 0; i < r.Len(); i++ {
			t, err := r.At(i)
			if !yield(t, err) || err != nil {
				return
			}
		}
	}
}

func (r *Range) String() string {
	return fmt.Sprintf("%s[%d:%d]", r.dim, r.begin, r.end)
}
