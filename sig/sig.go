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

// Package sig describes the dimension shape of a structure.
//
// A signature is derived from the shape of a structure only: it never
// depends on the values bound while resolving offsets.
package sig

import (
	"fmt"
	"slices"

	basefmt "github.com/gx-org/layout/base/fmt"
	"github.com/gx-org/layout/base/fmterr"
	"github.com/gx-org/layout/base/ordered"
	"github.com/gx-org/layout/dim"
	"github.com/gx-org/layout/length"
)

type (
	// Signature of a structure.
	Signature interface {
		fmt.Stringer
		signature()
	}

	// Axis is a uniform repetition of the same sub-signature along a dimension.
	Axis struct {
		Dim dim.Dim
		// Len is the number of occurrences, as seen from the signature:
		// a dynamic length does not carry its value.
		Len length.Value
		Ret Signature
	}

	// Record selects one of a fixed list of sub-signatures with a fixed
	// index along a dimension.
	Record struct {
		Dim  dim.Dim
		Rets []Signature
	}

	// Scalar is the signature of a leaf.
	Scalar struct{}
)

var (
	_ Signature = (*Axis)(nil)
	_ Signature = (*Record)(nil)
	_ Signature = (*Scalar)(nil)
)

func (*Axis) signature()   {}
func (*Record) signature() {}
func (*Scalar) signature() {}

// NewAxis returns an axis signature.
// The length is converted to its signature view.
func NewAxis(d dim.Dim, n length.Value, ret Signature) *Axis {
	return &Axis{Dim: d, Len: n.Arg(), Ret: ret}
}

func (s *Axis) String() string {
	l := s.Len.String()
	if s.Len.Kind() == length.Dynamic {
		l = "dyn"
	}
	return fmt.Sprintf("%s[%s]%s", s.Dim, l, s.Ret)
}

func (s *Record) String() string {
	return fmt.Sprintf("%s{%s}", s.Dim, basefmt.Join(slices.Values(s.Rets), "|"))
}

func (*Scalar) String() string {
	return "scalar"
}

// TopDim returns the dimension of the outermost level of a signature.
// It returns false if the signature is a scalar.
func TopDim(s Signature) (dim.Dim, bool) {
	switch sT := s.(type) {
	case *Axis:
		return sT.Dim, true
	case *Record:
		return sT.Dim, true
	}
	return 0, false
}

func collectDims(s Signature, dims *ordered.Set[dim.Dim]) {
	switch sT := s.(type) {
	case *Axis:
		dims.Add(sT.Dim)
		collectDims(sT.Ret, dims)
	case *Record:
		dims.Add(sT.Dim)
		for _, ret := range sT.Rets {
			collectDims(ret, dims)
		}
	}
}

// Dims returns all the dimensions appearing in a signature, outermost first.
func Dims(s Signature) dim.List {
	dims := ordered.NewSet[dim.Dim]()
	collectDims(s, dims)
	return dim.List(dims.Slice())
}

// Accepts returns true if the dimension appears anywhere in the signature.
func Accepts(s Signature, d dim.Dim) bool {
	switch sT := s.(type) {
	case *Axis:
		return sT.Dim == d || Accepts(sT.Ret, d)
	case *Record:
		if sT.Dim == d {
			return true
		}
		for _, ret := range sT.Rets {
			if Accepts(ret, d) {
				return true
			}
		}
	}
	return false
}

// Find returns the outermost sub-signature whose dimension is d, or nil.
// The branches of records are searched in order.
func Find(s Signature, d dim.Dim) Signature {
	switch sT := s.(type) {
	case *Axis:
		if sT.Dim == d {
			return sT
		}
		return Find(sT.Ret, d)
	case *Record:
		if sT.Dim == d {
			return sT
		}
		for _, ret := range sT.Rets {
			if found := Find(ret, d); found != nil {
				return found
			}
		}
	}
	return nil
}

// Replace the outermost occurrence of any of the dimensions, in every
// branch of the signature, by the result of fn.
func Replace(s Signature, fn func(Signature) (Signature, error), dims ...dim.Dim) (Signature, error) {
	switch sT := s.(type) {
	case *Axis:
		if dim.List(dims).Contains(sT.Dim) {
			return fn(sT)
		}
		ret, err := Replace(sT.Ret, fn, dims...)
		if err != nil {
			return nil, err
		}
		return &Axis{Dim: sT.Dim, Len: sT.Len, Ret: ret}, nil
	case *Record:
		if dim.List(dims).Contains(sT.Dim) {
			return fn(sT)
		}
		rets := make([]Signature, len(sT.Rets))
		for i, ret := range sT.Rets {
			var err error
			if rets[i], err = Replace(ret, fn, dims...); err != nil {
				return nil, err
			}
		}
		return &Record{Dim: sT.Dim, Rets: rets}, nil
	}
	return s, nil
}

// Equal returns true if two signatures have the same structure.
func Equal(a, b Signature) bool {
	switch aT := a.(type) {
	case *Axis:
		bT, ok := b.(*Axis)
		if !ok {
			return false
		}
		return aT.Dim == bT.Dim && aT.Len.Arg().Equal(bT.Len.Arg()) && Equal(aT.Ret, bT.Ret)
	case *Record:
		bT, ok := b.(*Record)
		if !ok || aT.Dim != bT.Dim || len(aT.Rets) != len(bT.Rets) {
			return false
		}
		for i, ret := range aT.Rets {
			if !Equal(ret, bT.Rets[i]) {
				return false
			}
		}
		return true
	case *Scalar:
		_, ok := b.(*Scalar)
		return ok
	}
	return false
}

// CheckUnique returns an error if a dimension appears twice along
// any path from the root to a leaf.
func CheckUnique(s Signature) error {
	return checkUnique(s, nil)
}

func checkUnique(s Signature, path dim.List) error {
	switch sT := s.(type) {
	case *Axis:
		if path.Contains(sT.Dim) {
			return fmterr.Contractf("signature", sT.Dim, "dimension appears twice in %s", s)
		}
		return checkUnique(sT.Ret, append(path, sT.Dim))
	case *Record:
		if path.Contains(sT.Dim) {
			return fmterr.Contractf("signature", sT.Dim, "dimension appears twice in %s", s)
		}
		path = append(path, sT.Dim)
		for _, ret := range sT.Rets {
			if err := checkUnique(ret, path[:len(path):len(path)]); err != nil {
				return err
			}
		}
	}
	return nil
}

// Union merges the signatures of several structures.
//
// The first signature is kept as is. The dimensions of the other
// signatures not present yet are wrapped around the accumulated
// signature, keeping their relative order.
func Union(sigs ...Signature) (Signature, error) {
	if len(sigs) == 0 {
		return nil, fmterr.Contractf("union", fmterr.NoDim, "no signature to merge")
	}
	acc := sigs[0]
	var errs fmterr.Errors
	for i, s := range sigs[1:] {
		errs.Push(func(err error) error {
			return fmterr.Contractf("union", fmterr.NoDim, "signature %d (%s): %v", i+1, s, err)
		})
		next, err := unionWith(acc, acc, s)
		errs.Append(err)
		errs.Pop()
		if err == nil {
			acc = next
		}
	}
	if err := errs.ToError(); err != nil {
		return nil, err
	}
	return acc, nil
}

func unionWith(known, acc, s Signature) (Signature, error) {
	switch sT := s.(type) {
	case *Axis:
		found := Find(known, sT.Dim)
		if found == nil {
			ret, err := unionWith(known, acc, sT.Ret)
			if err != nil {
				return nil, err
			}
			return &Axis{Dim: sT.Dim, Len: sT.Len, Ret: ret}, nil
		}
		foundAxis, ok := found.(*Axis)
		if !ok {
			return nil, fmterr.Contractf("union", sT.Dim, "dimension is a record in one structure and an axis in another")
		}
		if foundAxis.Len.IsStatic() && sT.Len.IsStatic() && !foundAxis.Len.Equal(sT.Len) {
			return nil, fmterr.Contractf("union", sT.Dim, "conflicting lengths %s and %s", foundAxis.Len, sT.Len)
		}
		return unionWith(known, acc, sT.Ret)
	case *Record:
		return nil, fmterr.Contractf("union", sT.Dim, "cannot merge a record dimension")
	}
	return acc, nil
}
