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

// Package traverser enumerates all the index combinations of one or more
// structures sharing dimension names.
package traverser

import (
	"github.com/gx-org/layout/base/fmterr"
	"github.com/gx-org/layout/dim"
	"github.com/gx-org/layout/length"
	"github.com/gx-org/layout/sig"
	"github.com/gx-org/layout/state"
	"github.com/gx-org/layout/structs"
)

// Traverser iterates over the union of the dimensions of structures, in an
// order defined by prototypes applied on the union.
type Traverser struct {
	union *structs.UnionNode
	order structs.Proto
	top   structs.Structure
}

// New returns a traverser over the union of the dimensions of structures.
func New(ss ...structs.Structure) (*Traverser, error) {
	union, err := structs.Union(ss...)
	if err != nil {
		return nil, err
	}
	return &Traverser{union: union, order: structs.Neutral(), top: union}, nil
}

// Order returns a new traverser with a prototype appended to its order.
func (t *Traverser) Order(p structs.Proto) (*Traverser, error) {
	top, err := p.Instantiate(t.top)
	if err != nil {
		return nil, err
	}
	return &Traverser{
		union: t.union,
		order: structs.Chain(t.order, p),
		top:   top,
	}, nil
}

// Union returns the union of the structures traversed.
func (t *Traverser) Union() *structs.UnionNode {
	return t.union
}

// OrderProto returns the prototype defining the order of the traversal.
func (t *Traverser) OrderProto() structs.Proto {
	return t.order
}

// Top returns the union with the order applied.
func (t *Traverser) Top() structs.Structure {
	return t.top
}

// TopLength returns the length of a dimension of the top structure.
func (t *Traverser) TopLength(d dim.Dim) (length.Value, error) {
	return t.top.Length(d, state.Empty)
}

// State returns the state of the union when all the indices are bound by
// the order.
func (t *Traverser) State() (state.State, error) {
	return t.unionState(state.Empty)
}

func (t *Traverser) unionState(st state.State) (state.State, error) {
	return structs.StateAt(t.top, structs.IsUnion, st)
}

func (t *Traverser) axisLength(axis *sig.Axis, st state.State) (int, error) {
	l, err := t.top.Length(axis.Dim, st)
	if err != nil {
		return 0, err
	}
	n, err := l.Int()
	if err != nil {
		return 0, fmterr.Contractf("traverse", axis.Dim, "length cannot be resolved")
	}
	return n, nil
}

// ForEach calls f for every combination of the indices of the top
// structure. The outermost dimension varies the slowest. The state given
// to f binds the indices of the structures traversed. An error returned
// by f stops the traversal.
func (t *Traverser) ForEach(f func(state.State) error) error {
	return t.forEach(t.top.Signature(), state.Empty, f)
}

func (t *Traverser) forEach(sg sig.Signature, st state.State, f func(state.State) error) error {
	switch sT := sg.(type) {
	case *sig.Axis:
		n, err := t.axisLength(sT, st)
		if err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			if err := t.forEach(sT.Ret, st.WithIndex(sT.Dim, length.Of(i)), f); err != nil {
				return err
			}
		}
		return nil
	case *sig.Record:
		for i, ret := range sT.Rets {
			if err := t.forEach(ret, st.WithIndex(sT.Dim, length.Const(i)), f); err != nil {
				return err
			}
		}
		return nil
	}
	unionSt, err := t.unionState(st)
	if err != nil {
		return err
	}
	return f(unionSt)
}

// ForDims iterates over the given dimensions only and calls f with a
// traverser whose order fixes the indices of these dimensions.
func (t *Traverser) ForDims(f func(*Traverser) error, dims ...dim.Dim) error {
	if err := dim.List(dims).Unique(); err != nil {
		return fmterr.Contractf("for_dims", fmterr.NoDim, "%v", err)
	}
	for _, d := range dims {
		if !sig.Accepts(t.top.Signature(), d) {
			return fmterr.Contractf("for_dims", d, "dimension not found in %s", t.top.Signature())
		}
	}
	return t.forDims(t.top.Signature(), dims, state.Empty, f)
}

func (t *Traverser) forDims(sg sig.Signature, dims dim.List, st state.State, f func(*Traverser) error) error {
	switch sT := sg.(type) {
	case *sig.Axis:
		if !dims.Contains(sT.Dim) {
			return t.forDims(sT.Ret, dims, st, f)
		}
		n, err := t.axisLength(sT, st)
		if err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			if err := t.forDims(sT.Ret, dims, st.WithIndex(sT.Dim, length.Of(i)), f); err != nil {
				return err
			}
		}
		return nil
	case *sig.Record:
		if !dims.Contains(sT.Dim) {
			return fmterr.Contractf("for_dims", sT.Dim, "record dimension must be iterated")
		}
		for i, ret := range sT.Rets {
			if err := t.forDims(ret, dims, st.WithIndex(sT.Dim, length.Const(i)), f); err != nil {
				return err
			}
		}
		return nil
	}
	sub, err := t.Order(structs.FixState(st))
	if err != nil {
		return err
	}
	return f(sub)
}

func (t *Traverser) String() string {
	return t.top.String()
}
