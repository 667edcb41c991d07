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

package structs

import (
	"fmt"

	"github.com/gx-org/layout/base/fmterr"
	"github.com/gx-org/layout/dim"
	"github.com/gx-org/layout/length"
	"github.com/gx-org/layout/sig"
	"github.com/gx-org/layout/state"
)

type (
	// VectorNode repeats its sub-structure contiguously along a dimension.
	VectorNode struct {
		name string
		dim  dim.Dim
		// len is unknown when the length is bound by a state.
		len length.Value
		sub Structure
		sg  sig.Signature
	}

	vectorProto struct {
		name string
		dim  dim.Dim
		len  length.Value
	}
)

var _ Structure = (*VectorNode)(nil)

// Array repeats a structure n times along a dimension.
// The length is static.
func Array(d dim.Dim, n int) Proto {
	return vectorProto{name: "array", dim: d, len: length.Const(n)}
}

// SizedVector repeats a structure n times along a dimension.
// The length is dynamic.
func SizedVector(d dim.Dim, n int) Proto {
	return vectorProto{name: "sized_vector", dim: d, len: length.Of(n)}
}

// Vector repeats a structure along a dimension.
// The length is bound later, either by a prototype or by a state.
func Vector(d dim.Dim) Proto {
	return vectorProto{name: "vector", dim: d}
}

func (p vectorProto) Instantiate(sub Structure) (Structure, error) {
	if err := checkNewDim(p.name, sub, p.dim); err != nil {
		return nil, err
	}
	if p.len.IsKnown() {
		if err := checkParam(p.name, p.dim, "length", p.len); err != nil {
			return nil, err
		}
	}
	return &VectorNode{
		name: p.name,
		dim:  p.dim,
		len:  p.len,
		sub:  sub,
		sg:   sig.NewAxis(p.dim, p.len, sub.Signature()),
	}, nil
}

func (vectorProto) PreservesLayout() bool { return false }

// Name of the node.
func (n *VectorNode) Name() string { return n.name }

// Dim returns the dimension of the vector.
func (n *VectorNode) Dim() dim.Dim { return n.dim }

// Sub returns the repeated structure.
func (n *VectorNode) Sub() Structure { return n.sub }

// Signature of the vector.
func (n *VectorNode) Signature() sig.Signature { return n.sg }

func (n *VectorNode) subState(st state.State) state.State {
	return st.Remove(state.IndexIn(n.dim), state.LengthIn(n.dim))
}

func (n *VectorNode) length(st state.State) (length.Value, error) {
	if n.len.IsKnown() {
		if err := checkLengthNotSet(n.name, n.dim, st); err != nil {
			return length.Value{}, err
		}
		return n.len, nil
	}
	l, ok := st.Lookup(state.LengthIn(n.dim))
	if !ok {
		return length.Value{}, fmterr.Contractf(n.name, n.dim, "length has not been set")
	}
	return l, nil
}

// Size of the vector.
func (n *VectorNode) Size(st state.State) (length.Value, error) {
	l, err := n.length(st)
	if err != nil {
		return length.Value{}, err
	}
	subSize, err := n.sub.Size(n.subState(st))
	if err != nil {
		return length.Value{}, err
	}
	return length.Mul(l, subSize), nil
}

// Length of a dimension.
func (n *VectorNode) Length(d dim.Dim, st state.State) (length.Value, error) {
	if d != n.dim {
		return n.sub.Length(d, n.subState(st))
	}
	if err := checkIndexNotSet(n.name, n.dim, st); err != nil {
		return length.Value{}, err
	}
	return n.length(st)
}

// StrictOffsetOf returns the offset of a sub-structure.
func (n *VectorNode) StrictOffsetOf(target Matcher, st state.State) (length.Value, error) {
	idx, err := st.Get(state.IndexIn(n.dim))
	if err != nil {
		return length.Value{}, err
	}
	l, err := n.length(st.Remove(state.IndexIn(n.dim)))
	if err != nil {
		return length.Value{}, err
	}
	if err := checkBounds(n.name, n.dim, idx, l); err != nil {
		return length.Value{}, err
	}
	subSt := n.subState(st)
	subSize, err := n.sub.Size(subSt)
	if err != nil {
		return length.Value{}, err
	}
	off, err := OffsetOf(n.sub, target, subSt)
	if err != nil {
		return length.Value{}, err
	}
	return length.Add(length.Mul(idx, subSize), off), nil
}

// Descend returns the repeated structure.
func (n *VectorNode) Descend(st state.State) (Structure, state.State, error) {
	return n.sub, n.subState(st), nil
}

func (n *VectorNode) String() string {
	if !n.len.IsKnown() {
		return fmt.Sprintf("%s ^ %s<%s>", n.sub, n.name, n.dim)
	}
	l, _ := n.len.Int()
	return fmt.Sprintf("%s ^ %s<%s>(%d)", n.sub, n.name, n.dim, l)
}

// checkBounds returns an error if a known index is outside [0, l).
func checkBounds(op string, d dim.Dim, idx, l length.Value) error {
	i, err := idx.Int()
	if err != nil {
		return fmterr.Contractf(op, d, "index cannot be resolved")
	}
	n, err := l.Int()
	if err != nil {
		return nil
	}
	if i < 0 || i >= n {
		return fmterr.Contractf(op, d, "index %d out of bounds [0, %d)", i, n)
	}
	return nil
}

type (
	// SetLengthNode binds the length of a vector whose length is not
	// known yet.
	SetLengthNode struct {
		dim dim.Dim
		len length.Value
		sub Structure
		sg  sig.Signature
	}

	setLengthProto struct {
		dim dim.Dim
		len length.Value
	}
)

var _ Structure = (*SetLengthNode)(nil)

// SetLength binds the length of a vector.
func SetLength(d dim.Dim, n length.Value) Proto {
	return setLengthProto{dim: d, len: n}
}

func (p setLengthProto) Instantiate(sub Structure) (Structure, error) {
	const op = "set_length"
	if err := checkDim(op, sub, p.dim); err != nil {
		return nil, err
	}
	if err := checkParam(op, p.dim, "length", p.len); err != nil {
		return nil, err
	}
	sg, err := sig.Replace(sub.Signature(), func(s sig.Signature) (sig.Signature, error) {
		axis, ok := s.(*sig.Axis)
		if !ok {
			return nil, fmterr.Contractf(op, p.dim, "cannot set the length of a record dimension")
		}
		if axis.Len.IsKnown() {
			return nil, fmterr.Contractf(op, p.dim, "length already set to %s", axis.Len)
		}
		return sig.NewAxis(p.dim, p.len, axis.Ret), nil
	}, p.dim)
	if err != nil {
		return nil, err
	}
	return &SetLengthNode{dim: p.dim, len: p.len, sub: sub, sg: sg}, nil
}

func (setLengthProto) PreservesLayout() bool { return true }

// Name of the node.
func (*SetLengthNode) Name() string { return "set_length" }

// Signature of the structure.
func (n *SetLengthNode) Signature() sig.Signature { return n.sg }

func (n *SetLengthNode) subState(st state.State) (state.State, error) {
	if err := checkLengthNotSet(n.Name(), n.dim, st); err != nil {
		return state.Empty, err
	}
	return st.With(state.LengthIn(n.dim), n.len), nil
}

// Size of the structure.
func (n *SetLengthNode) Size(st state.State) (length.Value, error) {
	subSt, err := n.subState(st)
	if err != nil {
		return length.Value{}, err
	}
	return n.sub.Size(subSt)
}

// Length of a dimension.
func (n *SetLengthNode) Length(d dim.Dim, st state.State) (length.Value, error) {
	subSt, err := n.subState(st)
	if err != nil {
		return length.Value{}, err
	}
	if d != n.dim {
		return n.sub.Length(d, subSt)
	}
	if err := checkIndexNotSet(n.Name(), n.dim, st); err != nil {
		return length.Value{}, err
	}
	return n.len, nil
}

// StrictOffsetOf returns the offset of a sub-structure.
func (n *SetLengthNode) StrictOffsetOf(target Matcher, st state.State) (length.Value, error) {
	subSt, err := n.subState(st)
	if err != nil {
		return length.Value{}, err
	}
	return OffsetOf(n.sub, target, subSt)
}

// Descend returns the sub-structure.
func (n *SetLengthNode) Descend(st state.State) (Structure, state.State, error) {
	subSt, err := n.subState(st)
	if err != nil {
		return nil, state.Empty, err
	}
	return n.sub, subSt, nil
}

func (n *SetLengthNode) String() string {
	return fmt.Sprintf("%s ^ set_length<%s>(%s)", n.sub, n.dim, n.len)
}
