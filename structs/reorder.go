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
	// RenameNode exposes a dimension of its sub-structure under another name.
	RenameNode struct {
		from, to dim.Dim
		sub      Structure
		sg       sig.Signature
	}

	renameProto struct {
		from, to dim.Dim
	}
)

var _ Structure = (*RenameNode)(nil)

// Rename the dimension from to to.
func Rename(from, to dim.Dim) Proto {
	return renameProto{from: from, to: to}
}

func (p renameProto) Instantiate(sub Structure) (Structure, error) {
	const op = "rename"
	if err := checkDim(op, sub, p.from); err != nil {
		return nil, err
	}
	if p.from != p.to {
		if err := checkNewDim(op, sub, p.to); err != nil {
			return nil, err
		}
	}
	sg, err := sig.Replace(sub.Signature(), func(s sig.Signature) (sig.Signature, error) {
		switch sT := s.(type) {
		case *sig.Axis:
			return &sig.Axis{Dim: p.to, Len: sT.Len, Ret: sT.Ret}, nil
		case *sig.Record:
			return &sig.Record{Dim: p.to, Rets: sT.Rets}, nil
		}
		return nil, fmterr.Internal(fmterr.Contractf(op, p.from, "unexpected signature %T", s))
	}, p.from)
	if err != nil {
		return nil, err
	}
	return &RenameNode{from: p.from, to: p.to, sub: sub, sg: sg}, nil
}

func (renameProto) PreservesLayout() bool { return true }

// Name of the node.
func (*RenameNode) Name() string { return "rename" }

// Signature of the structure.
func (n *RenameNode) Signature() sig.Signature { return n.sg }

func (n *RenameNode) subState(st state.State) state.State {
	if n.from == n.to {
		return st
	}
	toIdx, toLen := state.IndexIn(n.to), state.LengthIn(n.to)
	subSt := st.Remove(state.IndexIn(n.from), state.LengthIn(n.from), toIdx, toLen)
	if idx, ok := st.Lookup(toIdx); ok {
		subSt = subSt.With(state.IndexIn(n.from), idx)
	}
	if l, ok := st.Lookup(toLen); ok {
		subSt = subSt.With(state.LengthIn(n.from), l)
	}
	return subSt
}

// Size of the structure.
func (n *RenameNode) Size(st state.State) (length.Value, error) {
	return n.sub.Size(n.subState(st))
}

// Length of a dimension.
func (n *RenameNode) Length(d dim.Dim, st state.State) (length.Value, error) {
	switch d {
	case n.to:
		return n.sub.Length(n.from, n.subState(st))
	case n.from:
		return length.Value{}, fmterr.Contractf(n.Name(), d, "dimension renamed to %s", n.to)
	}
	return n.sub.Length(d, n.subState(st))
}

// StrictOffsetOf returns the offset of a sub-structure.
func (n *RenameNode) StrictOffsetOf(target Matcher, st state.State) (length.Value, error) {
	return OffsetOf(n.sub, target, n.subState(st))
}

// Descend returns the sub-structure.
func (n *RenameNode) Descend(st state.State) (Structure, state.State, error) {
	return n.sub, n.subState(st), nil
}

func (n *RenameNode) String() string {
	return fmt.Sprintf("%s ^ rename<%s, %s>", n.sub, n.from, n.to)
}

type (
	// ReorderNode changes the order of the dimensions of its
	// sub-structure. Dimensions not listed are hidden from its signature
	// but offsets are unchanged.
	ReorderNode struct {
		name string
		dims dim.List
		sub  Structure
		sg   sig.Signature
	}

	reorderProto struct {
		dims dim.List
	}

	hoistProto struct {
		dim dim.Dim
	}
)

var _ Structure = (*ReorderNode)(nil)

// Reorder the dimensions of a structure, outermost first.
func Reorder(dims ...dim.Dim) Proto {
	return reorderProto{dims: dims}
}

func findAxis(op string, sub Structure, d dim.Dim) (*sig.Axis, error) {
	if err := checkDim(op, sub, d); err != nil {
		return nil, err
	}
	axis, ok := sig.Find(sub.Signature(), d).(*sig.Axis)
	if !ok {
		return nil, fmterr.Contractf(op, d, "dimension is not a uniform axis")
	}
	return axis, nil
}

func (p reorderProto) Instantiate(sub Structure) (Structure, error) {
	const op = "reorder"
	if err := p.dims.Unique(); err != nil {
		return nil, fmterr.Contractf(op, fmterr.NoDim, "%v", err)
	}
	axes := make([]*sig.Axis, len(p.dims))
	for i, d := range p.dims {
		var err error
		if axes[i], err = findAxis(op, sub, d); err != nil {
			return nil, err
		}
	}
	var sg sig.Signature = &sig.Scalar{}
	for i := len(axes) - 1; i >= 0; i-- {
		sg = &sig.Axis{Dim: axes[i].Dim, Len: axes[i].Len, Ret: sg}
	}
	return &ReorderNode{name: op, dims: p.dims, sub: sub, sg: sg}, nil
}

func (reorderProto) PreservesLayout() bool { return true }

// Hoist moves a dimension to the top of the signature.
func Hoist(d dim.Dim) Proto {
	return hoistProto{dim: d}
}

func (p hoistProto) Instantiate(sub Structure) (Structure, error) {
	const op = "hoist"
	axis, err := findAxis(op, sub, p.dim)
	if err != nil {
		return nil, err
	}
	rest, err := sig.Replace(sub.Signature(), func(s sig.Signature) (sig.Signature, error) {
		sT, ok := s.(*sig.Axis)
		if !ok {
			return nil, fmterr.Contractf(op, p.dim, "dimension is not a uniform axis")
		}
		if !sT.Len.Equal(axis.Len) {
			return nil, fmterr.Contractf(op, p.dim, "dimension has lengths %s and %s across fields", axis.Len, sT.Len)
		}
		return sT.Ret, nil
	}, p.dim)
	if err != nil {
		return nil, err
	}
	return &ReorderNode{
		name: op,
		dims: dim.List{p.dim},
		sub:  sub,
		sg:   &sig.Axis{Dim: p.dim, Len: axis.Len, Ret: rest},
	}, nil
}

func (hoistProto) PreservesLayout() bool { return true }

// Name of the node.
func (n *ReorderNode) Name() string { return n.name }

// Signature of the structure.
func (n *ReorderNode) Signature() sig.Signature { return n.sg }

// Size of the structure.
func (n *ReorderNode) Size(st state.State) (length.Value, error) {
	return n.sub.Size(st)
}

// Length of a dimension.
func (n *ReorderNode) Length(d dim.Dim, st state.State) (length.Value, error) {
	return n.sub.Length(d, st)
}

// StrictOffsetOf returns the offset of a sub-structure.
func (n *ReorderNode) StrictOffsetOf(target Matcher, st state.State) (length.Value, error) {
	return OffsetOf(n.sub, target, st)
}

// Descend returns the sub-structure.
func (n *ReorderNode) Descend(st state.State) (Structure, state.State, error) {
	return n.sub, st, nil
}

func (n *ReorderNode) String() string {
	return fmt.Sprintf("%s ^ %s<%s>", n.sub, n.name, n.dims)
}
