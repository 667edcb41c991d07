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
	// FixNode binds the index of a dimension, removing the dimension
	// from the signature.
	FixNode struct {
		dim dim.Dim
		idx length.Value
		sub Structure
		sg  sig.Signature
	}

	fixProto struct {
		dim dim.Dim
		idx length.Value
	}
)

var _ Structure = (*FixNode)(nil)

// Fix binds the index of a dimension.
func Fix(d dim.Dim, idx length.Value) Proto {
	return fixProto{dim: d, idx: idx}
}

// FixState binds all the indices of a state, in order.
func FixState(st state.State) Proto {
	var protos []Proto
	for tag, val := range st.All() {
		if tag.Kind == state.Index {
			protos = append(protos, Fix(tag.Dim, val))
		}
	}
	return Chain(protos...)
}

func (p fixProto) Instantiate(sub Structure) (Structure, error) {
	const op = "fix"
	if err := checkDim(op, sub, p.dim); err != nil {
		return nil, err
	}
	if err := checkParam(op, p.dim, "index", p.idx); err != nil {
		return nil, err
	}
	sg, err := sig.Replace(sub.Signature(), func(s sig.Signature) (sig.Signature, error) {
		switch sT := s.(type) {
		case *sig.Axis:
			if sT.Len.IsStatic() && p.idx.IsStatic() {
				if err := checkBounds(op, p.dim, p.idx, sT.Len); err != nil {
					return nil, err
				}
			}
			return sT.Ret, nil
		case *sig.Record:
			i, err := staticInt(op, p.dim, "index", p.idx)
			if err != nil {
				return nil, err
			}
			if err := checkBounds(op, p.dim, p.idx, length.Const(len(sT.Rets))); err != nil {
				return nil, err
			}
			return sT.Rets[i], nil
		}
		return nil, fmterr.Internal(fmterr.Contractf(op, p.dim, "unexpected signature %T", s))
	}, p.dim)
	if err != nil {
		return nil, err
	}
	return &FixNode{dim: p.dim, idx: p.idx, sub: sub, sg: sg}, nil
}

func (fixProto) PreservesLayout() bool { return true }

// Name of the node.
func (*FixNode) Name() string { return "fix" }

// Signature of the structure.
func (n *FixNode) Signature() sig.Signature { return n.sg }

func (n *FixNode) subState(st state.State) state.State {
	return st.With(state.IndexIn(n.dim), n.idx)
}

// Size of the structure.
func (n *FixNode) Size(st state.State) (length.Value, error) {
	return n.sub.Size(n.subState(st))
}

// Length of a dimension.
func (n *FixNode) Length(d dim.Dim, st state.State) (length.Value, error) {
	if d == n.dim {
		return length.Value{}, fmterr.Contractf(n.Name(), d, "dimension is fixed")
	}
	return n.sub.Length(d, n.subState(st))
}

// StrictOffsetOf returns the offset of a sub-structure.
func (n *FixNode) StrictOffsetOf(target Matcher, st state.State) (length.Value, error) {
	return OffsetOf(n.sub, target, n.subState(st))
}

// Descend returns the sub-structure.
func (n *FixNode) Descend(st state.State) (Structure, state.State, error) {
	return n.sub, n.subState(st), nil
}

func (n *FixNode) String() string {
	return fmt.Sprintf("%s ^ fix<%s>(%s)", n.sub, n.dim, n.idx)
}
