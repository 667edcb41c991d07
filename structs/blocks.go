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
	// BlocksNode splits a dimension into blocks: index (i, j) along the
	// major and minor dimensions is index i*n+j of the blocked dimension.
	BlocksNode struct {
		dim, major, minor dim.Dim
		n                 length.Value
		sub               Structure
		sg                sig.Signature
	}

	blocksProto struct {
		dim, major, minor dim.Dim
		n                 length.Value
	}
)

var _ Structure = (*BlocksNode)(nil)

// IntoBlocks splits the dimension d into blocks of n elements. The minor
// dimension indexes elements within a block, the major dimension indexes
// blocks. The length of d must be a multiple of n.
func IntoBlocks(d, major, minor dim.Dim, n length.Value) Proto {
	return blocksProto{dim: d, major: major, minor: minor, n: n}
}

// StripMine splits the dimension d into blocks of n elements and moves
// the major dimension to the top of the signature.
func StripMine(d, major, minor dim.Dim, n length.Value) Proto {
	return Chain(IntoBlocks(d, major, minor, n), Hoist(major))
}

func (p blocksProto) Instantiate(sub Structure) (Structure, error) {
	const op = "into_blocks"
	axis, err := findAxis(op, sub, p.dim)
	if err != nil {
		return nil, err
	}
	if err := checkParam(op, p.dim, "block length", p.n); err != nil {
		return nil, err
	}
	if n, _ := p.n.Int(); n == 0 {
		return nil, fmterr.Contractf(op, p.dim, "block length is zero")
	}
	if p.major == p.minor {
		return nil, fmterr.Contractf(op, p.major, "major and minor dimensions must differ")
	}
	for _, d := range []dim.Dim{p.major, p.minor} {
		if d == p.dim {
			continue
		}
		if err := checkNewDim(op, sub, d); err != nil {
			return nil, err
		}
	}
	if axis.Len.IsStatic() && p.n.IsStatic() {
		if err := checkMultiple(op, p.dim, axis.Len, p.n); err != nil {
			return nil, err
		}
	}
	sg, err := sig.Replace(sub.Signature(), func(s sig.Signature) (sig.Signature, error) {
		axis, ok := s.(*sig.Axis)
		if !ok {
			return nil, fmterr.Contractf(op, p.dim, "dimension is not a uniform axis")
		}
		major, err := length.Div(axis.Len, p.n)
		if err != nil {
			return nil, fmterr.Contractf(op, p.dim, "%v", err)
		}
		return sig.NewAxis(p.major, major, sig.NewAxis(p.minor, p.n, axis.Ret)), nil
	}, p.dim)
	if err != nil {
		return nil, err
	}
	return &BlocksNode{dim: p.dim, major: p.major, minor: p.minor, n: p.n, sub: sub, sg: sg}, nil
}

func (blocksProto) PreservesLayout() bool { return true }

func checkMultiple(op string, d dim.Dim, l, n length.Value) error {
	lv, err := l.Int()
	if err != nil {
		return nil
	}
	nv, err := n.Int()
	if err != nil {
		return nil
	}
	if lv%nv != 0 {
		return fmterr.Contractf(op, d, "length %d is not a multiple of the block length %d", lv, nv)
	}
	return nil
}

// Name of the node.
func (*BlocksNode) Name() string { return "into_blocks" }

// Signature of the structure.
func (n *BlocksNode) Signature() sig.Signature { return n.sg }

func (n *BlocksNode) cleanState(st state.State) state.State {
	return st.Remove(
		state.IndexIn(n.dim), state.LengthIn(n.dim),
		state.IndexIn(n.major), state.LengthIn(n.major),
		state.IndexIn(n.minor), state.LengthIn(n.minor),
	)
}

func (n *BlocksNode) subState(st state.State) (state.State, error) {
	for _, d := range []dim.Dim{n.major, n.minor} {
		if err := checkLengthNotSet(n.Name(), d, st); err != nil {
			return state.Empty, err
		}
	}
	clean := n.cleanState(st)
	major, okMajor := st.Lookup(state.IndexIn(n.major))
	minor, okMinor := st.Lookup(state.IndexIn(n.minor))
	if !okMajor || !okMinor {
		return clean, nil
	}
	return clean.With(state.IndexIn(n.dim), length.Add(length.Mul(major, n.n), minor)), nil
}

// Size of the structure.
func (n *BlocksNode) Size(st state.State) (length.Value, error) {
	subSt, err := n.subState(st)
	if err != nil {
		return length.Value{}, err
	}
	return n.sub.Size(subSt)
}

// Length of a dimension.
func (n *BlocksNode) Length(d dim.Dim, st state.State) (length.Value, error) {
	subSt, err := n.subState(st)
	if err != nil {
		return length.Value{}, err
	}
	switch d {
	case n.major:
		if err := checkIndexNotSet(n.Name(), d, st); err != nil {
			return length.Value{}, err
		}
		l, err := n.sub.Length(n.dim, n.cleanState(st))
		if err != nil {
			return length.Value{}, err
		}
		if err := checkMultiple(n.Name(), n.dim, l, n.n); err != nil {
			return length.Value{}, err
		}
		return length.Div(l, n.n)
	case n.minor:
		if err := checkIndexNotSet(n.Name(), d, st); err != nil {
			return length.Value{}, err
		}
		return n.n, nil
	case n.dim:
		return length.Value{}, fmterr.Contractf(n.Name(), d, "dimension split into %s and %s", n.major, n.minor)
	}
	return n.sub.Length(d, subSt)
}

// StrictOffsetOf returns the offset of a sub-structure.
func (n *BlocksNode) StrictOffsetOf(target Matcher, st state.State) (length.Value, error) {
	subSt, err := n.subState(st)
	if err != nil {
		return length.Value{}, err
	}
	return OffsetOf(n.sub, target, subSt)
}

// Descend returns the sub-structure.
func (n *BlocksNode) Descend(st state.State) (Structure, state.State, error) {
	subSt, err := n.subState(st)
	if err != nil {
		return nil, state.Empty, err
	}
	return n.sub, subSt, nil
}

func (n *BlocksNode) String() string {
	return fmt.Sprintf("%s ^ into_blocks<%s, %s, %s>(%s)", n.sub, n.dim, n.major, n.minor, n.n)
}
