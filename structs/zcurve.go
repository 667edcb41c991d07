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
	"github.com/gx-org/layout/zorder"
)

type (
	// ZCurveNode merges several dimensions into one, linearized along a
	// Z-order curve.
	ZCurveNode struct {
		dims  dim.List
		dim   dim.Dim
		curve zorder.Curve
		sub   Structure
		sg    sig.Signature
	}

	zcurveProto struct {
		dims          dim.List
		dim           dim.Dim
		maxLen, align int
	}
)

var _ Structure = (*ZCurveNode)(nil)

// MergeZCurve merges dims into the dimension d along a Z-order curve. The
// length of every merged dimension must be a multiple of alignment and at
// most maxLen, both powers of two. Dimensions are interleaved with the
// first one as the most significant.
func MergeZCurve(dims dim.List, d dim.Dim, maxLen, alignment int) Proto {
	return zcurveProto{dims: dims, dim: d, maxLen: maxLen, align: alignment}
}

func (p zcurveProto) mergeSig(s sig.Signature, left int, acc length.Value) (sig.Signature, error) {
	const op = "merge_zcurve"
	return sig.Replace(s, func(s sig.Signature) (sig.Signature, error) {
		axis, ok := s.(*sig.Axis)
		if !ok {
			d, _ := sig.TopDim(s)
			return nil, fmterr.Contractf(op, d, "cannot merge a record dimension")
		}
		if !axis.Len.IsKnown() {
			return nil, fmterr.Contractf(op, axis.Dim, "length must be set before merging")
		}
		acc := length.Mul(acc, axis.Len)
		if left == 1 {
			return sig.NewAxis(p.dim, acc, axis.Ret), nil
		}
		return p.mergeSig(axis.Ret, left-1, acc)
	}, p.dims...)
}

func (p zcurveProto) Instantiate(sub Structure) (Structure, error) {
	const op = "merge_zcurve"
	curve, err := zorder.New(p.maxLen, p.align)
	if err != nil {
		return nil, fmterr.Contractf(op, p.dim, "%v", err)
	}
	if len(p.dims) == 0 {
		return nil, fmterr.Contractf(op, p.dim, "no dimension to merge")
	}
	if err := p.dims.Unique(); err != nil {
		return nil, fmterr.Contractf(op, p.dim, "%v", err)
	}
	if len(p.dims) > zorder.MaxDims {
		return nil, fmterr.Contractf(op, p.dim, "cannot merge more than %d dimensions", zorder.MaxDims)
	}
	for _, d := range p.dims {
		if err := checkDim(op, sub, d); err != nil {
			return nil, err
		}
	}
	if !p.dims.Contains(p.dim) {
		if err := checkNewDim(op, sub, p.dim); err != nil {
			return nil, err
		}
	}
	var static []int
	for _, d := range p.dims {
		axis, ok := sig.Find(sub.Signature(), d).(*sig.Axis)
		if !ok {
			return nil, fmterr.Contractf(op, d, "cannot merge a record dimension")
		}
		if axis.Len.IsStatic() {
			l, _ := axis.Len.Int()
			static = append(static, l)
		}
	}
	if len(static) > 0 {
		if err := curve.Validate(static); err != nil {
			return nil, fmterr.Contractf(op, p.dim, "%v", err)
		}
	}
	sg, err := p.mergeSig(sub.Signature(), len(p.dims), length.Const(1))
	if err != nil {
		return nil, err
	}
	for _, d := range p.dims {
		if d != p.dim && sig.Accepts(sg, d) {
			return nil, fmterr.Contractf(op, d, "dimension not merged: merged dimensions must be nested in %s", sub.Signature())
		}
	}
	if !sig.Accepts(sg, p.dim) {
		return nil, fmterr.Contractf(op, p.dim, "merged dimensions must be nested in %s", sub.Signature())
	}
	return &ZCurveNode{dims: p.dims, dim: p.dim, curve: curve, sub: sub, sg: sg}, nil
}

func (zcurveProto) PreservesLayout() bool { return true }

// Name of the node.
func (*ZCurveNode) Name() string { return "merge_zcurve" }

// Curve returns the curve linearizing the merged dimensions.
func (n *ZCurveNode) Curve() zorder.Curve { return n.curve }

// Signature of the structure.
func (n *ZCurveNode) Signature() sig.Signature { return n.sg }

func (n *ZCurveNode) cleanState(st state.State) state.State {
	tags := []state.Tag{state.IndexIn(n.dim)}
	for _, d := range n.dims {
		tags = append(tags, state.IndexIn(d), state.LengthIn(d))
	}
	return st.Remove(tags...)
}

// lengths returns the lengths of the merged dimensions.
func (n *ZCurveNode) lengths(clean state.State) ([]length.Value, error) {
	lens := make([]length.Value, len(n.dims))
	for i, d := range n.dims {
		var err error
		if lens[i], err = n.sub.Length(d, clean); err != nil {
			return nil, err
		}
	}
	return lens, nil
}

func (n *ZCurveNode) subState(st state.State) (state.State, error) {
	if err := checkLengthNotSet(n.Name(), n.dim, st); err != nil {
		return state.Empty, err
	}
	clean := n.cleanState(st)
	idx, ok := st.Lookup(state.IndexIn(n.dim))
	if !ok {
		return clean, nil
	}
	lens, err := n.lengths(clean)
	if err != nil {
		return state.Empty, err
	}
	ints := make([]int, len(lens))
	allStatic := idx.IsStatic()
	for i, l := range lens {
		if ints[i], err = knownInt(n.Name(), n.dims[i], l); err != nil {
			return state.Empty, err
		}
		allStatic = allStatic && l.IsStatic()
	}
	z, err := knownInt(n.Name(), n.dim, idx)
	if err != nil {
		return state.Empty, err
	}
	coords, err := n.curve.Decode(z, ints)
	if err != nil {
		return state.Empty, fmterr.Contractf(n.Name(), n.dim, "%v", err)
	}
	for i, d := range n.dims {
		v := length.Of(coords[i])
		if allStatic {
			v = length.Const(coords[i])
		}
		clean = clean.With(state.IndexIn(d), v)
	}
	return clean, nil
}

// Size of the structure.
func (n *ZCurveNode) Size(st state.State) (length.Value, error) {
	subSt, err := n.subState(st)
	if err != nil {
		return length.Value{}, err
	}
	return n.sub.Size(subSt)
}

// Length of a dimension. The length of the merged dimension is the
// product of the lengths of the dimensions it merges.
func (n *ZCurveNode) Length(d dim.Dim, st state.State) (length.Value, error) {
	if err := checkIndexNotSet(n.Name(), d, st); err != nil {
		return length.Value{}, err
	}
	if d != n.dim {
		subSt, err := n.subState(st)
		if err != nil {
			return length.Value{}, err
		}
		return n.sub.Length(d, subSt)
	}
	if err := checkLengthNotSet(n.Name(), n.dim, st); err != nil {
		return length.Value{}, err
	}
	lens, err := n.lengths(n.cleanState(st))
	if err != nil {
		return length.Value{}, err
	}
	return length.Product(lens...), nil
}

// StrictOffsetOf returns the offset of a sub-structure.
func (n *ZCurveNode) StrictOffsetOf(target Matcher, st state.State) (length.Value, error) {
	if !st.Contains(state.IndexIn(n.dim)) {
		return length.Value{}, fmterr.Contractf(n.Name(), n.dim, "index has not been set")
	}
	subSt, err := n.subState(st)
	if err != nil {
		return length.Value{}, err
	}
	return OffsetOf(n.sub, target, subSt)
}

// Descend returns the sub-structure.
func (n *ZCurveNode) Descend(st state.State) (Structure, state.State, error) {
	subSt, err := n.subState(st)
	if err != nil {
		return nil, state.Empty, err
	}
	return n.sub, subSt, nil
}

func (n *ZCurveNode) String() string {
	return fmt.Sprintf("%s ^ merge_zcurve<%s, %s>(%d, %d)", n.sub, n.dims, n.dim, n.curve.MaxLen(), n.curve.Alignment())
}
