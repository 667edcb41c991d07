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

// replaceDim replaces the signature of a dimension, calling onAxis or
// onRecord depending on the kind of the dimension.
func replaceDim(op string, sub Structure, d dim.Dim, onAxis func(*sig.Axis) (sig.Signature, error), onRecord func(*sig.Record) (sig.Signature, error)) (sig.Signature, error) {
	if err := checkDim(op, sub, d); err != nil {
		return nil, err
	}
	return sig.Replace(sub.Signature(), func(s sig.Signature) (sig.Signature, error) {
		switch sT := s.(type) {
		case *sig.Axis:
			return onAxis(sT)
		case *sig.Record:
			return onRecord(sT)
		}
		return nil, fmterr.Internal(fmterr.Contractf(op, d, "unexpected signature %T", s))
	}, d)
}

// selectRets returns a record with the sub-signatures at the given indices.
func selectRets(op string, rec *sig.Record, indices []int) (sig.Signature, error) {
	rets := make([]sig.Signature, len(indices))
	for i, idx := range indices {
		if idx < 0 || idx >= len(rec.Rets) {
			return nil, fmterr.Contractf(op, rec.Dim, "index %d out of bounds [0, %d)", idx, len(rec.Rets))
		}
		rets[i] = rec.Rets[idx]
	}
	return &sig.Record{Dim: rec.Dim, Rets: rets}, nil
}

func rangeIndices(start, count, stride int) []int {
	if count < 0 {
		count = 0
	}
	indices := make([]int, count)
	for i := range indices {
		indices[i] = i*stride + start
	}
	return indices
}

// checkFieldStart returns an error if start is past the fields of a record.
func checkFieldStart(op string, d dim.Dim, start int, rec *sig.Record) error {
	if start > len(rec.Rets) {
		return fmterr.Contractf(op, d, "start %d larger than the %d fields", start, len(rec.Rets))
	}
	return nil
}

// checkStaticLE returns an error if a and b are static and a > b.
func checkStaticLE(op string, d dim.Dim, aName string, a length.Value, bName string, b length.Value) error {
	if !a.IsStatic() || !b.IsStatic() {
		return nil
	}
	av, _ := a.Int()
	bv, _ := b.Int()
	if av > bv {
		return fmterr.Contractf(op, d, "%s %d larger than %s %d", aName, av, bName, bv)
	}
	return nil
}

type (
	// ShiftNode shifts the indices of a dimension: index i of the node
	// is index i+start of its sub-structure.
	ShiftNode struct {
		dim   dim.Dim
		start length.Value
		sub   Structure
		sg    sig.Signature
	}

	shiftProto struct {
		dim   dim.Dim
		start length.Value
	}
)

var _ Structure = (*ShiftNode)(nil)

// Shift the indices of a dimension by start.
func Shift(d dim.Dim, start length.Value) Proto {
	return shiftProto{dim: d, start: start}
}

func (p shiftProto) Instantiate(sub Structure) (Structure, error) {
	const op = "shift"
	if err := checkParam(op, p.dim, "start", p.start); err != nil {
		return nil, err
	}
	sg, err := replaceDim(op, sub, p.dim, func(axis *sig.Axis) (sig.Signature, error) {
		if err := checkStaticLE(op, p.dim, "start", p.start, "length", axis.Len); err != nil {
			return nil, err
		}
		return sig.NewAxis(p.dim, length.Sub(axis.Len, p.start), axis.Ret), nil
	}, func(rec *sig.Record) (sig.Signature, error) {
		start, err := staticInt(op, p.dim, "start", p.start)
		if err != nil {
			return nil, err
		}
		if err := checkFieldStart(op, p.dim, start, rec); err != nil {
			return nil, err
		}
		return selectRets(op, rec, rangeIndices(start, len(rec.Rets)-start, 1))
	})
	if err != nil {
		return nil, err
	}
	return &ShiftNode{dim: p.dim, start: p.start, sub: sub, sg: sg}, nil
}

func (shiftProto) PreservesLayout() bool { return true }

// Name of the node.
func (*ShiftNode) Name() string { return "shift" }

// Signature of the structure.
func (n *ShiftNode) Signature() sig.Signature { return n.sg }

func (n *ShiftNode) subState(st state.State) state.State {
	idxTag, lenTag := state.IndexIn(n.dim), state.LengthIn(n.dim)
	subSt := st.Remove(idxTag, lenTag)
	if idx, ok := st.Lookup(idxTag); ok {
		subSt = subSt.With(idxTag, length.Add(idx, n.start))
	}
	if l, ok := st.Lookup(lenTag); ok {
		subSt = subSt.With(lenTag, length.Add(l, n.start))
	}
	return subSt
}

// Size of the structure.
func (n *ShiftNode) Size(st state.State) (length.Value, error) {
	return n.sub.Size(n.subState(st))
}

// Length of a dimension.
func (n *ShiftNode) Length(d dim.Dim, st state.State) (length.Value, error) {
	if d != n.dim {
		return n.sub.Length(d, n.subState(st))
	}
	if err := checkIndexNotSet(n.Name(), d, st); err != nil {
		return length.Value{}, err
	}
	if l, ok := st.Lookup(state.LengthIn(d)); ok {
		return l, nil
	}
	subLen, err := n.sub.Length(d, st.Remove(state.IndexIn(d), state.LengthIn(d)))
	if err != nil {
		return length.Value{}, err
	}
	return length.Sub(subLen, n.start), nil
}

// StrictOffsetOf returns the offset of a sub-structure.
func (n *ShiftNode) StrictOffsetOf(target Matcher, st state.State) (length.Value, error) {
	return OffsetOf(n.sub, target, n.subState(st))
}

// Descend returns the sub-structure.
func (n *ShiftNode) Descend(st state.State) (Structure, state.State, error) {
	return n.sub, n.subState(st), nil
}

func (n *ShiftNode) String() string {
	return fmt.Sprintf("%s ^ shift<%s>(%s)", n.sub, n.dim, n.start)
}

type (
	// SliceNode restricts a dimension to a window: index i of the node is
	// index i+start of its sub-structure, for i in [0, len).
	SliceNode struct {
		name  string
		dim   dim.Dim
		start length.Value
		len   length.Value
		sub   Structure
		sg    sig.Signature
	}

	sliceProto struct {
		name       string
		dim        dim.Dim
		start, len length.Value
	}
)

var _ Structure = (*SliceNode)(nil)

// Slice restricts a dimension to the indices [start, start+n).
func Slice(d dim.Dim, start, n length.Value) Proto {
	return sliceProto{name: "slice", dim: d, start: start, len: n}
}

// Span restricts a dimension to the indices [start, end).
func Span(d dim.Dim, start, end length.Value) Proto {
	return sliceProto{name: "span", dim: d, start: start, len: length.Sub(end, start)}
}

func (p sliceProto) Instantiate(sub Structure) (Structure, error) {
	if err := checkParam(p.name, p.dim, "start", p.start); err != nil {
		return nil, err
	}
	if err := checkParam(p.name, p.dim, "length", p.len); err != nil {
		return nil, err
	}
	end := length.Add(p.start, p.len)
	sg, err := replaceDim(p.name, sub, p.dim, func(axis *sig.Axis) (sig.Signature, error) {
		if err := checkStaticLE(p.name, p.dim, "end", end, "length", axis.Len); err != nil {
			return nil, err
		}
		return sig.NewAxis(p.dim, p.len, axis.Ret), nil
	}, func(rec *sig.Record) (sig.Signature, error) {
		start, err := staticInt(p.name, p.dim, "start", p.start)
		if err != nil {
			return nil, err
		}
		n, err := staticInt(p.name, p.dim, "length", p.len)
		if err != nil {
			return nil, err
		}
		return selectRets(p.name, rec, rangeIndices(start, n, 1))
	})
	if err != nil {
		return nil, err
	}
	return &SliceNode{name: p.name, dim: p.dim, start: p.start, len: p.len, sub: sub, sg: sg}, nil
}

func (sliceProto) PreservesLayout() bool { return true }

// Name of the node.
func (n *SliceNode) Name() string { return n.name }

// Signature of the structure.
func (n *SliceNode) Signature() sig.Signature { return n.sg }

func (n *SliceNode) subState(st state.State) (state.State, error) {
	if err := checkLengthNotSet(n.name, n.dim, st); err != nil {
		return state.Empty, err
	}
	idxTag := state.IndexIn(n.dim)
	if idx, ok := st.Lookup(idxTag); ok {
		return st.With(idxTag, length.Add(idx, n.start)), nil
	}
	return st, nil
}

// Size of the structure.
func (n *SliceNode) Size(st state.State) (length.Value, error) {
	subSt, err := n.subState(st)
	if err != nil {
		return length.Value{}, err
	}
	return n.sub.Size(subSt)
}

// Length of a dimension.
func (n *SliceNode) Length(d dim.Dim, st state.State) (length.Value, error) {
	subSt, err := n.subState(st)
	if err != nil {
		return length.Value{}, err
	}
	if d != n.dim {
		return n.sub.Length(d, subSt)
	}
	if err := checkIndexNotSet(n.name, d, st); err != nil {
		return length.Value{}, err
	}
	return n.len, nil
}

// StrictOffsetOf returns the offset of a sub-structure.
func (n *SliceNode) StrictOffsetOf(target Matcher, st state.State) (length.Value, error) {
	subSt, err := n.subState(st)
	if err != nil {
		return length.Value{}, err
	}
	return OffsetOf(n.sub, target, subSt)
}

// Descend returns the sub-structure.
func (n *SliceNode) Descend(st state.State) (Structure, state.State, error) {
	subSt, err := n.subState(st)
	if err != nil {
		return nil, state.Empty, err
	}
	return n.sub, subSt, nil
}

func (n *SliceNode) String() string {
	if n.name == "span" {
		return fmt.Sprintf("%s ^ span<%s>(%s, %s)", n.sub, n.dim, n.start, length.Add(n.start, n.len))
	}
	return fmt.Sprintf("%s ^ slice<%s>(%s, %s)", n.sub, n.dim, n.start, n.len)
}

type (
	// StepNode keeps every stride-th index of a dimension from start:
	// index i of the node is index i*stride+start of its sub-structure.
	StepNode struct {
		dim           dim.Dim
		start, stride length.Value
		sub           Structure
		sg            sig.Signature
	}

	stepProto struct {
		dim           dim.Dim
		top           bool
		start, stride length.Value
	}
)

var _ Structure = (*StepNode)(nil)

// Step keeps every stride-th index of a dimension, starting at start.
func Step(d dim.Dim, start, stride length.Value) Proto {
	return stepProto{dim: d, start: start, stride: stride}
}

// StepTop applies a step on the outermost dimension of a structure,
// which must be a uniform axis.
func StepTop(start, stride length.Value) Proto {
	return stepProto{top: true, start: start, stride: stride}
}

func stepLength(l, start, stride length.Value) (length.Value, error) {
	return length.Div(length.Sub(length.Add(l, stride), length.Add(start, length.Const(1))), stride)
}

func (p stepProto) Instantiate(sub Structure) (Structure, error) {
	const op = "step"
	if p.top {
		axis, ok := sub.Signature().(*sig.Axis)
		if !ok {
			return nil, fmterr.Contractf(op, fmterr.NoDim, "outermost dimension of %s is not a uniform axis: name the dimension to step", sub.Signature())
		}
		p.dim = axis.Dim
	}
	if err := checkParam(op, p.dim, "start", p.start); err != nil {
		return nil, err
	}
	if err := checkParam(op, p.dim, "stride", p.stride); err != nil {
		return nil, err
	}
	if stride, _ := p.stride.Int(); stride == 0 {
		return nil, fmterr.Contractf(op, p.dim, "stride is zero")
	}
	sg, err := replaceDim(op, sub, p.dim, func(axis *sig.Axis) (sig.Signature, error) {
		if err := checkStaticLE(op, p.dim, "start", p.start, "length", axis.Len); err != nil {
			return nil, err
		}
		l, err := stepLength(axis.Len, p.start, p.stride)
		if err != nil {
			return nil, fmterr.Contractf(op, p.dim, "%v", err)
		}
		return sig.NewAxis(p.dim, l, axis.Ret), nil
	}, func(rec *sig.Record) (sig.Signature, error) {
		start, err := staticInt(op, p.dim, "start", p.start)
		if err != nil {
			return nil, err
		}
		stride, err := staticInt(op, p.dim, "stride", p.stride)
		if err != nil {
			return nil, err
		}
		if err := checkFieldStart(op, p.dim, start, rec); err != nil {
			return nil, err
		}
		count := (len(rec.Rets) + stride - start - 1) / stride
		return selectRets(op, rec, rangeIndices(start, count, stride))
	})
	if err != nil {
		return nil, err
	}
	return &StepNode{dim: p.dim, start: p.start, stride: p.stride, sub: sub, sg: sg}, nil
}

func (stepProto) PreservesLayout() bool { return true }

// Name of the node.
func (*StepNode) Name() string { return "step" }

// Signature of the structure.
func (n *StepNode) Signature() sig.Signature { return n.sg }

func (n *StepNode) subState(st state.State) (state.State, error) {
	if err := checkLengthNotSet(n.Name(), n.dim, st); err != nil {
		return state.Empty, err
	}
	idxTag := state.IndexIn(n.dim)
	if idx, ok := st.Lookup(idxTag); ok {
		return st.With(idxTag, length.Add(length.Mul(idx, n.stride), n.start)), nil
	}
	return st, nil
}

// Size of the structure.
func (n *StepNode) Size(st state.State) (length.Value, error) {
	subSt, err := n.subState(st)
	if err != nil {
		return length.Value{}, err
	}
	return n.sub.Size(subSt)
}

// Length of a dimension.
func (n *StepNode) Length(d dim.Dim, st state.State) (length.Value, error) {
	subSt, err := n.subState(st)
	if err != nil {
		return length.Value{}, err
	}
	if d != n.dim {
		return n.sub.Length(d, subSt)
	}
	if err := checkIndexNotSet(n.Name(), d, st); err != nil {
		return length.Value{}, err
	}
	subLen, err := n.sub.Length(d, st)
	if err != nil {
		return length.Value{}, err
	}
	l, err := stepLength(subLen, n.start, n.stride)
	if err != nil {
		return length.Value{}, fmterr.Contractf(n.Name(), d, "%v", err)
	}
	if v, err := l.Int(); err == nil && v < 0 {
		return length.Value{}, fmterr.Contractf(n.Name(), d, "start %s larger than the length %s", n.start, subLen)
	}
	return l, nil
}

// StrictOffsetOf returns the offset of a sub-structure.
func (n *StepNode) StrictOffsetOf(target Matcher, st state.State) (length.Value, error) {
	subSt, err := n.subState(st)
	if err != nil {
		return length.Value{}, err
	}
	return OffsetOf(n.sub, target, subSt)
}

// Descend returns the sub-structure.
func (n *StepNode) Descend(st state.State) (Structure, state.State, error) {
	subSt, err := n.subState(st)
	if err != nil {
		return nil, state.Empty, err
	}
	return n.sub, subSt, nil
}

func (n *StepNode) String() string {
	return fmt.Sprintf("%s ^ step<%s>(%s, %s)", n.sub, n.dim, n.start, n.stride)
}

type (
	// ReverseNode reverses the order of the indices of a dimension.
	ReverseNode struct {
		dim dim.Dim
		sub Structure
		sg  sig.Signature
	}

	reverseProto struct {
		dim dim.Dim
	}
)

var _ Structure = (*ReverseNode)(nil)

// Reverse the indices of a dimension.
func Reverse(d dim.Dim) Proto {
	return reverseProto{dim: d}
}

func (p reverseProto) Instantiate(sub Structure) (Structure, error) {
	const op = "reverse"
	sg, err := replaceDim(op, sub, p.dim, func(axis *sig.Axis) (sig.Signature, error) {
		return axis, nil
	}, func(rec *sig.Record) (sig.Signature, error) {
		return selectRets(op, rec, rangeIndices(len(rec.Rets)-1, len(rec.Rets), -1))
	})
	if err != nil {
		return nil, err
	}
	return &ReverseNode{dim: p.dim, sub: sub, sg: sg}, nil
}

func (reverseProto) PreservesLayout() bool { return true }

// Name of the node.
func (*ReverseNode) Name() string { return "reverse" }

// Signature of the structure.
func (n *ReverseNode) Signature() sig.Signature { return n.sg }

func (n *ReverseNode) subState(st state.State) (state.State, error) {
	idxTag := state.IndexIn(n.dim)
	idx, ok := st.Lookup(idxTag)
	if !ok {
		return st, nil
	}
	l, err := n.sub.Length(n.dim, st.Remove(idxTag))
	if err != nil {
		return state.Empty, err
	}
	return st.With(idxTag, length.Sub(length.Sub(l, length.Const(1)), idx)), nil
}

// Size of the structure.
func (n *ReverseNode) Size(st state.State) (length.Value, error) {
	subSt, err := n.subState(st)
	if err != nil {
		return length.Value{}, err
	}
	return n.sub.Size(subSt)
}

// Length of a dimension.
func (n *ReverseNode) Length(d dim.Dim, st state.State) (length.Value, error) {
	if d == n.dim {
		if err := checkIndexNotSet(n.Name(), d, st); err != nil {
			return length.Value{}, err
		}
		return n.sub.Length(d, st)
	}
	subSt, err := n.subState(st)
	if err != nil {
		return length.Value{}, err
	}
	return n.sub.Length(d, subSt)
}

// StrictOffsetOf returns the offset of a sub-structure.
func (n *ReverseNode) StrictOffsetOf(target Matcher, st state.State) (length.Value, error) {
	subSt, err := n.subState(st)
	if err != nil {
		return length.Value{}, err
	}
	return OffsetOf(n.sub, target, subSt)
}

// Descend returns the sub-structure.
func (n *ReverseNode) Descend(st state.State) (Structure, state.State, error) {
	subSt, err := n.subState(st)
	if err != nil {
		return nil, state.Empty, err
	}
	return n.sub, subSt, nil
}

func (n *ReverseNode) String() string {
	return fmt.Sprintf("%s ^ reverse<%s>", n.sub, n.dim)
}
