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
	"strings"

	"github.com/gx-org/layout/base/fmterr"
	"github.com/gx-org/layout/dim"
	"github.com/gx-org/layout/length"
	"github.com/gx-org/layout/sig"
	"github.com/gx-org/layout/state"
)

// TupleNode stores a fixed list of structures contiguously. A field is
// selected by its index along the tuple dimension.
type TupleNode struct {
	dim    dim.Dim
	fields []Structure
	sg     sig.Signature
}

var _ Structure = (*TupleNode)(nil)

// Tuple returns a record of fields selected along a dimension.
func Tuple(d dim.Dim, fields ...Structure) (*TupleNode, error) {
	const op = "tuple"
	if len(fields) == 0 {
		return nil, fmterr.Contractf(op, d, "no field")
	}
	if !d.Valid() {
		return nil, fmterr.Contractf(op, d, "invalid dimension name %q", rune(d))
	}
	rets := make([]sig.Signature, len(fields))
	for i, field := range fields {
		if err := checkNewDim(op, field, d); err != nil {
			return nil, err
		}
		rets[i] = field.Signature()
	}
	return &TupleNode{
		dim:    d,
		fields: fields,
		sg:     &sig.Record{Dim: d, Rets: rets},
	}, nil
}

// Name of the node.
func (*TupleNode) Name() string { return "tuple" }

// Dim returns the dimension selecting a field.
func (n *TupleNode) Dim() dim.Dim { return n.dim }

// Fields returns the fields of the tuple.
func (n *TupleNode) Fields() []Structure { return n.fields }

// Signature of the tuple.
func (n *TupleNode) Signature() sig.Signature { return n.sg }

func (n *TupleNode) subState(st state.State) state.State {
	return st.Remove(state.IndexIn(n.dim), state.LengthIn(n.dim))
}

func (n *TupleNode) field(st state.State) (int, error) {
	idx, err := st.Get(state.IndexIn(n.dim))
	if err != nil {
		return 0, err
	}
	if err := checkBounds(n.Name(), n.dim, idx, length.Const(len(n.fields))); err != nil {
		return 0, err
	}
	return idx.Int()
}

// sizeUpTo returns the size of the first count fields.
func (n *TupleNode) sizeUpTo(count int, st state.State) (length.Value, error) {
	subSt := n.subState(st)
	sizes := make([]length.Value, count)
	for i, field := range n.fields[:count] {
		var err error
		if sizes[i], err = field.Size(subSt); err != nil {
			return length.Value{}, err
		}
	}
	return length.Sum(sizes...), nil
}

// Size of all the fields.
func (n *TupleNode) Size(st state.State) (length.Value, error) {
	return n.sizeUpTo(len(n.fields), st)
}

// Length returns the number of fields for the tuple dimension. Other
// dimensions are resolved in the field selected by the state.
func (n *TupleNode) Length(d dim.Dim, st state.State) (length.Value, error) {
	if d == n.dim {
		if err := checkIndexNotSet(n.Name(), n.dim, st); err != nil {
			return length.Value{}, err
		}
		return length.Const(len(n.fields)), nil
	}
	i, err := n.field(st)
	if err != nil {
		return length.Value{}, err
	}
	return n.fields[i].Length(d, n.subState(st))
}

// StrictOffsetOf returns the offset of a sub-structure.
func (n *TupleNode) StrictOffsetOf(target Matcher, st state.State) (length.Value, error) {
	i, err := n.field(st)
	if err != nil {
		return length.Value{}, err
	}
	before, err := n.sizeUpTo(i, st)
	if err != nil {
		return length.Value{}, err
	}
	off, err := OffsetOf(n.fields[i], target, n.subState(st))
	if err != nil {
		return length.Value{}, err
	}
	// The position of a field is static if the index is.
	idx, _ := st.Get(state.IndexIn(n.dim))
	if !idx.IsStatic() {
		before = before.AsDynamic()
	}
	return length.Add(before, off), nil
}

// Descend returns the field selected by the state.
func (n *TupleNode) Descend(st state.State) (Structure, state.State, error) {
	i, err := n.field(st)
	if err != nil {
		return nil, state.Empty, err
	}
	return n.fields[i], n.subState(st), nil
}

func (n *TupleNode) String() string {
	fields := make([]string, len(n.fields))
	for i, field := range n.fields {
		fields[i] = field.String()
	}
	return fmt.Sprintf("tuple<%s>(%s)", n.dim, strings.Join(fields, ", "))
}
