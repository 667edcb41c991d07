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

// Package fmtlayout formats the content of buffers described by layouts
// into strings.
package fmtlayout

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/gx-org/backend/dtype"
	basefmt "github.com/gx-org/layout/base/fmt"
	"github.com/gx-org/layout/dim"
	"github.com/gx-org/layout/length"
	"github.com/gx-org/layout/sig"
	"github.com/gx-org/layout/state"
	"github.com/gx-org/layout/structs"
	"github.com/gx-org/layout/traverser"
)

const tab = "\t"

type printer[T dtype.GoDataType] struct {
	w    strings.Builder
	buf  []byte
	s    structs.Structure
	trav *traverser.Traverser
}

func toValue[T dtype.GoDataType](x T) string {
	var fmtstr string
	switch any(x).(type) {
	case float32:
		fmtstr = "%.6f"
	case float64:
		fmtstr = "%.10f"
	default:
		return fmt.Sprint(x)
	}

	result := fmt.Sprintf(fmtstr, x)
	if strings.ContainsRune(result, '.') {
		result = strings.TrimRight(result, "0")
		result = strings.TrimSuffix(result, ".")
	}
	return result
}

func (p *printer[T]) value(st state.State) (string, error) {
	unionSt, err := structs.StateAt(p.trav.Top(), structs.IsUnion, st)
	if err != nil {
		return "", err
	}
	v, err := structs.GetAt[T](p.buf, p.s, unionSt)
	if err != nil {
		return "", err
	}
	return toValue(*v), nil
}

func (p *printer[T]) length(d dim.Dim, st state.State) (int, error) {
	l, err := p.trav.Top().Length(d, st)
	if err != nil {
		return 0, err
	}
	return l.Int()
}

func (p *printer[T]) printVector(axis *sig.Axis, st state.State) error {
	n, err := p.length(axis.Dim, st)
	if err != nil {
		return err
	}
	vec := make([]string, n)
	for i := range n {
		if vec[i], err = p.value(st.WithIndex(axis.Dim, length.Of(i))); err != nil {
			return err
		}
	}
	p.w.WriteString(fmt.Sprintf("{%s}", strings.Join(vec, ", ")))
	return nil
}

func (p *printer[T]) printRec(indent string, sg sig.Signature, st state.State) error {
	var (
		d    dim.Dim
		rets []sig.Signature
		idx  func(int) length.Value
	)
	switch sgT := sg.(type) {
	case *sig.Axis:
		if _, ok := sgT.Ret.(*sig.Scalar); ok {
			return p.printVector(sgT, st)
		}
		d = sgT.Dim
		n, err := p.length(d, st)
		if err != nil {
			return err
		}
		for range n {
			rets = append(rets, sgT.Ret)
		}
		idx = length.Of[int]
	case *sig.Record:
		d = sgT.Dim
		rets = sgT.Rets
		idx = length.Const[int]
	default:
		v, err := p.value(st)
		if err != nil {
			return err
		}
		p.w.WriteString("(" + v + ")")
		return nil
	}
	p.w.WriteString("{\n")
	for i, ret := range rets {
		p.w.WriteString(indent + tab)
		if err := p.printRec(indent+tab, ret, st.WithIndex(d, idx(i))); err != nil {
			return err
		}
		p.w.WriteString(",\n")
	}
	p.w.WriteString(indent + "}")
	return nil
}

func header(sg sig.Signature, dt dtype.DataType) string {
	str := sg.String()
	if trimmed, ok := strings.CutSuffix(str, "scalar"); ok {
		return trimmed + dt.String()
	}
	return str + " " + dt.String()
}

func newPrinter[T dtype.GoDataType](buf []byte, s structs.Structure, trav *traverser.Traverser) *printer[T] {
	return &printer[T]{buf: buf, s: s, trav: trav}
}

// SprintData returns a string representation of the content of a buffer
// in the order of a traverser, without the type.
func SprintData[T dtype.GoDataType](buf []byte, s structs.Structure, trav *traverser.Traverser) (string, error) {
	p := newPrinter[T](buf, s, trav)
	if err := p.printRec("", trav.Top().Signature(), state.Empty); err != nil {
		return "", err
	}
	return p.w.String(), nil
}

// Sprint returns a string representation of the content of a buffer in
// the order of a traverser.
func Sprint[T dtype.GoDataType](buf []byte, s structs.Structure, trav *traverser.Traverser) (string, error) {
	data, err := SprintData[T](buf, s, trav)
	if err != nil {
		return "", err
	}
	return header(trav.Top().Signature(), dtype.Generic[T]()) + data, nil
}

// indices returns the indices of a state sorted by dimension name.
func indices(st state.State) string {
	var tags []state.Tag
	for tag := range st.All() {
		if tag.Kind == state.Index {
			tags = append(tags, tag)
		}
	}
	slices.SortFunc(tags, func(a, b state.Tag) int { return cmp.Compare(a.Dim, b.Dim) })
	parts := make([]string, len(tags))
	for i, tag := range tags {
		v, _ := st.Lookup(tag)
		parts[i] = fmt.Sprintf("%s=%s", tag.Dim, v)
		if n, err := v.Int(); err == nil {
			parts[i] = fmt.Sprintf("%s=%d", tag.Dim, n)
		}
	}
	return strings.Join(parts, " ")
}

// Offsets returns the offset of a structure for every state of a
// traverser, one numbered line per state in the order of the traversal.
func Offsets(s structs.Structure, trav *traverser.Traverser) (string, error) {
	var w strings.Builder
	if err := trav.ForEach(func(st state.State) error {
		v, err := structs.Offset(s, st)
		if err != nil {
			return err
		}
		off, err := v.Int()
		if err != nil {
			return err
		}
		fmt.Fprintf(&w, "%s: %d\n", indices(st), off)
		return nil
	}); err != nil {
		return "", err
	}
	return basefmt.Number(strings.TrimSuffix(w.String(), "\n")), nil
}
