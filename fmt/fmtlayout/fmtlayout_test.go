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

package fmtlayout_test

import (
	"strings"
	"testing"

	"github.com/gx-org/backend/dtype"
	"github.com/gx-org/layout/dim"
	"github.com/gx-org/layout/fmt/fmtlayout"
	"github.com/gx-org/layout/length"
	"github.com/gx-org/layout/state"
	"github.com/gx-org/layout/structs"
	"github.com/gx-org/layout/traverser"
)

func array(t *testing.T, dt dtype.DataType, protos ...structs.Proto) structs.Structure {
	t.Helper()
	s, err := structs.Compose(structs.Scalar(dt), protos...)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	return s
}

func newTraverser(t *testing.T, s structs.Structure, order structs.Proto) *traverser.Traverser {
	t.Helper()
	trav, err := traverser.New(s)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if trav, err = trav.Order(order); err != nil {
		t.Fatalf("%+v", err)
	}
	return trav
}

// buildData returns a buffer where the i-th element in memory order is i.
func buildData(t *testing.T, s structs.Structure) []byte {
	t.Helper()
	size, err := s.Size(state.Empty)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	n, err := size.Int()
	if err != nil {
		t.Fatal(err)
	}
	buf := make([]byte, n)
	i := int32(0)
	if err := newTraverser(t, s, structs.Neutral()).ForEach(func(st state.State) error {
		ptr, err := structs.GetAt[int32](buf, s, st)
		if err != nil {
			return err
		}
		*ptr = i
		i++
		return nil
	}); err != nil {
		t.Fatalf("%+v", err)
	}
	return buf
}

func TestSprint(t *testing.T) {
	matrix := array(t, dtype.Int32, structs.Array('y', 3), structs.Array('x', 2))
	cube := array(t, dtype.Int32, structs.Array('z', 2), structs.Array('y', 2), structs.Array('x', 2))
	tuple, err := structs.Tuple('t',
		array(t, dtype.Int32, structs.Array('x', 2)),
		array(t, dtype.Int32, structs.Array('x', 3)),
	)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	tests := []struct {
		desc  string
		s     structs.Structure
		order structs.Proto
		want  string
	}{
		{
			desc:  "matrix",
			s:     matrix,
			order: structs.Neutral(),
			want: `
x[2]y[3]int32{
	{0, 1, 2},
	{3, 4, 5},
}
`,
		},
		{
			desc:  "transposed",
			s:     matrix,
			order: structs.Reorder('y', 'x'),
			want: `
y[3]x[2]int32{
	{0, 3},
	{1, 4},
	{2, 5},
}
`,
		},
		{
			desc:  "reversed",
			s:     matrix,
			order: structs.Reverse('y'),
			want: `
x[2]y[3]int32{
	{2, 1, 0},
	{5, 4, 3},
}
`,
		},
		{
			desc:  "fixed",
			s:     matrix,
			order: structs.Chain(structs.Fix('x', length.Const(1)), structs.Fix('y', length.Const(2))),
			want:  "int32(5)",
		},
		{
			desc:  "cube",
			s:     cube,
			order: structs.Neutral(),
			want: `
x[2]y[2]z[2]int32{
	{
		{0, 1},
		{2, 3},
	},
	{
		{4, 5},
		{6, 7},
	},
}
`,
		},
		{
			desc:  "tuple",
			s:     tuple,
			order: structs.Neutral(),
			want: `
t{x[2]scalar|x[3]scalar} int32{
	{0, 1},
	{2, 3, 4},
}
`,
		},
	}
	for _, test := range tests {
		t.Run(test.desc, func(t *testing.T) {
			got, err := fmtlayout.Sprint[int32](buildData(t, test.s), test.s, newTraverser(t, test.s, test.order))
			if err != nil {
				t.Fatalf("%+v", err)
			}
			if want := strings.TrimSpace(test.want); got != want {
				t.Errorf("incorrect formatting:\ngot:\n%s\nwant:\n%s", got, want)
			}
		})
	}
}

func TestSprintFloat(t *testing.T) {
	s := array(t, dtype.Float32, structs.Array('x', 3))
	buf := make([]byte, 3*4)
	for i, v := range []float32{0.5, 1.25, 3} {
		st, err := state.Indices(dim.List{'x'}, i)
		if err != nil {
			t.Fatal(err)
		}
		ptr, err := structs.GetAt[float32](buf, s, st)
		if err != nil {
			t.Fatalf("%+v", err)
		}
		*ptr = v
	}
	trav := newTraverser(t, s, structs.Neutral())
	got, err := fmtlayout.Sprint[float32](buf, s, trav)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if want := "x[3]float32{0.5, 1.25, 3}"; got != want {
		t.Errorf("got %s, want %s", got, want)
	}
	got, err = fmtlayout.SprintData[float32](buf, s, trav)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if want := "{0.5, 1.25, 3}"; got != want {
		t.Errorf("got %s, want %s", got, want)
	}
	if _, err := fmtlayout.Sprint[int32](buf, s, trav); err == nil {
		t.Errorf("expected an error when formatting float32 as int32")
	}
}

func TestOffsets(t *testing.T) {
	s := array(t, dtype.Int32, structs.Array('y', 2), structs.Array('x', 2))
	got, err := fmtlayout.Offsets(s, newTraverser(t, s, structs.Reverse('x')))
	if err != nil {
		t.Fatalf("%+v", err)
	}
	want := strings.TrimSpace(`
1 x=1 y=0: 8
2 x=1 y=1: 12
3 x=0 y=0: 0
4 x=0 y=1: 4
`)
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}
