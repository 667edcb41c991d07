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

package state_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/gx-org/layout/base/fmterr"
	"github.com/gx-org/layout/dim"
	"github.com/gx-org/layout/length"
	"github.com/gx-org/layout/state"
)

func tagsOf(st state.State) string {
	s := ""
	for _, tag := range st.Tags() {
		s += tag.String() + " "
	}
	return s
}

func mustIndex(t *testing.T, st state.State, d dim.Dim) int {
	t.Helper()
	i, err := st.Index(d)
	if err != nil {
		t.Fatal(err)
	}
	return i
}

func TestWith(t *testing.T) {
	st0 := state.Empty
	st1 := st0.With(state.IndexIn('x'), length.Of(1))
	st2 := st1.With(state.LengthIn('y'), length.Const(4))
	st3 := st2.With(state.IndexIn('x'), length.Of(5))
	if st0.Len() != 0 || st1.Len() != 1 || st2.Len() != 2 {
		t.Errorf("with mutated its receiver: %s %s %s", st0, st1, st2)
	}
	if got, want := mustIndex(t, st1, 'x'), 1; got != want {
		t.Errorf("got index %d, want %d", got, want)
	}
	if got, want := mustIndex(t, st3, 'x'), 5; got != want {
		t.Errorf("got index %d, want %d", got, want)
	}
	if diff := cmp.Diff("length_in<y> index_in<x> ", tagsOf(st3)); diff != "" {
		t.Errorf("unexpected tag order: %s", diff)
	}
	if !st3.Contains(state.LengthIn('y')) || st3.Contains(state.LengthIn('x')) {
		t.Errorf("incorrect bindings in %s", st3)
	}
}

func TestGet(t *testing.T) {
	st, err := state.Indices(dim.MustParse("xy"), 3, 4)
	if err != nil {
		t.Fatal(err)
	}
	v, err := st.Get(state.IndexIn('y'))
	if err != nil {
		t.Fatal(err)
	}
	if !v.Equal(length.Of(4)) {
		t.Errorf("got %s, want %s", v, length.Of(4))
	}
	if _, err := st.Get(state.IndexIn('z')); !fmterr.IsContract(err) {
		t.Errorf("got error %v, want a contract violation", err)
	}
	if _, ok := st.Lookup(state.LengthIn('x')); ok {
		t.Errorf("length_in<x> should not be bound")
	}
}

func TestRemove(t *testing.T) {
	st, err := state.Indices(dim.MustParse("xyz"), 1, 2, 3)
	if err != nil {
		t.Fatal(err)
	}
	got := st.Remove(state.IndexIn('y'), state.LengthIn('x'), state.IndexIn('w'))
	if diff := cmp.Diff("index_in<x> index_in<z> ", tagsOf(got)); diff != "" {
		t.Errorf("unexpected tags: %s", diff)
	}
	if st.Len() != 3 {
		t.Errorf("remove mutated its receiver: %s", st)
	}
}

func TestRestrict(t *testing.T) {
	st, err := state.Indices(dim.MustParse("xyz"), 1, 2, 3)
	if err != nil {
		t.Fatal(err)
	}
	got, err := st.Restrict(state.IndexIn('z'), state.IndexIn('x'))
	if err != nil {
		t.Fatal(err)
	}
	want, err := state.Indices(dim.MustParse("zx"), 3, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(want) {
		t.Errorf("got %s, want %s", got, want)
	}
	if _, err := st.Restrict(state.IndexIn('w')); !fmterr.IsContract(err) {
		t.Errorf("got error %v, want a contract violation", err)
	}
	if _, err := st.Restrict(state.IndexIn('x'), state.IndexIn('x')); !fmterr.IsContract(err) {
		t.Errorf("repeated tag: got error %v, want a contract violation", err)
	}
}

func TestConcat(t *testing.T) {
	a, _ := state.Indices(dim.MustParse("x"), 1)
	b, _ := state.Indices(dim.MustParse("y"), 2)
	got, err := state.Concat(a, b)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff("index_in<x> index_in<y> ", tagsOf(got)); diff != "" {
		t.Errorf("unexpected tags: %s", diff)
	}
	if _, err := state.Concat(got, a); !fmterr.IsContract(err) {
		t.Errorf("got error %v, want a contract violation", err)
	}
}

func TestMakeErrors(t *testing.T) {
	if _, err := state.Indices(dim.MustParse("xy"), 1); err == nil {
		t.Errorf("expected an error for a missing value")
	}
	if _, err := state.Indices(dim.MustParse("xx"), 1, 2); err == nil {
		t.Errorf("expected an error for a duplicated tag")
	}
}

func TestNeighbor(t *testing.T) {
	st, err := state.Indices(dim.MustParse("xy"), 5, 7)
	if err != nil {
		t.Fatal(err)
	}
	got, err := st.Neighbor(dim.MustParse("yx"), -1, 2)
	if err != nil {
		t.Fatal(err)
	}
	want, _ := state.Indices(dim.MustParse("xy"), 7, 6)
	if !got.Equal(want) {
		t.Errorf("got %s, want %s", got, want)
	}
	if _, err := st.Neighbor(dim.MustParse("z"), 1); !fmterr.IsContract(err) {
		t.Errorf("got error %v, want a contract violation", err)
	}
}

func TestAll(t *testing.T) {
	st, _ := state.Indices(dim.MustParse("ab"), 1, 2)
	st = st.With(state.LengthIn('c'), length.Const(9))
	var got []string
	for tag, v := range st.All() {
		got = append(got, tag.String()+"="+v.String())
	}
	want := []string{"index_in<a>=dyn(1)", "index_in<b>=dyn(2)", "length_in<c>=9"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected bindings: %s", diff)
	}
}
