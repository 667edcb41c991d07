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

// Package state implements the binding store threading indices and
// lengths through a structure while it is resolved.
//
// A state is immutable: every operation returns a new state and leaves
// its receiver untouched.
package state

import (
	"fmt"
	"iter"
	"strings"

	"github.com/gx-org/layout/base/fmterr"
	"github.com/gx-org/layout/dim"
	"github.com/gx-org/layout/length"
)

// Kind of a binding.
type Kind int

const (
	// Index binds the index of a dimension.
	Index Kind = iota
	// Length binds the length of a dimension.
	Length
)

func (k Kind) String() string {
	switch k {
	case Index:
		return "index_in"
	case Length:
		return "length_in"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

type (
	// Tag is the key of a binding.
	Tag struct {
		Kind Kind
		Dim  dim.Dim
	}

	entry struct {
		tag Tag
		val length.Value
	}

	// State is an ordered list of bindings with unique tags.
	// The zero value is the empty state.
	State struct {
		entries []entry
	}
)

// Empty state.
var Empty = State{}

// IndexIn returns the tag binding the index of a dimension.
func IndexIn(d dim.Dim) Tag { return Tag{Kind: Index, Dim: d} }

// LengthIn returns the tag binding the length of a dimension.
func LengthIn(d dim.Dim) Tag { return Tag{Kind: Length, Dim: d} }

func (t Tag) String() string {
	return fmt.Sprintf("%s<%s>", t.Kind, t.Dim)
}

// Make returns a state binding each tag to the value at the same position.
func Make(tags []Tag, vals []length.Value) (State, error) {
	if len(tags) != len(vals) {
		return Empty, fmterr.Contractf("make", fmterr.NoDim, "%d tags for %d values", len(tags), len(vals))
	}
	st := State{entries: make([]entry, 0, len(tags))}
	for i, tag := range tags {
		if st.Contains(tag) {
			return Empty, fmterr.Contractf("make", tag.Dim, "%s bound twice", tag)
		}
		st.entries = append(st.entries, entry{tag: tag, val: vals[i]})
	}
	return st, nil
}

// Indices returns a state binding the index of each dimension.
func Indices(dims dim.List, idx ...int) (State, error) {
	tags := make([]Tag, len(dims))
	vals := make([]length.Value, len(idx))
	for i, d := range dims {
		tags[i] = IndexIn(d)
	}
	for i, v := range idx {
		vals[i] = length.Of(v)
	}
	return Make(tags, vals)
}

// Len returns the number of bindings.
func (st State) Len() int {
	return len(st.entries)
}

func (st State) find(tag Tag) int {
	for i, e := range st.entries {
		if e.tag == tag {
			return i
		}
	}
	return -1
}

// Contains returns true if the tag is bound.
func (st State) Contains(tag Tag) bool {
	return st.find(tag) >= 0
}

// Lookup returns the value bound to a tag.
func (st State) Lookup(tag Tag) (length.Value, bool) {
	i := st.find(tag)
	if i < 0 {
		return length.Value{}, false
	}
	return st.entries[i].val, true
}

// Get returns the value bound to a tag.
// It returns an error if the tag is not bound.
func (st State) Get(tag Tag) (length.Value, error) {
	v, ok := st.Lookup(tag)
	if !ok {
		return v, fmterr.Contractf("get", tag.Dim, "%s is not bound in %s", tag, st)
	}
	return v, nil
}

// With returns a new state where tag is bound to val.
// A previous binding of the same tag is removed.
func (st State) With(tag Tag, val length.Value) State {
	i := st.find(tag)
	entries := make([]entry, 0, len(st.entries)+1)
	if i < 0 {
		entries = append(entries, st.entries...)
	} else {
		entries = append(entries, st.entries[:i]...)
		entries = append(entries, st.entries[i+1:]...)
	}
	return State{entries: append(entries, entry{tag: tag, val: val})}
}

// WithIndex returns a new state binding the index of a dimension.
func (st State) WithIndex(d dim.Dim, val length.Value) State {
	return st.With(IndexIn(d), val)
}

func containsTag(tags []Tag, tag Tag) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Remove returns a new state without the given tags.
// Tags not bound in the state are ignored.
func (st State) Remove(tags ...Tag) State {
	entries := make([]entry, 0, len(st.entries))
	for _, e := range st.entries {
		if !containsTag(tags, e.tag) {
			entries = append(entries, e)
		}
	}
	return State{entries: entries}
}

// Restrict returns a new state with only the given tags, in that order.
// It returns an error if a tag is not bound or requested twice.
func (st State) Restrict(tags ...Tag) (State, error) {
	entries := make([]entry, len(tags))
	for i, tag := range tags {
		if containsTag(tags[:i], tag) {
			return Empty, fmterr.Contractf("restrict", tag.Dim, "%s requested twice", tag)
		}
		val, err := st.Get(tag)
		if err != nil {
			return Empty, err
		}
		entries[i] = entry{tag: tag, val: val}
	}
	return State{entries: entries}, nil
}

// Concat returns the bindings of a followed by the bindings of b.
// It returns an error if a tag is bound in both states.
func Concat(a, b State) (State, error) {
	entries := make([]entry, 0, len(a.entries)+len(b.entries))
	entries = append(entries, a.entries...)
	for _, e := range b.entries {
		if a.Contains(e.tag) {
			return Empty, fmterr.Contractf("concat", e.tag.Dim, "%s bound in both states", e.tag)
		}
		entries = append(entries, e)
	}
	return State{entries: entries}, nil
}

// Tags returns the bound tags in order.
func (st State) Tags() []Tag {
	tags := make([]Tag, len(st.entries))
	for i, e := range st.entries {
		tags[i] = e.tag
	}
	return tags
}

// All returns an iterator over the bindings.
func (st State) All() iter.Seq2[Tag, length.Value] {
	return func(yield func(Tag, length.Value) bool) {
		for _, e := range st.entries {
			if !yield(e.tag, e.val) {
				return
			}
		}
	}
}

// Equal returns true if both states bind the same tags, in the same
// order, to equal values.
func (st State) Equal(o State) bool {
	if len(st.entries) != len(o.entries) {
		return false
	}
	for i, e := range st.entries {
		oe := o.entries[i]
		if e.tag != oe.tag || !e.val.Equal(oe.val) {
			return false
		}
	}
	return true
}

// Index returns the index bound to a dimension.
func (st State) Index(d dim.Dim) (int, error) {
	v, err := st.Get(IndexIn(d))
	if err != nil {
		return 0, err
	}
	return v.Int()
}

// UpdateIndex returns a new state where the index of d is replaced by
// f applied to its current value. The binding keeps its position.
func (st State) UpdateIndex(d dim.Dim, f func(length.Value) length.Value) (State, error) {
	i := st.find(IndexIn(d))
	if i < 0 {
		return Empty, fmterr.Contractf("update index", d, "index is not bound in %s", st)
	}
	entries := append([]entry{}, st.entries...)
	entries[i].val = f(entries[i].val)
	return State{entries: entries}, nil
}

// Neighbor returns a new state where the index of every dimension is
// moved by the delta at the same position.
func (st State) Neighbor(dims dim.List, deltas ...int) (State, error) {
	if len(dims) != len(deltas) {
		return Empty, fmterr.Contractf("neighbor", fmterr.NoDim, "%d dimensions for %d deltas", len(dims), len(deltas))
	}
	next := st
	for i, d := range dims {
		delta := length.Const(deltas[i])
		var err error
		if next, err = next.UpdateIndex(d, func(v length.Value) length.Value {
			return length.Add(v, delta)
		}); err != nil {
			return Empty, err
		}
	}
	return next, nil
}

// String representation of the state.
func (st State) String() string {
	parts := make([]string, len(st.entries))
	for i, e := range st.entries {
		parts[i] = fmt.Sprintf("%s=%s", e.tag, e.val)
	}
	return "state{" + strings.Join(parts, ", ") + "}"
}
