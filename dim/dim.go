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

// Package dim defines dimension names.
package dim

import (
	"strings"
	"unicode"

	"github.com/pkg/errors"
)

type (
	// Dim names an axis of a layout, conventionally with one letter.
	Dim rune

	// List of dimension names, outermost first.
	List []Dim
)

// String returns the dimension name.
func (d Dim) String() string {
	return string(d)
}

// Valid returns true if the dimension is a letter, a digit or an underscore.
func (d Dim) Valid() bool {
	r := rune(d)
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Parse returns the list of dimensions named by the runes of s.
func Parse(s string) (List, error) {
	var l List
	for _, r := range s {
		d := Dim(r)
		if !d.Valid() {
			return nil, errors.Errorf("invalid dimension name %q in %q", r, s)
		}
		l = append(l, d)
	}
	return l, nil
}

// MustParse returns the list of dimensions named by the runes of s.
// It panics if s contains an invalid dimension name.
func MustParse(s string) List {
	l, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return l
}

// Contains returns true if d is in the list.
func (l List) Contains(d Dim) bool {
	return l.Index(d) >= 0
}

// Index returns the position of d in the list or -1.
func (l List) Index(d Dim) int {
	for i, di := range l {
		if di == d {
			return i
		}
	}
	return -1
}

// Unique returns an error naming the first dimension present twice.
func (l List) Unique() error {
	for i, d := range l {
		if l[:i].Contains(d) {
			return errors.Errorf("dimension %s appears more than once in %s", d, l)
		}
	}
	return nil
}

// String returns the concatenation of all the names.
func (l List) String() string {
	var b strings.Builder
	for _, d := range l {
		b.WriteRune(rune(d))
	}
	return b.String()
}
