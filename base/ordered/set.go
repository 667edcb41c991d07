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

// Package ordered provides ordered data structure.
package ordered

import "iter"

// Set is an ordered set. Values iterates over the set
// using the same order in which the keys have been added.
type Set[K comparable] struct {
	keys []K
	in   map[K]bool
}

// NewSet returns a new ordered set with some initial keys.
func NewSet[K comparable](keys ...K) *Set[K] {
	s := &Set[K]{in: make(map[K]bool)}
	for _, k := range keys {
		s.Add(k)
	}
	return s
}

// Add a key to the set.
// Returns false if the key was already in the set.
func (s *Set[K]) Add(k K) bool {
	if s.in[k] {
		return false
	}
	s.in[k] = true
	s.keys = append(s.keys, k)
	return true
}

// Contains returns true if a key is in the set.
func (s *Set[K]) Contains(k K) bool {
	return s.in[k]
}

// Values returns an iterator to range over the keys of the set.
func (s *Set[K]) Values() iter.Seq[K] {
	return func(yield func(K) bool) {
		for _, k := range s.keys {
			if !yield(k) {
				break
			}
		}
	}
}

// Slice returns a copy of the keys in insertion order.
func (s *Set[K]) Slice() []K {
	return append([]K{}, s.keys...)
}

// Size returns the number of keys in the set.
func (s *Set[K]) Size() int {
	return len(s.keys)
}
