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

// Package sync provides data structures safe for concurrent use.
package sync

import (
	"iter"
	"sync"
	"sync/atomic"
)

// Counter counts the occurrences of keys.
// The zero value is ready to use.
type Counter[K comparable] struct {
	m sync.Map
}

// Add increments the count of a key and returns the new count.
func (c *Counter[K]) Add(k K) int64 {
	v, ok := c.m.Load(k)
	if !ok {
		v, _ = c.m.LoadOrStore(k, new(atomic.Int64))
	}
	return v.(*atomic.Int64).Add(1)
}

// Count returns the number of times a key has been added.
func (c *Counter[K]) Count(k K) int64 {
	v, ok := c.m.Load(k)
	if !ok {
		return 0
	}
	return v.(*atomic.Int64).Load()
}

// All returns an iterator over the keys and their counts.
func (c *Counter[K]) All() iter.Seq2[K, int64] {
	return func(yield func(K, int64) bool) {
		c.m.Range(func(k, v any) bool {
			return yield(k.(K), v.(*atomic.Int64).Load())
		})
	}
}

// Len returns the number of distinct keys. This takes O(n) time.
func (c *Counter[K]) Len() (n int) {
	for range c.All() {
		n++
	}
	return
}
