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

package ordered_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/gx-org/layout/base/ordered"
)

func TestSet(t *testing.T) {
	tests := []struct {
		keys []rune
		want []rune
	}{
		{
			keys: []rune("xyz"),
			want: []rune("xyz"),
		},
		{
			keys: []rune("zxzyx"),
			want: []rune("zxy"),
		},
		{
			keys: []rune("aaaa"),
			want: []rune("a"),
		},
		{},
	}
	for ti, test := range tests {
		s := ordered.NewSet[rune]()
		for _, k := range test.keys {
			s.Add(k)
		}
		if s.Size() != len(test.want) {
			t.Errorf("test %d: set has %d keys but want %d", ti, s.Size(), len(test.want))
			continue
		}
		if diff := cmp.Diff(test.want, s.Slice(), cmpopts.EquateEmpty()); diff != "" {
			t.Errorf("test %d: unexpected keys:\n%s", ti, diff)
		}
		i := 0
		for got := range s.Values() {
			if got != test.want[i] {
				t.Errorf("test %d key %d: got %q but want %q", ti, i, got, test.want[i])
			}
			if !s.Contains(got) {
				t.Errorf("test %d: set does not contain %q", ti, got)
			}
			i++
		}
	}
}

func TestSetAdd(t *testing.T) {
	s := ordered.NewSet('x')
	if s.Add('x') {
		t.Errorf("Add('x') = true, want false")
	}
	if !s.Add('y') {
		t.Errorf("Add('y') = false, want true")
	}
	if s.Contains('z') {
		t.Errorf("Contains('z') = true, want false")
	}
}
