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

package zorder_test

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/gx-org/layout/zorder"
)

func newCurve(t *testing.T, maxLen, alignment int) zorder.Curve {
	t.Helper()
	c, err := zorder.New(maxLen, alignment)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func checkBijection(t *testing.T, c zorder.Curve, lengths []int) {
	t.Helper()
	size := zorder.Size(lengths)
	seen := make(map[string]bool, size)
	for z := 0; z < size; z++ {
		coords, err := c.Decode(z, lengths)
		if err != nil {
			t.Fatalf("lengths %v: %v", lengths, err)
		}
		for i, x := range coords {
			if x < 0 || x >= lengths[i] {
				t.Fatalf("lengths %v: index %d decoded to %v: out of bounds", lengths, z, coords)
			}
		}
		key := fmt.Sprint(coords)
		if seen[key] {
			t.Fatalf("lengths %v: index %d decoded to %v already seen", lengths, z, coords)
		}
		seen[key] = true
		back, err := c.Encode(coords, lengths)
		if err != nil {
			t.Fatalf("lengths %v: %v", lengths, err)
		}
		if back != z {
			t.Fatalf("lengths %v: %v encoded to %d, want %d", lengths, coords, back, z)
		}
	}
}

func TestBijection2D(t *testing.T) {
	c := newCurve(t, 32, 1)
	for a := 1; a <= 32; a++ {
		for b := 1; b <= 32; b++ {
			checkBijection(t, c, []int{a, b})
		}
	}
}

func TestBijection3D(t *testing.T) {
	c := newCurve(t, 8, 1)
	for a := 1; a <= 8; a++ {
		for b := 1; b <= 8; b++ {
			for d := 1; d <= 8; d++ {
				checkBijection(t, c, []int{a, b, d})
			}
		}
	}
}

func TestBijectionAligned(t *testing.T) {
	tests := []struct {
		maxLen, alignment int
		lengths           []int
	}{
		{maxLen: 32, alignment: 4, lengths: []int{4, 4}},
		{maxLen: 32, alignment: 4, lengths: []int{12, 28}},
		{maxLen: 32, alignment: 4, lengths: []int{32, 8}},
		{maxLen: 8, alignment: 2, lengths: []int{2, 4, 8}},
		{maxLen: 8, alignment: 8, lengths: []int{8, 8, 8}},
		{maxLen: 64, alignment: 64, lengths: []int{64}},
		{maxLen: 16, alignment: 1, lengths: []int{13}},
	}
	for _, test := range tests {
		checkBijection(t, newCurve(t, test.maxLen, test.alignment), test.lengths)
	}
	for a := 1; a <= 8; a++ {
		for b := 1; b <= 8; b++ {
			checkBijection(t, newCurve(t, 32, 4), []int{4 * a, 4 * b})
		}
	}
}

func TestDecode(t *testing.T) {
	c := newCurve(t, 32, 1)
	lengths := []int{20, 30}
	tests := []struct {
		z    int
		want []int
	}{
		{z: 0, want: []int{0, 0}},
		{z: 1, want: []int{0, 1}},
		{z: 2, want: []int{1, 0}},
		{z: 3, want: []int{1, 1}},
		{z: 5, want: []int{0, 3}},
	}
	for _, test := range tests {
		got, err := c.Decode(test.z, lengths)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(test.want, got); diff != "" {
			t.Errorf("decode %d: unexpected coordinates:\n%s", test.z, diff)
		}
	}
}

func TestSpecialMatchesInterleave(t *testing.T) {
	// A square power-of-two box is the classic Morton order.
	c := newCurve(t, 16, 16)
	for z := 0; z < 256; z++ {
		got, err := c.Decode(z, []int{16, 16})
		if err != nil {
			t.Fatal(err)
		}
		var want [2]int
		for b := 0; b < 4; b++ {
			want[0] |= (z >> (2*b + 1) & 1) << b
			want[1] |= (z >> (2 * b) & 1) << b
		}
		if got[0] != want[0] || got[1] != want[1] {
			t.Errorf("decode %d: got %v, want %v", z, got, want)
		}
	}
}

func TestErrors(t *testing.T) {
	for _, params := range [][2]int{{0, 1}, {12, 4}, {16, 3}, {4, 16}} {
		if _, err := zorder.New(params[0], params[1]); err == nil {
			t.Errorf("New(%d, %d): expected an error", params[0], params[1])
		}
	}
	c := newCurve(t, 16, 4)
	for _, lengths := range [][]int{nil, {0}, {6}, {32}, {4, -4}} {
		if err := c.Validate(lengths); err == nil {
			t.Errorf("Validate(%v): expected an error", lengths)
		}
	}
	if _, err := c.Decode(16, []int{4, 4}); err == nil {
		t.Errorf("Decode out of bounds: expected an error")
	}
	if _, err := c.Encode([]int{4, 0}, []int{4, 4}); err == nil {
		t.Errorf("Encode out of bounds: expected an error")
	}
}
