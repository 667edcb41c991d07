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

package parallel_test

import (
	"bytes"
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/gx-org/backend/dtype"
	"github.com/gx-org/layout/parallel"
	"github.com/gx-org/layout/state"
	"github.com/gx-org/layout/structs"
	"github.com/gx-org/layout/traverser"
	"github.com/pkg/errors"
)

func matrixRange(t *testing.T, nx, ny int) *traverser.Range {
	t.Helper()
	s, err := structs.Compose(structs.Scalar(dtype.Float32), structs.Array('y', ny), structs.Array('x', nx))
	if err != nil {
		t.Fatalf("%+v", err)
	}
	trav, err := traverser.New(s)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	r, err := trav.Range()
	if err != nil {
		t.Fatalf("%+v", err)
	}
	return r
}

// collect returns the row-major position of every visit, sorted.
func collect(t *testing.T, r *traverser.Range, ny int, opts ...parallel.Option) []int {
	t.Helper()
	var mu sync.Mutex
	var got []int
	if err := parallel.ForEach(context.Background(), r, func(st state.State) error {
		x, err := st.Index('x')
		if err != nil {
			return err
		}
		y, err := st.Index('y')
		if err != nil {
			return err
		}
		mu.Lock()
		defer mu.Unlock()
		got = append(got, x*ny+y)
		return nil
	}, opts...); err != nil {
		t.Fatalf("%+v", err)
	}
	sort.Ints(got)
	return got
}

func TestForEach(t *testing.T) {
	want := make([]int, 20*30)
	for i := range want {
		want[i] = i
	}
	tests := []struct {
		desc string
		opts []parallel.Option
	}{
		{desc: "default"},
		{desc: "grain 1", opts: []parallel.Option{parallel.WithGrain(1)}},
		{desc: "grain 7", opts: []parallel.Option{parallel.WithGrain(7), parallel.WithLimit(2)}},
		{desc: "single task", opts: []parallel.Option{parallel.WithGrain(100)}},
		{desc: "no limit", opts: []parallel.Option{parallel.WithGrain(3), parallel.WithLimit(-1)}},
	}
	for _, test := range tests {
		t.Run(test.desc, func(t *testing.T) {
			got := collect(t, matrixRange(t, 20, 30), 30, test.opts...)
			if diff := cmp.Diff(got, want); diff != "" {
				t.Errorf("unexpected visits:\n%s", diff)
			}
		})
	}
}

func TestForEachError(t *testing.T) {
	errStop := errors.New("stop")
	err := parallel.ForEach(context.Background(), matrixRange(t, 20, 30), func(st state.State) error {
		x, err := st.Index('x')
		if err != nil {
			return err
		}
		if x == 13 {
			return errStop
		}
		return nil
	}, parallel.WithGrain(1))
	if !errors.Is(err, errStop) {
		t.Errorf("got error %v, want %v", err, errStop)
	}
}

func TestForEachCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	err := parallel.ForEach(ctx, matrixRange(t, 20, 30), func(state.State) error {
		calls++
		return nil
	}, parallel.WithLimit(1))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got error %v, want %v", err, context.Canceled)
	}
	if calls != 0 {
		t.Errorf("got %d calls after cancellation", calls)
	}
}

func TestForEachLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	collect(t, matrixRange(t, 8, 2), 2, parallel.WithGrain(2), parallel.WithLogger(logger))
	out := buf.String()
	for _, want := range []string{"parallel traversal", "range=x[0:8]", "tasks=4"} {
		if !strings.Contains(out, want) {
			t.Errorf("log %q does not contain %q", out, want)
		}
	}
}

func TestForEachInvalidOptions(t *testing.T) {
	r := matrixRange(t, 4, 4)
	noop := func(state.State) error { return nil }
	for _, opt := range []parallel.Option{parallel.WithGrain(0), parallel.WithLimit(0)} {
		if err := parallel.ForEach(context.Background(), r, noop, opt); err == nil {
			t.Errorf("expected an error")
		}
	}
}

func TestChunks(t *testing.T) {
	tests := []struct {
		n    int
		want []string
	}{
		{n: 1, want: []string{"x[0:7]"}},
		{n: 3, want: []string{"x[0:2]", "x[2:4]", "x[4:7]"}},
		{n: 7, want: []string{"x[0:1]", "x[1:2]", "x[2:3]", "x[3:4]", "x[4:5]", "x[5:6]", "x[6:7]"}},
		{n: 10, want: []string{"x[0:1]", "x[1:2]", "x[2:3]", "x[3:4]", "x[4:5]", "x[5:6]", "x[6:7]"}},
	}
	r := matrixRange(t, 7, 2)
	for _, test := range tests {
		chunks, err := parallel.Chunks(r, test.n)
		if err != nil {
			t.Fatalf("%+v", err)
		}
		got := make([]string, len(chunks))
		for i, chunk := range chunks {
			got[i] = chunk.String()
		}
		if diff := cmp.Diff(got, test.want); diff != "" {
			t.Errorf("chunks(%d): unexpected ranges:\n%s", test.n, diff)
		}
	}
	if _, err := parallel.Chunks(r, 0); err == nil {
		t.Errorf("expected an error")
	}
}
