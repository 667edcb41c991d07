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

// Package parallel runs the traversal of a range on several goroutines.
package parallel

import (
	"context"
	"io"
	"log/slog"
	"runtime"

	"github.com/gx-org/layout/base/fmterr"
	"github.com/gx-org/layout/state"
	"github.com/gx-org/layout/traverser"
	"golang.org/x/sync/errgroup"
)

type (
	// Option configures a parallel traversal.
	Option func(*options)

	options struct {
		grain  int
		limit  int
		logger *slog.Logger
	}
)

// WithGrain sets the maximum number of indices of the outermost dimension
// traversed by a single goroutine.
func WithGrain(n int) Option {
	return func(o *options) { o.grain = n }
}

// WithLimit sets the maximum number of goroutines running at the same
// time. A negative limit means no limit.
func WithLimit(n int) Option {
	return func(o *options) { o.limit = n }
}

// WithLogger sets the logger reporting how a range is scheduled.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

func newOptions(r *traverser.Range, opts []Option) (*options, error) {
	procs := runtime.GOMAXPROCS(0)
	o := &options{
		grain:  max(1, (r.Len()+4*procs-1)/(4*procs)),
		limit:  procs,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.grain < 1 {
		return nil, fmterr.Contractf("parallel", r.Dim(), "grain %d is not positive", o.grain)
	}
	if o.limit == 0 {
		return nil, fmterr.Contractf("parallel", r.Dim(), "limit cannot be zero")
	}
	return o, nil
}

// split recursively halves a range until its parts are not larger than
// the grain.
func split(r *traverser.Range, grain int, leaves []*traverser.Range) []*traverser.Range {
	if r.Len() <= grain || !r.IsDivisible() {
		if r.Empty() {
			return leaves
		}
		return append(leaves, r)
	}
	left, right := r.Split()
	return split(right, grain, split(left, grain, leaves))
}

// ForEach calls f for every combination of indices of a range, running
// the sub-ranges of the outermost dimension on different goroutines.
// The order of the calls is not specified across sub-ranges.
// f must be safe for concurrent use.
//
// The first error returned by f cancels the traversal of the sub-ranges
// not yet finished and is returned.
func ForEach(ctx context.Context, r *traverser.Range, f func(state.State) error, opts ...Option) error {
	o, err := newOptions(r, opts)
	if err != nil {
		return err
	}
	leaves := split(r, o.grain, nil)
	o.logger.DebugContext(ctx, "parallel traversal",
		slog.String("range", r.String()),
		slog.Int("grain", o.grain),
		slog.Int("limit", o.limit),
		slog.Int("tasks", len(leaves)),
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(o.limit)
	for _, leaf := range leaves {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			return leaf.ForEach(func(st state.State) error {
				if err := gCtx.Err(); err != nil {
					return err
				}
				return f(st)
			})
		})
	}
	if err := g.Wait(); err != nil {
		o.logger.DebugContext(ctx, "parallel traversal stopped",
			slog.String("range", r.String()),
			slog.Any("error", err),
		)
		return err
	}
	return nil
}

// Chunks splits a range into at most n contiguous ranges whose lengths
// differ by one at most. An empty range has no chunk.
func Chunks(r *traverser.Range, n int) ([]*traverser.Range, error) {
	if n < 1 {
		return nil, fmterr.Contractf("chunks", r.Dim(), "number of chunks %d is not positive", n)
	}
	n = min(n, r.Len())
	chunks := make([]*traverser.Range, 0, n)
	rest := r
	for i := n; i > 0; i-- {
		chunk, next, err := rest.SplitAt(rest.Len() / i)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
		rest = next
	}
	return chunks, nil
}
