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

// Utility layoutinfo prints the structure, the signature, the size and the
// offsets of a layout described in a YAML file.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	basefmt "github.com/gx-org/layout/base/fmt"
	"github.com/gx-org/layout/base/sync"
	"github.com/gx-org/layout/dim"
	"github.com/gx-org/layout/fmt/fmtlayout"
	"github.com/gx-org/layout/layoutfile"
	"github.com/gx-org/layout/length"
	"github.com/gx-org/layout/parallel"
	"github.com/gx-org/layout/state"
	"github.com/gx-org/layout/structs"
	"github.com/gx-org/layout/tools/layoutflag"
	"github.com/gx-org/layout/traverser"
	"github.com/pkg/errors"
)

var (
	layoutPath = flag.String("layout", "", "YAML file describing the layout")
	order      = layoutflag.DimList("order", "dimensions of the traversal, outermost first")
	fixes      = layoutflag.StringList("fix", "indices fixed before the traversal, as dim=index")
	offsets    = flag.Bool("offsets", false, "print the offset of every element in traversal order")
	check      = flag.Bool("check", false, "check in parallel that the traversal visits every element once")
	verbose    = flag.Bool("verbose", false, "log debug information")
)

type options struct {
	path    string
	order   dim.List
	fixes   []string
	offsets bool
	check   bool
}

func exit(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format, a...)
	fmt.Fprintln(os.Stderr)
	os.Exit(1)
}

func parseFix(s string) (structs.Proto, error) {
	name, value, ok := strings.Cut(s, "=")
	if !ok {
		return nil, errors.Errorf("invalid fix %q: want dim=index", s)
	}
	dims, err := dim.Parse(strings.TrimSpace(name))
	if err != nil {
		return nil, err
	}
	if len(dims) != 1 {
		return nil, errors.Errorf("invalid fix %q: want a single dimension", s)
	}
	idx, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return nil, errors.Errorf("invalid fix %q: %v", s, err)
	}
	return structs.Fix(dims[0], length.Const(idx)), nil
}

func orderProto(opts *options) (structs.Proto, error) {
	var protos []structs.Proto
	for _, fix := range opts.fixes {
		p, err := parseFix(fix)
		if err != nil {
			return nil, err
		}
		protos = append(protos, p)
	}
	if len(opts.order) > 0 {
		protos = append(protos, structs.Reorder(opts.order...))
	}
	return structs.Chain(protos...), nil
}

func describe(w io.Writer, l *layoutfile.Layout, trav *traverser.Traverser) error {
	s := l.Structure()
	size, err := s.Size(state.Empty)
	if err != nil {
		return err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "layout: %s\n", l.Name)
	fmt.Fprintf(&b, "structure: %s\n", s)
	fmt.Fprintf(&b, "signature: %s\n", s.Signature())
	fmt.Fprintf(&b, "size: %s\n", size)
	fmt.Fprintf(&b, "traversal: %s\n", trav.Top().Signature())
	_, err = io.WriteString(w, basefmt.IndentSkip(1, b.String()))
	return err
}

// checkCoverage traverses a layout in parallel and returns an error if an
// element is visited more than once.
func checkCoverage(ctx context.Context, w io.Writer, logger *slog.Logger, s structs.Structure, trav *traverser.Traverser) error {
	r, err := trav.Range()
	if err != nil {
		return err
	}
	var seen sync.Counter[int]
	if err := parallel.ForEach(ctx, r, func(st state.State) error {
		v, err := structs.Offset(s, st)
		if err != nil {
			return err
		}
		off, err := v.Int()
		if err != nil {
			return err
		}
		seen.Add(off)
		return nil
	}, parallel.WithLogger(logger)); err != nil {
		return err
	}
	duplicates := 0
	for _, n := range seen.All() {
		if n > 1 {
			duplicates++
		}
	}
	logger.Debug("coverage", slog.Int("elements", seen.Len()), slog.Int("duplicates", duplicates))
	if duplicates > 0 {
		return errors.Errorf("%d elements visited more than once", duplicates)
	}
	_, err = fmt.Fprintf(w, "coverage: %d elements visited once\n", seen.Len())
	return err
}

func run(ctx context.Context, w io.Writer, logger *slog.Logger, opts *options) error {
	if opts.path == "" {
		return errors.Errorf("no layout specified: please use --layout to specify a YAML file")
	}
	l, err := layoutfile.Load(opts.path)
	if err != nil {
		return err
	}
	logger.Debug("layout loaded", slog.String("path", opts.path), slog.String("name", l.Name))
	trav, err := l.Traverser()
	if err != nil {
		return err
	}
	p, err := orderProto(opts)
	if err != nil {
		return err
	}
	if trav, err = trav.Order(p); err != nil {
		return err
	}
	if err := describe(w, l, trav); err != nil {
		return err
	}
	if opts.offsets {
		table, err := fmtlayout.Offsets(l.Structure(), trav)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, table); err != nil {
			return err
		}
	}
	if opts.check {
		return checkCoverage(ctx, w, logger, l.Structure(), trav)
	}
	return nil
}

func main() {
	flag.Parse()
	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	if err := run(context.Background(), os.Stdout, logger, &options{
		path:    *layoutPath,
		order:   *order,
		fixes:   *fixes,
		offsets: *offsets,
		check:   *check,
	}); err != nil {
		exit("%+v", err)
	}
}
