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

package layoutfile

import (
	"slices"

	"github.com/gx-org/layout/base/fmterr"
	"github.com/gx-org/layout/dim"
	"github.com/gx-org/layout/length"
	"github.com/gx-org/layout/structs"
	"github.com/pkg/errors"
	"golang.org/x/exp/maps"
)

// parser reads the fields of a transform, accumulating an error for
// every field missing or invalid.
type parser struct {
	tr   *Transform
	errs *fmterr.Errors
}

func (p *parser) dim(name, s string) dim.Dim {
	if s == "" {
		p.errs.Append(errors.Errorf("missing %s", name))
		return 0
	}
	ds, err := dim.Parse(s)
	if err != nil {
		p.errs.Append(errors.Wrapf(err, "%s", name))
		return 0
	}
	if len(ds) != 1 {
		p.errs.Append(errors.Errorf("%s: want a single dimension, got %q", name, s))
		return 0
	}
	return ds[0]
}

func (p *parser) dims(name, s string) dim.List {
	if s == "" {
		p.errs.Append(errors.Errorf("missing %s", name))
		return nil
	}
	ds, err := dim.Parse(s)
	if err != nil {
		p.errs.Append(errors.Wrapf(err, "%s", name))
		return nil
	}
	return ds
}

func (p *parser) int(name string, v *int) int {
	if v == nil {
		p.errs.Append(errors.Errorf("missing %s", name))
		return 0
	}
	return *v
}

func (p *parser) static(name string, v *int) length.Value {
	return length.Const(p.int(name, v))
}

type opFunc func(*parser) structs.Proto

var ops = map[string]opFunc{
	"array": func(p *parser) structs.Proto {
		return structs.Array(p.dim("dim", p.tr.Dim), p.int("len", p.tr.Len))
	},
	"vector": func(p *parser) structs.Proto {
		return structs.Vector(p.dim("dim", p.tr.Dim))
	},
	"sized_vector": func(p *parser) structs.Proto {
		return structs.SizedVector(p.dim("dim", p.tr.Dim), p.int("len", p.tr.Len))
	},
	"set_length": func(p *parser) structs.Proto {
		return structs.SetLength(p.dim("dim", p.tr.Dim), length.Of(p.int("len", p.tr.Len)))
	},
	"fix": func(p *parser) structs.Proto {
		return structs.Fix(p.dim("dim", p.tr.Dim), p.static("index", p.tr.Index))
	},
	"shift": func(p *parser) structs.Proto {
		return structs.Shift(p.dim("dim", p.tr.Dim), p.static("start", p.tr.Start))
	},
	"slice": func(p *parser) structs.Proto {
		return structs.Slice(p.dim("dim", p.tr.Dim), p.static("start", p.tr.Start), p.static("len", p.tr.Len))
	},
	"span": func(p *parser) structs.Proto {
		return structs.Span(p.dim("dim", p.tr.Dim), p.static("start", p.tr.Start), p.static("end", p.tr.End))
	},
	"step": func(p *parser) structs.Proto {
		start, stride := p.static("start", p.tr.Start), p.static("stride", p.tr.Stride)
		if p.tr.Dim == "" {
			return structs.StepTop(start, stride)
		}
		return structs.Step(p.dim("dim", p.tr.Dim), start, stride)
	},
	"reverse": func(p *parser) structs.Proto {
		return structs.Reverse(p.dim("dim", p.tr.Dim))
	},
	"zcurve": func(p *parser) structs.Proto {
		return structs.MergeZCurve(
			p.dims("dims", p.tr.Dims),
			p.dim("to", p.tr.To),
			p.int("max_len", p.tr.MaxLen),
			p.int("alignment", p.tr.Alignment),
		)
	},
	"rename": func(p *parser) structs.Proto {
		return structs.Rename(p.dim("dim", p.tr.Dim), p.dim("to", p.tr.To))
	},
	"reorder": func(p *parser) structs.Proto {
		return structs.Reorder(p.dims("dims", p.tr.Dims)...)
	},
	"hoist": func(p *parser) structs.Proto {
		return structs.Hoist(p.dim("dim", p.tr.Dim))
	},
	"into_blocks": func(p *parser) structs.Proto {
		return structs.IntoBlocks(p.dim("dim", p.tr.Dim), p.dim("major", p.tr.Major), p.dim("minor", p.tr.Minor), p.static("len", p.tr.Len))
	},
	"strip_mine": func(p *parser) structs.Proto {
		return structs.StripMine(p.dim("dim", p.tr.Dim), p.dim("major", p.tr.Major), p.dim("minor", p.tr.Minor), p.static("len", p.tr.Len))
	},
}

// Ops returns the names of the operations a transform can have.
func Ops() []string {
	keys := maps.Keys(ops)
	slices.Sort(keys)
	return append(keys, tupleOp)
}

// proto returns the prototype of a transform or nil if an error has been
// appended to errs.
func (tr *Transform) proto(errs *fmterr.Errors) structs.Proto {
	if tr.Op == tupleOp {
		errs.Append(errors.Errorf("a tuple can only be the first transform of a layout"))
		return nil
	}
	op, ok := ops[tr.Op]
	if !ok {
		errs.Append(errors.Errorf("unknown operation %q. Available operations are %v", tr.Op, Ops()))
		return nil
	}
	if len(tr.Fields) > 0 {
		errs.Append(errors.Errorf("only a tuple has fields"))
	}
	var opErrs fmterr.Errors
	p := op(&parser{tr: tr, errs: &opErrs})
	if !errs.Append(opErrs.ToError()) {
		return p
	}
	return nil
}
