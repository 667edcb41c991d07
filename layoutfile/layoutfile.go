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

// Package layoutfile reads layouts described in YAML files.
//
// A layout starts from a scalar (or a tuple of layouts) and applies a
// list of transforms, innermost first. An optional order lists the
// transforms applied by a traverser over the layout:
//
//	name: matrix
//	scalar: float32
//	transforms:
//	  - {op: array, dim: y, len: 30}
//	  - {op: array, dim: x, len: 20}
//	order:
//	  - {op: reorder, dims: yx}
package layoutfile

import (
	"bytes"
	"os"
	"slices"

	"github.com/gx-org/backend/dtype"
	"github.com/gx-org/layout/base/fmterr"
	"github.com/gx-org/layout/structs"
	"github.com/gx-org/layout/traverser"
	"github.com/pkg/errors"
	"golang.org/x/exp/maps"
	"gopkg.in/yaml.v3"
)

type (
	// Layout read from a file.
	Layout struct {
		Name       string      `yaml:"name,omitempty"`
		Scalar     string      `yaml:"scalar,omitempty"`
		Transforms []Transform `yaml:"transforms,omitempty"`
		Order      []Transform `yaml:"order,omitempty"`

		structure structs.Structure
		order     structs.Proto
	}

	// Transform is one entry of the transforms or of the order of a layout.
	// Which fields are required depends on the operation.
	Transform struct {
		Op        string    `yaml:"op"`
		Dim       string    `yaml:"dim,omitempty"`
		Dims      string    `yaml:"dims,omitempty"`
		To        string    `yaml:"to,omitempty"`
		Major     string    `yaml:"major,omitempty"`
		Minor     string    `yaml:"minor,omitempty"`
		Len       *int      `yaml:"len,omitempty"`
		Index     *int      `yaml:"index,omitempty"`
		Start     *int      `yaml:"start,omitempty"`
		End       *int      `yaml:"end,omitempty"`
		Stride    *int      `yaml:"stride,omitempty"`
		MaxLen    *int      `yaml:"max_len,omitempty"`
		Alignment *int      `yaml:"alignment,omitempty"`
		Fields    []*Layout `yaml:"fields,omitempty"`
	}
)

const tupleOp = "tuple"

var dataTypes = map[string]dtype.DataType{
	"bool":     dtype.Bool,
	"bfloat16": dtype.Bfloat16,
	"float32":  dtype.Float32,
	"float64":  dtype.Float64,
	"int32":    dtype.Int32,
	"int64":    dtype.Int64,
	"uint32":   dtype.Uint32,
	"uint64":   dtype.Uint64,
}

// DataTypes returns the names of the data types a scalar can have.
func DataTypes() []string {
	keys := maps.Keys(dataTypes)
	slices.Sort(keys)
	return keys
}

// Parse a layout from YAML.
// All the invalid transforms of the layout are reported.
func Parse(data []byte) (*Layout, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	l := &Layout{}
	if err := dec.Decode(l); err != nil {
		return nil, errors.Errorf("cannot decode layout: %v", err)
	}
	if err := l.build(); err != nil {
		return nil, err
	}
	return l, nil
}

// Load a layout from a YAML file.
func Load(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("cannot read layout: %v", err)
	}
	l, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	return l, nil
}

func (l *Layout) build() error {
	var errs fmterr.Errors
	transforms := l.Transforms
	var base structs.Structure
	if len(transforms) > 0 && transforms[0].Op == tupleOp {
		if l.Scalar != "" {
			errs.Append(errors.Errorf("scalar %q and a tuple are exclusive", l.Scalar))
		}
		errs.Push(func(err error) error { return errors.Wrapf(err, "transforms[0] (%s)", tupleOp) })
		base = buildTuple(&errs, &transforms[0])
		errs.Pop()
		transforms = transforms[1:]
	} else {
		dt, err := parseDataType(l.Scalar)
		if err != nil {
			errs.Append(err)
		} else {
			base = structs.Scalar(dt)
		}
	}
	offset := len(l.Transforms) - len(transforms)
	protos := parseAll(&errs, "transforms", offset, transforms)
	order := parseAll(&errs, "order", 0, l.Order)
	if !errs.Empty() {
		return errs.ToError()
	}
	s := base
	for i, p := range protos {
		next, err := p.Instantiate(s)
		if err != nil {
			return errors.Wrapf(err, "transforms[%d] (%s)", offset+i, transforms[i].Op)
		}
		s = next
	}
	l.structure = s
	l.order = structs.Chain(order...)
	if _, err := l.Traverser(); err != nil {
		return errors.Wrapf(err, "invalid order")
	}
	return nil
}

func buildTuple(errs *fmterr.Errors, tr *Transform) structs.Structure {
	d := (&parser{tr: tr, errs: errs}).dim("dim", tr.Dim)
	if len(tr.Fields) == 0 {
		errs.Append(errors.Errorf("tuple has no field"))
		return nil
	}
	fields := make([]structs.Structure, len(tr.Fields))
	ok := true
	for i, field := range tr.Fields {
		if len(field.Order) > 0 {
			errs.Append(errors.Errorf("fields[%d]: a field cannot have an order", i))
			ok = false
			continue
		}
		if err := field.build(); err != nil {
			errs.Append(errors.Wrapf(err, "fields[%d]", i))
			ok = false
			continue
		}
		fields[i] = field.structure
	}
	if !ok || !errs.Empty() {
		return nil
	}
	tuple, err := structs.Tuple(d, fields...)
	if err != nil {
		errs.Append(err)
		return nil
	}
	return tuple
}

func parseAll(errs *fmterr.Errors, section string, offset int, trs []Transform) []structs.Proto {
	protos := make([]structs.Proto, len(trs))
	for i := range trs {
		tr := &trs[i]
		errs.Push(func(err error) error {
			return errors.Wrapf(err, "%s[%d] (%s)", section, offset+i, tr.Op)
		})
		protos[i] = tr.proto(errs)
		errs.Pop()
	}
	return protos
}

func parseDataType(name string) (dtype.DataType, error) {
	if name == "" {
		return dtype.Invalid, errors.Errorf("missing scalar data type")
	}
	dt, ok := dataTypes[name]
	if !ok {
		return dtype.Invalid, errors.Errorf("unknown data type %q. Available data types are %v", name, DataTypes())
	}
	return dt, nil
}

// Structure returns the structure described by the layout.
func (l *Layout) Structure() structs.Structure {
	return l.structure
}

// OrderProto returns the prototype composing all the transforms of the
// order of the layout.
func (l *Layout) OrderProto() structs.Proto {
	return l.order
}

// Traverser returns a traverser over the structure of the layout with
// the order of the layout applied.
func (l *Layout) Traverser() (*traverser.Traverser, error) {
	trav, err := traverser.New(l.structure)
	if err != nil {
		return nil, err
	}
	return trav.Order(l.order)
}
