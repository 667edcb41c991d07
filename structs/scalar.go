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

package structs

import (
	"fmt"

	"github.com/gx-org/backend/dtype"
	"github.com/gx-org/layout/base/fmterr"
	"github.com/gx-org/layout/dim"
	"github.com/gx-org/layout/length"
	"github.com/gx-org/layout/sig"
	"github.com/gx-org/layout/state"
)

// ScalarNode is the leaf of a layout tree storing one element.
type ScalarNode struct {
	dt dtype.DataType
}

var _ Structure = (*ScalarNode)(nil)

// Scalar returns a leaf storing one element of a given data type.
func Scalar(dt dtype.DataType) *ScalarNode {
	return &ScalarNode{dt: dt}
}

// DataType of the element.
func (s *ScalarNode) DataType() dtype.DataType {
	return s.dt
}

// Name of the node.
func (*ScalarNode) Name() string { return "scalar" }

// Signature of the leaf.
func (*ScalarNode) Signature() sig.Signature {
	return &sig.Scalar{}
}

// Size of the element.
func (s *ScalarNode) Size(state.State) (length.Value, error) {
	return length.Const(dtype.Sizeof(s.dt)), nil
}

// Length returns an error: a scalar has no dimension.
func (s *ScalarNode) Length(d dim.Dim, _ state.State) (length.Value, error) {
	return length.Value{}, fmterr.Contractf("length", d, "dimension not found")
}

// StrictOffsetOf returns an error: a scalar has no sub-structure.
func (s *ScalarNode) StrictOffsetOf(Matcher, state.State) (length.Value, error) {
	return length.Value{}, fmterr.Contractf("offset", fmterr.NoDim, "no sub-structure matches in %s", s)
}

// Descend returns an error: a scalar has no sub-structure.
func (s *ScalarNode) Descend(state.State) (Structure, state.State, error) {
	return nil, state.Empty, fmterr.Contractf("descend", fmterr.NoDim, "no sub-structure matches in %s", s)
}

func (s *ScalarNode) String() string {
	return fmt.Sprintf("scalar<%s>", s.dt.String())
}
