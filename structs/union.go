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
	"slices"

	basefmt "github.com/gx-org/layout/base/fmt"
	"github.com/gx-org/layout/base/fmterr"
	"github.com/gx-org/layout/dim"
	"github.com/gx-org/layout/length"
	"github.com/gx-org/layout/sig"
	"github.com/gx-org/layout/state"
)

// UnionNode groups structures sharing dimension names. It has no layout:
// it only exposes the union of the dimensions of its structures.
type UnionNode struct {
	structs []Structure
	sg      sig.Signature
}

var _ Structure = (*UnionNode)(nil)

// Union returns a node exposing the dimensions of several structures.
func Union(structs ...Structure) (*UnionNode, error) {
	if len(structs) == 0 {
		return nil, fmterr.Contractf("union", fmterr.NoDim, "no structure")
	}
	sigs := make([]sig.Signature, len(structs))
	for i, s := range structs {
		sigs[i] = s.Signature()
	}
	sg, err := sig.Union(sigs...)
	if err != nil {
		return nil, err
	}
	return &UnionNode{structs: structs, sg: sg}, nil
}

// Name of the node.
func (*UnionNode) Name() string { return "union" }

// Structs returns the structures of the union.
func (n *UnionNode) Structs() []Structure { return n.structs }

// Signature of the union.
func (n *UnionNode) Signature() sig.Signature { return n.sg }

// Size returns an error: a union has no layout.
func (n *UnionNode) Size(state.State) (length.Value, error) {
	return length.Value{}, fmterr.Contractf("size", fmterr.NoDim, "a union has no size")
}

// Length of a dimension, resolved by the first structure exposing it.
func (n *UnionNode) Length(d dim.Dim, st state.State) (length.Value, error) {
	for _, s := range n.structs {
		if sig.Accepts(s.Signature(), d) {
			return s.Length(d, st)
		}
	}
	return length.Value{}, fmterr.Contractf("length", d, "dimension not found in %s", n.sg)
}

// StrictOffsetOf returns an error: a union has no layout.
func (n *UnionNode) StrictOffsetOf(Matcher, state.State) (length.Value, error) {
	return length.Value{}, fmterr.Contractf("offset", fmterr.NoDim, "a union has no layout")
}

// Descend returns an error: the structure selected in a union is not
// determined by a state.
func (n *UnionNode) Descend(state.State) (Structure, state.State, error) {
	return nil, state.Empty, fmterr.Contractf("descend", fmterr.NoDim, "cannot descend into a union")
}

func (n *UnionNode) String() string {
	return fmt.Sprintf("union(%s)", basefmt.Join(slices.Values(n.structs), ", "))
}
