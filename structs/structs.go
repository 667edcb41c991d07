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

// Package structs defines the nodes of a layout tree and the prototypes
// composing them.
//
// A structure is built bottom-up: a scalar leaf is wrapped by prototypes,
// each instantiated on the structure built so far. Instantiation checks
// the signature of the wrapped structure, so that invalid compositions
// are reported before any index is bound.
//
// Offsets, sizes and lengths are resolved from a state binding the
// indices and lengths of dimensions. Every node consumes the bindings of
// its own dimension, translates the state for its sub-structure, and
// delegates.
package structs

import (
	"github.com/gx-org/layout/base/fmterr"
	"github.com/gx-org/layout/dim"
	"github.com/gx-org/layout/length"
	"github.com/gx-org/layout/sig"
	"github.com/gx-org/layout/state"
)

type (
	// Structure is a node of a layout tree.
	Structure interface {
		// Name of the kind of node.
		Name() string
		// Signature of the dimensions of the structure.
		Signature() sig.Signature
		// Size in bytes of the structure.
		Size(state.State) (length.Value, error)
		// Length of a dimension.
		Length(dim.Dim, state.State) (length.Value, error)
		// StrictOffsetOf returns the offset, in bytes, of the first
		// sub-structure matching a matcher. The structure itself is not
		// tested against the matcher.
		StrictOffsetOf(Matcher, state.State) (length.Value, error)
		// Descend returns the sub-structure selected by a state and
		// the state translated for that sub-structure.
		Descend(state.State) (Structure, state.State, error)
		// String representation of the layout tree.
		String() string
	}

	// Proto is a reusable transformation of a structure.
	Proto interface {
		// Instantiate the prototype on a structure.
		Instantiate(Structure) (Structure, error)
		// PreservesLayout returns true if the offsets of all the
		// elements are unchanged by the prototype.
		PreservesLayout() bool
	}

	// Matcher selects a structure in a layout tree.
	Matcher func(Structure) bool
)

// Compose instantiates prototypes in order on a structure.
func Compose(s Structure, protos ...Proto) (Structure, error) {
	for _, p := range protos {
		var err error
		if s, err = p.Instantiate(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

type chainProto []Proto

// Chain composes prototypes into one.
func Chain(protos ...Proto) Proto {
	var flat chainProto
	for _, p := range protos {
		if ch, ok := p.(chainProto); ok {
			flat = append(flat, ch...)
		} else {
			flat = append(flat, p)
		}
	}
	return flat
}

// Neutral returns the prototype leaving structures unchanged.
func Neutral() Proto {
	return chainProto(nil)
}

func (ch chainProto) Instantiate(s Structure) (Structure, error) {
	return Compose(s, ch...)
}

func (ch chainProto) PreservesLayout() bool {
	for _, p := range ch {
		if !p.PreservesLayout() {
			return false
		}
	}
	return true
}

// IsScalar matches scalar leaves.
func IsScalar(s Structure) bool {
	_, ok := s.(*ScalarNode)
	return ok
}

// IsUnion matches the union of several structures.
func IsUnion(s Structure) bool {
	_, ok := s.(*UnionNode)
	return ok
}

// Named returns a matcher selecting the nodes of a given kind.
func Named(name string) Matcher {
	return func(s Structure) bool {
		return s.Name() == name
	}
}

// OffsetOf returns the offset of the first structure matching a matcher.
func OffsetOf(s Structure, target Matcher, st state.State) (length.Value, error) {
	if target(s) {
		return length.Const(0), nil
	}
	return s.StrictOffsetOf(target, st)
}

// Offset returns the offset of the scalar leaf selected by a state.
func Offset(s Structure, st state.State) (length.Value, error) {
	return OffsetOf(s, IsScalar, st)
}

// At descends from s until a structure matches the target.
// It returns the structure found and the state translated for it.
func At(s Structure, target Matcher, st state.State) (Structure, state.State, error) {
	for !target(s) {
		var err error
		if s, st, err = s.Descend(st); err != nil {
			return nil, state.Empty, err
		}
	}
	return s, st, nil
}

// StateAt returns the state translated down to the first structure
// matching the target.
func StateAt(s Structure, target Matcher, st state.State) (state.State, error) {
	_, st, err := At(s, target, st)
	return st, err
}

// LeafAt returns the scalar leaf selected by a state.
func LeafAt(s Structure, st state.State) (*ScalarNode, error) {
	leaf, _, err := At(s, IsScalar, st)
	if err != nil {
		return nil, err
	}
	return leaf.(*ScalarNode), nil
}

// checkDim returns an error if a dimension is not in a signature.
func checkDim(op string, s Structure, d dim.Dim) error {
	if !sig.Accepts(s.Signature(), d) {
		return fmterr.Contractf(op, d, "dimension not found in %s", s.Signature())
	}
	return nil
}

// checkNewDim returns an error if a dimension is already in a signature.
func checkNewDim(op string, s Structure, d dim.Dim) error {
	if !d.Valid() {
		return fmterr.Contractf(op, d, "invalid dimension name %q", rune(d))
	}
	if sig.Accepts(s.Signature(), d) {
		return fmterr.Contractf(op, d, "dimension already exists in %s", s.Signature())
	}
	return nil
}

// checkParam returns an error if a known parameter is negative.
func checkParam(op string, d dim.Dim, name string, v length.Value) error {
	if !v.IsKnown() {
		return fmterr.Contractf(op, d, "%s is unknown", name)
	}
	if n, _ := v.Int(); n < 0 {
		return fmterr.Contractf(op, d, "%s %d is negative", name, n)
	}
	return nil
}

// staticInt returns the value of a parameter applied to a record
// dimension, which must be static.
func staticInt(op string, d dim.Dim, name string, v length.Value) (int, error) {
	if !v.IsStatic() {
		return 0, fmterr.Contractf(op, d, "%s %s of a record dimension must be static", name, v)
	}
	return v.Int()
}

// checkIndexNotSet returns an error if the index of a dimension is
// bound while its length is requested.
func checkIndexNotSet(op string, d dim.Dim, st state.State) error {
	if st.Contains(state.IndexIn(d)) {
		return fmterr.Contractf(op, d, "index already set")
	}
	return nil
}

// checkLengthNotSet returns an error if the length of a dimension whose
// length is fixed by a node is bound in a state.
func checkLengthNotSet(op string, d dim.Dim, st state.State) error {
	if st.Contains(state.LengthIn(d)) {
		return fmterr.Contractf(op, d, "cannot set the length of the dimension")
	}
	return nil
}

// knownInt returns the integer of a value resolved by a node.
func knownInt(op string, d dim.Dim, v length.Value) (int, error) {
	n, err := v.Int()
	if err != nil {
		return 0, fmterr.Contractf(op, d, "length cannot be resolved")
	}
	return n, nil
}
