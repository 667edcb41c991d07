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

// Package length models lengths and indices whose value may be known
// while a layout is built (static), once a layout instance exists
// (dynamic), or not at all (unknown).
//
// Arithmetic on values propagates how much is known: the result is static
// only if both operands are static, unknown if one of them is unknown, and
// dynamic otherwise.
package length

import (
	"fmt"

	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"
)

// Kind of knowledge about a value.
type Kind int

const (
	// Unknown values cannot be resolved.
	Unknown Kind = iota
	// Dynamic values are known once a structure instance exists.
	Dynamic
	// Static values are fixed while building a layout.
	Static
)

func (k Kind) String() string {
	switch k {
	case Unknown:
		return "unknown"
	case Dynamic:
		return "dynamic"
	case Static:
		return "static"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Value is a length or an index tagged with its kind.
// The zero value is unknown.
type Value struct {
	kind Kind
	v    int
}

// Const returns a static value.
func Const[T constraints.Integer](n T) Value {
	return Value{kind: Static, v: int(n)}
}

// Of returns a dynamic value.
func Of[T constraints.Integer](n T) Value {
	return Value{kind: Dynamic, v: int(n)}
}

// UnknownValue returns a value that cannot be resolved.
func UnknownValue() Value { return Value{} }

// Kind returns what is known about the value.
func (v Value) Kind() Kind { return v.kind }

// IsStatic returns true if the value is fixed while building a layout.
func (v Value) IsStatic() bool { return v.kind == Static }

// IsKnown returns true if the value can be resolved.
func (v Value) IsKnown() bool { return v.kind != Unknown }

// Int returns the integer value.
// It returns an error if the value is unknown.
func (v Value) Int() (int, error) {
	if v.kind == Unknown {
		return 0, errors.Errorf("value is unknown")
	}
	return v.v, nil
}

// Arg returns the value as it appears in a signature: a dynamic value
// forgets its integer since signatures only depend on the shape of a
// structure.
func (v Value) Arg() Value {
	if v.kind == Dynamic {
		return Value{kind: Dynamic}
	}
	if v.kind == Unknown {
		return Value{}
	}
	return v
}

// AsDynamic returns the value with a static kind downgraded to dynamic.
func (v Value) AsDynamic() Value {
	if v.kind == Static {
		return Value{kind: Dynamic, v: v.v}
	}
	return v
}

// Equal returns true if both values have the same kind and integer.
// Unknown values are equal to each other.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	return v.kind == Unknown || v.v == o.v
}

// String representation of the value.
func (v Value) String() string {
	switch v.kind {
	case Static:
		return fmt.Sprint(v.v)
	case Dynamic:
		return fmt.Sprintf("dyn(%d)", v.v)
	}
	return "?"
}

func combine(a, b Value, v int) Value {
	kind := min(a.kind, b.kind)
	if kind == Unknown {
		return Value{}
	}
	return Value{kind: kind, v: v}
}

// Add returns a+b.
func Add(a, b Value) Value { return combine(a, b, a.v+b.v) }

// Sub returns a-b.
func Sub(a, b Value) Value { return combine(a, b, a.v-b.v) }

// Mul returns a*b.
func Mul(a, b Value) Value { return combine(a, b, a.v*b.v) }

// Div returns a/b.
// It returns an error if b is known and zero.
func Div(a, b Value) (Value, error) {
	if b.IsKnown() && b.v == 0 {
		return Value{}, errors.Errorf("division of %s by zero", a)
	}
	if !b.IsKnown() {
		return Value{}, nil
	}
	return combine(a, b, a.v/b.v), nil
}

// Mod returns a%b.
// It returns an error if b is known and zero.
func Mod(a, b Value) (Value, error) {
	if b.IsKnown() && b.v == 0 {
		return Value{}, errors.Errorf("modulo of %s by zero", a)
	}
	if !b.IsKnown() {
		return Value{}, nil
	}
	return combine(a, b, a.v%b.v), nil
}

// CeilDiv returns ceil(a/b) for a non-negative a and a positive b.
func CeilDiv(a, b Value) (Value, error) {
	if b.IsKnown() && b.v <= 0 {
		return Value{}, errors.Errorf("cannot divide %s by non-positive %s", a, b)
	}
	if !b.IsKnown() {
		return Value{}, nil
	}
	return combine(a, b, (a.v+b.v-1)/b.v), nil
}

// Shl returns a<<n.
func Shl(a Value, n uint) Value { return combine(a, a, a.v<<n) }

// Shr returns a>>n.
func Shr(a Value, n uint) Value { return combine(a, a, a.v>>n) }

// Product returns the product of all values.
// The product of no value is the static value 1.
func Product(vals ...Value) Value {
	prod := Const(1)
	for _, v := range vals {
		prod = Mul(prod, v)
	}
	return prod
}

// Sum returns the sum of all values.
// The sum of no value is the static value 0.
func Sum(vals ...Value) Value {
	sum := Const(0)
	for _, v := range vals {
		sum = Add(sum, v)
	}
	return sum
}
