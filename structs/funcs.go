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
	"unsafe"

	"github.com/gx-org/backend/dtype"
	"github.com/gx-org/backend/shape"
	"github.com/gx-org/layout/base/fmterr"
	"github.com/gx-org/layout/dim"
	"github.com/gx-org/layout/length"
	"github.com/gx-org/layout/state"
)

// Apply runs a resolution function on a structure.
func Apply[R any](s Structure, f func(Structure) (R, error)) (R, error) {
	return f(s)
}

// GetLength returns a function resolving the length of a dimension.
func GetLength(d dim.Dim, st state.State) func(Structure) (length.Value, error) {
	return func(s Structure) (length.Value, error) {
		return s.Length(d, st)
	}
}

// GetSize returns a function resolving the size of a structure.
func GetSize(st state.State) func(Structure) (length.Value, error) {
	return func(s Structure) (length.Value, error) {
		return s.Size(st)
	}
}

// OffsetFn returns a function resolving the offset of the scalar leaf
// selected by a state.
func OffsetFn(st state.State) func(Structure) (length.Value, error) {
	return func(s Structure) (length.Value, error) {
		return Offset(s, st)
	}
}

// GetAt returns a pointer to the element selected by a state in a buffer
// storing a structure.
func GetAt[T dtype.GoDataType](buf []byte, s Structure, st state.State) (*T, error) {
	leaf, err := LeafAt(s, st)
	if err != nil {
		return nil, err
	}
	if want := dtype.Generic[T](); leaf.DataType() != want {
		return nil, fmterr.Contractf("get_at", fmterr.NoDim, "cannot access an element of type %s as %s", leaf.DataType().String(), want.String())
	}
	offV, err := Offset(s, st)
	if err != nil {
		return nil, err
	}
	off, err := offV.Int()
	if err != nil {
		return nil, fmterr.Contractf("get_at", fmterr.NoDim, "offset cannot be resolved")
	}
	size := dtype.Sizeof(leaf.DataType())
	if off < 0 || off+size > len(buf) {
		return nil, fmterr.Contractf("get_at", fmterr.NoDim, "element at [%d, %d) outside of a buffer of %d bytes", off, off+size, len(buf))
	}
	return (*T)(unsafe.Pointer(&buf[off])), nil
}

// FromShape returns a row-major array with the data type and the axis
// lengths of a shape. Dimensions are listed outermost first.
func FromShape(dims dim.List, sh *shape.Shape) (Structure, error) {
	if len(dims) != len(sh.AxisLengths) {
		return nil, fmterr.Contractf("from_shape", fmterr.NoDim, "%d dimensions for shape %s", len(dims), sh.String())
	}
	protos := make([]Proto, len(dims))
	for i, d := range dims {
		protos[len(dims)-1-i] = Array(d, sh.AxisLengths[i])
	}
	return Compose(Scalar(sh.DType), protos...)
}
