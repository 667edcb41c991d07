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

// Package fmterr provides the errors reported when a layout is used
// outside of its contract, helpers to accumulate independent errors, and
// formatting of errors with the stack trace of where they were generated.
package fmterr

import (
	"fmt"
	"io"

	"github.com/gx-org/layout/dim"
	"github.com/pkg/errors"
)

// NoDim is used for contract violations not related to a dimension.
const NoDim dim.Dim = 0

// ContractError reports an invalid combination of a structure shape and
// requested bindings.
type ContractError struct {
	// Op is the operation during which the violation was detected.
	Op string
	// Dim is the offending dimension, or NoDim.
	Dim dim.Dim
	// Err describes the violation.
	Err error
}

// Contractf returns a contract violation for an operation and a dimension.
func Contractf(op string, d dim.Dim, format string, a ...any) error {
	return &ContractError{Op: op, Dim: d, Err: errors.Errorf(format, a...)}
}

// Error returns a string description of the error.
func (err *ContractError) Error() string {
	if err.Dim == NoDim {
		return fmt.Sprintf("%s: %s", err.Op, err.Err.Error())
	}
	return fmt.Sprintf("%s: dimension %s: %s", err.Op, err.Dim, err.Err.Error())
}

// Unwrap the error.
func (err *ContractError) Unwrap() error {
	return err.Err
}

// Format writes the error into the state of the formatter.
// With %+v, the stack trace of where the violation was detected follows
// the message.
func (err *ContractError) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		io.WriteString(s, err.Error())
		if s.Flag('+') {
			writeStackTrace(s, err.Err)
		}
	case 's':
		io.WriteString(s, err.Error())
	case 'q':
		fmt.Fprintf(s, "%q", err.Error())
	}
}

func writeStackTrace(w io.Writer, err error) {
	var withSt interface {
		StackTrace() errors.StackTrace
	}
	if !errors.As(err, &withSt) {
		return
	}
	fmt.Fprintf(w, "\nError generated at:%+v\n", withSt.StackTrace())
}

// IsContract returns true if err is, or wraps, a contract violation.
func IsContract(err error) bool {
	var cErr *ContractError
	return errors.As(err, &cErr)
}

// Internal marks an error as internal, potentially adding additional information.
func Internal(err error) error {
	return fmt.Errorf("layout internal error. This is a bug. Please report it. Error:\n%+v", err)
}
