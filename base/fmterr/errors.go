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

package fmterr

import (
	"go.uber.org/multierr"
)

type (
	contextError struct {
		f      func(error) error
		errors Errors
	}

	// Errors accumulates independent errors.
	// The zero value is ready to use.
	Errors struct {
		stack []contextError
		err   error
	}
)

// Push a new context in the error stack.
// Errors appended until the matching Pop are transformed by f.
func (errs *Errors) Push(f func(error) error) {
	errs.stack = append(errs.stack, contextError{f: f})
}

// Pop removes the last error context in the stack.
func (errs *Errors) Pop() {
	last := errs.stack[len(errs.stack)-1]
	errs.stack = errs.stack[:len(errs.stack)-1]
	if last.errors.Empty() {
		return
	}
	errs.Append(last.f(last.errors.err))
}

// Append an error to the list of errors.
// Nil errors are ignored.
// Returns true if err is not nil.
func (errs *Errors) Append(err error) bool {
	if err == nil {
		return false
	}
	if len(errs.stack) == 0 {
		errs.err = multierr.Append(errs.err, err)
	} else {
		errs.stack[len(errs.stack)-1].errors.Append(err)
	}
	return true
}

// Empty returns true if no error has been appended.
func (errs *Errors) Empty() bool {
	if errs.err != nil {
		return false
	}
	for _, st := range errs.stack {
		if !st.errors.Empty() {
			return false
		}
	}
	return true
}

// Errors returns the list of all collected errors.
func (errs *Errors) Errors() []error {
	return multierr.Errors(errs.err)
}

// ToError returns the errors as an error interface, or nil if no
// error has been appended.
func (errs *Errors) ToError() error {
	if errs == nil || len(errs.stack) > 0 {
		return nil
	}
	return errs.err
}
