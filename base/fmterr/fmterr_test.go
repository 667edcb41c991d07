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

package fmterr_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/gx-org/layout/base/fmterr"
	"github.com/pkg/errors"
)

func TestContractError(t *testing.T) {
	err := fmterr.Contractf("slice", 'x', "cannot set slice length")
	if got, want := err.Error(), "slice: dimension x: cannot set slice length"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	wrapped := errors.Wrapf(err, "layout %s", "matrix")
	if !fmterr.IsContract(wrapped) {
		t.Errorf("%v is not a contract violation", wrapped)
	}
	var cErr *fmterr.ContractError
	if !errors.As(wrapped, &cErr) || cErr.Dim != 'x' || cErr.Op != "slice" {
		t.Errorf("cannot recover the contract violation from %v", wrapped)
	}
	noDim := fmterr.Contractf("union", fmterr.NoDim, "no signature")
	if got, want := noDim.Error(), "union: no signature"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if verbose := fmt.Sprintf("%+v", err); !strings.Contains(verbose, "Error generated at:") {
		t.Errorf("verbose formatting does not print the stack trace:\n%s", verbose)
	}
}

func TestErrors(t *testing.T) {
	var errs fmterr.Errors
	if !errs.Empty() || errs.ToError() != nil {
		t.Errorf("zero value is not empty")
	}
	if errs.Append(nil) {
		t.Errorf("appending nil returned true")
	}
	errs.Append(errors.Errorf("first"))
	errs.Push(func(err error) error {
		return errors.Wrap(err, "entry 1")
	})
	errs.Append(errors.Errorf("second"))
	if errs.ToError() != nil {
		t.Errorf("ToError should return nil while a context is pushed")
	}
	errs.Pop()
	got := errs.Errors()
	if len(got) != 2 {
		t.Fatalf("got %d errors, want 2: %v", len(got), got)
	}
	if want := "entry 1: second"; got[1].Error() != want {
		t.Errorf("got %q, want %q", got[1].Error(), want)
	}
}

func TestFormat(t *testing.T) {
	err := fmterr.Contractf("fix", 'y', "index %d out of bounds", 40)
	tests := []struct {
		format string
		want   string
	}{
		{format: "%s", want: "fix: dimension y: index 40 out of bounds"},
		{format: "%v", want: "fix: dimension y: index 40 out of bounds"},
		{format: "%q", want: `"fix: dimension y: index 40 out of bounds"`},
	}
	for _, test := range tests {
		if got := fmt.Sprintf(test.format, err); got != test.want {
			t.Errorf("%s: got %q, want %q", test.format, got, test.want)
		}
	}
}
