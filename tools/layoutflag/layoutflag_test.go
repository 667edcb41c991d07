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

package layoutflag_test

import (
	"flag"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/gx-org/layout/dim"
	"github.com/gx-org/layout/tools/layoutflag"
)

func newFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func TestStringList(t *testing.T) {
	fs := newFlagSet()
	list := layoutflag.StringListVar(fs, "fix", "")
	if err := fs.Parse([]string{"-fix", "x=1, y=2", "-fix", "z=3,"}); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(*list, []string{"x=1", "y=2", "z=3"}); diff != "" {
		t.Errorf("unexpected list:\n%s", diff)
	}
}

func TestDimList(t *testing.T) {
	tests := []struct {
		args []string
		want dim.List
		err  bool
	}{
		{args: []string{"-order", "xyz"}, want: dim.List{'x', 'y', 'z'}},
		{args: []string{"-order", "x,y", "-order", "z"}, want: dim.List{'x', 'y', 'z'}},
		{args: []string{}, want: nil},
		{args: []string{"-order", "x,x"}, err: true},
		{args: []string{"-order", "x-y"}, err: true},
	}
	for _, test := range tests {
		fs := newFlagSet()
		list := layoutflag.DimListVar(fs, "order", "")
		err := fs.Parse(test.args)
		if test.err {
			if err == nil {
				t.Errorf("%v: expected an error", test.args)
			}
			continue
		}
		if err != nil {
			t.Errorf("%v: %v", test.args, err)
			continue
		}
		if diff := cmp.Diff(*list, test.want); diff != "" {
			t.Errorf("%v: unexpected dimensions:\n%s", test.args, diff)
		}
	}
}
