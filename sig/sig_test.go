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

package sig_test

import (
	"testing"

	"github.com/gx-org/layout/base/fmterr"
	"github.com/gx-org/layout/dim"
	"github.com/gx-org/layout/length"
	"github.com/gx-org/layout/sig"
)

func array(d dim.Dim, n int, ret sig.Signature) sig.Signature {
	return sig.NewAxis(d, length.Const(n), ret)
}

var scalar = &sig.Scalar{}

func TestString(t *testing.T) {
	tests := []struct {
		sig  sig.Signature
		want string
	}{
		{
			sig:  scalar,
			want: "scalar",
		},
		{
			sig:  array('x', 20, array('y', 30, scalar)),
			want: "x[20]y[30]scalar",
		},
		{
			sig:  sig.NewAxis('v', length.Of(4), scalar),
			want: "v[dyn]scalar",
		},
		{
			sig:  sig.NewAxis('v', length.UnknownValue(), scalar),
			want: "v[?]scalar",
		},
		{
			sig:  &sig.Record{Dim: 't', Rets: []sig.Signature{scalar, array('x', 2, scalar)}},
			want: "t{scalar|x[2]scalar}",
		},
	}
	for i, test := range tests {
		got := test.sig.String()
		if got != test.want {
			t.Errorf("test %d: got %q, want %q", i, got, test.want)
		}
	}
}

func TestDims(t *testing.T) {
	rec := &sig.Record{Dim: 't', Rets: []sig.Signature{
		array('x', 2, array('y', 3, scalar)),
		array('z', 2, array('x', 3, scalar)),
	}}
	tests := []struct {
		sig  sig.Signature
		want string
	}{
		{sig: scalar, want: ""},
		{sig: array('x', 20, array('y', 30, scalar)), want: "xy"},
		{sig: rec, want: "txyz"},
	}
	for i, test := range tests {
		got := sig.Dims(test.sig).String()
		if got != test.want {
			t.Errorf("test %d: got dims %q, want %q", i, got, test.want)
		}
		for _, d := range dim.MustParse(test.want) {
			if !sig.Accepts(test.sig, d) {
				t.Errorf("test %d: %s does not accept %s", i, test.sig, d)
			}
		}
		if sig.Accepts(test.sig, 'w') {
			t.Errorf("test %d: %s accepts w", i, test.sig)
		}
	}
}

func TestFind(t *testing.T) {
	s := array('x', 20, array('y', 30, scalar))
	found := sig.Find(s, 'y')
	if want := "y[30]scalar"; found == nil || found.String() != want {
		t.Errorf("got %v, want %s", found, want)
	}
	if found := sig.Find(s, 'z'); found != nil {
		t.Errorf("got %v, want nil", found)
	}
}

func TestReplace(t *testing.T) {
	s := &sig.Record{Dim: 't', Rets: []sig.Signature{
		array('x', 2, array('y', 3, scalar)),
		array('y', 4, scalar),
	}}
	got, err := sig.Replace(s, func(s sig.Signature) (sig.Signature, error) {
		return s.(*sig.Axis).Ret, nil
	}, 'y')
	if err != nil {
		t.Fatal(err)
	}
	if want := "t{x[2]scalar|scalar}"; got.String() != want {
		t.Errorf("got %s, want %s", got, want)
	}
	if _, err := sig.Replace(s, func(s sig.Signature) (sig.Signature, error) {
		return nil, fmterr.Contractf("test", 'x', "cannot replace")
	}, 'x'); err == nil {
		t.Errorf("expected an error")
	}
}

func TestEqual(t *testing.T) {
	a := sig.NewAxis('x', length.Of(3), scalar)
	b := sig.NewAxis('x', length.Of(5), scalar)
	if !sig.Equal(a, b) {
		t.Errorf("%s and %s should be equal", a, b)
	}
	c := array('x', 3, scalar)
	if sig.Equal(a, c) {
		t.Errorf("%s and %s should not be equal", a, c)
	}
	if sig.Equal(array('x', 3, scalar), array('y', 3, scalar)) {
		t.Errorf("different dims should not be equal")
	}
}

func TestCheckUnique(t *testing.T) {
	if err := sig.CheckUnique(array('x', 2, array('y', 3, scalar))); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	err := sig.CheckUnique(array('x', 2, array('x', 3, scalar)))
	if !fmterr.IsContract(err) {
		t.Errorf("got error %v, want a contract violation", err)
	}
	rec := &sig.Record{Dim: 't', Rets: []sig.Signature{
		array('x', 2, scalar),
		array('x', 3, scalar),
	}}
	if err := sig.CheckUnique(rec); err != nil {
		t.Errorf("unexpected error for the same dimension in two branches: %v", err)
	}
}

func TestUnion(t *testing.T) {
	xy := array('x', 20, array('y', 30, scalar))
	yz := array('y', 30, array('z', 40, scalar))
	xz := array('x', 20, array('z', 40, scalar))
	tests := []struct {
		sigs []sig.Signature
		want string
	}{
		{
			sigs: []sig.Signature{xy},
			want: "x[20]y[30]scalar",
		},
		{
			sigs: []sig.Signature{xy, yz},
			want: "z[40]x[20]y[30]scalar",
		},
		{
			sigs: []sig.Signature{xy, yz, xz},
			want: "z[40]x[20]y[30]scalar",
		},
		{
			sigs: []sig.Signature{scalar, array('a', 2, array('b', 3, scalar))},
			want: "a[2]b[3]scalar",
		},
	}
	for i, test := range tests {
		got, err := sig.Union(test.sigs...)
		if err != nil {
			t.Errorf("test %d: %v", i, err)
			continue
		}
		if got.String() != test.want {
			t.Errorf("test %d: got %s, want %s", i, got, test.want)
		}
	}
}

func TestUnionErrors(t *testing.T) {
	tests := [][]sig.Signature{
		nil,
		{array('x', 20, scalar), array('x', 21, scalar)},
		{array('x', 20, scalar), &sig.Record{Dim: 't', Rets: []sig.Signature{scalar}}},
	}
	for i, sigs := range tests {
		_, err := sig.Union(sigs...)
		if !fmterr.IsContract(err) {
			t.Errorf("test %d: got error %v, want a contract violation", i, err)
		}
	}
}
