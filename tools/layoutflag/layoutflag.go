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

// Package layoutflag provides flag types for layout tools.
package layoutflag

import (
	"flag"
	"strings"

	"github.com/gx-org/layout/dim"
)

type stringList struct {
	list *[]string
}

func (sl *stringList) String() string {
	if sl.list == nil {
		return ""
	}
	return strings.Join(*sl.list, ",")
}

func (sl *stringList) Set(values string) error {
	for _, value := range strings.Split(values, ",") {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		*sl.list = append(*sl.list, value)
	}
	return nil
}

// StringListVar defines a flag in a flag set to pass a list of strings.
// Values are separated by commas and the flag can be repeated.
func StringListVar(fs *flag.FlagSet, name, doc string) *[]string {
	var list []string
	fs.Var(&stringList{&list}, name, doc)
	return &list
}

// StringList returns a flag to pass a list of string from the command line.
func StringList(name, doc string) *[]string {
	return StringListVar(flag.CommandLine, name, doc)
}

type dimList struct {
	list *dim.List
}

func (dl *dimList) String() string {
	if dl.list == nil {
		return ""
	}
	return dl.list.String()
}

func (dl *dimList) Set(values string) error {
	var sl []string
	if err := (&stringList{&sl}).Set(values); err != nil {
		return err
	}
	next := append(dim.List{}, *dl.list...)
	for _, value := range sl {
		dims, err := dim.Parse(value)
		if err != nil {
			return err
		}
		next = append(next, dims...)
	}
	if err := next.Unique(); err != nil {
		return err
	}
	*dl.list = next
	return nil
}

// DimListVar defines a flag in a flag set to pass a list of dimensions,
// either as a word ("xyz") or separated by commas ("x,y,z").
func DimListVar(fs *flag.FlagSet, name, doc string) *dim.List {
	var list dim.List
	fs.Var(&dimList{&list}, name, doc)
	return &list
}

// DimList returns a flag to pass a list of dimensions from the command line.
func DimList(name, doc string) *dim.List {
	return DimListVar(flag.CommandLine, name, doc)
}
