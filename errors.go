// Copyright (C) 2022  Shanhu Tech Inc.
//
// This program is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the
// Free Software Foundation, either version 3 of the License, or (at your
// option) any later version.
//
// This program is distributed in the hope that it will be useful, but WITHOUT
// ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
// FITNESS FOR A PARTICULAR PURPOSE.  See the GNU Affero General Public License
// for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package bpfbuild

import (
	"fmt"
	"strings"
)

// MetadataError is returned when the package metadata cannot be obtained,
// or when it has no root package.
type MetadataError struct {
	Err error
}

func (e *MetadataError) Error() string {
	return "package metadata: " + e.Err.Error()
}

func (e *MetadataError) Unwrap() error { return e.Err }

// AmbiguousTargetError is returned when the root package declares more
// than one cdylib target, so it is unclear which program to post-process.
type AmbiguousTargetError struct {
	Package string
	Targets []string // In declaration order.
}

func (e *AmbiguousTargetError) Error() string {
	return fmt.Sprintf(
		"%s crate contains multiple cdylib targets: %s",
		e.Package, strings.Join(e.Targets, ", "),
	)
}

// StageError is returned when a pipeline stage fails to start or exits
// with a non-zero status.
type StageError struct {
	Stage   string
	Program string
	Started bool // False when the program could not be executed at all.
	Err     error
}

func (e *StageError) Error() string {
	if !e.Started {
		return fmt.Sprintf(
			"%s: failed to execute %s: %s", e.Stage, e.Program, e.Err,
		)
	}
	return fmt.Sprintf("%s: %s failed: %s", e.Stage, e.Program, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }
