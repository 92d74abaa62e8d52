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
	"errors"
	"path/filepath"
)

type fakeMetadata struct {
	m   *Metadata
	err error

	manifestPath string
}

func (f *fakeMetadata) Metadata(manifestPath string) (*Metadata, error) {
	f.manifestPath = manifestPath
	if f.err != nil {
		return nil, f.err
	}
	return f.m, nil
}

type recordRunner struct {
	stages []*Stage
	failOn string
}

func (r *recordRunner) Run(s *Stage) error {
	r.stages = append(r.stages, s)
	if s.Name == r.failOn {
		return &StageError{
			Stage:   s.Name,
			Program: s.Program,
			Started: true,
			Err:     errors.New("exit with code: 1"),
		}
	}
	return nil
}

func (r *recordRunner) names() []string {
	var names []string
	for _, s := range r.stages {
		names = append(names, s.Name)
	}
	return names
}

var testWorkspace = filepath.FromSlash("/work/foo")

func cdylib(name string) *Target {
	return &Target{
		Name:       name,
		Kind:       []string{"cdylib"},
		CrateTypes: []string{"cdylib"},
	}
}

func testMetadata(features map[string][]string, targets ...*Target) *Metadata {
	return &Metadata{
		WorkspaceRoot:   testWorkspace,
		TargetDirectory: filepath.Join(testWorkspace, "target"),
		Resolve:         &Resolve{Root: "foo 0.1.0"},
		Packages: []*Package{{
			ID:           "foo 0.1.0",
			Name:         "foo",
			ManifestPath: filepath.Join(testWorkspace, "Cargo.toml"),
			Targets:      targets,
			Features:     features,
		}},
	}
}
