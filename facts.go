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
	"log"
	"path/filepath"
	"strings"

	"shanhu.io/misc/errcode"
)

const (
	cdylibCrateType      = "cdylib"
	legacyProgramFeature = "program"
	bpfReleaseDir        = "bpfel-unknown-unknown/release"
)

// PackageFacts are what the builder learns from the root package's
// metadata.
type PackageFacts struct {
	Name          string   // Root package name.
	Targets       []string // Names of the cdylib targets, in order.
	Program       string   // Program name; empty when there is no cdylib.
	LegacyProgram bool     // If the legacy "program" feature is declared.
	Dir           string   // Directory of the package's Cargo.toml.
	TargetDir     string   // Cargo's shared target directory.
	OutDir        string   // Where the toolchain writes the unstripped .so.
}

// InspectPackage queries the metadata and derives the facts of the root
// package.
func InspectPackage(p MetadataProvider, manifestPath string) (
	*PackageFacts, error,
) {
	m, err := p.Metadata(manifestPath)
	if err != nil {
		return nil, &MetadataError{Err: err}
	}
	return packageFacts(m)
}

func cdylibTargets(pkg *Package) []string {
	var names []string
	for _, t := range pkg.Targets {
		for _, typ := range t.CrateTypes {
			if typ == cdylibCrateType {
				names = append(names, t.Name)
				break
			}
		}
	}
	return names
}

// programName picks the program from the cdylib targets. Having no cdylib
// is fine; having more than one is an error.
func programName(pkg string, targets []string) (string, error) {
	switch len(targets) {
	case 0:
		return "", nil
	case 1:
		return strings.ReplaceAll(targets[0], "-", "_"), nil
	}
	return "", &AmbiguousTargetError{
		Package: pkg,
		Targets: append([]string(nil), targets...),
	}
}

func packageFacts(m *Metadata) (*PackageFacts, error) {
	root := m.RootPackage()
	if root == nil {
		return nil, &MetadataError{Err: errcode.NotFoundf(
			"workspace does not have a root package: %s", m.WorkspaceRoot,
		)}
	}

	targets := cdylibTargets(root)
	program, err := programName(root.Name, targets)
	if err != nil {
		return nil, err
	}
	if program == "" {
		log.Printf(
			"Note: %s crate does not contain a cdylib target", root.Name,
		)
	}

	_, legacy := root.Features[legacyProgramFeature]

	return &PackageFacts{
		Name:          root.Name,
		Targets:       targets,
		Program:       program,
		LegacyProgram: legacy,
		Dir:           filepath.Dir(root.ManifestPath),
		TargetDir:     m.TargetDirectory,
		OutDir: filepath.Join(
			m.TargetDirectory, filepath.FromSlash(bpfReleaseDir),
		),
	}, nil
}
