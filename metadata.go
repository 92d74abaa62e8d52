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
	"encoding/json"
	"os"
	"path/filepath"

	"shanhu.io/misc/errcode"
)

// Metadata is the part of the `cargo metadata` output that the builder
// reads.
type Metadata struct {
	Packages        []*Package `json:"packages"`
	WorkspaceRoot   string     `json:"workspace_root"`
	TargetDirectory string     `json:"target_directory"`
	Resolve         *Resolve   `json:"resolve"`
}

// Resolve is the dependency resolution section of the metadata.
type Resolve struct {
	Root string `json:"root"`
}

// Package is a cargo package.
type Package struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	ManifestPath string              `json:"manifest_path"`
	Targets      []*Target           `json:"targets"`
	Features     map[string][]string `json:"features"`
}

// Target is a build target of a cargo package.
type Target struct {
	Name       string   `json:"name"`
	Kind       []string `json:"kind"`
	CrateTypes []string `json:"crate_types"`
}

// RootPackage returns the root package of the workspace, or nil if the
// workspace is virtual.
func (m *Metadata) RootPackage() *Package {
	if m.Resolve != nil && m.Resolve.Root != "" {
		for _, p := range m.Packages {
			if p.ID == m.Resolve.Root {
				return p
			}
		}
		return nil
	}

	// Resolution is missing with --no-deps; match by manifest location.
	rootManifest := filepath.Join(m.WorkspaceRoot, "Cargo.toml")
	for _, p := range m.Packages {
		if filepath.Clean(p.ManifestPath) == rootManifest {
			return p
		}
	}
	return nil
}

func parseMetadata(bs []byte) (*Metadata, error) {
	m := new(Metadata)
	if err := json.Unmarshal(bs, m); err != nil {
		return nil, err
	}
	return m, nil
}

// MetadataProvider queries the metadata of a cargo project.
type MetadataProvider interface {
	// Metadata returns the metadata of the project. When manifestPath is
	// empty, the project of the current directory is used.
	Metadata(manifestPath string) (*Metadata, error)
}

// CargoMetadata is a MetadataProvider that runs `cargo metadata`.
type CargoMetadata struct {
	Cargo string // Cargo binary; $CARGO or "cargo" when empty.
	Dir   string // Directory to run cargo in; current one when empty.
}

func (c *CargoMetadata) cargo() string {
	if c.Cargo != "" {
		return c.Cargo
	}
	if v := os.Getenv("CARGO"); v != "" {
		return v
	}
	return "cargo"
}

// Metadata runs `cargo metadata` and parses its output.
func (c *CargoMetadata) Metadata(manifestPath string) (*Metadata, error) {
	args := []string{"metadata", "--format-version", "1"}
	if manifestPath != "" {
		args = append(args, "--manifest-path", manifestPath)
	}

	out, err := runCmdOutput(c.Dir, c.cargo(), args...)
	if err != nil {
		return nil, errcode.Annotate(err, "cargo metadata")
	}
	m, err := parseMetadata(out)
	if err != nil {
		return nil, errcode.Annotate(err, "parse cargo metadata")
	}
	return m, nil
}
