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
	"path/filepath"
)

// Names of the pipeline stages.
const (
	StageBuild = "build"
	StageStrip = "strip"
	StageDump  = "dump"
)

// Stage is one external tool invocation of the pipeline.
type Stage struct {
	Name    string
	Program string
	Args    []string
	Dir     string // Working directory of the program.

	Input  string `json:",omitempty"` // Unstripped artifact.
	Output string `json:",omitempty"` // Relative to Dir.
}

// Plan is the ordered list of stages of a build.
type Plan struct {
	Stages []*Stage
	Notes  []string `json:",omitempty"`
}

const noteDumpNoProgram = "Note: --dump is only available for crates " +
	"with a cdylib target"

func (c *Config) xargoBuild() string {
	return filepath.Join(c.SDK, "rust", "xargo-build.sh")
}

func (c *Config) script(name string) string {
	return filepath.Join(c.SDK, "scripts", name)
}

func buildArgs(c *Config, f *PackageFacts) []string {
	args := []string{}
	if c.NoDefaultFeatures {
		args = append(args, "--no-default-features")
	}
	for _, feature := range c.Features {
		args = append(args, "--features", feature)
	}
	if f.LegacyProgram {
		if !c.NoDefaultFeatures {
			args = append(args, "--no-default-features")
		}
		args = append(args, "--features=program")
	}
	return args
}

// MakePlan computes the stages to run for the package. It does not touch
// the filesystem, so the same inputs always give the same plan.
func MakePlan(c *Config, f *PackageFacts) *Plan {
	plan := &Plan{
		Stages: []*Stage{{
			Name:    StageBuild,
			Program: c.xargoBuild(),
			Args:    buildArgs(c, f),
			Dir:     f.Dir,
		}},
	}

	if f.Program == "" {
		if c.Dump {
			plan.Notes = append(plan.Notes, noteDumpNoProgram)
		}
		return plan
	}

	unstripped := filepath.Join(f.OutDir, f.Program+".so")
	so := f.Program + ".so"
	plan.Stages = append(plan.Stages, &Stage{
		Name:    StageStrip,
		Program: c.script("strip.sh"),
		Args:    []string{unstripped, so},
		Dir:     f.Dir,
		Input:   unstripped,
		Output:  so,
	})

	if c.Dump {
		dump := f.Program + "-dump.txt"
		plan.Stages = append(plan.Stages, &Stage{
			Name:    StageDump,
			Program: c.script("dump.sh"),
			Args:    []string{unstripped, dump},
			Dir:     f.Dir,
			Input:   unstripped,
			Output:  dump,
		})
	}
	return plan
}
