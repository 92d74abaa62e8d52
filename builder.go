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
	"strings"

	"shanhu.io/virgo/dock"
)

// Builder builds the BPF program of a cargo package.
type Builder struct {
	config   *Config
	metadata MetadataProvider
	runner   Runner // When nil, picked from config.
}

// NewBuilder creates a new builder that queries metadata with cargo.
func NewBuilder(config *Config) *Builder {
	return newBuilder(config, new(CargoMetadata), nil)
}

func newBuilder(
	config *Config, metadata MetadataProvider, runner Runner,
) *Builder {
	return &Builder{
		config:   config,
		metadata: metadata,
		runner:   runner,
	}
}

// Inspect queries the root package's facts.
func (b *Builder) Inspect() (*PackageFacts, error) {
	return InspectPackage(b.metadata, b.config.ManifestPath)
}

// Plan inspects the package and returns the stages to run, without
// running any of them.
func (b *Builder) Plan() (*Plan, *PackageFacts, error) {
	facts, err := b.Inspect()
	if err != nil {
		return nil, nil, err
	}
	return MakePlan(b.config, facts), facts, nil
}

func (b *Builder) logConfig(facts *PackageFacts) {
	c := b.config
	log.Printf("BPF SDK: %s", c.SDK)
	if c.NoDefaultFeatures {
		log.Println("No default features")
	}
	if len(c.Features) > 0 {
		log.Printf("Features: %s", strings.Join(c.Features, " "))
	}
	if facts.LegacyProgram {
		log.Println("Legacy program feature detected")
	}
}

func (b *Builder) newRunner(facts *PackageFacts) (Runner, func()) {
	if b.runner != nil {
		return b.runner, func() {}
	}
	if b.config.Docker == "" {
		return NewLocalRunner(), func() {}
	}

	dirs := []string{b.config.SDK, facts.Dir, facts.TargetDir}
	r := NewContainerRunner(dock.NewUnixClient(""), b.config.Docker, dirs)
	return r, func() {
		if err := r.Close(); err != nil {
			log.Printf("remove container: %s", err)
		}
	}
}

// Build runs the build pipeline: build, then strip and dump when the
// package has a program. It stops at the first failed stage.
func (b *Builder) Build() error {
	plan, facts, err := b.Plan()
	if err != nil {
		return err
	}
	b.logConfig(facts)

	r, cleanup := b.newRunner(facts)
	defer cleanup()

	if err := RunPlan(r, plan); err != nil {
		return err
	}
	for _, note := range plan.Notes {
		log.Println(note)
	}
	return nil
}
