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
	"os"
	"path/filepath"

	"shanhu.io/misc/errcode"
	"shanhu.io/misc/jsonx"
	"shanhu.io/misc/osutil"
)

// Options are the overrides that a build configuration is resolved from.
// Zero values mean not set.
type Options struct {
	SDK               string   `json:",omitempty"` // BPF SDK root.
	Dump              bool     `json:",omitempty"`
	Features          []string `json:",omitempty"`
	ManifestPath      string   `json:",omitempty"` // Path to Cargo.toml.
	NoDefaultFeatures bool     `json:",omitempty"`
	Docker            string   `json:",omitempty"` // Image to run stages in.
}

// ReadOptionsFile reads build options from a jsonx file.
func ReadOptionsFile(f string) (*Options, error) {
	opts := new(Options)
	if err := jsonx.ReadFile(f, opts); err != nil {
		return nil, err
	}
	return opts, nil
}

// Merge returns a copy of opts overlaid by over. Strings and feature
// lists in over replace the ones in opts when set; booleans are or-ed.
func (opts *Options) Merge(over *Options) *Options {
	ret := *opts
	ret.Features = append([]string(nil), opts.Features...)
	if over == nil {
		return &ret
	}

	if over.SDK != "" {
		ret.SDK = over.SDK
	}
	if over.ManifestPath != "" {
		ret.ManifestPath = over.ManifestPath
	}
	if over.Docker != "" {
		ret.Docker = over.Docker
	}
	if len(over.Features) > 0 {
		ret.Features = append([]string(nil), over.Features...)
	}
	ret.Dump = ret.Dump || over.Dump
	ret.NoDefaultFeatures = ret.NoDefaultFeatures || over.NoDefaultFeatures
	return &ret
}

// Config is the resolved configuration of a build. It is not modified
// after ResolveConfig returns.
type Config struct {
	SDK               string   // Canonical path of the BPF SDK root.
	Dump              bool     // Dump ELF information after building.
	Features          []string // Features to activate, in request order.
	ManifestPath      string   // Empty means the Cargo.toml of the work dir.
	NoDefaultFeatures bool
	Docker            string
}

// DefaultSDK returns the default SDK location, which is "sdk/bpf" next to
// the running executable.
func DefaultSDK() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", errcode.Annotate(err, "get executable path")
	}
	return filepath.Join(filepath.Dir(exe), "sdk", "bpf"), nil
}

func canonicalDir(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	abs, err = filepath.EvalSymlinks(abs)
	if err != nil {
		return "", err
	}
	return abs, nil
}

// ResolveConfig resolves the build configuration from the options. It
// fails if the SDK path does not exist. Features and the manifest path are
// taken as is; cargo validates them later.
func ResolveConfig(opts *Options) (*Config, error) {
	sdk := opts.SDK
	if sdk == "" {
		def, err := DefaultSDK()
		if err != nil {
			return nil, err
		}
		sdk = def
	}

	canonical, err := canonicalDir(sdk)
	if err != nil {
		return nil, errcode.NotFoundf(
			"BPF SDK path does not exist: %s: %s", sdk, err,
		)
	}
	isDir, err := osutil.IsDir(canonical)
	if err != nil {
		return nil, errcode.Annotate(err, "check BPF SDK path")
	}
	if !isDir {
		return nil, errcode.InvalidArgf(
			"BPF SDK path is not a directory: %s", canonical,
		)
	}

	return &Config{
		SDK:               canonical,
		Dump:              opts.Dump,
		Features:          append([]string(nil), opts.Features...),
		ManifestPath:      opts.ManifestPath,
		NoDefaultFeatures: opts.NoDefaultFeatures,
		Docker:            opts.Docker,
	}, nil
}
