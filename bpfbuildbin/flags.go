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

package bpfbuildbin

import (
	"strings"

	"shanhu.io/bpfbuild"
	"shanhu.io/misc/errcode"
	"shanhu.io/misc/flagutil"
)

var cmdFlags = flagutil.NewFactory("cargo-build-bpf")

// featureList is a repeatable flag. Values are passed to the toolchain as
// given; cargo does its own splitting.
type featureList struct {
	features *[]string
}

func (l *featureList) String() string {
	if l.features == nil {
		return ""
	}
	return strings.Join(*l.features, " ")
}

func (l *featureList) Set(v string) error {
	*l.features = append(*l.features, v)
	return nil
}

type buildFlags struct {
	opts   *bpfbuild.Options
	config string
}

func declareBuildFlags(flags *flagutil.FlagSet) *buildFlags {
	f := &buildFlags{opts: new(bpfbuild.Options)}
	opts := f.opts

	flags.StringVar(
		&opts.SDK, "bpf-sdk", "",
		"path to the Solana BPF SDK; default is sdk/bpf next to "+
			"this executable",
	)
	flags.BoolVar(
		&opts.Dump, "dump", false,
		"dump ELF information to a text file on success",
	)
	flags.Var(
		&featureList{features: &opts.Features}, "features",
		"features to activate; repeatable",
	)
	flags.BoolVar(
		&opts.NoDefaultFeatures, "no-default-features", false,
		"do not activate the default feature",
	)
	flags.StringVar(&opts.ManifestPath, "manifest-path", "", "path to Cargo.toml")
	flags.StringVar(
		&opts.Docker, "docker", "",
		"docker image to run the build stages in",
	)
	flags.StringVar(&f.config, "config", "", "jsonx file of build options")
	return f
}

// resolve merges the options file, if any, with the flags and resolves
// the build config.
func (f *buildFlags) resolve() (*bpfbuild.Config, error) {
	base := new(bpfbuild.Options)
	if f.config != "" {
		opts, err := bpfbuild.ReadOptionsFile(f.config)
		if err != nil {
			return nil, errcode.Annotate(err, "read options file")
		}
		base = opts
	}
	return bpfbuild.ResolveConfig(base.Merge(f.opts))
}

func checkNoArgs(args []string) error {
	if len(args) > 0 {
		return errcode.InvalidArgf("unexpected arguments: %q", args)
	}
	return nil
}
