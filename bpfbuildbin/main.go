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
	"os"

	"shanhu.io/misc/subcmd"
)

const (
	nameBuildBPF = "build-bpf"
	namePlan     = "plan"
)

func cmd() *subcmd.List {
	c := subcmd.New()
	c.Add(nameBuildBPF, "builds the BPF program of a cargo package", cmdBuild)
	c.Add(namePlan, "prints the build stages without running them", cmdPlan)
	return c
}

// normalizeArgs makes "build-bpf" the default subcommand. When running as
// `cargo build-bpf`, cargo passes the subcommand name as the first
// argument already, followed by "plan" for `cargo build-bpf plan`.
func normalizeArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}
	if len(args) > 2 && args[1] == nameBuildBPF && args[2] == namePlan {
		// `cargo build-bpf plan ...`
		return append([]string{args[0]}, args[2:]...)
	}
	if len(args) > 1 {
		switch args[1] {
		case nameBuildBPF, namePlan:
			return args
		}
	}
	ret := []string{args[0], nameBuildBPF}
	return append(ret, args[1:]...)
}

// Main is the entrance for the cargo-build-bpf binary.
func Main() {
	os.Args = normalizeArgs(os.Args)
	cmd().Main()
}
