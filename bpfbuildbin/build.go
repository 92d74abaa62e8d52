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
	"encoding/json"
	"os"

	"shanhu.io/bpfbuild"
	"shanhu.io/misc/errcode"
	"shanhu.io/misc/jsonutil"
)

func cmdBuild(args []string) error {
	flags := cmdFlags.New()
	bf := declareBuildFlags(flags)
	args = flags.ParseArgs(args)
	if err := checkNoArgs(args); err != nil {
		return err
	}

	config, err := bf.resolve()
	if err != nil {
		return err
	}
	return bpfbuild.NewBuilder(config).Build()
}

func cmdPlan(args []string) error {
	flags := cmdFlags.New()
	bf := declareBuildFlags(flags)
	out := flags.String("out", "", "write the plan into this file")
	args = flags.ParseArgs(args)
	if err := checkNoArgs(args); err != nil {
		return err
	}

	config, err := bf.resolve()
	if err != nil {
		return err
	}
	plan, _, err := bpfbuild.NewBuilder(config).Plan()
	if err != nil {
		return err
	}

	if *out != "" {
		if err := jsonutil.WriteFile(*out, plan); err != nil {
			return errcode.Annotate(err, "write plan")
		}
		return nil
	}

	bs, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return errcode.Annotate(err, "marshal plan")
	}
	bs = append(bs, '\n')
	_, err = os.Stdout.Write(bs)
	return err
}
