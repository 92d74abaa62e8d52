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
	"bytes"
	"io"
	"os"
	"os/exec"
	"strings"
)

type execJob struct {
	dir  string
	bin  string
	args []string
	out  io.Writer
}

func (j *execJob) command() *exec.Cmd {
	cmd := exec.Command(j.bin, j.args...)
	cmd.Dir = j.dir
	if j.out == nil {
		cmd.Stdout = os.Stdout
	} else {
		cmd.Stdout = j.out
	}
	cmd.Stderr = os.Stderr
	return cmd
}

func (j *execJob) String() string {
	return strings.Join(append([]string{j.bin}, j.args...), " ")
}

func runCmdOutput(dir, bin string, args ...string) ([]byte, error) {
	out := new(bytes.Buffer)
	j := &execJob{
		dir:  dir,
		bin:  bin,
		args: args,
		out:  out,
	}
	if err := j.command().Run(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
