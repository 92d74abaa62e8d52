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
	"fmt"
	"log"
	"os"

	"shanhu.io/misc/errcode"
	"shanhu.io/misc/strutil"
	"shanhu.io/virgo/dock"
)

func exitError(exit int) error {
	if exit == 0 {
		return nil
	}
	return fmt.Errorf("exit with code: %d", exit)
}

// ContainerRunner runs stages inside a docker container. The container is
// created on the first stage and kept until Close.
type ContainerRunner struct {
	client *dock.Client
	image  string
	dirs   []string
	cont   *dock.Cont
}

// NewContainerRunner creates a runner that runs stages in a container of
// image. Each of dirs is mounted into the container at the same path.
func NewContainerRunner(
	client *dock.Client, image string, dirs []string,
) *ContainerRunner {
	return &ContainerRunner{
		client: client,
		image:  image,
		dirs:   append([]string(nil), dirs...),
	}
}

func (r *ContainerRunner) mounts() []*dock.ContMount {
	var mounts []*dock.ContMount
	for _, d := range strutil.SortedList(strutil.MakeSet(r.dirs)) {
		mounts = append(mounts, &dock.ContMount{Host: d, Cont: d})
	}
	return mounts
}

func (r *ContainerRunner) start() error {
	for _, d := range r.dirs {
		if err := os.MkdirAll(d, 0700); err != nil {
			return errcode.Annotatef(err, "make mount dir %q", d)
		}
	}

	config := &dock.ContConfig{
		Cmd:    []string{"sleep", "infinity"},
		Mounts: r.mounts(),
	}
	cont, err := dock.CreateCont(r.client, r.image, config)
	if err != nil {
		return errcode.Annotate(err, "create container")
	}
	if err := cont.Start(); err != nil {
		cont.Drop()
		return errcode.Annotate(err, "start container")
	}
	r.cont = cont
	return nil
}

// Run runs the stage as an exec in the container.
func (r *ContainerRunner) Run(s *Stage) error {
	if r.cont == nil {
		if err := r.start(); err != nil {
			return &StageError{Stage: s.Name, Program: s.Program, Err: err}
		}
	}

	j := &execJob{
		bin:  s.Program,
		args: s.Args,
	}
	log.Printf("Running: %s (in %s)", j, r.image)

	exit, err := r.cont.ExecWithSetup(&dock.ExecSetup{
		Cmd:        append([]string{j.bin}, j.args...),
		WorkingDir: s.Dir,
	})
	return execStageError(s, exit, err)
}

// execStageError maps the result of a container exec to the stage's error.
func execStageError(s *Stage, exit int, err error) error {
	if err != nil {
		return &StageError{Stage: s.Name, Program: s.Program, Err: err}
	}
	if exit != 0 {
		return &StageError{
			Stage:   s.Name,
			Program: s.Program,
			Started: true,
			Err:     exitError(exit),
		}
	}
	return nil
}

// Close removes the container, if it was created.
func (r *ContainerRunner) Close() error {
	if r.cont == nil {
		return nil
	}
	cont := r.cont
	r.cont = nil
	return cont.Drop()
}
