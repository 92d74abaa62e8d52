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
)

// Runner runs a pipeline stage and waits for it to finish. A stage that
// cannot start or exits with a non-zero status gives a *StageError.
type Runner interface {
	Run(s *Stage) error
}

// LocalRunner runs stages as local processes.
type LocalRunner struct{}

// NewLocalRunner creates a runner that runs stages on the host.
func NewLocalRunner() *LocalRunner { return new(LocalRunner) }

// Run runs the stage's program in the stage's directory.
func (r *LocalRunner) Run(s *Stage) error {
	j := &execJob{
		dir:  s.Dir,
		bin:  s.Program,
		args: s.Args,
	}
	log.Printf("Running: %s", j)

	cmd := j.command()
	if err := cmd.Start(); err != nil {
		return &StageError{Stage: s.Name, Program: s.Program, Err: err}
	}
	if err := cmd.Wait(); err != nil {
		return &StageError{
			Stage:   s.Name,
			Program: s.Program,
			Started: true,
			Err:     err,
		}
	}
	return nil
}

// RunPlan runs the stages of the plan in order, and stops at the first
// failure.
func RunPlan(r Runner, plan *Plan) error {
	for _, s := range plan.Stages {
		if err := r.Run(s); err != nil {
			return err
		}
	}
	return nil
}
