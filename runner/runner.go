/*
NaiveSystems Analyze - A tool for static code analysis
Copyright (C) 2023  Naive Systems Ltd.

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

// Package runner executes a built binary as a named task.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/golang/glog"
	"naive.systems/easyc/easylib/basic"
)

const Source = "Easy C"

// Task is one execution of a program, shown to the user under Name.
type Task struct {
	Name    string
	Source  string
	Command string
	Args    []string
	Dir     string
}

func (t Task) String() string {
	return strings.TrimSpace(t.Command + " " + strings.Join(t.Args, " "))
}

// TaskError reports a task that ran and exited non-zero.
type TaskError struct {
	Task     Task
	ExitCode int
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("task %q exited with code %d", e.Task.Name, e.ExitCode)
}

func RunTask(artifact, dir string, args []string) Task {
	return Task{
		Name:    "Run C",
		Source:  Source,
		Command: artifact,
		Args:    args,
		Dir:     dir,
	}
}

// DebugTask starts artifact under debugger, e.g. "gdb --args a.out".
func DebugTask(debugger string, debuggerArgs []string, artifact, dir string, args []string) Task {
	all := append([]string{}, debuggerArgs...)
	all = append(all, artifact)
	all = append(all, args...)
	return Task{
		Name:    "Debug C",
		Source:  Source,
		Command: debugger,
		Args:    all,
		Dir:     dir,
	}
}

// Runner starts tasks attached to the given streams.
type Runner struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

func (r *Runner) Run(ctx context.Context, task Task) error {
	bin, err := basic.ResolveBinaryPath(task.Command)
	if err != nil {
		return fmt.Errorf("task %q: %v", task.Name, err)
	}
	cmd := exec.CommandContext(ctx, bin, task.Args...)
	cmd.Dir = task.Dir
	cmd.Stdin = r.Stdin
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	glog.Infof("[%s] %s: executing %s", task.Source, task.Name, cmd.String())
	startedAt := time.Now()
	err = cmd.Run()
	glog.Infof("[%s] %s finished in %s", task.Source, task.Name, basic.FormatTimeDuration(time.Since(startedAt)))
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &TaskError{Task: task, ExitCode: exitErr.ExitCode()}
	}
	return err
}
