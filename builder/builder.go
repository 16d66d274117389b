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

// Package builder invokes the C compiler over the sources of a workspace.
package builder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/golang/glog"
	"github.com/google/shlex"
	"naive.systems/easyc/easylib/basic"
	"naive.systems/easyc/easylib/options"
)

var (
	ErrNoWorkspace   = errors.New("no workspace")
	ErrNoSourceFiles = errors.New("no source files")
)

// BuildFailure is returned when the compiler exits non-zero. Stderr is
// the complete standard error of the invocation.
type BuildFailure struct {
	Command  string
	ExitCode int
	Stderr   string
	Sources  []string
}

func (f *BuildFailure) Error() string {
	return fmt.Sprintf("%s exited with code %d", f.Command, f.ExitCode)
}

// Discoverer lists the sources under root, relative to root.
type Discoverer interface {
	Files(root string) ([]string, error)
}

// ProcessRunner runs an external program to completion.
type ProcessRunner interface {
	Run(ctx context.Context, dir, name string, args ...string) (basic.Output, error)
}

// ExecRunner runs programs with os/exec. The binary is resolved before
// it is started so a missing compiler is reported clearly.
type ExecRunner struct {
	Timeout time.Duration
}

func (r ExecRunner) Run(ctx context.Context, dir, name string, args ...string) (basic.Output, error) {
	bin, err := basic.ResolveBinaryPath(name)
	if err != nil {
		return basic.Output{}, err
	}
	return basic.RunCommand(ctx, dir, r.Timeout, bin, args...)
}

type BuildOptions struct {
	// Debug adds -g so the artifact can be debugged.
	Debug bool
}

type Result struct {
	Artifact string
	Sources  []string
	Duration time.Duration
}

type Builder struct {
	discoverer Discoverer
	runner     ProcessRunner
	compiler   string
	flags      []string
	output     string
}

func New(config *options.Config, discoverer Discoverer, runner ProcessRunner) (*Builder, error) {
	flags, err := shlex.Split(config.CFlags)
	if err != nil {
		return nil, fmt.Errorf("shlex.Split %q: %v", config.CFlags, err)
	}
	return &Builder{
		discoverer: discoverer,
		runner:     runner,
		compiler:   config.Compiler,
		flags:      flags,
		output:     config.Output,
	}, nil
}

func (b *Builder) Compiler() string {
	return b.compiler
}

// Args is the compiler command line, without the compiler itself.
func (b *Builder) Args(sources []string, artifact string, opts BuildOptions) []string {
	args := append([]string{}, b.flags...)
	if opts.Debug {
		args = append(args, "-g")
	}
	args = append(args, sources...)
	return append(args, "-o", artifact)
}

// Build compiles every discovered source under root into one binary.
func (b *Builder) Build(ctx context.Context, root string, opts BuildOptions) (*Result, error) {
	if root == "" {
		return nil, ErrNoWorkspace
	}
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		glog.Warningf("workspace %s is not a directory: %v", root, err)
		return nil, ErrNoWorkspace
	}
	sources, err := b.discoverer.Files(root)
	if err != nil {
		return nil, fmt.Errorf("discover sources under %s: %v", root, err)
	}
	if len(sources) == 0 {
		return nil, ErrNoSourceFiles
	}
	artifact := basic.ConvertRelativePathToAbsolute(root, b.output)
	args := b.Args(sources, artifact, opts)
	command := b.compiler + " " + strings.Join(args, " ")

	startedAt := time.Now()
	out, err := b.runner.Run(ctx, root, b.compiler, args...)
	duration := time.Since(startedAt)
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			glog.Warningf("in %s, executing: %s, reported:\n%s", root, command, string(out.Stderr))
			return nil, &BuildFailure{Command: command, ExitCode: out.ExitCode, Stderr: string(out.Stderr), Sources: sources}
		}
		return nil, fmt.Errorf("run %s: %w", b.compiler, err)
	}
	if len(out.Stderr) > 0 {
		glog.Infof("compiler stderr:\n%s", string(out.Stderr))
	}
	return &Result{Artifact: artifact, Sources: sources, Duration: duration}, nil
}

// CompilerVersion returns the first line of "<compiler> --version", or
// an empty string when it cannot be run.
func CompilerVersion(ctx context.Context, compiler string) string {
	lines, err := basic.GetCommandStdoutLines(ctx, compiler, "--version")
	if err != nil || len(lines) == 0 {
		glog.Warningf("cannot get version of %s: %v", compiler, err)
		return ""
	}
	return lines[0]
}
