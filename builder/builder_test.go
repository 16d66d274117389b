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

package builder

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"reflect"
	"testing"

	"naive.systems/easyc/easylib/basic"
	"naive.systems/easyc/easylib/options"
)

type fakeDiscoverer struct {
	files []string
	err   error
}

func (d fakeDiscoverer) Files(root string) ([]string, error) {
	return d.files, d.err
}

type fakeRunner struct {
	stderr   string
	fail     bool
	runErr   error
	gotDir   string
	gotName  string
	gotArgs  []string
	numCalls int
}

func (r *fakeRunner) Run(ctx context.Context, dir, name string, args ...string) (basic.Output, error) {
	r.numCalls++
	r.gotDir, r.gotName, r.gotArgs = dir, name, args
	if r.runErr != nil {
		return basic.Output{}, r.runErr
	}
	out := basic.Output{Stderr: []byte(r.stderr)}
	if r.fail {
		out.ExitCode = 1
		return out, exec.Command("sh", "-c", "exit 1").Run()
	}
	return out, nil
}

func newTestBuilder(t *testing.T, cflags string, d Discoverer, r ProcessRunner) *Builder {
	t.Helper()
	config := options.DefaultConfig()
	config.CFlags = cflags
	b, err := New(config, d, r)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return b
}

func TestBuildSuccess(t *testing.T) {
	root := t.TempDir()
	runner := &fakeRunner{}
	b := newTestBuilder(t, `-Wall -DGREETING="hello world"`, fakeDiscoverer{files: []string{"a.c", "lib/b.c"}}, runner)
	result, err := b.Build(context.Background(), root, BuildOptions{Debug: true})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	artifact := filepath.Join(root, "a.out")
	if result.Artifact != artifact {
		t.Errorf("unexpected artifact %s", result.Artifact)
	}
	expectedArgs := []string{"-Wall", "-DGREETING=hello world", "-g", "a.c", "lib/b.c", "-o", artifact}
	if !reflect.DeepEqual(runner.gotArgs, expectedArgs) {
		t.Errorf("unexpected args %q, expected %q", runner.gotArgs, expectedArgs)
	}
	if runner.gotDir != root || runner.gotName != "cc" {
		t.Errorf("unexpected invocation dir %s name %s", runner.gotDir, runner.gotName)
	}
}

func TestBuildErrors(t *testing.T) {
	root := t.TempDir()
	for _, testCase := range [...]struct {
		name       string
		root       string
		discoverer fakeDiscoverer
		runner     *fakeRunner
		expected   error
	}{
		{
			name:     "empty root",
			root:     "",
			runner:   &fakeRunner{},
			expected: ErrNoWorkspace,
		},
		{
			name:     "missing root",
			root:     filepath.Join(root, "missing"),
			runner:   &fakeRunner{},
			expected: ErrNoWorkspace,
		},
		{
			name:     "no sources",
			root:     root,
			runner:   &fakeRunner{},
			expected: ErrNoSourceFiles,
		},
	} {
		t.Run(testCase.name, func(t *testing.T) {
			b := newTestBuilder(t, "", testCase.discoverer, testCase.runner)
			_, err := b.Build(context.Background(), testCase.root, BuildOptions{})
			if !errors.Is(err, testCase.expected) {
				t.Errorf("expected %v, got %v", testCase.expected, err)
			}
			if testCase.runner.numCalls != 0 {
				t.Errorf("compiler ran %d times", testCase.runner.numCalls)
			}
		})
	}
}

func TestBuildFailure(t *testing.T) {
	stderr := "main.c:4:10: error: expected ';' after expression\n"
	b := newTestBuilder(t, "", fakeDiscoverer{files: []string{"main.c"}}, &fakeRunner{stderr: stderr, fail: true})
	_, err := b.Build(context.Background(), t.TempDir(), BuildOptions{})
	var failure *BuildFailure
	if !errors.As(err, &failure) {
		t.Fatalf("expected *BuildFailure, got %v", err)
	}
	if failure.Stderr != stderr || failure.ExitCode != 1 {
		t.Errorf("unexpected failure %+v", failure)
	}
}

func TestBuildRunnerError(t *testing.T) {
	runErr := errors.New("exec: not found")
	b := newTestBuilder(t, "", fakeDiscoverer{files: []string{"main.c"}}, &fakeRunner{runErr: runErr})
	_, err := b.Build(context.Background(), t.TempDir(), BuildOptions{})
	var failure *BuildFailure
	if errors.As(err, &failure) || !errors.Is(err, runErr) {
		t.Errorf("expected a wrapped runner error, got %v", err)
	}
}

func TestNewRejectsUnterminatedQuote(t *testing.T) {
	config := options.DefaultConfig()
	config.CFlags = `-DNAME="oops`
	if _, err := New(config, fakeDiscoverer{}, &fakeRunner{}); err == nil {
		t.Errorf("expected an error for unbalanced quotes")
	}
}

func TestExecRunnerWithScriptCompiler(t *testing.T) {
	root := t.TempDir()
	compiler := filepath.Join(root, "fakecc")
	script := "#!/bin/sh\necho \"main.c:2:5: error: unknown type name 'nt'\" 1>&2\nexit 1\n"
	if err := os.WriteFile(compiler, []byte(script), 0755); err != nil {
		t.Fatalf("os.WriteFile: %v", err)
	}
	config := options.DefaultConfig()
	config.Compiler = compiler
	b, err := New(config, fakeDiscoverer{files: []string{"main.c"}}, ExecRunner{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = b.Build(context.Background(), root, BuildOptions{})
	var failure *BuildFailure
	if !errors.As(err, &failure) {
		t.Fatalf("expected *BuildFailure, got %v", err)
	}
	if failure.Stderr != "main.c:2:5: error: unknown type name 'nt'\n" {
		t.Errorf("unexpected stderr %q", failure.Stderr)
	}
}
