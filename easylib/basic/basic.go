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

/*
This package should not import any other package of this module.
*/
package basic

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang/glog"
)

// FormatTimeStamp is the prefix of user-facing progress lines.
func FormatTimeStamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

func FormatTimeDuration(d time.Duration) string {
	s := d / time.Second
	d -= s * time.Second
	ms := d / time.Millisecond
	if ms == 0 {
		return fmt.Sprintf("%ds", s)
	}
	return fmt.Sprintf("%d.%ss", s, strings.TrimRight(fmt.Sprintf("%03d", ms), "0"))
}

// Output is the result of a finished command. Stdout and Stderr are
// captured separately and only read after the process has exited.
type Output struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// ErrTimeout is returned by RunCommand when the timeout expired.
var ErrTimeout = errors.New("command timed out")

// RunCommand runs name with args in dir and waits for it. A timeout of
// zero waits forever. A non-zero exit is reported through both the
// returned *exec.ExitError and Output.ExitCode.
func RunCommand(ctx context.Context, dir string, timeout time.Duration, name string, args ...string) (Output, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	glog.Infof("in %s, executing: %s", dir, cmd.String())
	err := cmd.Run()
	out := Output{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if cmd.ProcessState != nil {
		out.ExitCode = cmd.ProcessState.ExitCode()
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return out, fmt.Errorf("%s: %w after %v", name, ErrTimeout, timeout)
	}
	return out, err
}

// GetCommandStdoutLines runs the command and returns its combined output
// split into lines.
func GetCommandStdoutLines(ctx context.Context, name string, args ...string) ([]string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("cmd.CombinedOutput: %v", err)
	}
	return strings.Split(strings.TrimRight(string(out), "\n"), "\n"), nil
}

func ResolveBinaryPath(binPath string) (string, error) {
	if filepath.IsAbs(binPath) {
		if _, err := os.Stat(binPath); err != nil {
			return binPath, fmt.Errorf("when resolving %s, os.Stat failed: %v", binPath, err)
		}
		return binPath, nil
	}
	// exec.LookPath will silently allow relative path, so we manually check it.
	if strings.Contains(binPath, string(filepath.Separator)) {
		absBinPath, err := filepath.Abs(binPath)
		if err != nil {
			return binPath, fmt.Errorf("when resolving %s, failed to convert to abs path: %v", binPath, err)
		}
		if _, err := os.Stat(absBinPath); err != nil {
			return absBinPath, fmt.Errorf("when resolving %s, os.Stat failed: %v", binPath, err)
		}
		return absBinPath, nil
	}
	path, err := exec.LookPath(binPath)
	if err != nil {
		return binPath, fmt.Errorf("when resolving %s, not found in $PATH: %v", binPath, err)
	}
	return path, nil
}

func ConvertRelativePathToAbsolute(dir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}
