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
Package session runs one build-and-diagnose cycle at a time and reacts to
saved files.

A cycle clears the diagnostics store, invokes the compiler and then
either hands the artifact to the task runner or turns the compiler's
stderr into diagnostics. When stderr holds nothing that looks like a
compiler diagnostic, the raw text is shown as a plain error so a failure
is never silent.
*/
package session

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/google/uuid"
	"golang.org/x/text/message"
	"naive.systems/easyc/builder"
	"naive.systems/easyc/diagnostics"
	"naive.systems/easyc/easylib/basic"
	"naive.systems/easyc/easylib/i18n"
	"naive.systems/easyc/easylib/options"
	"naive.systems/easyc/easylib/stats"
	"naive.systems/easyc/runner"
)

type Mode int

const (
	ModeBuild Mode = iota
	ModeRun
	ModeDebug
)

// Notifier shows messages to the user.
type Notifier interface {
	Info(msg string)
	Error(msg string)
}

type Builder interface {
	Build(ctx context.Context, root string, opts builder.BuildOptions) (*builder.Result, error)
	Compiler() string
}

type TaskRunner interface {
	Run(ctx context.Context, task runner.Task) error
}

// Outcome describes one cycle. Exactly one of Result, Diagnostics and
// Err is set, except that Err may accompany Result when the task failed.
type Outcome struct {
	BuildID     string
	Result      *builder.Result
	Diagnostics *diagnostics.Set
	Err         error
}

func (o Outcome) Succeeded() bool {
	return o.Result != nil
}

type Session struct {
	root     string
	config   *options.Config
	store    *diagnostics.Store
	builder  Builder
	runner   TaskRunner
	notifier Notifier
	printer  *message.Printer

	// one cycle at a time
	mutex sync.Mutex
}

func New(root string, config *options.Config, store *diagnostics.Store, b Builder, r TaskRunner, n Notifier) *Session {
	return &Session{
		root:     root,
		config:   config,
		store:    store,
		builder:  b,
		runner:   r,
		notifier: n,
		printer:  i18n.GetPrinter(config.Lang),
	}
}

func (s *Session) Root() string {
	return s.root
}

func (s *Session) Store() *diagnostics.Store {
	return s.store
}

// Build runs one cycle. It never returns an error: every failure ends up
// either in the store or in the notifier.
func (s *Session) Build(ctx context.Context, mode Mode) Outcome {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	outcome := Outcome{BuildID: uuid.NewString()}
	startedAt := time.Now()
	glog.Infof("build %s started in %s", outcome.BuildID, s.root)

	s.store.Clear()
	result, err := s.builder.Build(ctx, s.root, builder.BuildOptions{Debug: mode == ModeDebug})
	summary := stats.Summary{BuildID: outcome.BuildID, Root: s.root, StartedAt: startedAt}

	var failure *builder.BuildFailure
	switch {
	case err == nil:
		outcome.Result = result
		summary.Status = stats.StatusSucceeded
		summary.Artifact = result.Artifact
		summary.Sources = len(result.Sources)
		summary.LinesOfCode = s.countLines(result.Sources)
		glog.Info(s.printer.Sprintf(i18n.MsgCompiled, len(result.Sources), s.builder.Compiler()))
		s.notifier.Info(s.printer.Sprintf(i18n.MsgBuildSucceeded, result.Artifact, basic.FormatTimeDuration(result.Duration)))
	case errors.Is(err, builder.ErrNoWorkspace):
		outcome.Err = err
		summary.Status = stats.StatusError
		summary.Message = s.printer.Sprintf(i18n.MsgNoWorkspace)
		s.notifier.Error(summary.Message)
	case errors.Is(err, builder.ErrNoSourceFiles):
		outcome.Err = err
		summary.Status = stats.StatusError
		summary.Message = s.printer.Sprintf(i18n.MsgNoSourceFiles, s.root)
		s.notifier.Error(summary.Message)
	case errors.As(err, &failure):
		summary.Status = stats.StatusFailed
		summary.Sources = len(failure.Sources)
		summary.LinesOfCode = s.countLines(failure.Sources)
		glog.Info(s.printer.Sprintf(i18n.MsgCompiled, len(failure.Sources), s.builder.Compiler()))
		set := diagnostics.Parse(failure.Stderr)
		if set.Empty() {
			// Not a compiler diagnostic, e.g. a linker error.
			outcome.Err = failure
			raw := strings.TrimSpace(failure.Stderr)
			if raw == "" {
				raw = failure.Error()
			}
			glog.Errorf("build %s failed without diagnostics:\n%s", outcome.BuildID, failure.Stderr)
			summary.Message = s.printer.Sprintf(i18n.MsgBuildFailed, raw)
			s.notifier.Error(summary.Message)
			break
		}
		outcome.Diagnostics = set
		s.store.ReplaceAll(set)
		summary.Diagnostics = set.Len()
		summary.Files = len(set.Files())
		glog.Infof("build %s: %d diagnostics in %d files", outcome.BuildID, set.Len(), len(set.Files()))
		s.notifier.Info(s.printer.Sprintf(i18n.MsgDiagnostics, set.Len(), len(set.Files())))
	default:
		outcome.Err = err
		summary.Status = stats.StatusError
		summary.Message = s.printer.Sprintf(i18n.MsgBuildFailed, err.Error())
		glog.Errorf("build %s: %v", outcome.BuildID, err)
		s.notifier.Error(summary.Message)
	}

	summary.Duration = basic.FormatTimeDuration(time.Since(startedAt))
	if s.config.ResultsDir != "" {
		stats.WriteSummary(s.config.ResultsDir, summary)
	}
	return outcome
}

// BuildAndRun builds and, on success, runs or debugs the artifact. The
// task runs after the build lock is released.
func (s *Session) BuildAndRun(ctx context.Context, mode Mode) Outcome {
	outcome := s.Build(ctx, mode)
	if !outcome.Succeeded() || mode == ModeBuild {
		return outcome
	}
	var task runner.Task
	if mode == ModeDebug {
		task = runner.DebugTask(s.config.Debugger, s.config.DebuggerArgs, outcome.Result.Artifact, s.root, s.config.RunArgs)
	} else {
		task = runner.RunTask(outcome.Result.Artifact, s.root, s.config.RunArgs)
	}
	s.notifier.Info(s.printer.Sprintf(i18n.MsgRunningTask, task.Name, task.String()))
	if err := s.runner.Run(ctx, task); err != nil {
		outcome.Err = fmt.Errorf("build %s: %w", outcome.BuildID, err)
		glog.Warningf("%v", outcome.Err)
		s.notifier.Error(s.printer.Sprintf(i18n.MsgTaskFailed, task.Name, err.Error()))
	}
	return outcome
}

// OnSave drops the diagnostics of a saved file on the assumption that
// the edit may have fixed them. The next build reports them again if
// not. Saving a file without diagnostics does nothing.
func (s *Session) OnSave(path string) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.root, path)
	}
	if !s.store.HasDiagnostics(path) {
		return
	}
	s.store.ClearFile(path)
	glog.Info(s.printer.Sprintf(i18n.MsgClearedFile, path))
}

func (s *Session) countLines(sources []string) int {
	if s.config.ResultsDir == "" || len(sources) == 0 {
		return 0
	}
	lines, err := stats.CountLines(s.root, sources)
	if err != nil {
		return 0
	}
	return lines
}
