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

// Package watch turns file saves into session events.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/golang/glog"
	"golang.org/x/sync/errgroup"
	"naive.systems/easyc/session"
)

type Session interface {
	Root() string
	OnSave(path string)
	Build(ctx context.Context, mode session.Mode) session.Outcome
}

// Matcher decides whether a root-relative, slash separated path is a
// watched source file.
type Matcher interface {
	Includes(root, rel string) bool
}

type Watcher struct {
	session  Session
	matcher  Matcher
	rebuild  bool
	debounce time.Duration

	// OnBuild, if set, is called after each rebuild triggered by a save.
	OnBuild func(session.Outcome)

	// saves carries paths to the rebuild loop
	saves chan string
}

func New(s Session, matcher Matcher, rebuild bool, debounce time.Duration) *Watcher {
	return &Watcher{
		session:  s,
		matcher:  matcher,
		rebuild:  rebuild,
		debounce: debounce,
		saves:    make(chan string, 64),
	}
}

// Run watches until ctx is cancelled. It returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify.NewWatcher: %v", err)
	}
	defer fw.Close()
	if err := w.addDirs(fw, w.session.Root()); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case event, ok := <-fw.Events:
				if !ok {
					return nil
				}
				if event.Has(fsnotify.Create) {
					if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
						if err := w.addDirs(fw, event.Name); err != nil {
							glog.Warningf("cannot watch %s: %v", event.Name, err)
						}
						continue
					}
				}
				w.handle(event)
			case err, ok := <-fw.Errors:
				if !ok {
					return nil
				}
				glog.Warningf("watch error: %v", err)
			}
		}
	})
	if w.rebuild {
		g.Go(func() error {
			return w.rebuildLoop(ctx)
		})
	}
	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// handle reports a saved source file to the session and queues a
// rebuild.
func (w *Watcher) handle(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}
	root := w.session.Root()
	rel, err := filepath.Rel(root, event.Name)
	if err != nil || strings.HasPrefix(rel, "..") {
		return
	}
	if !w.matcher.Includes(root, filepath.ToSlash(rel)) {
		return
	}
	glog.V(1).Infof("saved %s", event.Name)
	w.session.OnSave(event.Name)
	if !w.rebuild {
		return
	}
	select {
	case w.saves <- event.Name:
	default:
		// a rebuild is already queued
	}
}

// rebuildLoop builds once no save has arrived for the debounce period.
func (w *Watcher) rebuildLoop(ctx context.Context) error {
	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return ctx.Err()
		case <-w.saves:
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.debounce)
			fire = timer.C
		case <-fire:
			fire = nil
			outcome := w.session.Build(ctx, session.ModeBuild)
			if w.OnBuild != nil {
				w.OnBuild(outcome)
			}
		}
	}
}

func (w *Watcher) addDirs(fw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := fw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %v", path, err)
		}
		return nil
	})
}
