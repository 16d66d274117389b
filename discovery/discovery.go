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

// Package discovery finds the C sources of a workspace.
package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/golang/glog"
	ignore "github.com/sabhiram/go-gitignore"
	"golang.org/x/exp/slices"
)

var skipDirs = []string{
	".git",
	".hg",
	".svn",
	".vscode",
	".idea",
	"node_modules",
}

// Finder matches files under a root against doublestar patterns. Paths
// given to patterns are slash separated and relative to the root.
type Finder struct {
	Patterns []string
	Ignore   []string
}

func NewFinder(patterns, ignorePatterns []string) (*Finder, error) {
	for _, pattern := range append(append([]string{}, patterns...), ignorePatterns...) {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("malformed pattern %s", pattern)
		}
	}
	return &Finder{Patterns: patterns, Ignore: ignorePatterns}, nil
}

// Files returns the matching files relative to root, sorted. Hidden
// entries, VCS and editor directories and paths excluded by the root's
// .gitignore are skipped; build output directories are only skipped when
// .gitignore or the ignore patterns name them.
func (f *Finder) Files(root string) ([]string, error) {
	gi := loadGitignore(root)
	var files []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			glog.Warningf("skipping %s: %v", path, err)
			return nil
		}
		if path == root {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if skipped(gi, rel, true) {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type()&os.ModeSymlink != 0 || skipped(gi, rel, false) {
			return nil
		}
		if f.Match(rel) {
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("filepath.WalkDir: %v", err)
	}
	slices.Sort(files)
	return files, nil
}

// Includes reports whether a root-relative, slash separated path is one
// of the files Files(root) would return.
func (f *Finder) Includes(root, rel string) bool {
	gi := loadGitignore(root)
	parts := strings.Split(rel, "/")
	for i := 1; i < len(parts); i++ {
		if skipped(gi, strings.Join(parts[:i], "/"), true) {
			return false
		}
	}
	if skipped(gi, rel, false) {
		return false
	}
	if info, err := os.Lstat(filepath.Join(root, filepath.FromSlash(rel))); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return false
	}
	return f.Match(rel)
}

func skipped(gi *ignore.GitIgnore, rel string, dir bool) bool {
	name := rel[strings.LastIndex(rel, "/")+1:]
	if strings.HasPrefix(name, ".") {
		return true
	}
	if dir {
		if slices.Contains(skipDirs, name) {
			return true
		}
		rel += "/"
	}
	return gi != nil && gi.MatchesPath(rel)
}

// Match reports whether a root-relative, slash separated path is a source
// file of the workspace.
func (f *Finder) Match(rel string) bool {
	matched := false
	for _, pattern := range f.Patterns {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}
	for _, pattern := range f.Ignore {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			glog.Infof("Source file %s ignored due to pattern %s", rel, pattern)
			return false
		}
	}
	return true
}

func loadGitignore(root string) *ignore.GitIgnore {
	gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}
	return gi
}
