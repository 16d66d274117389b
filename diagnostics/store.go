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

package diagnostics

import (
	"path/filepath"
	"sync"

	"github.com/golang/glog"
	"golang.org/x/exp/slices"
)

type ChangeKind int

const (
	Cleared ChangeKind = iota
	FileReplaced
	FileCleared
)

// Change describes one mutation of a Store. File is empty for Cleared.
type Change struct {
	Kind ChangeKind
	File string
}

// Store is the diagnostics state a sink renders. One Store is created
// per session and handed to whoever reads or writes it.
//
// A save arriving between Clear and ReplaceAll of the same build can be
// overwritten by that ReplaceAll. The invalidation on save is optimistic
// and not transactional.
type Store struct {
	root string

	mutex       sync.Mutex
	byFile      map[string][]Diagnostic
	subscribers []func(Change)
}

// NewStore returns an empty store. root is the directory relative
// compiler paths are resolved against when matching saved files; it may
// be empty.
func NewStore(root string) *Store {
	return &Store{
		root:   root,
		byFile: make(map[string][]Diagnostic),
	}
}

// Subscribe registers fn to be called after every change. fn is called
// without the store lock held, so it may read the store.
func (s *Store) Subscribe(fn func(Change)) {
	s.mutex.Lock()
	s.subscribers = append(s.subscribers, fn)
	s.mutex.Unlock()
}

// Clear removes the diagnostics of every file. It is called at the start
// of each build attempt.
func (s *Store) Clear() {
	s.mutex.Lock()
	s.byFile = make(map[string][]Diagnostic)
	subs := s.subscribers
	s.mutex.Unlock()
	s.notify(subs, Change{Kind: Cleared})
}

// ReplaceAll sets, for each file in set, the stored list to exactly the
// list in set. Files not in set keep whatever they had.
func (s *Store) ReplaceAll(set *Set) {
	files := set.Files()
	s.mutex.Lock()
	for _, file := range files {
		s.byFile[file] = set.Get(file)
	}
	subs := s.subscribers
	s.mutex.Unlock()
	for _, file := range files {
		s.notify(subs, Change{Kind: FileReplaced, File: file})
	}
}

// ClearFile drops the diagnostics of one file. Clearing a file that has
// none is a no-op.
func (s *Store) ClearFile(path string) {
	s.mutex.Lock()
	key, ok := s.lookup(path)
	if ok {
		delete(s.byFile, key)
	}
	subs := s.subscribers
	s.mutex.Unlock()
	if ok {
		glog.V(1).Infof("cleared diagnostics of %s", key)
		s.notify(subs, Change{Kind: FileCleared, File: key})
	}
}

func (s *Store) HasDiagnostics(path string) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	_, ok := s.lookup(path)
	return ok
}

func (s *Store) Get(path string) []Diagnostic {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	key, ok := s.lookup(path)
	if !ok {
		return nil
	}
	out := make([]Diagnostic, len(s.byFile[key]))
	copy(out, s.byFile[key])
	return out
}

// Files returns the stored file keys, sorted.
func (s *Store) Files() []string {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	files := make([]string, 0, len(s.byFile))
	for file := range s.byFile {
		files = append(files, file)
	}
	slices.Sort(files)
	return files
}

func (s *Store) Len() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	n := 0
	for _, list := range s.byFile {
		n += len(list)
	}
	return n
}

// Snapshot copies the current contents into a Set ordered by file name.
func (s *Store) Snapshot() *Set {
	set := NewSet()
	for _, file := range s.Files() {
		for _, d := range s.Get(file) {
			set.Add(d)
		}
	}
	return set
}

// lookup finds the stored key for path: either the exact key, or a key
// that is relative and resolves against root to the same file.
// Must be called with the lock held.
func (s *Store) lookup(path string) (string, bool) {
	if _, ok := s.byFile[path]; ok {
		return path, true
	}
	target := s.resolve(path)
	for key := range s.byFile {
		if s.resolve(key) == target {
			return key, true
		}
	}
	return "", false
}

func (s *Store) resolve(path string) string {
	if !filepath.IsAbs(path) && s.root != "" {
		path = filepath.Join(s.root, path)
	}
	return filepath.Clean(path)
}

func (s *Store) notify(subs []func(Change), change Change) {
	for _, fn := range subs {
		fn(change)
	}
}
