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

// Set groups the diagnostics of one build attempt by file. It preserves
// the order in which files were first seen and, within a file, the order
// of the input. A file is present only if it has at least one diagnostic.
type Set struct {
	order  []string
	byFile map[string][]Diagnostic
}

func NewSet() *Set {
	return &Set{byFile: make(map[string][]Diagnostic)}
}

func (s *Set) Add(d Diagnostic) {
	if _, seen := s.byFile[d.File]; !seen {
		s.order = append(s.order, d.File)
	}
	s.byFile[d.File] = append(s.byFile[d.File], d)
}

// Files returns the file keys in first-seen order.
func (s *Set) Files() []string {
	files := make([]string, len(s.order))
	copy(files, s.order)
	return files
}

func (s *Set) Get(file string) []Diagnostic {
	list := s.byFile[file]
	if list == nil {
		return nil
	}
	out := make([]Diagnostic, len(list))
	copy(out, list)
	return out
}

// Len is the total number of diagnostics across all files.
func (s *Set) Len() int {
	n := 0
	for _, list := range s.byFile {
		n += len(list)
	}
	return n
}

// Empty reports that no compiler diagnostic was recognised. Callers treat
// this as "the failure was something else" and show the raw text.
func (s *Set) Empty() bool {
	return len(s.order) == 0
}

// All flattens the set in file order.
func (s *Set) All() []Diagnostic {
	var all []Diagnostic
	for _, file := range s.order {
		all = append(all, s.byFile[file]...)
	}
	return all
}
