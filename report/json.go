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

package report

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"sync"

	"github.com/golang/glog"
	"naive.systems/easyc/atomic"
	"naive.systems/easyc/diagnostics"
)

// Report is the editor-facing form of the store. Positions are 0-based
// and paths absolute.
type Report struct {
	BuildID string            `json:"build_id"`
	Root    string            `json:"root"`
	Files   []FileDiagnostics `json:"files"`
}

type FileDiagnostics struct {
	Path        string                         `json:"path"`
	Diagnostics []diagnostics.EditorDiagnostic `json:"diagnostics"`
}

func NewReport(buildID, root string, store *diagnostics.Store) Report {
	r := Report{BuildID: buildID, Root: root, Files: []FileDiagnostics{}}
	for _, file := range store.Files() {
		path := file
		if !filepath.IsAbs(path) {
			path = filepath.Join(root, path)
		}
		r.Files = append(r.Files, FileDiagnostics{
			Path:        path,
			Diagnostics: diagnostics.ToEditorList(store.Get(file)),
		})
	}
	return r
}

func Encode(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("json.Encode: %v", err)
	}
	return nil
}

// JSONFile keeps a report file in sync with a store, so an editor
// watching the file sees builds and save-clears.
type JSONFile struct {
	path  string
	root  string
	store *diagnostics.Store

	mutex   sync.Mutex
	buildID string
}

func NewJSONFile(path, root string, store *diagnostics.Store) *JSONFile {
	return &JSONFile{path: path, root: root, store: store}
}

// SetBuildID tags subsequent writes with the current build.
func (j *JSONFile) SetBuildID(buildID string) {
	j.mutex.Lock()
	j.buildID = buildID
	j.mutex.Unlock()
}

func (j *JSONFile) Write() error {
	j.mutex.Lock()
	defer j.mutex.Unlock()
	return atomic.WriteJSON(j.path, NewReport(j.buildID, j.root, j.store))
}

// Attach rewrites the file after every store change.
func (j *JSONFile) Attach() {
	j.store.Subscribe(func(diagnostics.Change) {
		if err := j.Write(); err != nil {
			glog.Errorf("failed to write %s: %v", j.path, err)
		}
	})
}
