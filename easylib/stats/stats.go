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

package stats

import (
	"path/filepath"
	"time"

	"github.com/golang/glog"
	"github.com/hhatto/gocloc"
	"naive.systems/easyc/atomic"
)

const SummaryFileName = "build_summary.json"

// Build outcomes recorded in a Summary.
const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
	StatusError     = "error"
)

type Summary struct {
	BuildID     string    `json:"build_id"`
	Root        string    `json:"root"`
	Status      string    `json:"status"`
	StartedAt   time.Time `json:"started_at"`
	Duration    string    `json:"duration"`
	Sources     int       `json:"sources"`
	LinesOfCode int       `json:"lines_of_code"`
	Diagnostics int       `json:"diagnostics"`
	Files       int       `json:"files_with_diagnostics"`
	Artifact    string    `json:"artifact,omitempty"`
	Message     string    `json:"message,omitempty"`
}

// CountLines returns the lines of C code in the given files, which are
// relative to root.
func CountLines(root string, files []string) (int, error) {
	clocOpts := gocloc.NewClocOptions()
	languages := gocloc.NewDefinedLanguages()
	clocOpts.IncludeLangs["C"] = struct{}{}
	paths := make([]string, 0, len(files))
	for _, file := range files {
		paths = append(paths, filepath.Join(root, file))
	}
	processor := gocloc.NewProcessor(languages, clocOpts)
	result, err := processor.Analyze(paths)
	if err != nil {
		glog.Errorf("gocloc fail: %v", err)
		return 0, err
	}
	sum := 0
	for _, file := range result.Files {
		sum += int(file.Code)
	}
	return sum, nil
}

func WriteSummary(resultsDir string, summary Summary) {
	path := filepath.Join(resultsDir, SummaryFileName)
	if err := atomic.WriteJSON(path, summary); err != nil {
		glog.Errorf("failed to write to file %s: %v", path, err)
	}
}
