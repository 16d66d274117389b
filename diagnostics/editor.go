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

// Position is an editor position: 0-based line and character.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// EditorDiagnostic is what a sink hands to an editor. Compiler
// coordinates are converted here and nowhere else.
type EditorDiagnostic struct {
	Range    Range  `json:"range"`
	Severity string `json:"severity"`
	Source   string `json:"source"`
	Message  string `json:"message"`
}

const editorSource = "cc"

// ToEditor converts 1-based compiler coordinates to a zero-width range at
// the caret.
func ToEditor(d Diagnostic) EditorDiagnostic {
	pos := Position{Line: toZeroBased(d.Line), Character: toZeroBased(d.Column)}
	return EditorDiagnostic{
		Range:    Range{Start: pos, End: pos},
		Severity: d.Severity.String(),
		Source:   editorSource,
		Message:  d.Message,
	}
}

func ToEditorList(list []Diagnostic) []EditorDiagnostic {
	out := make([]EditorDiagnostic, 0, len(list))
	for _, d := range list {
		out = append(out, ToEditor(d))
	}
	return out
}

func toZeroBased(n int) int {
	if n < 1 {
		return 0
	}
	return n - 1
}
