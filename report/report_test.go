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
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"naive.systems/easyc/diagnostics"
)

func TestTerminalRender(t *testing.T) {
	root := t.TempDir()
	source := "int helper(void)\n{\n\treturn 1;\n}\n"
	if err := os.WriteFile(filepath.Join(root, "main.c"), []byte(source), 0644); err != nil {
		t.Fatalf("os.WriteFile: %v", err)
	}
	var out bytes.Buffer
	term := NewTerminal(&out, root, "off")
	term.Render(diagnostics.Parse("main.c:3:10: error: expected ';' before '}' token\nother.c:1:1: error: missing\n"))

	expected := "main.c:3:10: error: expected ';' before '}' token (in function 'helper')\n" +
		"other.c:1:1: error: missing\n"
	if diff := cmp.Diff(expected, out.String()); diff != "" {
		t.Errorf("unexpected output (-want +got):\n%s", diff)
	}
}

func TestTerminalAttach(t *testing.T) {
	var out bytes.Buffer
	store := diagnostics.NewStore("")
	NewTerminal(&out, "", "off").Attach(store)
	store.ReplaceAll(diagnostics.Parse("a.c:1:1: error: x\n"))
	store.ClearFile("a.c")
	if out.String() != "a.c: diagnostics cleared until the next build\n" {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestNewReport(t *testing.T) {
	store := diagnostics.NewStore("/work")
	store.ReplaceAll(diagnostics.Parse("src/main.c:4:10: error: expected ';' after expression\n/abs/x.c:1:1: error: y\n"))
	r := NewReport("id-1", "/work", store)

	expected := Report{
		BuildID: "id-1",
		Root:    "/work",
		Files: []FileDiagnostics{
			{
				Path: "/abs/x.c",
				Diagnostics: []diagnostics.EditorDiagnostic{{
					Range:    diagnostics.Range{Start: diagnostics.Position{Line: 0, Character: 0}, End: diagnostics.Position{Line: 0, Character: 0}},
					Severity: "error",
					Source:   "cc",
					Message:  "y",
				}},
			},
			{
				Path: "/work/src/main.c",
				Diagnostics: []diagnostics.EditorDiagnostic{{
					Range:    diagnostics.Range{Start: diagnostics.Position{Line: 3, Character: 9}, End: diagnostics.Position{Line: 3, Character: 9}},
					Severity: "error",
					Source:   "cc",
					Message:  "expected ';' after expression",
				}},
			},
		},
	}
	if diff := cmp.Diff(expected, r); diff != "" {
		t.Errorf("unexpected report (-want +got):\n%s", diff)
	}
}

func TestEncodeEmptyReport(t *testing.T) {
	var out bytes.Buffer
	if err := Encode(&out, NewReport("id", "/work", diagnostics.NewStore("/work"))); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !strings.Contains(out.String(), `"files": []`) {
		t.Errorf("empty report should list no files, got %s", out.String())
	}
}

func TestJSONFileFollowsStore(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "out", "diagnostics.json")
	store := diagnostics.NewStore(root)
	sink := NewJSONFile(path, root, store)
	sink.SetBuildID("b1")
	sink.Attach()

	store.ReplaceAll(diagnostics.Parse("main.c:2:3: error: x\n"))
	r := readReport(t, path)
	if r.BuildID != "b1" || len(r.Files) != 1 {
		t.Fatalf("unexpected report after build %+v", r)
	}
	store.ClearFile(filepath.Join(root, "main.c"))
	if r := readReport(t, path); len(r.Files) != 0 {
		t.Errorf("save-clear not reflected: %+v", r)
	}
}

func readReport(t *testing.T, path string) Report {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("os.ReadFile: %v", err)
	}
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		t.Fatalf("json.Unmarshal: %v", err)
	}
	return r
}
