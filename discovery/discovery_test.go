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

package discovery

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "main.c", "int main(void) { return 0; }")
	writeFile(t, dir, "lib/util.c", "int util(void) { return 1; }")
	writeFile(t, dir, "lib/util.h", "int util(void);")
	writeFile(t, dir, "readme.txt", "hello")
	writeFile(t, dir, ".hidden.c", "")
	writeFile(t, dir, ".git/objects/x.c", "")
	writeFile(t, dir, "build/gen.c", "")

	finder, err := NewFinder([]string{"**/*.c"}, nil)
	if err != nil {
		t.Fatalf("NewFinder: %v", err)
	}
	files, err := finder.Files(dir)
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	expected := []string{"build/gen.c", "lib/util.c", "main.c"}
	if !reflect.DeepEqual(files, expected) {
		t.Errorf("unexpected files %v, expected %v", files, expected)
	}
}

func TestFilesIgnorePatterns(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "src/main.c", "")
	writeFile(t, dir, "src/vendor/dep.c", "")
	writeFile(t, dir, "tests/test_main.c", "")

	finder, err := NewFinder([]string{"src/**/*.c"}, []string{"src/vendor/**"})
	if err != nil {
		t.Fatalf("NewFinder: %v", err)
	}
	files, err := finder.Files(dir)
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	if !reflect.DeepEqual(files, []string{"src/main.c"}) {
		t.Errorf("unexpected files %v", files)
	}
}

func TestFilesGitignore(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".gitignore", "generated/\nscratch.c\n")
	writeFile(t, dir, "main.c", "")
	writeFile(t, dir, "scratch.c", "")
	writeFile(t, dir, "generated/out.c", "")

	finder, err := NewFinder([]string{"**/*.c"}, nil)
	if err != nil {
		t.Fatalf("NewFinder: %v", err)
	}
	files, err := finder.Files(dir)
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	if !reflect.DeepEqual(files, []string{"main.c"}) {
		t.Errorf("unexpected files %v", files)
	}
}

func TestIncludes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".gitignore", "generated/\nscratch.c\n")
	finder, err := NewFinder([]string{"**/*.c"}, []string{"vendor/**"})
	if err != nil {
		t.Fatalf("NewFinder: %v", err)
	}
	for _, testCase := range [...]struct {
		rel      string
		expected bool
	}{
		{rel: "main.c", expected: true},
		{rel: "build/gen.c", expected: true},
		{rel: "lib/util.c", expected: true},
		{rel: "scratch.c", expected: false},
		{rel: "generated/out.c", expected: false},
		{rel: "generated/deep/out.c", expected: false},
		{rel: "vendor/dep.c", expected: false},
		{rel: ".git/x.c", expected: false},
		{rel: "node_modules/a/b.c", expected: false},
		{rel: "notes.txt", expected: false},
	} {
		t.Run(testCase.rel, func(t *testing.T) {
			if got := finder.Includes(dir, testCase.rel); got != testCase.expected {
				t.Errorf("Includes(%s) = %v, expected %v", testCase.rel, got, testCase.expected)
			}
		})
	}
}

func TestFilesEmpty(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "notes.md", "")
	finder, err := NewFinder([]string{"**/*.c"}, nil)
	if err != nil {
		t.Fatalf("NewFinder: %v", err)
	}
	files, err := finder.Files(dir)
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("expected no files, got %v", files)
	}
}

func TestNewFinderMalformedPattern(t *testing.T) {
	if _, err := NewFinder([]string{"src/[.c"}, nil); err == nil {
		t.Errorf("expected an error for a malformed pattern")
	}
}
