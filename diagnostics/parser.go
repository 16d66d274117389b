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
Package diagnostics turns the textual error output of a C compiler into
per-file diagnostics and keeps the set currently shown to the user.

Only one line format is recognised:

	<file>:<line>:<column>:<label>:<message>

and a line is only considered when it contains the literal "error:".
Warnings, notes, "In function" headers and caret lines are dropped.
*/
package diagnostics

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/golang/glog"
)

type Severity int

const (
	SeverityError Severity = iota
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	}
	return fmt.Sprintf("Severity(%d)", int(s))
}

// errorMarker is the only detection heuristic.
const errorMarker = "error:"

// Five fields: file, line, column, label and the rest of the line.
const numFields = 5

// Diagnostic holds compiler coordinates as reported: 1-based line and
// column, file path possibly relative to the compiler's working dir.
type Diagnostic struct {
	File     string
	Line     int
	Column   int
	Message  string
	Severity Severity
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s:%d:%d: %s: %s", d.File, d.Line, d.Column, d.Severity, d.Message)
}

// Parse converts the captured stderr of one failed build into a Set.
// Lines that contain "error:" but do not have the expected shape are
// skipped.
func Parse(raw string) *Set {
	set := NewSet()
	for i, line := range strings.Split(raw, "\n") {
		addLine(set, i+1, line)
	}
	return set
}

// ParseReader is Parse for callers holding a stream.
func ParseReader(r io.Reader) (*Set, error) {
	set := NewSet()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		addLine(set, lineNo, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return set, fmt.Errorf("bufio.Scanner: %v", err)
	}
	return set, nil
}

func addLine(set *Set, lineNo int, line string) {
	line = strings.TrimRight(line, "\r")
	if !strings.Contains(line, errorMarker) {
		return
	}
	d, err := ParseLine(line)
	if err != nil {
		glog.V(1).Infof("skipping stderr line %d: %v", lineNo, err)
		return
	}
	set.Add(d)
}

// ParseLine parses a single "error:" line. The split is bounded so a
// message such as "expected 'x': got 'y'" keeps its colons.
func ParseLine(line string) (Diagnostic, error) {
	parts := strings.SplitN(line, ":", numFields)
	if len(parts) < numFields {
		return Diagnostic{}, fmt.Errorf("expected %d colon-separated fields, got %d in %q", numFields, len(parts), line)
	}
	file := strings.TrimSpace(parts[0])
	if file == "" {
		return Diagnostic{}, fmt.Errorf("empty file path in %q", line)
	}
	lineNumber, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return Diagnostic{}, fmt.Errorf("cannot parse line number %q: %v", parts[1], err)
	}
	column, err := strconv.Atoi(strings.TrimSpace(parts[2]))
	if err != nil {
		return Diagnostic{}, fmt.Errorf("cannot parse column number %q: %v", parts[2], err)
	}
	if lineNumber < 1 || column < 1 {
		return Diagnostic{}, fmt.Errorf("position %d:%d is not 1-based in %q", lineNumber, column, line)
	}
	return Diagnostic{
		File:     file,
		Line:     lineNumber,
		Column:   column,
		Message:  strings.TrimSpace(parts[4]),
		Severity: SeverityError,
	}, nil
}
