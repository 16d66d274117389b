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

// Package report renders the diagnostics store for a user or an editor.
package report

import (
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/fatih/color"
	"naive.systems/easyc/diagnostics"
	"naive.systems/easyc/easylib/basic"
	"naive.systems/easyc/symbols"
)

// palette holds the colours of one sink. Colour mode is per sink, not
// the process wide color.NoColor.
type palette struct {
	location *color.Color
	severity *color.Color
	context  *color.Color
	info     *color.Color
}

func newPalette(mode string) palette {
	p := palette{
		location: color.New(color.Bold),
		severity: color.New(color.FgRed, color.Bold),
		context:  color.New(color.Faint),
		info:     color.New(color.FgCyan),
	}
	for _, c := range []*color.Color{p.location, p.severity, p.context, p.info} {
		switch mode {
		case "on":
			c.EnableColor()
		case "off":
			c.DisableColor()
		}
	}
	return p
}

// Terminal prints diagnostics the way a compiler would, plus the
// enclosing function when it can be found.
type Terminal struct {
	out     io.Writer
	root    string
	palette palette

	mutex sync.Mutex
}

func NewTerminal(out io.Writer, root, colorMode string) *Terminal {
	return &Terminal{out: out, root: root, palette: newPalette(colorMode)}
}

func (t *Terminal) Render(set *diagnostics.Set) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	for _, file := range set.Files() {
		for _, d := range set.Get(file) {
			t.renderOne(d)
		}
	}
}

func (t *Terminal) renderOne(d diagnostics.Diagnostic) {
	location := t.palette.location.Sprintf("%s:%d:%d:", d.File, d.Line, d.Column)
	severity := t.palette.severity.Sprintf("%s:", d.Severity)
	line := fmt.Sprintf("%s %s %s", location, severity, d.Message)
	path := d.File
	if !filepath.IsAbs(path) {
		path = filepath.Join(t.root, path)
	}
	if fn := symbols.EnclosingFunctionInFile(path, d.Line); fn != "" {
		line += t.palette.context.Sprintf(" (in function '%s')", fn)
	}
	fmt.Fprintln(t.out, line)
}

// Attach prints a line whenever a saved file's diagnostics are dropped.
func (t *Terminal) Attach(store *diagnostics.Store) {
	store.Subscribe(func(change diagnostics.Change) {
		if change.Kind != diagnostics.FileCleared {
			return
		}
		t.mutex.Lock()
		defer t.mutex.Unlock()
		fmt.Fprintln(t.out, t.palette.context.Sprintf("%s: diagnostics cleared until the next build", change.File))
	})
}

// Console is a session notifier writing timestamped lines.
type Console struct {
	Out     io.Writer
	Err     io.Writer
	palette palette
}

func NewConsole(out, errOut io.Writer, colorMode string) *Console {
	return &Console{Out: out, Err: errOut, palette: newPalette(colorMode)}
}

func (c *Console) Info(msg string) {
	fmt.Fprintf(c.Out, "%s %s\n", basic.FormatTimeStamp(time.Now()), c.palette.info.Sprint(msg))
}

func (c *Console) Error(msg string) {
	fmt.Fprintf(c.Err, "%s %s\n", basic.FormatTimeStamp(time.Now()), c.palette.severity.Sprint(msg))
}
