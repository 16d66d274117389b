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

package options

import (
	"flag"
	"path/filepath"
	"strings"
)

type ArrayFlags []string

func (i *ArrayFlags) String() string {
	return strings.Join(*i, ",")
}

func (i *ArrayFlags) Set(value string) error {
	*i = append(*i, value)
	return nil
}

// SharedOptions are the command line flags. Flags explicitly given on the
// command line win over the config file.
type SharedOptions struct {
	fs *flag.FlagSet

	Compiler       *string
	CFlags         *string
	ConfigPath     *string
	Output         *string
	Patterns       ArrayFlags
	IgnorePatterns ArrayFlags
	Debugger       *string
	TimeoutSeconds *int
	ResultsDir     *string
	Lang           *string
	RebuildOnSave  *bool
	Color          *string
	JSONReport     *string
}

// NewSharedOptions registers the flags on fs. Pass flag.CommandLine so
// they sit next to glog's flags.
func NewSharedOptions(fs *flag.FlagSet) *SharedOptions {
	s := &SharedOptions{fs: fs}
	s.Compiler = fs.String("compiler", "", "C compiler to invoke (default from config, else cc)")
	s.CFlags = fs.String("cflags", "", "extra compiler flags, shell quoted")
	s.ConfigPath = fs.String("config", "", "path of the yaml config file (default <root>/"+ConfigFileName+")")
	s.Output = fs.String("o", "", "output binary, relative to the workspace root")
	fs.Var(&s.Patterns, "pattern", "source glob relative to the root, may be repeated")
	fs.Var(&s.IgnorePatterns, "ignore", "glob of sources to skip, may be repeated")
	s.Debugger = fs.String("debugger", "", "debugger used by the debug command")
	s.TimeoutSeconds = fs.Int("timeout", -1, "compiler timeout in seconds, 0 waits forever")
	s.ResultsDir = fs.String("results_dir", "", "directory for the build summary and json report")
	s.Lang = fs.String("lang", "", "language of user messages (en, zh)")
	s.RebuildOnSave = fs.Bool("rebuild_on_save", false, "watch: rebuild after a source file is saved")
	s.Color = fs.String("color", "", "colorize output (auto, on, off)")
	s.JSONReport = fs.String("json", "", "write editor diagnostics as json to this file, - for stdout")
	return s
}

func (s *SharedOptions) GetConfigPath(root string) string {
	if *s.ConfigPath != "" {
		return *s.ConfigPath
	}
	return filepath.Join(root, ConfigFileName)
}

func (s *SharedOptions) GetJSONReport() string {
	return *s.JSONReport
}

func (s *SharedOptions) isSet(name string) bool {
	set := false
	s.fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

// Apply overrides config with the flags that were given.
func (s *SharedOptions) Apply(config *Config) error {
	if s.isSet("compiler") {
		config.Compiler = *s.Compiler
	}
	if s.isSet("cflags") {
		config.CFlags = *s.CFlags
	}
	if s.isSet("o") {
		config.Output = *s.Output
	}
	if len(s.Patterns) > 0 {
		config.Patterns = append([]string{}, s.Patterns...)
	}
	if len(s.IgnorePatterns) > 0 {
		config.Ignore = append(config.Ignore, s.IgnorePatterns...)
	}
	if s.isSet("debugger") {
		config.Debugger = *s.Debugger
	}
	if s.isSet("timeout") {
		config.TimeoutSeconds = *s.TimeoutSeconds
	}
	if s.isSet("results_dir") {
		config.ResultsDir = *s.ResultsDir
	}
	if s.isSet("lang") {
		config.Lang = *s.Lang
	}
	if s.isSet("rebuild_on_save") {
		config.RebuildOnSave = *s.RebuildOnSave
	}
	if s.isSet("color") {
		config.Color = *s.Color
	}
	return config.Validate()
}
