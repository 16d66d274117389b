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
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang/glog"
	"gopkg.in/yaml.v2"
)

// ConfigFileName is looked up in the workspace root when no -config flag
// is given.
const ConfigFileName = ".easyc.yaml"

type Config struct {
	Compiler       string   `yaml:"compiler"`
	CFlags         string   `yaml:"cflags"`
	Output         string   `yaml:"output"`
	Patterns       []string `yaml:"patterns"`
	Ignore         []string `yaml:"ignore"`
	Debugger       string   `yaml:"debugger"`
	DebuggerArgs   []string `yaml:"debugger_args"`
	RunArgs        []string `yaml:"run_args"`
	TimeoutSeconds int      `yaml:"timeout_seconds"`
	ResultsDir     string   `yaml:"results_dir"`
	Lang           string   `yaml:"lang"`
	RebuildOnSave  bool     `yaml:"rebuild_on_save"`
	DebounceMs     int      `yaml:"debounce_ms"`
	Color          string   `yaml:"color"`
}

func DefaultConfig() *Config {
	return &Config{
		Compiler:     "cc",
		Output:       "a.out",
		Patterns:     []string{"**/*.c"},
		Debugger:     "gdb",
		DebuggerArgs: []string{"--args"},
		Lang:         "en",
		DebounceMs:   300,
		Color:        "auto",
	}
}

// LoadConfig reads path on top of the defaults. A missing file is not an
// error: the defaults are returned.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()
	contents, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		glog.Infof("no config file at %s, using defaults", path)
		return config, nil
	}
	if err != nil {
		return nil, fmt.Errorf("os.ReadFile: %v", err)
	}
	if err := yaml.UnmarshalStrict(contents, config); err != nil {
		return nil, fmt.Errorf("yaml.UnmarshalStrict %s: %v", path, err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %v", path, err)
	}
	return config, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Compiler) == "" {
		return errors.New("compiler must not be empty")
	}
	if strings.TrimSpace(c.Output) == "" {
		return errors.New("output must not be empty")
	}
	if len(c.Patterns) == 0 {
		return errors.New("at least one source pattern is required")
	}
	if c.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout_seconds must not be negative, got %d", c.TimeoutSeconds)
	}
	if c.DebounceMs < 0 {
		return fmt.Errorf("debounce_ms must not be negative, got %d", c.DebounceMs)
	}
	switch c.Color {
	case "auto", "on", "off":
	default:
		return fmt.Errorf("color must be one of auto, on, off, got %q", c.Color)
	}
	return nil
}

// Timeout is zero when the compiler may run forever.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c *Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}
