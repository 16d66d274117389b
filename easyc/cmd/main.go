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

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/golang/glog"
	"naive.systems/easyc/builder"
	"naive.systems/easyc/diagnostics"
	"naive.systems/easyc/discovery"
	"naive.systems/easyc/easylib/basic"
	"naive.systems/easyc/easylib/options"
	"naive.systems/easyc/report"
	"naive.systems/easyc/runner"
	"naive.systems/easyc/session"
	"naive.systems/easyc/watch"
)

const usage = `usage: easyc [flags] <build|run|debug|watch> [root]

  build   compile the C sources under root and report errors
  run     build, then run the binary
  debug   build with -g, then start the binary under the debugger
  watch   build, then clear diagnostics of saved files until the next build

Sources are the files matching -pattern, minus -ignore, .gitignore,
hidden entries and VCS directories. With -json -, other output goes to
stderr.

flags:
`

var commands = map[string]session.Mode{
	"build": session.ModeBuild,
	"run":   session.ModeRun,
	"debug": session.ModeDebug,
	"watch": session.ModeBuild,
}

func main() {
	sharedOptions := options.NewSharedOptions(flag.CommandLine)
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	stderrThresholdSet := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "stderrthreshold" {
			stderrThresholdSet = true
		}
	})
	// Users read the notifier output; glog goes to its files only.
	if !stderrThresholdSet {
		if err := flag.Set("stderrthreshold", "FATAL"); err != nil {
			glog.Fatalf("failed to set default stderrthreshold: %v", err)
		}
	}

	code := run(sharedOptions, flag.Args())
	glog.Flush()
	os.Exit(code)
}

func run(sharedOptions *options.SharedOptions, args []string) int {
	if len(args) == 0 || len(args) > 2 {
		flag.Usage()
		return 2
	}
	command := args[0]
	mode, ok := commands[command]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n", command)
		flag.Usage()
		return 2
	}
	root := "."
	if len(args) == 2 {
		root = args[1]
	}
	root, err := filepath.Abs(root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: resolving root: %v\n", err)
		return 1
	}

	config, err := options.LoadConfig(sharedOptions.GetConfigPath(root))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	if err := sharedOptions.Apply(config); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	finder, err := discovery.NewFinder(config.Patterns, config.Ignore)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	b, err := builder.New(config, finder, builder.ExecRunner{Timeout: config.Timeout()})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	glog.Infof("compiler: %s", builder.CompilerVersion(ctx, config.Compiler))

	// With -json=- stdout carries only the report.
	jsonPath := sharedOptions.GetJSONReport()
	userOut := os.Stdout
	if jsonPath == "-" {
		userOut = os.Stderr
	}
	store := diagnostics.NewStore(root)
	terminal := report.NewTerminal(userOut, root, config.Color)
	console := report.NewConsole(userOut, os.Stderr, config.Color)
	taskRunner := &runner.Runner{Stdin: os.Stdin, Stdout: userOut, Stderr: os.Stderr}
	s := session.New(root, config, store, b, taskRunner, console)

	var jsonFile *report.JSONFile
	if jsonPath != "" && jsonPath != "-" {
		jsonFile = report.NewJSONFile(basic.ConvertRelativePathToAbsolute(root, jsonPath), root, store)
		jsonFile.Attach()
	}
	publish := func(outcome session.Outcome) {
		if outcome.Diagnostics != nil {
			terminal.Render(outcome.Diagnostics)
		}
		switch {
		case jsonFile != nil:
			jsonFile.SetBuildID(outcome.BuildID)
			if err := jsonFile.Write(); err != nil {
				glog.Errorf("failed to write json report: %v", err)
			}
		case jsonPath == "-":
			if err := report.Encode(os.Stdout, report.NewReport(outcome.BuildID, root, store)); err != nil {
				glog.Errorf("failed to encode json report: %v", err)
			}
		}
	}

	if command == "watch" {
		terminal.Attach(store)
		publish(s.Build(ctx, mode))
		w := watch.New(s, finder, config.RebuildOnSave, config.Debounce())
		w.OnBuild = publish
		if err := w.Run(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
		return 0
	}

	outcome := s.BuildAndRun(ctx, mode)
	publish(outcome)
	if !outcome.Succeeded() || outcome.Err != nil {
		return 1
	}
	return 0
}
