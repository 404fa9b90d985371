// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// zecwalletctl inspects a persisted transaction record store and runs the
// wallet's input selection against it.
package main

import (
	"os"
	"path/filepath"

	"github.com/jessevdk/go-flags"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		os.Exit(1)
	}
}

// run parses args and executes the selected command. Errors are printed by
// the parser.
func run(args []string) error {
	cfg := defaultConfig()

	parser, err := newParser(&cfg, args)
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		return err
	}

	parser.CommandHandler = func(command flags.Commander,
		args []string) error {

		if command == nil {
			return nil
		}

		if err := cfg.validate(); err != nil {
			return err
		}

		logFile := filepath.Join(cfg.LogDir, defaultLogFilename)
		if err := initLogRotator(logFile); err != nil {
			return err
		}
		defer closeLogRotator()

		setLogLevels(cfg.DebugLevel)

		return command.Execute(args)
	}

	_, err = parser.ParseArgs(args)

	return err
}
