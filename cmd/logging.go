// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"
)

// newLogger writes human-readable logs to a terminal and JSON otherwise.
func newLogger(level string) zerolog.Logger {
	var out io.Writer = os.Stderr
	if term.IsTerminal(int(os.Stderr.Fd())) {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05.000"}
	}
	return buildLogger(out, level)
}

func buildLogger(out io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.TimeFieldFormat = time.RFC3339Nano
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}

// quietLogger raises the default info level to warn, for commands that own
// stdout. An explicit debug level is kept.
func quietLogger() zerolog.Logger {
	if logger.GetLevel() == zerolog.InfoLevel {
		return logger.Level(zerolog.WarnLevel)
	}
	return logger
}
