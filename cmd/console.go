// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ergochat/readline"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Thermoquad/sspctl/pkg/bridge"
	"github.com/Thermoquad/sspctl/pkg/registry"
	"github.com/Thermoquad/sspctl/pkg/sis"
)

const (
	consolePrompt       = "ssp> "
	consoleHistoryLimit = 500
)

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Line-oriented console for the switcher",
	Long: `Keep a connection to the switcher open and send commands typed one
per line. Status reported by the switcher is printed as it arrives.

Commands:
  volume N   set the volume (0-100)
  mute       mute the output
  unmute     unmute the output
  input N    select input N
  state      show connection and device state
  stats      show statistics
  help       show this list
  quit       leave the console

Reads plain lines when stdin is not a terminal, so commands can be piped in.`,
	RunE: runConsole,
}

func init() {
	rootCmd.AddCommand(consoleCmd)
}

// lineReader reads console input with line editing when stdin is a
// terminal and from a scanner otherwise.
type lineReader struct {
	rl      *readline.Instance
	scanner *bufio.Scanner
	out     io.Writer
}

func newLineReader() *lineReader {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return &lineReader{scanner: bufio.NewScanner(os.Stdin), out: os.Stdout}
	}

	rl, err := readline.NewFromConfig(&readline.Config{
		HistoryFile:            consoleHistoryPath(),
		HistoryLimit:           consoleHistoryLimit,
		DisableAutoSaveHistory: true,
		Prompt:                 consolePrompt,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: line editing unavailable (%v)\n", err)
		return &lineReader{scanner: bufio.NewScanner(os.Stdin), out: os.Stdout}
	}
	return &lineReader{rl: rl, out: rl}
}

func consoleHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "sspctl", "history")
}

// next returns the next line, or io.EOF at end of input or on Ctrl-C.
func (r *lineReader) next() (string, error) {
	if r.rl == nil {
		if !r.scanner.Scan() {
			if err := r.scanner.Err(); err != nil {
				return "", err
			}
			return "", io.EOF
		}
		return r.scanner.Text(), nil
	}

	line, err := r.rl.Readline()
	if err != nil {
		if errors.Is(err, readline.ErrInterrupt) {
			return "", io.EOF
		}
		return "", err
	}
	if trimmed := strings.TrimSpace(line); trimmed != "" {
		r.rl.SaveToHistory(trimmed)
	}
	return line, nil
}

func (r *lineReader) close() {
	if r.rl != nil {
		r.rl.Close()
	}
}

func runConsole(cmd *cobra.Command, args []string) error {
	in := newLineReader()
	defer in.close()
	out := in.out

	onState := func(state bridge.ConnectionState) {
		fmt.Fprintf(out, "[%s] %s\n", time.Now().Format("15:04:05"), state)
	}
	onEvent := func(ev sis.Event) {
		fmt.Fprint(out, formatLogLine(time.Now(), ev))
	}

	link, err := openLink(cfg, registry.NewMemory(), quietLogger(),
		bridge.WithStateListener(onState),
		bridge.WithEventListener(onEvent),
	)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Connection: %s\n", link.connInfo)
	fmt.Fprintln(out, "Type help for commands, quit to leave.")

	if err := link.start(cfg.Host.HeartbeatInterval()); err != nil {
		return err
	}
	defer link.stop()

	run := link.commands()
	snapshot := link.snapshot()

	for {
		line, err := in.next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if quit := execConsoleLine(out, line, run, snapshot); quit {
			return nil
		}
	}
}

// execConsoleLine runs one console line and reports whether the console
// should exit.
func execConsoleLine(out io.Writer, line string, run bridge.CommandFunc, snapshot bridge.SnapshotFunc) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return false
	}

	switch fields[0] {
	case "quit", "exit":
		return true

	case "help", "?":
		fmt.Fprintln(out, "volume N | mute | unmute | input N | state | stats | quit")
		return false

	case "state", "stats":
		snap, err := snapshot()
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return false
		}
		if fields[0] == "stats" {
			fmt.Fprint(out, snap.Statistics.String())
			return false
		}
		muted := "no"
		if snap.Device.Muted {
			muted = "yes"
		}
		fmt.Fprintf(out, "State: %s  Input: %d  Volume: %d  Muted: %s\n",
			snap.State, snap.Device.Input, snap.Device.Volume, muted)
		return false
	}

	hc, err := parseHostCommand(fields)
	if err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return false
	}

	res, err := run(hc.unit, hc.command, hc.level)
	switch {
	case err != nil:
		fmt.Fprintf(out, "Error: %v\n", err)
	case !res.Sent:
		fmt.Fprintf(out, "Dropped %s: not connected\n", sis.FormatCommand(res.Command))
	default:
		fmt.Fprintf(out, "Sent: %s\n", sis.FormatCommand(res.Command))
	}
	return false
}
