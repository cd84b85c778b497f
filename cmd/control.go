// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Thermoquad/sspctl/pkg/bridge"
	"github.com/Thermoquad/sspctl/pkg/registry"
	"github.com/Thermoquad/sspctl/pkg/sis"
)

var controlCmd = &cobra.Command{
	Use:   "control",
	Short: "Interactive TUI for controlling the switcher",
	Long: `Control the switcher via an interactive terminal UI.

Features:
  - Connection status with automatic reconnection
  - Volume bar and mute state
  - Input selector using the configured input labels
  - Statistics and event log

Keys:
  + / -        volume up / down by 5
  m            toggle mute
  1-9          select input
  up/down      move in the input list, enter selects
  v or tab     type a volume, enter applies, esc cancels
  q            quit

Supports TCP, serial and WebSocket connections.`,
	RunE: runControl,
}

func init() {
	rootCmd.AddCommand(controlCmd)
}

func runControl(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("control needs a terminal; use send or console instead")
	}

	var p *tea.Program
	onState := func(state bridge.ConnectionState) {
		p.Send(linkStateMsg{state: state})
	}
	onEvent := func(ev sis.Event) {
		p.Send(linkEventMsg{event: ev})
	}

	// The TUI owns the terminal, so the link does not log.
	link, err := openLink(cfg, registry.NewMemory(), zerolog.Nop(),
		bridge.WithStateListener(onState),
		bridge.WithEventListener(onEvent),
	)
	if err != nil {
		return err
	}

	m := initialControlModel(link.commands(), link.snapshot(), link.connInfo, link.labels)
	p = tea.NewProgram(m, tea.WithAltScreen())

	if err := link.start(cfg.Host.HeartbeatInterval()); err != nil {
		return err
	}

	_, err = p.Run()
	link.stop()
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
