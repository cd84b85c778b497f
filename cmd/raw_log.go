// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/sspctl/pkg/bridge"
	"github.com/Thermoquad/sspctl/pkg/registry"
	"github.com/Thermoquad/sspctl/pkg/sis"
)

var rawLogCmd = &cobra.Command{
	Use:   "raw_log",
	Short: "Display switcher status lines in human-readable format",
	Long: `Continuously decode and display SIS status lines as they arrive.

Each line is shown with a timestamp, the decoded event and the raw text.
The switcher's mute, input and volume are queried on every connect, and the
connection is reopened on the heartbeat if it drops. A statistics summary is
printed on exit.

Supports TCP, serial and WebSocket connections.`,
	RunE: runRawLog,
}

func init() {
	rootCmd.AddCommand(rawLogCmd)
}

func formatLogLine(at time.Time, ev sis.Event) string {
	return fmt.Sprintf("[%s] %-16s %q\n", at.Format("15:04:05.000"), sis.FormatEvent(ev), ev.Raw)
}

func runRawLog(cmd *cobra.Command, args []string) error {
	onEvent := func(ev sis.Event) {
		fmt.Print(formatLogLine(time.Now(), ev))
	}
	onState := func(state bridge.ConnectionState) {
		fmt.Printf("[%s] -- %s\n", time.Now().Format("15:04:05.000"), state)
	}

	link, err := openLink(cfg, registry.NewMemory(), quietLogger(),
		bridge.WithEventListener(onEvent),
		bridge.WithStateListener(onState),
	)
	if err != nil {
		return err
	}

	fmt.Printf("sspctl - Raw Status Log\n")
	fmt.Printf("Connection: %s\n", link.connInfo)
	fmt.Printf("Press Ctrl+C to exit\n\n")

	if err := link.start(cfg.Host.HeartbeatInterval()); err != nil {
		return err
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	snap, err := link.snapshot()()
	link.stop()
	if err == nil {
		fmt.Printf("\n%s", snap.Statistics.String())
	}
	return nil
}
