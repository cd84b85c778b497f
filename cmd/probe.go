// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/sspctl/pkg/bridge"
	"github.com/Thermoquad/sspctl/pkg/registry"
	"github.com/Thermoquad/sspctl/pkg/sis"
)

var probeTimeout int

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Test connection by waiting for a switcher status",
	Long: `Connect to the switcher, query its state and wait for a recognized
status line until timeout.

Unrecognized lines (such as the connect banner) are counted and skipped.

Exit codes:
  0 - Status received before timeout
  1 - Timeout reached without a recognized status
  2 - Connection error

Useful for testing connectivity to the switcher or a serial bridge.`,
	RunE: runProbe,
}

func init() {
	rootCmd.AddCommand(probeCmd)
	probeCmd.Flags().IntVar(&probeTimeout, "timeout", 10, "Timeout in seconds to wait for a status")
}

func runProbe(cmd *cobra.Command, args []string) error {
	statusChan := make(chan sis.Event, 1)
	connErr := make(chan struct{}, 1)

	skipped := 0
	connected := false
	onEvent := func(ev sis.Event) {
		if !ev.Recognized() {
			skipped++
			return
		}
		select {
		case statusChan <- ev:
		default:
		}
	}
	onState := func(state bridge.ConnectionState) {
		switch state {
		case bridge.StateConnected:
			connected = true
		case bridge.StateDisconnected:
			if !connected {
				select {
				case connErr <- struct{}{}:
				default:
				}
			}
		}
	}

	link, err := openLink(cfg, registry.NewMemory(), quietLogger(),
		bridge.WithEventListener(onEvent),
		bridge.WithStateListener(onState),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}

	fmt.Printf("sspctl - Probe\n")
	fmt.Printf("Connection: %s\n", link.connInfo)
	fmt.Printf("Timeout: %d seconds\n", probeTimeout)
	fmt.Printf("Waiting for switcher status...\n\n")

	if err := link.start(time.Hour); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	code := 0
	select {
	case ev := <-statusChan:
		// skipped is owned by the loop; read it there
		var n int
		link.loop.Call(func() error { n = skipped; return nil })
		fmt.Printf("SUCCESS: Received status\n")
		fmt.Printf("  Event: %s\n", sis.FormatEvent(ev))
		fmt.Printf("  Raw: %q\n", ev.Raw)
		if n > 0 {
			fmt.Printf("  (skipped %d unrecognized lines)\n", n)
		}

	case <-connErr:
		fmt.Fprintf(os.Stderr, "Connection error: could not connect to %s\n", link.connInfo)
		code = 2

	case <-time.After(time.Duration(probeTimeout) * time.Second):
		fmt.Fprintf(os.Stderr, "TIMEOUT: No status received within %d seconds\n", probeTimeout)
		code = 1
	}

	link.stop()
	os.Exit(code)
	return nil
}
