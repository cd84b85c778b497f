// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.bug.st/serial"

	"github.com/Thermoquad/sspctl/pkg/bridge"
	"github.com/Thermoquad/sspctl/pkg/config"
	"github.com/Thermoquad/sspctl/pkg/registry"
	"github.com/Thermoquad/sspctl/pkg/sis"
)

var discoveryTimeout int

var discoveryCmd = &cobra.Command{
	Use:   "discovery",
	Short: "Find switchers on local serial ports",
	Long: `Open every serial port on this machine at the configured baud rate,
query the switcher state and report the ports that answer with a
recognized status.

Examples:
  # Scan at the default 9600 baud
  sspctl discovery

  # Scan at 38400 baud with a longer wait per port
  sspctl discovery --baud 38400 --timeout 5

Exit codes:
  0 - At least one switcher found
  1 - No switcher answered
  2 - Ports could not be listed`,
	RunE: runDiscovery,
}

func init() {
	rootCmd.AddCommand(discoveryCmd)
	discoveryCmd.Flags().IntVar(&discoveryTimeout, "timeout", 2, "Timeout in seconds to wait on each port")
}

// discoveredSwitcher is a serial port that answered with a status.
type discoveredSwitcher struct {
	port  string
	event sis.Event
}

func runDiscovery(cmd *cobra.Command, args []string) error {
	ports, err := serial.GetPortsList()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to list serial ports: %v\n", err)
		os.Exit(2)
	}

	fmt.Printf("sspctl - Switcher Discovery\n")
	fmt.Printf("Baud rate: %d\n", cfg.Switcher.Baud)
	fmt.Printf("Timeout: %d seconds per port\n\n", discoveryTimeout)

	if len(ports) == 0 {
		fmt.Printf("No serial ports found.\n")
		os.Exit(1)
	}

	var found []discoveredSwitcher
	for _, port := range ports {
		fmt.Printf("Probing %s... ", port)
		ev, ok := probeSerialPort(port, time.Duration(discoveryTimeout)*time.Second)
		if !ok {
			fmt.Printf("no answer\n")
			continue
		}
		fmt.Printf("%s\n", sis.FormatEvent(ev))
		found = append(found, discoveredSwitcher{port: port, event: ev})
	}

	// Summary
	fmt.Printf("\n--- Discovery summary ---\n")
	fmt.Printf("Ports scanned: %d\n", len(ports))
	fmt.Printf("Switchers found: %d\n", len(found))
	for _, d := range found {
		fmt.Printf("  %s\n", d.port)
	}

	if len(found) == 0 {
		fmt.Printf("No switcher answered. Check the cable, baud rate and device power.\n")
		os.Exit(1)
	}
	return nil
}

// probeSerialPort connects to one port and waits for a recognized status.
func probeSerialPort(port string, timeout time.Duration) (sis.Event, bool) {
	c := *cfg
	c.Switcher.Transport = config.TransportSerial
	c.Switcher.SerialPort = port

	status := make(chan sis.Event, 1)
	failed := make(chan struct{}, 1)
	connected := false

	link, err := openLink(&c, registry.NewMemory(), quietLogger(),
		bridge.WithEventListener(func(ev sis.Event) {
			if !ev.Recognized() {
				return
			}
			select {
			case status <- ev:
			default:
			}
		}),
		bridge.WithStateListener(func(state bridge.ConnectionState) {
			switch state {
			case bridge.StateConnected:
				connected = true
			case bridge.StateDisconnected:
				if !connected {
					select {
					case failed <- struct{}{}:
					default:
					}
				}
			}
		}),
	)
	if err != nil {
		return sis.Event{}, false
	}
	if err := link.start(time.Hour); err != nil {
		return sis.Event{}, false
	}
	defer link.stop()

	select {
	case ev := <-status:
		return ev, true
	case <-failed:
	case <-time.After(timeout):
	}
	return sis.Event{}, false
}
