// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/sspctl/pkg/bridge"
	"github.com/Thermoquad/sspctl/pkg/registry"
	"github.com/Thermoquad/sspctl/pkg/sis"
)

var sendTimeout int

var sendCmd = &cobra.Command{
	Use:   "send <volume N | mute | unmute | input N>",
	Short: "Send one command to the switcher",
	Long: `Connect, send one command and wait for the switcher to report the
resulting state.

  volume N   set the volume (0-100)
  mute       mute the output
  unmute     unmute the output
  input N    select input N

Exit codes:
  0 - Switcher reported the requested state
  1 - Timeout reached or command rejected
  2 - Connection error`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSend,
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().IntVar(&sendTimeout, "timeout", 5, "Timeout in seconds to wait for the switcher")
}

// hostCommand is a parsed send request: the host command to dispatch and
// the status that confirms it.
type hostCommand struct {
	unit    bridge.Unit
	command string
	level   int
	done    func(sis.Event) bool
}

func parseHostCommand(args []string) (hostCommand, error) {
	if len(args) == 0 {
		return hostCommand{}, fmt.Errorf("missing command")
	}

	number := func() (int, error) {
		if len(args) != 2 {
			return 0, fmt.Errorf("%s needs a value", args[0])
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return 0, fmt.Errorf("invalid %s value: %q", args[0], args[1])
		}
		return n, nil
	}
	noValue := func() error {
		if len(args) != 1 {
			return fmt.Errorf("%s takes no value", args[0])
		}
		return nil
	}

	switch args[0] {
	case "volume", "vol":
		v, err := number()
		if err != nil {
			return hostCommand{}, err
		}
		if v < sis.MinVolume || v > sis.MaxVolume {
			return hostCommand{}, fmt.Errorf("volume must be between %d and %d", sis.MinVolume, sis.MaxVolume)
		}
		return hostCommand{
			unit: bridge.UnitVolume, command: bridge.CommandSetLevel, level: v,
			done: func(ev sis.Event) bool { return ev.Kind == sis.EventVolumeChanged && ev.Volume == v },
		}, nil

	case "mute":
		if err := noValue(); err != nil {
			return hostCommand{}, err
		}
		return hostCommand{
			unit: bridge.UnitVolume, command: bridge.CommandOff,
			done: func(ev sis.Event) bool { return ev.Kind == sis.EventMuteChanged && ev.Muted },
		}, nil

	case "unmute":
		if err := noValue(); err != nil {
			return hostCommand{}, err
		}
		return hostCommand{
			unit: bridge.UnitVolume, command: bridge.CommandOn,
			done: func(ev sis.Event) bool { return ev.Kind == sis.EventMuteChanged && !ev.Muted },
		}, nil

	case "input", "in":
		n, err := number()
		if err != nil {
			return hostCommand{}, err
		}
		if n < sis.MinInput || n > sis.MaxInput {
			return hostCommand{}, fmt.Errorf("input must be between %d and %d", sis.MinInput, sis.MaxInput)
		}
		return hostCommand{
			unit: bridge.UnitInput, command: bridge.CommandSetLevel, level: bridge.InputLevel(n),
			done: func(ev sis.Event) bool { return ev.Kind == sis.EventInputChanged && ev.Input == n },
		}, nil

	default:
		return hostCommand{}, fmt.Errorf("unknown command: %s", args[0])
	}
}

func runSend(cmd *cobra.Command, args []string) error {
	hc, err := parseHostCommand(args)
	if err != nil {
		return err
	}

	confirmed := make(chan sis.Event, 1)
	connErr := make(chan struct{}, 1)
	rejected := make(chan error, 1)

	var link *switcherLink
	connected := false
	onState := func(state bridge.ConnectionState) {
		switch state {
		case bridge.StateConnected:
			connected = true
			// Runs after the initial queries have been sent.
			link.loop.Post(func() {
				res, err := link.session.HandleCommand(hc.unit, hc.command, hc.level)
				if err != nil {
					rejected <- err
					return
				}
				fmt.Printf("Sent: %s\n", sis.FormatCommand(res.Command))
			})
		case bridge.StateDisconnected:
			if !connected {
				select {
				case connErr <- struct{}{}:
				default:
				}
			}
		}
	}
	onEvent := func(ev sis.Event) {
		if hc.done(ev) {
			select {
			case confirmed <- ev:
			default:
			}
		}
	}

	link, err = openLink(cfg, registry.NewMemory(), quietLogger(),
		bridge.WithStateListener(onState),
		bridge.WithEventListener(onEvent),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}

	fmt.Printf("Connection: %s\n", link.connInfo)

	// No reconnects while waiting: a failed connect is reported instead.
	if err := link.start(time.Hour); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	code := 0
	select {
	case ev := <-confirmed:
		fmt.Printf("SUCCESS: %s\n", sis.FormatEvent(ev))
	case err := <-rejected:
		fmt.Fprintf(os.Stderr, "Rejected: %v\n", err)
		code = 1
	case <-connErr:
		fmt.Fprintf(os.Stderr, "Connection error: could not connect to %s\n", link.connInfo)
		code = 2
	case <-time.After(time.Duration(sendTimeout) * time.Second):
		fmt.Fprintf(os.Stderr, "TIMEOUT: switcher did not confirm within %d seconds\n", sendTimeout)
		code = 1
	}

	link.stop()
	os.Exit(code)
	return nil
}
