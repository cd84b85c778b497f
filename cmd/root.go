// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Thermoquad/sspctl/pkg/config"
)

var (
	configPath string

	// TCP connection flags
	address string
	port    int

	// Serial connection flags
	portName string
	baudRate int

	// WebSocket connection flags
	wsURL         string
	wsNoSSLVerify bool

	logLevel string

	// Populated by the root PersistentPreRunE
	cfg    *config.Config
	logger zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "sspctl",
	Short: "Extron SSP 7.1 bridge",
	Long: `sspctl - Connects an Extron SSP 7.1 surround sound processor to a
home-automation host.

The switcher is driven over its SIS line protocol. Its mute, input and volume
are mirrored into two host controls (Volume and Input), and commands on those
controls are sent back to the switcher.

Connection modes:
  TCP:       --address 192.168.1.50 [--port 2001]
  Serial:    --serial /dev/ttyUSB0 [--baud 9600]
  WebSocket: --url ws://host/path

Settings are read from $XDG_CONFIG_HOME/sspctl/config.toml or
~/.config/sspctl/config.toml (or --config), then SSPCTL_* environment
variables, then flags.`,
	Version:           "1.0.0",
	SilenceUsage:      true,
	PersistentPreRunE: loadSettings,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (TOML)")

	// TCP connection flags
	rootCmd.PersistentFlags().StringVarP(&address, "address", "a", "", "Switcher host or IP address")
	rootCmd.PersistentFlags().IntVar(&port, "port", 2001, "Switcher SIS port (tcp only)")

	// Serial connection flags
	rootCmd.PersistentFlags().StringVarP(&portName, "serial", "p", "", "Serial port device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", 9600, "Baud rate (serial only)")

	// WebSocket connection flags
	rootCmd.PersistentFlags().StringVarP(&wsURL, "url", "u", "", "WebSocket serial bridge URL (ws:// or wss://)")
	rootCmd.PersistentFlags().BoolVar(&wsNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func loadSettings(cmd *cobra.Command, args []string) error {
	var err error
	if configPath != "" {
		cfg, err = config.LoadFrom(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	applyFlagOverrides(cmd, cfg)
	logger = newLogger(cfg.Log.Level)
	return nil
}

// applyFlagOverrides copies explicitly set connection flags into c. Choosing
// --serial or --url also selects that transport.
func applyFlagOverrides(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()

	if flags.Changed("address") {
		c.Switcher.Address = address
		c.Switcher.Transport = config.TransportTCP
	}
	if flags.Changed("port") {
		c.Switcher.Port = port
	}
	if flags.Changed("serial") {
		c.Switcher.SerialPort = portName
		c.Switcher.Transport = config.TransportSerial
	}
	if flags.Changed("baud") {
		c.Switcher.Baud = baudRate
	}
	if flags.Changed("url") {
		c.Switcher.URL = wsURL
		c.Switcher.Transport = config.TransportWebSocket
	}
	if flags.Changed("no-ssl-verify") {
		c.Switcher.SkipSSLVerify = wsNoSSLVerify
	}
	if flags.Changed("log-level") {
		c.Log.Level = logLevel
	}
}
