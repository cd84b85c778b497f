// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package transport

import (
	"context"
	"fmt"

	"github.com/Thermoquad/sspctl/pkg/config"
)

// DialFunc opens a new connection to the switcher.
type DialFunc func(ctx context.Context) (Connection, error)

// NewDialer returns a DialFunc for the configured transport and a short
// description of the target.
func NewDialer(cfg config.SwitcherConfig) (DialFunc, string, error) {
	timeout := cfg.DialTimeoutDuration()

	switch cfg.Transport {
	case config.TransportTCP, "":
		if cfg.Address == "" {
			return nil, "", fmt.Errorf("no switcher address configured")
		}
		dial := func(ctx context.Context) (Connection, error) {
			return OpenTCPConnection(ctx, cfg.Address, cfg.Port, timeout)
		}
		return dial, fmt.Sprintf("TCP: %s:%d", cfg.Address, cfg.Port), nil

	case config.TransportSerial:
		if cfg.SerialPort == "" {
			return nil, "", fmt.Errorf("no serial port configured")
		}
		dial := func(ctx context.Context) (Connection, error) {
			return OpenSerialConnection(cfg.SerialPort, cfg.Baud)
		}
		return dial, fmt.Sprintf("Serial: %s @ %d baud", cfg.SerialPort, cfg.Baud), nil

	case config.TransportWebSocket:
		if cfg.URL == "" {
			return nil, "", fmt.Errorf("no websocket url configured")
		}
		dial := func(ctx context.Context) (Connection, error) {
			return OpenWebSocketConnection(ctx, cfg.URL, cfg.SkipSSLVerify, timeout)
		}
		return dial, fmt.Sprintf("WebSocket: %s", cfg.URL), nil

	default:
		return nil, "", fmt.Errorf("unsupported transport: %s", cfg.Transport)
	}
}
