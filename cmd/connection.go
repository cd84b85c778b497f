// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/Thermoquad/sspctl/pkg/bridge"
	"github.com/Thermoquad/sspctl/pkg/config"
	"github.com/Thermoquad/sspctl/pkg/transport"
)

// switcherLink is a session running on its own loop, connected through a
// line transport.
type switcherLink struct {
	loop      *bridge.Loop
	session   *bridge.Session
	transport *transport.LineTransport
	connInfo  string
	labels    []string

	cancel  context.CancelFunc
	stopped chan struct{}
}

// openLink builds the transport, loop and session for the configured
// switcher. Nothing is dialed until start.
func openLink(c *config.Config, registry bridge.Registry, log zerolog.Logger, opts ...bridge.Option) (*switcherLink, error) {
	dial, connInfo, err := transport.NewDialer(c.Switcher)
	if err != nil {
		return nil, err
	}

	loop := bridge.NewLoop()
	lt := transport.NewLineTransport(dial, loop,
		transport.WithLineEnding(c.Switcher.LineEnding),
		transport.WithLogger(log.With().Str("component", "transport").Logger()),
	)

	labels := bridge.ParseInputLabels(c.Host.Inputs)
	opts = append([]bridge.Option{
		bridge.WithLogger(log.With().Str("component", "session").Logger()),
		bridge.WithControls(bridge.DefaultControls(labels)),
	}, opts...)

	session := bridge.NewSession(lt, registry, opts...)
	lt.SetHandler(session)

	return &switcherLink{
		loop:      loop,
		session:   session,
		transport: lt,
		connInfo:  connInfo,
		labels:    labels,
		stopped:   make(chan struct{}),
	}, nil
}

// start runs the loop, registers the controls and starts the heartbeat,
// which connects immediately.
func (l *switcherLink) start(heartbeat time.Duration) error {
	ctx, cancel := context.WithCancel(context.Background())
	l.cancel = cancel

	go func() {
		defer close(l.stopped)
		l.loop.Run(ctx)
	}()

	if err := l.loop.Call(l.session.Start); err != nil {
		cancel()
		return fmt.Errorf("failed to register controls: %w", err)
	}

	go l.loop.Every(ctx, heartbeat, l.session.OnHeartbeat)
	return nil
}

// stop disconnects on the loop and then ends it.
func (l *switcherLink) stop() {
	if l.cancel == nil {
		return
	}
	l.loop.Call(func() error {
		l.session.Stop()
		return nil
	})
	l.cancel()
	<-l.stopped
}

// commands returns a CommandFunc usable from any goroutine.
func (l *switcherLink) commands() bridge.CommandFunc {
	return bridge.LoopCommands(l.loop, l.session)
}

// snapshot returns a SnapshotFunc usable from any goroutine.
func (l *switcherLink) snapshot() bridge.SnapshotFunc {
	return bridge.LoopSnapshot(l.loop, l.session)
}
