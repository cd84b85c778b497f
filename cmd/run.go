// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/sspctl/pkg/api"
	"github.com/Thermoquad/sspctl/pkg/bridge"
	"github.com/Thermoquad/sspctl/pkg/hostbus"
	"github.com/Thermoquad/sspctl/pkg/registry"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the bridge",
	Long: `Run the bridge between the switcher and the host registry.

The Volume and Input controls are created in the registry if missing. The
switcher connection is (re)opened on every heartbeat while it is down, and
the switcher's mute, input and volume are queried on each connect.

With [nats] url set, control updates and state changes are published and
host commands are accepted on NATS. With [http] listen set, the HTTP API and
its websocket stream are served.

Stops on SIGINT or SIGTERM.`,
	RunE: runBridge,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runBridge(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	store, err := registry.Open(cfg.Registry)
	if err != nil {
		return err
	}
	if closer, ok := store.(io.Closer); ok {
		defer closer.Close()
	}
	notifier := registry.NewNotifier(store)

	var (
		link       *switcherLink
		publishers []func(bridge.Snapshot)
	)
	onState := func(bridge.ConnectionState) {
		snap := link.session.Snapshot()
		for _, publish := range publishers {
			publish(snap)
		}
	}

	link, err = openLink(cfg, notifier, logger, bridge.WithStateListener(onState))
	if err != nil {
		return err
	}

	logger.Info().
		Str("switcher", link.connInfo).
		Str("registry", cfg.Registry.Backend).
		Dur("heartbeat", cfg.Host.HeartbeatInterval()).
		Msg("starting bridge")

	if cfg.NATS.URL != "" {
		bus, err := hostbus.Connect(cfg.NATS.URL, cfg.NATS.Subject, link.commands(),
			logger.With().Str("component", "hostbus").Logger())
		if err != nil {
			return err
		}
		defer bus.Close()
		if err := bus.Start(); err != nil {
			return err
		}
		notifier.Subscribe(bus.PublishChange)
		publishers = append(publishers, bus.PublishState)
	}

	httpErr := make(chan error, 1)
	if cfg.HTTP.Listen != "" {
		srv := api.NewServer(notifier, link.commands(), link.snapshot(),
			logger.With().Str("component", "api").Logger())
		notifier.Subscribe(srv.PublishChange)
		publishers = append(publishers, srv.PublishState)

		go func() { httpErr <- srv.ListenAndServe(cfg.HTTP.Listen) }()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(ctx)
		}()
	}

	if err := link.start(cfg.Host.HeartbeatInterval()); err != nil {
		return err
	}
	defer link.stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutting down")
		return nil
	case err := <-httpErr:
		return err
	}
}
