// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package hostbus connects the bridge to a home-automation host over NATS.
//
// Subjects, for a base subject S:
//
//	S.control.<unit>  control updates, published
//	S.state           connection and device state, published
//	S.command         host commands, subscribed; replied to when a reply
//	                  subject is set
package hostbus

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/Thermoquad/sspctl/pkg/bridge"
	"github.com/Thermoquad/sspctl/pkg/registry"
)

// CommandRequest is the payload of S.command.
type CommandRequest struct {
	Unit    int    `json:"unit"`
	Command string `json:"command"`
	Level   int    `json:"level"`
}

// CommandReply answers a CommandRequest.
type CommandReply struct {
	OK    bool   `json:"ok"`
	Sent  bool   `json:"sent,omitempty"`
	Error string `json:"error,omitempty"`
}

// Bus publishes bridge state to NATS and forwards host commands.
type Bus struct {
	nc      *nats.Conn
	subject string
	run     bridge.CommandFunc
	log     zerolog.Logger
	sub     *nats.Subscription
	owned   bool
}

// Connect dials a NATS server and returns a Bus that owns the connection.
func Connect(url, subject string, run bridge.CommandFunc, log zerolog.Logger) (*Bus, error) {
	nc, err := nats.Connect(url,
		nats.Name("sspctl"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn().Err(err).Msg("nats disconnected")
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info().Str("url", c.ConnectedUrl()).Msg("nats reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", url, err)
	}

	b := New(nc, subject, run, log)
	b.owned = true
	return b, nil
}

// New creates a Bus on an existing connection.
func New(nc *nats.Conn, subject string, run bridge.CommandFunc, log zerolog.Logger) *Bus {
	return &Bus{nc: nc, subject: subject, run: run, log: log}
}

// CommandSubject returns the subject host commands arrive on.
func (b *Bus) CommandSubject() string {
	return b.subject + ".command"
}

// StateSubject returns the subject state changes are published on.
func (b *Bus) StateSubject() string {
	return b.subject + ".state"
}

// ControlSubject returns the subject updates of unit are published on.
func (b *Bus) ControlSubject(unit bridge.Unit) string {
	return fmt.Sprintf("%s.control.%d", b.subject, int(unit))
}

// Start subscribes to host commands.
func (b *Bus) Start() error {
	sub, err := b.nc.Subscribe(b.CommandSubject(), b.handleCommand)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", b.CommandSubject(), err)
	}
	b.sub = sub
	b.log.Info().Str("subject", b.CommandSubject()).Msg("listening for host commands")
	return nil
}

// Close unsubscribes and, if the Bus opened the connection, drains it.
func (b *Bus) Close() error {
	var errs []error
	if b.sub != nil {
		errs = append(errs, b.sub.Unsubscribe())
		b.sub = nil
	}
	if b.owned {
		errs = append(errs, b.nc.Drain())
	}
	return errors.Join(errs...)
}

// PublishChange publishes a registry change on the control's subject.
func (b *Bus) PublishChange(ch registry.Change) {
	b.publish(b.ControlSubject(ch.Control.Unit), ch)
}

// PublishState publishes a session snapshot.
func (b *Bus) PublishState(snap bridge.Snapshot) {
	b.publish(b.StateSubject(), snap)
}

func (b *Bus) publish(subject string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		b.log.Error().Err(err).Str("subject", subject).Msg("encode failed")
		return
	}
	if err := b.nc.Publish(subject, data); err != nil {
		b.log.Warn().Err(err).Str("subject", subject).Msg("publish failed")
	}
}

func (b *Bus) handleCommand(msg *nats.Msg) {
	reply := b.process(msg.Data)
	if msg.Reply == "" {
		return
	}
	data, _ := json.Marshal(reply)
	if err := msg.Respond(data); err != nil {
		b.log.Warn().Err(err).Msg("reply failed")
	}
}

// process decodes and runs one command payload.
func (b *Bus) process(data []byte) CommandReply {
	var req CommandRequest
	if err := json.Unmarshal(data, &req); err != nil {
		b.log.Warn().Err(err).Msg("bad host command")
		return CommandReply{Error: fmt.Sprintf("invalid command: %v", err)}
	}

	b.log.Debug().
		Int("unit", req.Unit).
		Str("command", req.Command).
		Int("level", req.Level).
		Msg("host command from bus")

	res, err := b.run(bridge.Unit(req.Unit), req.Command, req.Level)
	if err != nil {
		return CommandReply{Error: err.Error()}
	}
	return CommandReply{OK: true, Sent: res.Sent}
}
