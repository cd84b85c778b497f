// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package bridge

import (
	"github.com/rs/zerolog"

	"github.com/Thermoquad/sspctl/pkg/sis"
)

// Transport is the line link to the switcher.
//
// Connect starts a connection attempt and returns immediately; the outcome
// arrives later through the session's OnTransportConnected or
// OnTransportDisconnected. Send writes one line, adding the line terminator.
// Disconnect drops the current connection or attempt, if any.
type Transport interface {
	Connect() error
	Send(line string) error
	Disconnect() error
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Session) {
		s.log = log
	}
}

// WithControls sets the controls registered by Start.
func WithControls(specs []ControlSpec) Option {
	return func(s *Session) {
		s.controls = specs
	}
}

// WithStateListener registers a function called after every connection
// state change, on the session's goroutine.
func WithStateListener(fn func(ConnectionState)) Option {
	return func(s *Session) {
		s.stateListeners = append(s.stateListeners, fn)
	}
}

// WithEventListener registers a function called for every decoded line,
// recognized or not, on the session's goroutine.
func WithEventListener(fn func(sis.Event)) Option {
	return func(s *Session) {
		s.eventListeners = append(s.eventListeners, fn)
	}
}

// Session is the connection state machine for one switcher.
type Session struct {
	transport  Transport
	sync       *Sync
	dispatcher *Dispatcher
	controls   []ControlSpec

	state  ConnectionState
	device DeviceState
	stats  *Statistics

	stateListeners []func(ConnectionState)
	eventListeners []func(sis.Event)

	log zerolog.Logger
}

// NewSession creates a disconnected session.
func NewSession(transport Transport, registry Registry, opts ...Option) *Session {
	s := &Session{
		transport: transport,
		controls:  DefaultControls(ParseInputLabels(DefaultInputLabels)),
		state:     StateDisconnected,
		device:    initialDeviceState(),
		stats:     NewStatistics(),
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.sync = NewSync(registry, s.log)
	s.dispatcher = NewDispatcher(s, s.log)
	return s
}

// State returns the connection state.
func (s *Session) State() ConnectionState {
	return s.state
}

// Device returns the last reported switcher state.
func (s *Session) Device() DeviceState {
	return s.device
}

// Statistics returns a snapshot of the session counters.
func (s *Session) Statistics() Statistics {
	snap := s.stats.Snapshot()
	snap.RegistryWrites = s.sync.Writes()
	return snap
}

// Start registers the controls that are missing from the registry.
// The connection itself is opened by the first heartbeat.
func (s *Session) Start() error {
	s.log.Info().Msg("session starting")
	return s.sync.EnsureControls(s.controls)
}

// Stop drops the connection, if any.
func (s *Session) Stop() {
	s.log.Info().Str("state", s.state.String()).Msg("session stopping")
	if s.state != StateDisconnected {
		if err := s.transport.Disconnect(); err != nil {
			s.log.Warn().Err(err).Msg("disconnect failed")
		}
	}
	s.setState(StateDisconnected)
}

// OnHeartbeat opens a connection when there is none. A live or pending
// connection is left alone.
func (s *Session) OnHeartbeat() {
	switch s.state {
	case StateDisconnected:
		s.log.Info().Msg("connecting")
		s.setState(StateConnecting)
		if err := s.transport.Connect(); err != nil {
			s.log.Error().Err(err).Msg("connect failed")
			s.setState(StateDisconnected)
		}
	case StateConnecting:
		s.log.Debug().Msg("not yet connected, ignoring heartbeat")
	case StateConnected:
	}
}

// OnTransportConnected marks the session connected and queries the
// switcher's mute, input and volume.
func (s *Session) OnTransportConnected() {
	s.log.Info().Msg("connected")
	s.stats.Connects++
	s.setState(StateConnected)
	for _, q := range sis.InitialQueries() {
		s.Send(q)
	}
}

// OnTransportDisconnected marks the session disconnected. The next
// heartbeat reconnects.
func (s *Session) OnTransportDisconnected() {
	s.log.Info().Str("state", s.state.String()).Msg("disconnected")
	if s.state != StateDisconnected {
		s.stats.Disconnects++
	}
	s.setState(StateDisconnected)
}

// OnLineReceived decodes a status line and applies it.
func (s *Session) OnLineReceived(line []byte) {
	ev := sis.Decode(line)
	s.stats.RecordEvent(ev)

	for _, fn := range s.eventListeners {
		fn(ev)
	}

	switch ev.Kind {
	case sis.EventMuteChanged:
		s.device.Muted = ev.Muted
		s.log.Info().Bool("muted", ev.Muted).Msg("mute")
	case sis.EventInputChanged:
		s.device.Input = ev.Input
		s.log.Info().Int("input", ev.Input).Msg("input")
	case sis.EventVolumeChanged:
		s.device.Volume = ev.Volume
		s.log.Info().Int("volume", ev.Volume).Msg("volume")
	default:
		s.log.Debug().Str("line", ev.Raw).Msg("unrecognized line ignored")
		return
	}

	if _, err := s.sync.Apply(ev); err != nil {
		s.log.Error().Err(err).Msg("control update failed")
	}
}

// HandleCommand dispatches a host command on one of the controls.
func (s *Session) HandleCommand(unit Unit, command string, level int) (Result, error) {
	return s.dispatcher.Handle(unit, command, level)
}

// Send writes a command when connected. Otherwise the command is dropped:
// commands are never queued.
func (s *Session) Send(cmd sis.Command) bool {
	line := sis.Encode(cmd)
	if s.state != StateConnected {
		s.stats.CommandsDropped++
		s.log.Info().Str("command", line).Msg("not sending since not connected")
		return false
	}

	s.log.Debug().Str("command", line).Msg("sending")
	if err := s.transport.Send(line); err != nil {
		s.stats.SendErrors++
		s.log.Warn().Err(err).Str("command", line).Msg("send failed")
		return false
	}
	s.stats.CommandsSent++
	return true
}

func (s *Session) setState(state ConnectionState) {
	if s.state == state {
		return
	}
	s.state = state
	for _, fn := range s.stateListeners {
		fn(state)
	}
}
