// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package bridge

import (
	"errors"
	"reflect"
	"testing"

	"github.com/Thermoquad/sspctl/pkg/sis"
)

func TestSession_StartCreatesControls(t *testing.T) {
	reg := newFakeRegistry()
	s := NewSession(&fakeTransport{}, reg)

	if err := s.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if reg.creates != 2 {
		t.Fatalf("creates = %d, want 2", reg.creates)
	}

	// A second start finds both controls and creates nothing.
	if err := s.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if reg.creates != 2 {
		t.Errorf("creates after restart = %d, want 2", reg.creates)
	}
}

func TestSession_InitialState(t *testing.T) {
	s := NewSession(&fakeTransport{}, newFakeRegistry())
	if s.State() != StateDisconnected {
		t.Errorf("State() = %v, want disconnected", s.State())
	}
	want := DeviceState{Input: 1, Muted: false, Volume: 50}
	if s.Device() != want {
		t.Errorf("Device() = %+v, want %+v", s.Device(), want)
	}
}

func TestSession_HeartbeatConnects(t *testing.T) {
	tr := &fakeTransport{}
	s := NewSession(tr, newFakeRegistry())

	s.OnHeartbeat()
	if tr.connects != 1 {
		t.Fatalf("connects = %d, want 1", tr.connects)
	}
	if s.State() != StateConnecting {
		t.Fatalf("State() = %v, want connecting", s.State())
	}

	// Pending attempt is left alone.
	s.OnHeartbeat()
	if tr.connects != 1 {
		t.Errorf("connects after second heartbeat = %d, want 1", tr.connects)
	}

	s.OnTransportConnected()
	s.OnHeartbeat()
	if tr.connects != 1 {
		t.Errorf("connects while connected = %d, want 1", tr.connects)
	}
}

func TestSession_ConnectErrorReturnsToDisconnected(t *testing.T) {
	tr := &fakeTransport{connectErr: errors.New("refused")}
	s := NewSession(tr, newFakeRegistry())

	s.OnHeartbeat()
	if s.State() != StateDisconnected {
		t.Errorf("State() = %v, want disconnected", s.State())
	}
	s.OnHeartbeat()
	if tr.connects != 2 {
		t.Errorf("connects = %d, want 2", tr.connects)
	}
}

func TestSession_ReconnectQueriesState(t *testing.T) {
	tr := &fakeTransport{}
	s := NewSession(tr, newFakeRegistry())
	if err := s.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	s.OnHeartbeat()
	s.OnTransportConnected()
	s.OnTransportDisconnected()
	if s.State() != StateDisconnected {
		t.Fatalf("State() = %v, want disconnected", s.State())
	}

	tr.sent = nil
	s.OnHeartbeat()
	if tr.connects != 2 {
		t.Fatalf("connects = %d, want 2", tr.connects)
	}
	s.OnTransportConnected()

	want := []string{"Z", "$", "V"}
	if !reflect.DeepEqual(tr.sent, want) {
		t.Errorf("sent = %q, want %q", tr.sent, want)
	}

	stats := s.Statistics()
	if stats.Connects != 2 || stats.Disconnects != 1 {
		t.Errorf("connects/disconnects = %d/%d, want 2/1", stats.Connects, stats.Disconnects)
	}
}

func TestSession_SendWhileDisconnectedIsDropped(t *testing.T) {
	tr := &fakeTransport{}
	s := NewSession(tr, newFakeRegistry())

	if s.Send(sis.NewSetVolume(40)) {
		t.Error("Send() = true while disconnected")
	}
	if len(tr.sent) != 0 {
		t.Errorf("sent = %q, want nothing", tr.sent)
	}

	// Dropped commands are not replayed after connecting.
	s.OnHeartbeat()
	s.OnTransportConnected()
	want := []string{"Z", "$", "V"}
	if !reflect.DeepEqual(tr.sent, want) {
		t.Errorf("sent = %q, want %q", tr.sent, want)
	}
	if got := s.Statistics().CommandsDropped; got != 1 {
		t.Errorf("CommandsDropped = %d, want 1", got)
	}
}

func TestSession_SendError(t *testing.T) {
	s, tr, _ := newConnectedSession(t)
	tr.sendErr = errors.New("broken pipe")

	if s.Send(sis.NewGetVolume()) {
		t.Error("Send() = true on write error")
	}
	if got := s.Statistics().SendErrors; got != 1 {
		t.Errorf("SendErrors = %d, want 1", got)
	}
}

func TestSession_LinesUpdateControls(t *testing.T) {
	s, _, reg := newConnectedSession(t)

	s.OnLineReceived([]byte("Vol35\r\n"))
	s.OnLineReceived([]byte("Amt1\r\n"))
	s.OnLineReceived([]byte("Aud3\r\n"))

	vol, _ := reg.Get(UnitVolume)
	if vol.SValue != "35" || vol.NValue != 0 {
		t.Errorf("volume control = (%d, %q), want (0, \"35\")", vol.NValue, vol.SValue)
	}
	in, _ := reg.Get(UnitInput)
	if in.SValue != "30" {
		t.Errorf("input control sValue = %q, want \"30\"", in.SValue)
	}

	want := DeviceState{Input: 3, Muted: true, Volume: 35}
	if s.Device() != want {
		t.Errorf("Device() = %+v, want %+v", s.Device(), want)
	}
}

func TestSession_UnrecognizedLineChangesNothing(t *testing.T) {
	s, _, reg := newConnectedSession(t)
	before := reg.updates

	s.OnLineReceived([]byte("XYZ123"))

	if reg.updates != before {
		t.Errorf("updates = %d, want %d", reg.updates, before)
	}
	if s.Device() != initialDeviceState() {
		t.Errorf("Device() = %+v, want initial state", s.Device())
	}
	if got := s.Statistics().Unrecognized; got != 1 {
		t.Errorf("Unrecognized = %d, want 1", got)
	}
}

func TestSession_HandleCommand(t *testing.T) {
	s, tr, _ := newConnectedSession(t)

	res, err := s.HandleCommand(UnitInput, CommandSetLevel, 30)
	if err != nil {
		t.Fatalf("HandleCommand() error = %v", err)
	}
	if !res.Sent {
		t.Error("Result.Sent = false")
	}
	if !reflect.DeepEqual(tr.sent, []string{"3$"}) {
		t.Errorf("sent = %q, want [\"3$\"]", tr.sent)
	}
}

func TestSession_Stop(t *testing.T) {
	s, tr, _ := newConnectedSession(t)

	s.Stop()
	if tr.disconnects != 1 {
		t.Errorf("disconnects = %d, want 1", tr.disconnects)
	}
	if s.State() != StateDisconnected {
		t.Errorf("State() = %v, want disconnected", s.State())
	}

	// Already disconnected; the transport is not touched again.
	s.Stop()
	if tr.disconnects != 1 {
		t.Errorf("disconnects after second stop = %d, want 1", tr.disconnects)
	}
}

func TestSession_Listeners(t *testing.T) {
	var states []ConnectionState
	var events []sis.Event

	tr := &fakeTransport{}
	s := NewSession(tr, newFakeRegistry(),
		WithStateListener(func(st ConnectionState) { states = append(states, st) }),
		WithEventListener(func(ev sis.Event) { events = append(events, ev) }),
	)

	s.OnHeartbeat()
	s.OnTransportConnected()
	s.OnLineReceived([]byte("Vol10"))
	s.OnLineReceived([]byte("hello"))
	s.OnTransportDisconnected()

	wantStates := []ConnectionState{StateConnecting, StateConnected, StateDisconnected}
	if !reflect.DeepEqual(states, wantStates) {
		t.Errorf("states = %v, want %v", states, wantStates)
	}
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	if events[0].Kind != sis.EventVolumeChanged || events[1].Kind != sis.EventUnrecognized {
		t.Errorf("event kinds = %v, %v", events[0].Kind, events[1].Kind)
	}
}

func TestSession_WithControls(t *testing.T) {
	reg := newFakeRegistry()
	s := NewSession(&fakeTransport{}, reg, WithControls([]ControlSpec{VolumeControlSpec()}))
	if err := s.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if ok, _ := reg.Exists(UnitInput); ok {
		t.Error("input control created")
	}

	// Input status for a missing control is skipped without error.
	s.OnHeartbeat()
	s.OnTransportConnected()
	s.OnLineReceived([]byte("Aud2"))
	if s.Device().Input != 2 {
		t.Errorf("Device().Input = %d, want 2", s.Device().Input)
	}
}

func TestSession_StatisticsDoesNotModifyCounters(t *testing.T) {
	s, _, _ := newConnectedSession(t)

	s.OnLineReceived([]byte("Vol35\r\n"))
	s.OnLineReceived([]byte("Aud2\r\n"))

	stats := s.Statistics()
	if stats.RegistryWrites != s.sync.Writes() || stats.RegistryWrites == 0 {
		t.Errorf("RegistryWrites = %d, want %d", stats.RegistryWrites, s.sync.Writes())
	}
	if s.stats.RegistryWrites != 0 || s.stats.LineRate != 0 {
		t.Errorf("Statistics() changed session counters: writes=%d rate=%f",
			s.stats.RegistryWrites, s.stats.LineRate)
	}
}
