// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package bridge

import (
	"errors"
	"sync"
	"testing"
)

type fakeTransport struct {
	connects    int
	disconnects int
	sent        []string
	connectErr  error
	sendErr     error
}

func (f *fakeTransport) Connect() error {
	f.connects++
	return f.connectErr
}

func (f *fakeTransport) Send(line string) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, line)
	return nil
}

func (f *fakeTransport) Disconnect() error {
	f.disconnects++
	return nil
}

type fakeRegistry struct {
	mu       sync.Mutex
	controls map[Unit]Control
	creates  int
	updates  int
	getErr   error
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{controls: make(map[Unit]Control)}
}

func (r *fakeRegistry) Get(unit Unit) (Control, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return Control{}, r.getErr
	}
	c, ok := r.controls[unit]
	if !ok {
		return Control{}, ErrControlNotFound
	}
	return c, nil
}

func (r *fakeRegistry) Exists(unit Unit) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.controls[unit]
	return ok, nil
}

func (r *fakeRegistry) Create(spec ControlSpec) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.controls[spec.Unit]; ok {
		return errors.New("control exists")
	}
	r.controls[spec.Unit] = Control{ControlSpec: spec}
	r.creates++
	return nil
}

func (r *fakeRegistry) Update(unit Unit, nValue int, sValue string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.controls[unit]
	if !ok {
		return ErrControlNotFound
	}
	c.NValue = nValue
	c.SValue = sValue
	r.controls[unit] = c
	r.updates++
	return nil
}

func (r *fakeRegistry) List() ([]Control, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Control, 0, len(r.controls))
	for _, c := range r.controls {
		out = append(out, c)
	}
	return out, nil
}

// newConnectedSession returns a started session that has completed one
// connect, with the initial queries cleared from the transport.
func newConnectedSession(t *testing.T) (*Session, *fakeTransport, *fakeRegistry) {
	tr := &fakeTransport{}
	reg := newFakeRegistry()
	t.Helper()
	s := NewSession(tr, reg)
	if err := s.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	s.OnHeartbeat()
	s.OnTransportConnected()
	tr.sent = nil
	return s, tr, reg
}
