// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package bridge

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/Thermoquad/sspctl/pkg/sis"
)

func newTestSync(t *testing.T) (*Sync, *fakeRegistry) {
	t.Helper()
	reg := newFakeRegistry()
	s := NewSync(reg, zerolog.Nop())
	if err := s.EnsureControls(DefaultControls(ParseInputLabels(DefaultInputLabels))); err != nil {
		t.Fatalf("EnsureControls() error = %v", err)
	}
	return s, reg
}

func TestSync_Apply(t *testing.T) {
	tests := []struct {
		name   string
		event  sis.Event
		unit   Unit
		nValue int
		sValue string
	}{
		{"input 3", sis.Event{Kind: sis.EventInputChanged, Input: 3}, UnitInput, 0, "30"},
		{"input 1", sis.Event{Kind: sis.EventInputChanged, Input: 1}, UnitInput, 0, "10"},
		{"muted", sis.Event{Kind: sis.EventMuteChanged, Muted: true}, UnitVolume, 0, ""},
		{"unmuted", sis.Event{Kind: sis.EventMuteChanged, Muted: false}, UnitVolume, 1, ""},
		{"volume 12", sis.Event{Kind: sis.EventVolumeChanged, Volume: 12}, UnitVolume, 0, "12"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, reg := newTestSync(t)
			if _, err := s.Apply(tt.event); err != nil {
				t.Fatalf("Apply() error = %v", err)
			}
			c, err := reg.Get(tt.unit)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if c.NValue != tt.nValue || c.SValue != tt.sValue {
				t.Errorf("control = (%d, %q), want (%d, %q)", c.NValue, c.SValue, tt.nValue, tt.sValue)
			}
		})
	}
}

func TestSync_OmittedFieldKept(t *testing.T) {
	s, reg := newTestSync(t)

	mustApply(t, s, sis.Event{Kind: sis.EventVolumeChanged, Volume: 40})
	mustApply(t, s, sis.Event{Kind: sis.EventMuteChanged, Muted: false})

	c, _ := reg.Get(UnitVolume)
	if c.NValue != 1 || c.SValue != "40" {
		t.Errorf("control = (%d, %q), want (1, \"40\")", c.NValue, c.SValue)
	}

	mustApply(t, s, sis.Event{Kind: sis.EventMuteChanged, Muted: true})
	c, _ = reg.Get(UnitVolume)
	if c.NValue != 0 || c.SValue != "40" {
		t.Errorf("control = (%d, %q), want (0, \"40\")", c.NValue, c.SValue)
	}
}

func TestSync_Idempotent(t *testing.T) {
	s, reg := newTestSync(t)
	ev := sis.Event{Kind: sis.EventVolumeChanged, Volume: 40}

	wrote, err := s.Apply(ev)
	if err != nil || !wrote {
		t.Fatalf("first Apply() = %v, %v", wrote, err)
	}
	wrote, err = s.Apply(ev)
	if err != nil || wrote {
		t.Fatalf("second Apply() = %v, %v", wrote, err)
	}
	if reg.updates != 1 {
		t.Errorf("updates = %d, want 1", reg.updates)
	}
	if s.Writes() != 1 {
		t.Errorf("Writes() = %d, want 1", s.Writes())
	}
}

func TestSync_MissingControl(t *testing.T) {
	reg := newFakeRegistry()
	s := NewSync(reg, zerolog.Nop())

	wrote, err := s.Apply(sis.Event{Kind: sis.EventInputChanged, Input: 2})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if wrote || reg.updates != 0 {
		t.Errorf("wrote = %v, updates = %d", wrote, reg.updates)
	}
}

func TestSync_RegistryError(t *testing.T) {
	s, reg := newTestSync(t)
	boom := errors.New("registry down")
	reg.getErr = boom

	_, err := s.Apply(sis.Event{Kind: sis.EventVolumeChanged, Volume: 5})
	if !errors.Is(err, boom) {
		t.Errorf("Apply() error = %v, want %v", err, boom)
	}
}

func TestSync_UnrecognizedIgnored(t *testing.T) {
	s, reg := newTestSync(t)

	wrote, err := s.Apply(sis.DecodeString("XYZ123"))
	if err != nil || wrote {
		t.Errorf("Apply() = %v, %v", wrote, err)
	}
	if reg.updates != 0 {
		t.Errorf("updates = %d, want 0", reg.updates)
	}
}

func TestSync_EnsureControlsKeepsExisting(t *testing.T) {
	s, reg := newTestSync(t)
	mustApply(t, s, sis.Event{Kind: sis.EventVolumeChanged, Volume: 60})

	if err := s.EnsureControls(DefaultControls(nil)); err != nil {
		t.Fatalf("EnsureControls() error = %v", err)
	}
	if reg.creates != 2 {
		t.Errorf("creates = %d, want 2", reg.creates)
	}
	c, _ := reg.Get(UnitVolume)
	if c.SValue != "60" {
		t.Errorf("volume sValue = %q, want \"60\"", c.SValue)
	}
}

func mustApply(t *testing.T, s *Sync, ev sis.Event) {
	t.Helper()
	if _, err := s.Apply(ev); err != nil {
		t.Fatalf("Apply(%v) error = %v", ev, err)
	}
}
