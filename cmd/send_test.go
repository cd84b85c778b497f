// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"testing"

	"github.com/Thermoquad/sspctl/pkg/bridge"
	"github.com/Thermoquad/sspctl/pkg/sis"
)

func TestParseHostCommand(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		unit    bridge.Unit
		command string
		level   int
		confirm sis.Event
	}{
		{"volume", []string{"volume", "42"}, bridge.UnitVolume, bridge.CommandSetLevel, 42, sis.DecodeString("Vol42")},
		{"vol alias", []string{"vol", "0"}, bridge.UnitVolume, bridge.CommandSetLevel, 0, sis.DecodeString("Vol0")},
		{"mute", []string{"mute"}, bridge.UnitVolume, bridge.CommandOff, 0, sis.DecodeString("Amt1")},
		{"unmute", []string{"unmute"}, bridge.UnitVolume, bridge.CommandOn, 0, sis.DecodeString("Amt0")},
		{"input", []string{"input", "3"}, bridge.UnitInput, bridge.CommandSetLevel, 30, sis.DecodeString("Aud3")},
		{"in alias", []string{"in", "5"}, bridge.UnitInput, bridge.CommandSetLevel, 50, sis.DecodeString("Aud5")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hc, err := parseHostCommand(tt.args)
			if err != nil {
				t.Fatalf("parseHostCommand(%v) error: %v", tt.args, err)
			}
			if hc.unit != tt.unit || hc.command != tt.command || hc.level != tt.level {
				t.Errorf("got (%v, %q, %d), want (%v, %q, %d)",
					hc.unit, hc.command, hc.level, tt.unit, tt.command, tt.level)
			}
			if !hc.done(tt.confirm) {
				t.Errorf("%q should confirm %v", tt.confirm.Raw, tt.args)
			}
		})
	}
}

func TestParseHostCommandConfirmation(t *testing.T) {
	hc, err := parseHostCommand([]string{"volume", "42"})
	if err != nil {
		t.Fatal(err)
	}
	for _, line := range []string{"Vol41", "Amt1", "Aud4", "garbage"} {
		if hc.done(sis.DecodeString(line)) {
			t.Errorf("%q should not confirm volume 42", line)
		}
	}

	hc, err = parseHostCommand([]string{"mute"})
	if err != nil {
		t.Fatal(err)
	}
	if hc.done(sis.DecodeString("Amt0")) {
		t.Error("Amt0 should not confirm mute")
	}
}

func TestParseHostCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"empty", nil},
		{"unknown", []string{"power", "on"}},
		{"volume without value", []string{"volume"}},
		{"volume not a number", []string{"volume", "loud"}},
		{"volume too high", []string{"volume", "101"}},
		{"volume negative", []string{"volume", "-1"}},
		{"mute with value", []string{"mute", "1"}},
		{"unmute with value", []string{"unmute", "0"}},
		{"input zero", []string{"input", "0"}},
		{"input too high", []string{"input", "10"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseHostCommand(tt.args); err == nil {
				t.Errorf("parseHostCommand(%v) should fail", tt.args)
			}
		})
	}
}
