// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package bridge

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Thermoquad/sspctl/pkg/sis"
)

// Sender hands an encoded command to the switcher. It reports whether the
// command was written; a command that could not be written is dropped.
type Sender interface {
	Send(cmd sis.Command) bool
}

// Result describes a dispatched host command.
type Result struct {
	Command sis.Command
	Sent    bool
}

// Dispatcher maps host commands on the registry controls to SIS commands.
type Dispatcher struct {
	sender Sender
	log    zerolog.Logger
}

// NewDispatcher creates a dispatcher sending through sender.
func NewDispatcher(sender Sender, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{sender: sender, log: log}
}

// Translate returns the SIS command for a host command without sending it.
//
// Volume accepts "Set Level" (volume), "On" (unmute) and "Off" (mute).
// Input accepts "Set Level", where the level is ten times the input number.
func Translate(unit Unit, command string, level int) (sis.Command, error) {
	switch unit {
	case UnitVolume:
		switch command {
		case CommandSetLevel:
			return sis.NewSetVolume(level), nil
		case CommandOn:
			return sis.NewSetMute(false), nil
		case CommandOff:
			return sis.NewSetMute(true), nil
		default:
			return sis.Command{}, fmt.Errorf("%w: %q", ErrUnsupportedVolumeCommand, command)
		}

	case UnitInput:
		if command == CommandSetLevel {
			return sis.NewSetInput(InputFromLevel(level)), nil
		}
		return sis.Command{}, fmt.Errorf("%w: %q", ErrUnsupportedInputCommand, command)

	default:
		return sis.Command{}, fmt.Errorf("%w: %d", ErrUnsupportedUnit, int(unit))
	}
}

// Handle translates a host command and sends it. Exactly one command is sent
// for a supported unit and command; nothing is sent otherwise.
func (d *Dispatcher) Handle(unit Unit, command string, level int) (Result, error) {
	d.log.Debug().
		Int("unit", int(unit)).
		Str("command", command).
		Int("level", level).
		Msg("host command")

	cmd, err := Translate(unit, command, level)
	if err != nil {
		d.log.Error().Err(err).Int("unit", int(unit)).Msg("host command rejected")
		return Result{}, err
	}

	return Result{Command: cmd, Sent: d.sender.Send(cmd)}, nil
}
