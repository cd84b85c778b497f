// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package sis

// CommandKind identifies an outgoing SIS command.
type CommandKind uint8

const (
	CmdGetMute CommandKind = iota + 1
	CmdSetMute
	CmdGetInput
	CmdSetInput
	CmdGetVolume
	CmdSetVolume
)

// Command is an outgoing SIS command. Commands are values: build them with
// the constructor functions and pass them around by copy.
type Command struct {
	kind  CommandKind
	value int
}

// NewGetMute queries the global mute state.
func NewGetMute() Command {
	return Command{kind: CmdGetMute}
}

// NewSetMute mutes (true) or unmutes (false) all outputs.
func NewSetMute(muted bool) Command {
	v := 0
	if muted {
		v = 1
	}
	return Command{kind: CmdSetMute, value: v}
}

// NewGetInput queries the selected audio input.
func NewGetInput() Command {
	return Command{kind: CmdGetInput}
}

// NewSetInput selects audio input n (1-based).
func NewSetInput(n int) Command {
	return Command{kind: CmdSetInput, value: n}
}

// NewGetVolume queries the volume level.
func NewGetVolume() Command {
	return Command{kind: CmdGetVolume}
}

// NewSetVolume sets the volume level.
// The level is sent as given; the switcher rejects values it cannot apply.
func NewSetVolume(level int) Command {
	return Command{kind: CmdSetVolume, value: level}
}

// InitialQueries returns the queries that seed a fresh session, in the order
// they are sent after connecting.
func InitialQueries() []Command {
	return []Command{NewGetMute(), NewGetInput(), NewGetVolume()}
}

// Kind returns the command kind.
func (c Command) Kind() CommandKind {
	return c.kind
}

// Value returns the numeric argument of a set command (0 for queries).
// For SetMute it is 1 when muting and 0 when unmuting.
func (c Command) Value() int {
	return c.value
}

// IsQuery reports whether the command only reads state.
func (c Command) IsQuery() bool {
	switch c.kind {
	case CmdGetMute, CmdGetInput, CmdGetVolume:
		return true
	}
	return false
}
