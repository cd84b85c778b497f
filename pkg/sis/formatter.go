// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package sis

import "fmt"

// FormatCommandKind returns the human-readable name for a command kind
func FormatCommandKind(k CommandKind) string {
	switch k {
	case CmdGetMute:
		return "GET_MUTE"
	case CmdSetMute:
		return "SET_MUTE"
	case CmdGetInput:
		return "GET_INPUT"
	case CmdSetInput:
		return "SET_INPUT"
	case CmdGetVolume:
		return "GET_VOLUME"
	case CmdSetVolume:
		return "SET_VOLUME"
	default:
		return "UNKNOWN"
	}
}

// FormatEventKind returns the human-readable name for an event kind
func FormatEventKind(k EventKind) string {
	switch k {
	case EventMuteChanged:
		return "MUTE"
	case EventInputChanged:
		return "INPUT"
	case EventVolumeChanged:
		return "VOLUME"
	default:
		return "UNRECOGNIZED"
	}
}

// FormatCommand formats a command with its wire form
func FormatCommand(c Command) string {
	switch c.kind {
	case CmdSetMute:
		return fmt.Sprintf("%s muted=%t (%q)", FormatCommandKind(c.kind), c.value == 1, Encode(c))
	case CmdSetInput:
		return fmt.Sprintf("%s input=%d (%q)", FormatCommandKind(c.kind), c.value, Encode(c))
	case CmdSetVolume:
		return fmt.Sprintf("%s level=%d (%q)", FormatCommandKind(c.kind), c.value, Encode(c))
	default:
		return fmt.Sprintf("%s (%q)", FormatCommandKind(c.kind), Encode(c))
	}
}

// FormatEvent formats a decoded event into a single line
func FormatEvent(e Event) string {
	switch e.Kind {
	case EventMuteChanged:
		state := "unmuted"
		if e.Muted {
			state = "muted"
		}
		return fmt.Sprintf("%s %s", FormatEventKind(e.Kind), state)
	case EventInputChanged:
		return fmt.Sprintf("%s %d", FormatEventKind(e.Kind), e.Input)
	case EventVolumeChanged:
		return fmt.Sprintf("%s %d", FormatEventKind(e.Kind), e.Volume)
	default:
		return fmt.Sprintf("%s %q", FormatEventKind(e.Kind), e.Raw)
	}
}
