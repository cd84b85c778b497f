// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package sis

import "strconv"

// Encode returns the wire form of a command. No line terminator is added.
// The zero Command encodes to the empty string.
func Encode(c Command) string {
	switch c.kind {
	case CmdGetMute:
		return MuteSuffix
	case CmdSetMute:
		return strconv.Itoa(c.value) + MuteSuffix
	case CmdGetInput:
		return InputSuffix
	case CmdSetInput:
		return strconv.Itoa(c.value) + InputSuffix
	case CmdGetVolume:
		return VolumeSuffix
	case CmdSetVolume:
		return strconv.Itoa(c.value) + VolumeSuffix
	default:
		return ""
	}
}

// String implements fmt.Stringer using the wire form.
func (c Command) String() string {
	return Encode(c)
}
