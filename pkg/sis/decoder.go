// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package sis

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// EventKind identifies a decoded status line.
type EventKind uint8

const (
	EventUnrecognized EventKind = iota
	EventMuteChanged
	EventInputChanged
	EventVolumeChanged
)

// Event is the result of decoding one status line. Only the field matching
// Kind is meaningful; Raw always holds the trimmed line.
type Event struct {
	Kind   EventKind
	Muted  bool
	Input  int
	Volume int
	Raw    string
}

// Patterns are anchored to the end of the line only; the switcher may put
// other text in front of a status.
var (
	reMute   = regexp.MustCompile(MuteTag + `([01])$`)
	reInput  = regexp.MustCompile(InputTag + `(\d)$`)
	reVolume = regexp.MustCompile(VolumeTag + `(\d+)$`)
)

// Decode parses one received line. It never fails: anything that does not
// match a known status becomes an EventUnrecognized carrying the line.
// Mute is tried first, then input, then volume.
func Decode(line []byte) Event {
	s := strings.TrimRightFunc(string(line), unicode.IsSpace)

	if m := reMute.FindStringSubmatch(s); m != nil {
		return Event{Kind: EventMuteChanged, Muted: m[1] == "1", Raw: s}
	}
	if m := reInput.FindStringSubmatch(s); m != nil {
		// A single ASCII digit always parses
		n, _ := strconv.Atoi(m[1])
		return Event{Kind: EventInputChanged, Input: n, Raw: s}
	}
	if m := reVolume.FindStringSubmatch(s); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			return Event{Kind: EventVolumeChanged, Volume: v, Raw: s}
		}
	}
	return Event{Kind: EventUnrecognized, Raw: s}
}

// DecodeString is Decode for string input.
func DecodeString(line string) Event {
	return Decode([]byte(line))
}

// Recognized reports whether the event carries switcher state.
func (e Event) Recognized() bool {
	return e.Kind != EventUnrecognized
}
