// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package bridge

import (
	"fmt"
	"time"

	"github.com/Thermoquad/sspctl/pkg/sis"
)

// Statistics tracks line, command and connection counters for a session
type Statistics struct {
	StartTime      time.Time `json:"start_time"`
	LastUpdateTime time.Time `json:"last_update_time"`

	// Counters
	LinesReceived   uint64 `json:"lines_received"`
	MuteEvents      uint64 `json:"mute_events"`
	InputEvents     uint64 `json:"input_events"`
	VolumeEvents    uint64 `json:"volume_events"`
	Unrecognized    uint64 `json:"unrecognized"`
	CommandsSent    uint64 `json:"commands_sent"`
	CommandsDropped uint64 `json:"commands_dropped"`
	SendErrors      uint64 `json:"send_errors"`
	Connects        uint64 `json:"connects"`
	Disconnects     uint64 `json:"disconnects"`
	RegistryWrites  uint64 `json:"registry_writes"`

	// Rates (calculated)
	LineRate float64 `json:"line_rate"` // lines/sec
}

// NewStatistics creates a new statistics tracker
func NewStatistics() *Statistics {
	now := time.Now()
	return &Statistics{
		StartTime:      now,
		LastUpdateTime: now,
	}
}

// RecordEvent counts a decoded line
func (s *Statistics) RecordEvent(ev sis.Event) {
	s.LinesReceived++
	switch ev.Kind {
	case sis.EventMuteChanged:
		s.MuteEvents++
	case sis.EventInputChanged:
		s.InputEvents++
	case sis.EventVolumeChanged:
		s.VolumeEvents++
	default:
		s.Unrecognized++
	}
	s.LastUpdateTime = time.Now()
}

// Recognized returns the number of lines that decoded to a status
func (s *Statistics) Recognized() uint64 {
	return s.MuteEvents + s.InputEvents + s.VolumeEvents
}

// CalculateRates calculates the line rate
func (s *Statistics) CalculateRates() {
	elapsed := time.Since(s.StartTime).Seconds()
	if elapsed > 0 {
		s.LineRate = float64(s.LinesReceived) / elapsed
	}
}

// Snapshot returns a copy with rates calculated. s is not modified.
func (s *Statistics) Snapshot() Statistics {
	snap := *s
	snap.CalculateRates()
	return snap
}

// Reconnects returns the number of connects after the first one.
func (s *Statistics) Reconnects() uint64 {
	if s.Connects == 0 {
		return 0
	}
	return s.Connects - 1
}

// String returns a formatted statistics summary
func (s *Statistics) String() string {
	s.CalculateRates()

	var recognizedPercent, unrecognizedPercent float64
	if s.LinesReceived > 0 {
		recognizedPercent = float64(s.Recognized()) * 100.0 / float64(s.LinesReceived)
		unrecognizedPercent = float64(s.Unrecognized) * 100.0 / float64(s.LinesReceived)
	}

	elapsed := time.Since(s.StartTime)

	result := fmt.Sprintf("=== Statistics (%.0f seconds) ===\n", elapsed.Seconds())
	result += fmt.Sprintf("Lines Received:  %8d\n", s.LinesReceived)
	result += fmt.Sprintf("Recognized:      %8d (%.1f%%)\n", s.Recognized(), recognizedPercent)
	if s.Recognized() > 0 {
		result += fmt.Sprintf("  Mute:             %5d\n", s.MuteEvents)
		result += fmt.Sprintf("  Input:            %5d\n", s.InputEvents)
		result += fmt.Sprintf("  Volume:           %5d\n", s.VolumeEvents)
	}
	if s.Unrecognized > 0 {
		result += fmt.Sprintf("Unrecognized:    %8d (%.1f%%)\n", s.Unrecognized, unrecognizedPercent)
	}
	result += fmt.Sprintf("Commands Sent:   %8d\n", s.CommandsSent)
	if s.CommandsDropped > 0 {
		result += fmt.Sprintf("Cmds Dropped:    %8d\n", s.CommandsDropped)
	}
	if s.SendErrors > 0 {
		result += fmt.Sprintf("Send Errors:     %8d\n", s.SendErrors)
	}
	result += fmt.Sprintf("Connects:        %8d\n", s.Connects)
	result += fmt.Sprintf("Disconnects:     %8d\n", s.Disconnects)
	result += fmt.Sprintf("Registry Writes: %8d\n", s.RegistryWrites)
	result += fmt.Sprintf("Line Rate:       %8.1f lines/sec\n", s.LineRate)
	result += "================================\n"

	return result
}

// Reset resets all statistics counters
func (s *Statistics) Reset() {
	*s = *NewStatistics()
}
