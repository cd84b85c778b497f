// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package bridge keeps an Extron SSP 7.1 and a home-automation device
// registry in step.
//
// A Session owns the connection to the switcher and the last state it
// reported. Status lines decoded by package sis are written through a Sync
// into two registry controls (Volume and Input), and host commands on those
// controls are turned into SIS commands by a Dispatcher.
//
// Session is not safe for concurrent use. All of its methods are meant to be
// called from one goroutine, normally the one running a Loop; transports and
// host surfaces post their events into the Loop instead of calling the
// Session directly.
package bridge

// ConnectionState describes the link to the switcher.
type ConnectionState int

const (
	StateDisconnected ConnectionState = iota
	StateConnecting
	StateConnected
)

func (s ConnectionState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// DeviceState caches the values last reported by the switcher. Each field is
// replaced whole when a status line for it is decoded.
type DeviceState struct {
	Input  int  `json:"input"`
	Muted  bool `json:"muted"`
	Volume int  `json:"volume"`
}

// Values assumed until the switcher reports otherwise.
const (
	defaultInput  = 1
	defaultVolume = 50
)

func initialDeviceState() DeviceState {
	return DeviceState{Input: defaultInput, Volume: defaultVolume}
}
