// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package sis implements the subset of the Extron Simple Instruction Set (SIS)
// used to control an Extron SSP 7.1 audio switcher: mute, audio input and
// volume, each as a query or a set.
//
// SIS is a line-oriented ASCII protocol. Commands are short strings sent
// without framing; the switcher answers every query and every change with a
// status line such as "Amt1", "Aud3" or "Vol45". Status lines may also arrive
// unsolicited when the unit is operated from its front panel.
//
//	out  Z      query mute          in  ...Amt{0|1}   mute status
//	out  {m}Z   set mute (1=muted)  in  ...Aud{n}     input status
//	out  $      query input         in  ...Vol{n}     volume status
//	out  {n}$   set input
//	out  V      query volume
//	out  {n}V   set volume
//
// The codec is stateless: Encode turns a Command into exactly one wire line
// (without a terminator; line endings belong to the transport) and Decode
// turns one received line into an Event.
package sis

// Command suffixes
const (
	MuteSuffix   = "Z"
	InputSuffix  = "$"
	VolumeSuffix = "V"
)

// Response tags that prefix the value in a status line
const (
	MuteTag   = "Amt"
	InputTag  = "Aud"
	VolumeTag = "Vol"
)

// Value ranges
const (
	MinVolume = 0
	MaxVolume = 100
	MinInput  = 1
	MaxInput  = 9 // status lines carry a single input digit
)

// DefaultPort is the switcher's telnet control port.
const DefaultPort = 2001
