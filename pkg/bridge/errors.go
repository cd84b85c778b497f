// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package bridge

import "errors"

var (
	ErrUnsupportedUnit          = errors.New("unsupported unit")
	ErrUnsupportedVolumeCommand = errors.New("unsupported volume command")
	ErrUnsupportedInputCommand  = errors.New("unsupported input command")
	ErrControlNotFound          = errors.New("control not found")
	ErrNotConnected             = errors.New("not connected")
	ErrLoopStopped              = errors.New("event loop stopped")
)
