// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad
//
// sspctl - Extron SSP 7.1 Bridge
//
// Connects an Extron SSP 7.1 surround processor to a home-automation
// host over the SIS protocol and keeps the host's volume and input
// controls in sync with the switcher.

package main

import (
	"os"

	"github.com/Thermoquad/sspctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
