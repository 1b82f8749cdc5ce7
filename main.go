// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Voltaic Labs
//
// Wattson - HT7017 Energy Meter Monitor
//
// A CLI tool for polling HT7017 single-phase energy-metering ICs over a
// half-duplex serial link and presenting the measurements.

package main

import (
	"os"

	"github.com/voltaic-dev/wattson/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
