// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Voltaic Labs

package cmd

import (
	"github.com/spf13/cobra"
)

var (
	// Serial connection flags
	portName string
	baudRate int
	noParity bool

	// WebSocket connection flags
	wsURL         string
	wsUsername    string
	wsNoSSLVerify bool

	// Configuration file
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "wattson",
	Short: "HT7017 energy meter monitor",
	Long: `Wattson - A CLI tool for polling and monitoring HT7017 single-phase
energy-metering ICs over a serial link.

The HT7017 is polled one register at a time (voltage, current, active power,
mains frequency) with checksum validation, bounded retry and automatic
rotation past silent registers. Commands cover live monitoring, a terminal
dashboard, link diagnostics, one-shot probing and telemetry publishing.

Connection modes:
  Serial:    --port /dev/ttyUSB0 [--baud 4800] [--no-parity]
  WebSocket: --url ws://host/path [--username user]

The chip's physical layer is fixed at 4800 baud, even parity, 1 stop bit;
the flags exist for board variants that deviate. For WebSocket
authentication the password is read from the WATTSON_PASSWORD environment
variable, or prompted interactively if not set.`,
	Version: "1.0.0",
}

func init() {
	// Serial connection flags
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial port device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", 4800, "Baud rate (serial only)")
	rootCmd.PersistentFlags().BoolVar(&noParity, "no-parity", false, "Disable even parity (hardware variants)")

	// WebSocket connection flags
	rootCmd.PersistentFlags().StringVarP(&wsURL, "url", "u", "", "WebSocket URL of a serial bridge (ws:// or wss://)")
	rootCmd.PersistentFlags().StringVar(&wsUsername, "username", "", "Username for HTTP Basic auth")
	rootCmd.PersistentFlags().BoolVar(&wsNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Calibration config file (YAML)")
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
