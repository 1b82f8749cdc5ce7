// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Voltaic Labs

package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/voltaic-dev/wattson/pkg/ht7017"
)

var (
	monitorStatsInterval int
	monitorRawOnly       bool
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Log decoded meter readings as they arrive",
	Long: `Polls the meter's register rotation and prints each validated reading
with a timestamp, the raw 24-bit register value and the scaled physical
value. A link status block is printed periodically.

Example output:
  [14:23:05.102] RMS_U (0x08) raw=0x291800 value=244.3 V
  [14:23:06.104] RMS_I1 (0x06) raw=0x0A12F0 value=4.012 A

Press Ctrl+C to stop.`,
	RunE: runMonitor,
}

func init() {
	monitorCmd.Flags().IntVar(&monitorStatsInterval, "stats-interval", 10, "Seconds between link status blocks (0 to disable)")
	monitorCmd.Flags().BoolVar(&monitorRawOnly, "raw", false, "Print raw register values only, skip scaling")
	rootCmd.AddCommand(monitorCmd)
}

func runMonitor(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	fmt.Printf("Connected: %s\n", s.desc)
	fmt.Println("Monitoring HT7017 register rotation. Press Ctrl+C to stop.")
	fmt.Println()

	stop := make(chan struct{})
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		close(stop)
	}()

	lastStats := time.Now()
	err = s.runEngineLoop(stop,
		func(r ht7017.Reading) {
			if monitorRawOnly {
				fmt.Printf("[%s] %s (0x%02X) raw=0x%06X\n",
					time.Now().Format("15:04:05.000"), r.Descriptor.Name, r.Descriptor.Address, r.Raw)
				return
			}
			fmt.Println(ht7017.FormatReading(r, time.Now()))
		},
		func() {
			if monitorStatsInterval <= 0 {
				return
			}
			if time.Since(lastStats) < time.Duration(monitorStatsInterval)*time.Second {
				return
			}
			lastStats = time.Now()
			fmt.Println()
			fmt.Println(ht7017.FormatStatus(s.engine.Snapshot(), s.engine.Diagnostics()))
			fmt.Println()
		})
	if err != nil {
		return fmt.Errorf("link error: %v", err)
	}

	// Final summary on shutdown
	fmt.Println()
	fmt.Println(ht7017.FormatStatus(s.engine.Snapshot(), s.engine.Diagnostics()))
	return nil
}
