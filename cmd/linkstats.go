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
	linkstatsInterval int
	linkstatsShowAll  bool
)

var linkstatsCmd = &cobra.Command{
	Use:   "linkstats",
	Short: "Watch link health counters and reading anomalies",
	Long: `Polls the meter and tracks link-quality counters: transmitted requests,
validated frames, checksum failures, timeouts and forced register skips.
Each validated reading is additionally checked against plausibility limits
(mains voltage, branch current, power and frequency ranges) and flagged
when out of range.

By default only anomalous readings are printed between statistics blocks;
--show-all prints every reading.

Press Ctrl+C to stop and print the final statistics.`,
	RunE: runLinkstats,
}

func init() {
	linkstatsCmd.Flags().IntVar(&linkstatsInterval, "stats-interval", 10, "Seconds between statistics blocks")
	linkstatsCmd.Flags().BoolVar(&linkstatsShowAll, "show-all", false, "Print every reading, not just anomalies")
	rootCmd.AddCommand(linkstatsCmd)
}

func runLinkstats(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	fmt.Printf("Connected: %s\n", s.desc)
	fmt.Println("Watching link health. Press Ctrl+C to stop.")
	fmt.Println()

	stop := make(chan struct{})
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		close(stop)
	}()

	stats := s.engine.Stats()
	lastStats := time.Now()

	err = s.runEngineLoop(stop,
		func(r ht7017.Reading) {
			anomalies := ht7017.ValidateReading(r)
			stats.RecordAnomalies(anomalies)

			if len(anomalies) == 0 {
				if linkstatsShowAll {
					fmt.Println(ht7017.FormatReading(r, time.Now()))
				}
				return
			}
			for _, a := range anomalies {
				fmt.Printf("[%s] ANOMALY %s (0x%02X): %s\n",
					time.Now().Format("15:04:05.000"), r.Descriptor.Name, r.Descriptor.Address, a.Message)
			}
		},
		func() {
			if time.Since(lastStats) < time.Duration(linkstatsInterval)*time.Second {
				return
			}
			lastStats = time.Now()
			stats.CalculateRates()
			fmt.Println()
			fmt.Println(stats.String())
			fmt.Println()
		})
	if err != nil {
		return fmt.Errorf("link error: %v", err)
	}

	stats.CalculateRates()
	fmt.Println()
	fmt.Println("Final statistics:")
	fmt.Println(stats.String())
	return nil
}
