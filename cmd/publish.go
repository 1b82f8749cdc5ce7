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
	publishURL      string
	publishInterval int
	publishUsername string
	publishQuiet    bool
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish CBOR telemetry snapshots to a WebSocket endpoint",
	Long: `Polls the meter continuously and publishes a CBOR-encoded telemetry
snapshot (measurements plus link health counters) to a WebSocket endpoint
at a fixed interval.

The endpoint and interval can come from the config file's publish section
or the flags; flags win. Authentication uses HTTP Basic auth with the
password from WATTSON_PASSWORD (or an interactive prompt).

Press Ctrl+C to stop.`,
	RunE: runPublish,
}

func init() {
	publishCmd.Flags().StringVar(&publishURL, "publish-url", "", "WebSocket endpoint to publish to (ws:// or wss://)")
	publishCmd.Flags().IntVar(&publishInterval, "interval", 0, "Publish interval in milliseconds (0 = from config, default 5000)")
	publishCmd.Flags().StringVar(&publishUsername, "publish-username", "", "Username for the publish endpoint")
	publishCmd.Flags().BoolVarP(&publishQuiet, "quiet", "q", false, "Suppress per-snapshot output")
	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, args []string) error {
	cfg, err := loadRuntimeConfig()
	if err != nil {
		return err
	}

	endpoint := cfg.Publish.URL
	if publishURL != "" {
		endpoint = publishURL
	}
	if endpoint == "" {
		return fmt.Errorf("no publish endpoint: set --publish-url or the config file's publish.url")
	}

	interval := time.Duration(cfg.Publish.IntervalMs) * time.Millisecond
	if publishInterval > 0 {
		interval = time.Duration(publishInterval) * time.Millisecond
	}
	if interval <= 0 {
		interval = 5 * time.Second
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	// Publish endpoint connection, separate from the meter link
	password := ""
	if publishUsername != "" {
		password, err = GetPassword()
		if err != nil {
			return err
		}
	}
	sink, err := OpenWebSocketConnection(endpoint, publishUsername, password, wsNoSSLVerify)
	if err != nil {
		return fmt.Errorf("publish endpoint: %v", err)
	}
	defer sink.Close()

	fmt.Printf("Connected: %s\n", s.desc)
	fmt.Printf("Publishing to %s every %v. Press Ctrl+C to stop.\n", endpoint, interval)

	stop := make(chan struct{})
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		close(stop)
	}()

	pub := time.NewTicker(interval)
	defer pub.Stop()

	// The engine is confined to the loop goroutine; it hands out copies of
	// its state over statusCh, and the publisher only ever sees those.
	published := 0
	statusCh := make(chan meterStatus, 1)
	loopErr := make(chan error, 1)
	go func() {
		loopErr <- s.runEngineLoop(stop, nil, func() {
			pushStatus(statusCh, s.captureStatus())
		})
	}()

	var latest meterStatus
	for {
		select {
		case err := <-loopErr:
			if err != nil {
				return fmt.Errorf("link error: %v", err)
			}
			fmt.Printf("\nPublished %d snapshots\n", published)
			return nil
		case st := <-statusCh:
			latest = st
		case <-pub.C:
			if latest.snapshot.At.IsZero() {
				// No validated reading yet; nothing worth publishing.
				continue
			}
			payload, err := ht7017.MarshalTelemetry(latest.snapshot, latest.diag)
			if err != nil {
				return fmt.Errorf("telemetry encode failed: %v", err)
			}
			if _, err := sink.Write(payload); err != nil {
				return fmt.Errorf("publish failed: %v", err)
			}
			published++
			if !publishQuiet {
				fmt.Printf("[%s] published %d bytes: %s\n",
					time.Now().Format("15:04:05"), len(payload), ht7017.FormatSnapshot(latest.snapshot))
			}
		}
	}
}
