// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Voltaic Labs

package cmd

import (
	"errors"
	"time"

	"github.com/voltaic-dev/wattson/internal/config"
	"github.com/voltaic-dev/wattson/pkg/ht7017"
)

// Poll cadence. The slow tick drives the register rotation; the fast tick
// drains responses between rotations so a full frame is rarely left sitting
// in the buffer for a whole second.
const (
	slowTickInterval = 1 * time.Second
	fastPollInterval = 20 * time.Millisecond
)

// loadRuntimeConfig resolves the effective configuration: file (if given),
// then command-line overrides on top.
func loadRuntimeConfig() (config.Config, error) {
	cfg := config.Default()
	if cfgFile != "" {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	// Flags win over the file, but only when actually given; the flag
	// defaults must not clobber a file that sets something else.
	if rootCmd.PersistentFlags().Changed("baud") {
		cfg.Link.Baud = baudRate
	}
	if noParity {
		cfg.Link.Parity = "none"
	}
	return cfg, config.Validate(cfg)
}

// session bundles an open connection with the engine polling it.
type session struct {
	conn      Connection
	transport *bufferedTransport
	engine    *ht7017.Engine
	desc      string
}

// openSession opens the connection selected by the global flags and builds
// an engine over it.
func openSession() (*session, error) {
	cfg, err := loadRuntimeConfig()
	if err != nil {
		return nil, err
	}

	conn, desc, err := OpenConnection(cfg.LinkConfig())
	if err != nil {
		return nil, err
	}

	transport := newBufferedTransport(conn)
	engine, err := ht7017.New(transport, cfg.EngineOptions()...)
	if err != nil {
		conn.Close()
		return nil, err
	}

	return &session{
		conn:      conn,
		transport: transport,
		engine:    engine,
		desc:      desc,
	}, nil
}

func (s *session) Close() error {
	return s.conn.Close()
}

// meterStatus is a point-in-time copy of the engine's outputs. The engine
// itself is single-goroutine; anything leaving the loop goroutine goes out
// as one of these copies, never as a live pointer.
type meterStatus struct {
	snapshot  ht7017.Snapshot
	diag      ht7017.Diagnostics
	current   ht7017.RegisterDescriptor
	frameRate float64
	errorRate float64
}

// captureStatus copies the engine's current state. Must only be called from
// the goroutine running the engine loop.
func (s *session) captureStatus() meterStatus {
	stats := s.engine.Stats()
	stats.CalculateRates()
	return meterStatus{
		snapshot:  s.engine.Snapshot(),
		diag:      s.engine.Diagnostics(),
		current:   s.engine.CurrentRegister(),
		frameRate: stats.FrameRate,
		errorRate: stats.ErrorRate,
	}
}

// pushStatus replaces any pending status on a capacity-1 channel so a slow
// consumer always sees the freshest copy. Single producer only.
func pushStatus(ch chan meterStatus, st meterStatus) {
	select {
	case <-ch:
	default:
	}
	ch <- st
}

// runEngineLoop drives the engine's two-rate schedule from a single
// goroutine until stop closes or the transport reader dies. onReading is
// called for every decoded frame, onTick after every rotation step; either
// may be nil.
func (s *session) runEngineLoop(stop <-chan struct{}, onReading func(ht7017.Reading), onTick func()) error {
	slow := time.NewTicker(slowTickInterval)
	defer slow.Stop()
	fast := time.NewTicker(fastPollInterval)
	defer fast.Stop()

	deliver := func(r *ht7017.Reading) {
		if r != nil && onReading != nil {
			onReading(*r)
		}
	}

	for {
		select {
		case <-stop:
			return nil
		case <-fast.C:
			r, err := s.engine.Poll()
			if err != nil && !errors.Is(err, ht7017.ErrChecksumMismatch) {
				return err
			}
			deliver(r)
		case <-slow.C:
			r, err := s.engine.Tick()
			if err != nil && !errors.Is(err, ht7017.ErrChecksumMismatch) {
				return err
			}
			deliver(r)
			if onTick != nil {
				onTick()
			}
		}

		if err := s.transport.Err(); err != nil {
			return err
		}
	}
}
