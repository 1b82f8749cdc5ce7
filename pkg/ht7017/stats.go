// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Voltaic Labs

package ht7017

import (
	"fmt"
	"time"
)

// Diagnostics is the link-health summary exposed to the surrounding
// application: frames sent, checksum-valid replies, corrupt replies.
type Diagnostics struct {
	TxFrames    uint32
	GoodFrames  uint32
	BadFrames   uint32
	Timeouts    uint32
	ForcedSkips uint32
}

// LinkStats tracks cumulative protocol statistics and derived rates.
// All counters are monotonic for the process lifetime unless Reset.
type LinkStats struct {
	StartTime      time.Time
	LastUpdateTime time.Time

	// Counters
	TxFrames       uint64
	GoodFrames     uint64
	ChecksumErrors uint64
	Timeouts       uint64
	ForcedSkips    uint64
	Anomalies      uint64
	OverVoltage    uint64
	OverCurrent    uint64
	PowerRange     uint64
	FrequencyRange uint64

	// Rates (calculated)
	FrameRate float64 // good frames/sec
	ErrorRate float64 // errors/sec
}

// NewLinkStats creates a new statistics tracker.
func NewLinkStats() *LinkStats {
	now := time.Now()
	return &LinkStats{
		StartTime:      now,
		LastUpdateTime: now,
	}
}

func (s *LinkStats) recordTx() {
	s.TxFrames++
	s.LastUpdateTime = time.Now()
}

func (s *LinkStats) recordGood() {
	s.GoodFrames++
	s.LastUpdateTime = time.Now()
}

func (s *LinkStats) recordChecksumError() {
	s.ChecksumErrors++
	s.LastUpdateTime = time.Now()
}

func (s *LinkStats) recordTimeout() {
	s.Timeouts++
	s.LastUpdateTime = time.Now()
}

func (s *LinkStats) recordForcedSkip() {
	s.ForcedSkips++
	s.LastUpdateTime = time.Now()
}

// RecordAnomalies tallies plausibility-validation failures by type.
func (s *LinkStats) RecordAnomalies(errs []ValidationError) {
	for _, err := range errs {
		s.Anomalies++
		switch err.Type {
		case AnomalyOverVoltage:
			s.OverVoltage++
		case AnomalyOverCurrent:
			s.OverCurrent++
		case AnomalyPowerRange:
			s.PowerRange++
		case AnomalyFrequencyRange:
			s.FrequencyRange++
		}
	}
	if len(errs) > 0 {
		s.LastUpdateTime = time.Now()
	}
}

// CalculateRates recomputes the derived frame and error rates.
func (s *LinkStats) CalculateRates() {
	elapsed := time.Since(s.StartTime).Seconds()
	if elapsed > 0 {
		s.FrameRate = float64(s.GoodFrames) / elapsed
		errorCount := s.ChecksumErrors + s.Timeouts + s.Anomalies
		s.ErrorRate = float64(errorCount) / elapsed
	}
}

// String returns a formatted statistics summary.
func (s *LinkStats) String() string {
	s.CalculateRates()

	var goodPercent, badPercent, timeoutPercent float64
	if s.TxFrames > 0 {
		goodPercent = float64(s.GoodFrames) * 100.0 / float64(s.TxFrames)
		badPercent = float64(s.ChecksumErrors) * 100.0 / float64(s.TxFrames)
		timeoutPercent = float64(s.Timeouts) * 100.0 / float64(s.TxFrames)
	}

	elapsed := time.Since(s.StartTime)

	result := fmt.Sprintf("=== Link Statistics (%.0f seconds) ===\n", elapsed.Seconds())
	result += fmt.Sprintf("Requests Sent:   %8d\n", s.TxFrames)
	result += fmt.Sprintf("Good Frames:     %8d (%.1f%%)\n", s.GoodFrames, goodPercent)

	if s.ChecksumErrors > 0 {
		result += fmt.Sprintf("Checksum Errors: %8d (%.1f%%)\n", s.ChecksumErrors, badPercent)
	}
	if s.Timeouts > 0 {
		result += fmt.Sprintf("Timeouts:        %8d (%.1f%%)\n", s.Timeouts, timeoutPercent)
	}
	if s.ForcedSkips > 0 {
		result += fmt.Sprintf("Forced Skips:    %8d\n", s.ForcedSkips)
	}
	if s.Anomalies > 0 {
		result += fmt.Sprintf("Anomalous Values:%8d\n", s.Anomalies)
		if s.OverVoltage > 0 {
			result += fmt.Sprintf("  Over Voltage:     %5d\n", s.OverVoltage)
		}
		if s.OverCurrent > 0 {
			result += fmt.Sprintf("  Over Current:     %5d\n", s.OverCurrent)
		}
		if s.PowerRange > 0 {
			result += fmt.Sprintf("  Power Range:      %5d\n", s.PowerRange)
		}
		if s.FrequencyRange > 0 {
			result += fmt.Sprintf("  Frequency Range:  %5d\n", s.FrequencyRange)
		}
	}

	result += fmt.Sprintf("Frame Rate:      %8.2f frames/sec\n", s.FrameRate)
	result += fmt.Sprintf("Error Rate:      %8.2f errors/sec\n", s.ErrorRate)
	result += "====================================\n"

	return result
}

// Reset clears all counters and restarts the rate window.
func (s *LinkStats) Reset() {
	now := time.Now()
	*s = LinkStats{
		StartTime:      now,
		LastUpdateTime: now,
	}
}
