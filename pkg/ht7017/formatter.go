// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Voltaic Labs

package ht7017

import (
	"fmt"
	"strings"
	"time"
)

// FormatReading formats one decoded register value into a log line.
func FormatReading(r Reading, at time.Time) string {
	timestamp := at.Format("15:04:05.000")
	return fmt.Sprintf("[%s] %s (0x%02X) raw=0x%06X value=%s\n",
		timestamp, r.Descriptor.Name, r.Descriptor.Address, r.Raw&0xFFFFFF,
		FormatValue(r.Descriptor.Quantity, r.Value))
}

// FormatValue renders a measurement with quantity-appropriate precision
// and unit.
func FormatValue(q Quantity, value float64) string {
	switch q {
	case Voltage:
		return fmt.Sprintf("%.1f V", value)
	case Current:
		return fmt.Sprintf("%.3f A", value)
	case Power:
		return fmt.Sprintf("%.1f W", value)
	case Frequency:
		return fmt.Sprintf("%.2f Hz", value)
	default:
		return fmt.Sprintf("%g", value)
	}
}

// FormatSnapshot renders the measurement set as a one-line status fragment.
func FormatSnapshot(snap Snapshot) string {
	return fmt.Sprintf("V=%.1fV I=%.3fA P=%.1fW F=%.2fHz",
		snap.Voltage, snap.Current, snap.Power, snap.Frequency)
}

// FormatStatus renders the full human-readable status block: the current
// measurements plus the link-health counters. Formatting only, no protocol
// logic.
func FormatStatus(snap Snapshot, diag Diagnostics) string {
	var b strings.Builder

	b.WriteString("HT7017 Status\n")
	fmt.Fprintf(&b, "  Voltage:   %s\n", FormatValue(Voltage, snap.Voltage))
	fmt.Fprintf(&b, "  Current:   %s\n", FormatValue(Current, snap.Current))
	fmt.Fprintf(&b, "  Power:     %s\n", FormatValue(Power, snap.Power))
	fmt.Fprintf(&b, "  Frequency: %s\n", FormatValue(Frequency, snap.Frequency))
	fmt.Fprintf(&b, "  Link: %d sent, %d good, %d bad, %d timeouts, %d skips\n",
		diag.TxFrames, diag.GoodFrames, diag.BadFrames, diag.Timeouts, diag.ForcedSkips)

	return b.String()
}
