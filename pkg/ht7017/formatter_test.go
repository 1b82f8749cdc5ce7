// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Voltaic Labs

package ht7017

import (
	"strings"
	"testing"
	"time"
)

func TestFormatReading(t *testing.T) {
	r := Reading{
		Descriptor: RegisterDescriptor{Address: RegVoltageRMS, Scale: 11015.3, Quantity: Voltage, Name: "RMS_U"},
		Raw:        0x291800,
		Value:      244.27,
	}
	at := time.Date(2026, 8, 26, 14, 3, 5, 12e6, time.UTC)

	out := FormatReading(r, at)
	for _, want := range []string{"14:03:05.012", "RMS_U", "0x08", "0x291800", "244.3 V"} {
		if !strings.Contains(out, want) {
			t.Errorf("FormatReading output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatStatus(t *testing.T) {
	snap := Snapshot{Voltage: 243.7, Current: 1.042, Power: 251.3, Frequency: 50.02}
	diag := Diagnostics{TxFrames: 100, GoodFrames: 97, BadFrames: 2, Timeouts: 1}

	out := FormatStatus(snap, diag)
	for _, want := range []string{"243.7 V", "1.042 A", "251.3 W", "50.02 Hz", "100 sent", "97 good", "2 bad"} {
		if !strings.Contains(out, want) {
			t.Errorf("FormatStatus output missing %q:\n%s", want, out)
		}
	}
}

func TestQuantityStrings(t *testing.T) {
	tests := []struct {
		q    Quantity
		name string
		unit string
	}{
		{Voltage, "Voltage", "V"},
		{Current, "Current", "A"},
		{Power, "Power", "W"},
		{Frequency, "Frequency", "Hz"},
		{Quantity(99), "Unknown", "?"},
	}
	for _, tt := range tests {
		if tt.q.String() != tt.name {
			t.Errorf("String() = %q, want %q", tt.q.String(), tt.name)
		}
		if tt.q.Unit() != tt.unit {
			t.Errorf("Unit() = %q, want %q", tt.q.Unit(), tt.unit)
		}
	}
}
