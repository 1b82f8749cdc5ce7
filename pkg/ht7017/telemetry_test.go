// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Voltaic Labs

package ht7017

import (
	"math"
	"testing"
	"time"

	"github.com/fxamacker/cbor/v2"
)

func TestTelemetry_RoundTrip(t *testing.T) {
	snap := Snapshot{
		Voltage:   243.7,
		Current:   1.042,
		Power:     251.3,
		Frequency: 50.02,
		At:        time.UnixMilli(1724668800000),
	}
	diag := Diagnostics{
		TxFrames:    1200,
		GoodFrames:  1180,
		BadFrames:   7,
		Timeouts:    13,
		ForcedSkips: 2,
	}

	data, err := MarshalTelemetry(snap, diag)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	gotSnap, gotDiag, err := UnmarshalTelemetry(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if math.Abs(gotSnap.Voltage-snap.Voltage) > 1e-9 ||
		math.Abs(gotSnap.Current-snap.Current) > 1e-9 ||
		math.Abs(gotSnap.Power-snap.Power) > 1e-9 ||
		math.Abs(gotSnap.Frequency-snap.Frequency) > 1e-9 {
		t.Errorf("snapshot mismatch: got %+v, want %+v", gotSnap, snap)
	}
	if !gotSnap.At.Equal(snap.At) {
		t.Errorf("timestamp = %v, want %v", gotSnap.At, snap.At)
	}
	if gotDiag != diag {
		t.Errorf("diagnostics mismatch: got %+v, want %+v", gotDiag, diag)
	}
}

func TestUnmarshalTelemetry_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"not CBOR", []byte{0xFF, 0xFE, 0xFD}},
		{"wrong element count", mustMarshalArray(t, []interface{}{uint64(1)})},
		{"unknown version", mustMarshalArray(t, []interface{}{uint64(99), map[int]interface{}{}})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := UnmarshalTelemetry(tt.data); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func mustMarshalArray(t *testing.T, v interface{}) []byte {
	t.Helper()
	b, err := cbor.Marshal(v)
	if err != nil {
		t.Fatalf("marshal helper: %v", err)
	}
	return b
}
