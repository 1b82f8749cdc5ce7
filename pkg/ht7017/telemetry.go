// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Voltaic Labs

package ht7017

import (
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// TelemetrySchemaVersion identifies the snapshot wire layout below.
const TelemetrySchemaVersion = 1

// Telemetry map keys. Integer keys keep the encoded snapshot small enough
// for constrained collectors.
const (
	telKeyTimestamp = 0 // unix milliseconds
	telKeyVoltage   = 1
	telKeyCurrent   = 2
	telKeyPower     = 3
	telKeyFrequency = 4
	telKeyTxFrames  = 5
	telKeyGood      = 6
	telKeyBad       = 7
	telKeyTimeouts  = 8
	telKeySkips     = 9
)

// MarshalTelemetry encodes a measurement snapshot plus link diagnostics as
// a CBOR message: [version, {key: value, ...}].
func MarshalTelemetry(snap Snapshot, diag Diagnostics) ([]byte, error) {
	payload := map[int]interface{}{
		telKeyTimestamp: snap.At.UnixMilli(),
		telKeyVoltage:   snap.Voltage,
		telKeyCurrent:   snap.Current,
		telKeyPower:     snap.Power,
		telKeyFrequency: snap.Frequency,
		telKeyTxFrames:  uint64(diag.TxFrames),
		telKeyGood:      uint64(diag.GoodFrames),
		telKeyBad:       uint64(diag.BadFrames),
		telKeyTimeouts:  uint64(diag.Timeouts),
		telKeySkips:     uint64(diag.ForcedSkips),
	}

	data, err := cbor.Marshal([]interface{}{uint64(TelemetrySchemaVersion), payload})
	if err != nil {
		return nil, fmt.Errorf("failed to encode telemetry: %w", err)
	}
	return data, nil
}

// UnmarshalTelemetry decodes a CBOR telemetry message produced by
// MarshalTelemetry.
func UnmarshalTelemetry(data []byte) (Snapshot, Diagnostics, error) {
	var snap Snapshot
	var diag Diagnostics

	if len(data) == 0 {
		return snap, diag, fmt.Errorf("empty telemetry payload")
	}

	var msg []interface{}
	if err := cbor.Unmarshal(data, &msg); err != nil {
		return snap, diag, fmt.Errorf("failed to decode CBOR: %w", err)
	}
	if len(msg) != 2 {
		return snap, diag, fmt.Errorf("expected 2-element array, got %d elements", len(msg))
	}

	version, ok := msg[0].(uint64)
	if !ok {
		return snap, diag, fmt.Errorf("expected uint for schema version, got %T", msg[0])
	}
	if version != TelemetrySchemaVersion {
		return snap, diag, fmt.Errorf("unsupported telemetry schema version %d", version)
	}

	raw, ok := msg[1].(map[interface{}]interface{})
	if !ok {
		return snap, diag, fmt.Errorf("expected map for payload, got %T", msg[1])
	}

	payload := make(map[int]interface{}, len(raw))
	for key, val := range raw {
		switch k := key.(type) {
		case uint64:
			payload[int(k)] = val
		case int64:
			payload[int(k)] = val
		default:
			return snap, diag, fmt.Errorf("expected integer map key, got %T", key)
		}
	}

	if ms, ok := getMapInt(payload, telKeyTimestamp); ok {
		snap.At = time.UnixMilli(ms)
	}
	snap.Voltage, _ = getMapFloat(payload, telKeyVoltage)
	snap.Current, _ = getMapFloat(payload, telKeyCurrent)
	snap.Power, _ = getMapFloat(payload, telKeyPower)
	snap.Frequency, _ = getMapFloat(payload, telKeyFrequency)

	if v, ok := getMapUint(payload, telKeyTxFrames); ok {
		diag.TxFrames = uint32(v)
	}
	if v, ok := getMapUint(payload, telKeyGood); ok {
		diag.GoodFrames = uint32(v)
	}
	if v, ok := getMapUint(payload, telKeyBad); ok {
		diag.BadFrames = uint32(v)
	}
	if v, ok := getMapUint(payload, telKeyTimeouts); ok {
		diag.Timeouts = uint32(v)
	}
	if v, ok := getMapUint(payload, telKeySkips); ok {
		diag.ForcedSkips = uint32(v)
	}

	return snap, diag, nil
}

// Map value extraction helpers. CBOR may decode integers as either signed
// or unsigned depending on magnitude.

func getMapUint(m map[int]interface{}, key int) (uint64, bool) {
	if m == nil {
		return 0, false
	}
	switch v := m[key].(type) {
	case uint64:
		return v, true
	case int64:
		if v >= 0 {
			return uint64(v), true
		}
	}
	return 0, false
}

func getMapInt(m map[int]interface{}, key int) (int64, bool) {
	if m == nil {
		return 0, false
	}
	switch v := m[key].(type) {
	case int64:
		return v, true
	case uint64:
		return int64(v), true
	}
	return 0, false
}

func getMapFloat(m map[int]interface{}, key int) (float64, bool) {
	if m == nil {
		return 0, false
	}
	switch v := m[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}
