// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Voltaic Labs

package ht7017

// Quantity identifies a measured physical quantity.
type Quantity int

// Measured quantities, one storage slot each.
const (
	Voltage Quantity = iota
	Current
	Power
	Frequency

	quantityCount
)

// String returns the human-readable name of the quantity.
func (q Quantity) String() string {
	switch q {
	case Voltage:
		return "Voltage"
	case Current:
		return "Current"
	case Power:
		return "Power"
	case Frequency:
		return "Frequency"
	default:
		return "Unknown"
	}
}

// Unit returns the physical unit symbol for the quantity.
func (q Quantity) Unit() string {
	switch q {
	case Voltage:
		return "V"
	case Current:
		return "A"
	case Power:
		return "W"
	case Frequency:
		return "Hz"
	default:
		return "?"
	}
}

// RegisterDescriptor describes one entry of the polling rotation: a register
// address, the divisor converting raw counts to physical units, and the
// measurement slot the decoded value lands in. Descriptors are immutable;
// the table owning them is fixed for the engine's lifetime.
type RegisterDescriptor struct {
	Address  byte
	Scale    float64
	Quantity Quantity
	Name     string
}

// DefaultTable returns the standard rotation over the four measurement
// registers, in the order the chip is conventionally polled.
func DefaultTable() []RegisterDescriptor {
	return []RegisterDescriptor{
		{Address: RegVoltageRMS, Scale: DefaultVoltageScale, Quantity: Voltage, Name: "RMS_U"},
		{Address: RegCurrentRMS, Scale: DefaultCurrentScale, Quantity: Current, Name: "RMS_I1"},
		{Address: RegActivePower, Scale: DefaultPowerScale, Quantity: Power, Name: "POWER_P1"},
		{Address: RegFrequency, Scale: DefaultFrequencyScale, Quantity: Frequency, Name: "FREQ"},
	}
}

// ScaleValue converts a raw 24-bit register reading into a physical value.
// Power is two's-complement signed (direction of energy flow); voltage,
// current and frequency are unsigned. The descriptor's scale is "raw counts
// per physical unit", so value = raw / scale.
func ScaleValue(raw uint32, desc RegisterDescriptor) float64 {
	if desc.Quantity == Power {
		return float64(SignExtend24(raw)) / desc.Scale
	}
	return float64(raw&0xFFFFFF) / desc.Scale
}

// FrequencyFromPeriod converts a raw reading that encodes mains period into
// hertz: freq = refHz / raw. Some firmware revisions use this model instead
// of a direct divide; the engine selects between them so the scan state
// machine never sees the difference. A zero raw count yields 0 Hz.
func FrequencyFromPeriod(raw uint32, refHz float64) float64 {
	raw &= 0xFFFFFF
	if raw == 0 {
		return 0
	}
	return refHz / float64(raw)
}
