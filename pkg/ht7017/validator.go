// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Voltaic Labs

package ht7017

import "fmt"

// AnomalyType classifies a plausibility-validation failure.
type AnomalyType int

// Anomaly types.
const (
	AnomalyOverVoltage AnomalyType = iota
	AnomalyOverCurrent
	AnomalyPowerRange
	AnomalyFrequencyRange
)

// Plausibility limits for a single-phase mains installation. A checksum can
// collide, so a frame that validates is not automatically believable.
const (
	maxPlausibleVoltage = 300.0 // V
	maxPlausibleCurrent = 100.0 // A
	maxPlausiblePower   = 30000.0
	minPlausibleFreq    = 40.0 // Hz
	maxPlausibleFreq    = 70.0
)

// ValidationError represents a reading that passed the checksum but carries
// an implausible value.
type ValidationError struct {
	Type    AnomalyType
	Message string
	Value   float64
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	return v.Message
}

// ValidateReading checks a decoded reading against plausibility limits.
// Returns a slice of validation errors (empty if the reading is plausible).
func ValidateReading(r Reading) []ValidationError {
	errors := []ValidationError{}

	switch r.Descriptor.Quantity {
	case Voltage:
		if r.Value < 0 || r.Value > maxPlausibleVoltage {
			errors = append(errors, ValidationError{
				Type:    AnomalyOverVoltage,
				Message: fmt.Sprintf("Voltage out of range (%.1f V, valid: 0 to %.0f V)", r.Value, maxPlausibleVoltage),
				Value:   r.Value,
			})
		}
	case Current:
		if r.Value < 0 || r.Value > maxPlausibleCurrent {
			errors = append(errors, ValidationError{
				Type:    AnomalyOverCurrent,
				Message: fmt.Sprintf("Current out of range (%.3f A, valid: 0 to %.0f A)", r.Value, maxPlausibleCurrent),
				Value:   r.Value,
			})
		}
	case Power:
		if r.Value < -maxPlausiblePower || r.Value > maxPlausiblePower {
			errors = append(errors, ValidationError{
				Type:    AnomalyPowerRange,
				Message: fmt.Sprintf("Power out of range (%.1f W, valid: ±%.0f W)", r.Value, maxPlausiblePower),
				Value:   r.Value,
			})
		}
	case Frequency:
		// 0 Hz means no decode yet or a dead line, not an anomaly.
		if r.Value != 0 && (r.Value < minPlausibleFreq || r.Value > maxPlausibleFreq) {
			errors = append(errors, ValidationError{
				Type:    AnomalyFrequencyRange,
				Message: fmt.Sprintf("Frequency out of range (%.2f Hz, valid: %.0f to %.0f Hz)", r.Value, minPlausibleFreq, maxPlausibleFreq),
				Value:   r.Value,
			})
		}
	}

	return errors
}
