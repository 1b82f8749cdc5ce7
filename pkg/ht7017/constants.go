// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Voltaic Labs

// Package ht7017 implements the request/response protocol of the HT7017
// single-phase energy-metering IC over a half-duplex serial link.
//
// The package provides request framing, checksum validation, 24-bit register
// decoding, a register-rotation scheduler with bounded retry, and a
// measurement store for the decoded physical quantities. The serial transport
// itself is an external collaborator supplied through the Transport interface.
package ht7017

// Protocol framing
const (
	FrameHeader = 0x6A // fixed first byte of every request
	AddressMask = 0x7F // top bit reserved to distinguish read/write

	RequestSize  = 2 // [header][register]
	ResponseSize = 4 // [DATA2][DATA1][DATA0][CHECKSUM]
)

// Register addresses
const (
	RegCurrentRMS  = 0x06
	RegVoltageRMS  = 0x08
	RegFrequency   = 0x09
	RegActivePower = 0x0A
)

// Scheduler limits
const (
	// MaxMissCount is the number of consecutive silent scheduling intervals
	// tolerated before the rotation force-advances past a register.
	MaxMissCount = 3
)

// Physical-layer contract of the chip. Any deviation causes total
// communication failure, so these are the ConfigureLink defaults.
const (
	DefaultBaudRate = 4800
	DefaultStopBits = 1
)

// Default calibration divisors (raw counts per physical unit). Board designs
// with different shunts or dividers override these per descriptor.
const (
	DefaultVoltageScale   = 11015.3
	DefaultCurrentScale   = 164482.0
	DefaultPowerScale     = 598.3
	DefaultFrequencyScale = 0.54
)

// DefaultPeriodRef is the reference for the inverse-of-period frequency
// model: freq = ref / raw. A raw count of 27 yields 50 Hz, matching the
// firmware revisions that encode mains period rather than frequency.
const DefaultPeriodRef = 1350.0

// DefaultNoiseFloor is the raw-count threshold below which voltage and
// current readings are treated as measurement noise and clamped to zero.
const DefaultNoiseFloor = 14
