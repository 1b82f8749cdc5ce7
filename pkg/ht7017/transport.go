// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Voltaic Labs

package ht7017

import "errors"

// ErrLinkMisconfigured reports that the serial link could not be configured
// with the chip's physical-layer parameters. This is fatal to all subsequent
// communication and is surfaced at engine construction, never discovered
// later as a silent all-checksum-failure condition.
var ErrLinkMisconfigured = errors.New("link misconfigured")

// Parity selects the serial parity mode.
type Parity int

// Parity modes.
const (
	ParityNone Parity = iota
	ParityEven
	ParityOdd
)

// String returns the parity mode name.
func (p Parity) String() string {
	switch p {
	case ParityNone:
		return "none"
	case ParityEven:
		return "even"
	case ParityOdd:
		return "odd"
	default:
		return "unknown"
	}
}

// LinkConfig carries the physical-layer parameters of the serial link.
type LinkConfig struct {
	BaudRate int
	Parity   Parity
	StopBits int
}

// DefaultLinkConfig returns the chip's fixed physical-layer contract:
// 4800 baud, even parity, 1 stop bit.
func DefaultLinkConfig() LinkConfig {
	return LinkConfig{
		BaudRate: DefaultBaudRate,
		Parity:   ParityEven,
		StopBits: DefaultStopBits,
	}
}

// Transport is the byte-level serial collaborator the engine drives. The
// engine is single-threaded and latency-sensitive, so none of these calls
// may block: reads inspect an already-received buffer, writes enqueue.
//
// PeekByte is valid only for offsets below BytesAvailable. ConsumeBytes
// removes bytes from the front of the receive buffer; callers bound the
// count by BytesAvailable.
type Transport interface {
	BytesAvailable() int
	PeekByte(offset int) byte
	ConsumeBytes(count int)
	SendByte(b byte) error
	ConfigureLink(cfg LinkConfig) error
}
