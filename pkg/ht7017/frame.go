// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Voltaic Labs

package ht7017

import (
	"errors"
	"fmt"
)

// ErrChecksumMismatch reports that a complete response frame failed
// checksum validation. The frame is discarded; no value update is applied.
var ErrChecksumMismatch = errors.New("checksum mismatch")

// EncodeRequest builds the 2-byte read request for a register.
// The top address bit is reserved for write transactions and always cleared.
func EncodeRequest(register byte) [RequestSize]byte {
	return [RequestSize]byte{FrameHeader, register & AddressMask}
}

// Checksum computes the response integrity byte: the bitwise complement of
// the modulo-256 sum of the frame header, the requested register address and
// the three data bytes. The sum is a plain unordered sum of the bytes as
// transmitted. This must match the slave's algorithm bit-exactly; any
// deviation shows up as a 100% checksum failure rate.
func Checksum(register, d2, d1, d0 byte) byte {
	sum := FrameHeader + uint32(register) + uint32(d2) + uint32(d1) + uint32(d0)
	return ^byte(sum & 0xFF)
}

// DecodeResponse validates a 4-byte response frame against the register it
// was requested for and returns the raw 24-bit register value.
func DecodeResponse(register, d2, d1, d0, checksum byte) (uint32, error) {
	if expected := Checksum(register, d2, d1, d0); expected != checksum {
		return 0, fmt.Errorf("%w: expected 0x%02X, got 0x%02X", ErrChecksumMismatch, expected, checksum)
	}
	return uint32(d2)<<16 | uint32(d1)<<8 | uint32(d0), nil
}

// SignExtend24 interprets a raw 24-bit field as two's-complement signed.
// Active power is the only quantity transmitted in this encoding.
func SignExtend24(raw uint32) int32 {
	raw &= 0xFFFFFF
	if raw&0x800000 != 0 {
		raw |= 0xFF000000
	}
	return int32(raw)
}
