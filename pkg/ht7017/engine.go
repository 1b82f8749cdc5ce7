// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Voltaic Labs

package ht7017

import (
	"errors"
	"fmt"
)

// FrequencyModel selects how the frequency register converts to hertz.
// Firmware revisions disagree on the encoding, so both models live behind
// the same scaling abstraction and the scan state machine never sees the
// difference.
type FrequencyModel int

// Frequency conversion models.
const (
	// FrequencyPeriod treats the raw count as mains period: freq = ref/raw.
	FrequencyPeriod FrequencyModel = iota
	// FrequencyDirect treats the raw count as frequency: freq = raw/scale.
	FrequencyDirect
)

// Reading is one successfully decoded register value.
type Reading struct {
	Descriptor RegisterDescriptor
	Raw        uint32
	Value      float64
}

// outcome records what the poller observed since the last scheduler tick.
type outcome int

const (
	outcomeNone outcome = iota
	outcomeGood
	outcomeBad
)

// Engine is the protocol engine for one HT7017 on one serial link: it owns
// the register rotation, the timeout/retry state machine, the measurement
// store and the link statistics. One instance per chip; all methods must be
// called from a single goroutine (the shared tick loop).
type Engine struct {
	transport Transport
	table     []RegisterDescriptor
	store     *Store
	stats     *LinkStats

	index    int
	miss     int
	awaiting bool
	last     outcome

	linkCfg    LinkConfig
	noiseFloor uint32
	freqModel  FrequencyModel
	periodRef  float64
}

// Option configures an Engine at construction.
type Option func(*Engine)

// WithTable replaces the default register rotation.
func WithTable(table []RegisterDescriptor) Option {
	return func(e *Engine) { e.table = table }
}

// WithLinkConfig overrides the default 4800/8E1 physical-layer parameters
// for hardware variants. The protocol state machine is unaffected.
func WithLinkConfig(cfg LinkConfig) Option {
	return func(e *Engine) { e.linkCfg = cfg }
}

// WithNoiseFloor sets the raw-count threshold below which voltage and
// current readings clamp to zero. Zero disables the clamp.
func WithNoiseFloor(counts uint32) Option {
	return func(e *Engine) { e.noiseFloor = counts }
}

// WithDirectFrequency selects the direct divide-by-scale frequency model.
func WithDirectFrequency() Option {
	return func(e *Engine) { e.freqModel = FrequencyDirect }
}

// WithPeriodRef sets the reference for the inverse-of-period frequency model.
func WithPeriodRef(refHz float64) Option {
	return func(e *Engine) { e.periodRef = refHz }
}

// New creates an engine and configures the transport's physical layer.
// A transport that cannot be configured is fatal to all communication, so
// the failure surfaces here as ErrLinkMisconfigured rather than later as a
// permanent checksum-failure condition.
func New(transport Transport, opts ...Option) (*Engine, error) {
	if transport == nil {
		return nil, fmt.Errorf("%w: no transport", ErrLinkMisconfigured)
	}

	e := &Engine{
		transport:  transport,
		table:      DefaultTable(),
		store:      NewStore(),
		stats:      NewLinkStats(),
		linkCfg:    DefaultLinkConfig(),
		noiseFloor: DefaultNoiseFloor,
		freqModel:  FrequencyPeriod,
		periodRef:  DefaultPeriodRef,
	}
	for _, opt := range opts {
		opt(e)
	}

	if len(e.table) == 0 {
		return nil, errors.New("ht7017: register table is empty")
	}
	for _, desc := range e.table {
		if desc.Address&^AddressMask != 0 {
			return nil, fmt.Errorf("ht7017: register address 0x%02X exceeds 7 bits", desc.Address)
		}
		if desc.Scale <= 0 {
			return nil, fmt.Errorf("ht7017: register %s has non-positive scale %g", desc.Name, desc.Scale)
		}
	}

	if err := transport.ConfigureLink(e.linkCfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLinkMisconfigured, err)
	}
	return e, nil
}

// Poll is the fast-tick entry point: it drains one complete response from
// the receive buffer if present. It reads exactly ResponseSize bytes (a 5th
// byte belongs to the next, not-yet-requested frame), never blocks, and is
// idempotent when no request is outstanding or fewer than 4 bytes arrived.
//
// On a checksum-valid decode the measurement store is updated and the
// reading returned. A corrupt frame is counted and discarded with
// ErrChecksumMismatch; the caller must not apply any value from it.
func (e *Engine) Poll() (*Reading, error) {
	if !e.awaiting || e.transport.BytesAvailable() < ResponseSize {
		return nil, nil
	}

	desc := e.table[e.index]
	d2 := e.transport.PeekByte(0)
	d1 := e.transport.PeekByte(1)
	d0 := e.transport.PeekByte(2)
	sum := e.transport.PeekByte(3)
	e.transport.ConsumeBytes(ResponseSize)
	e.awaiting = false

	raw, err := DecodeResponse(desc.Address, d2, d1, d0, sum)
	if err != nil {
		e.last = outcomeBad
		e.stats.recordChecksumError()
		return nil, err
	}

	e.last = outcomeGood
	e.stats.recordGood()
	value := e.scale(raw, desc)
	e.store.Set(desc.Quantity, value)
	return &Reading{Descriptor: desc, Raw: raw, Value: value}, nil
}

// Tick is the slow-tick entry point, called once per scheduling interval.
// It settles the outcome of the previous request, advances or retries the
// rotation, and transmits the next request.
//
// The order is load-bearing: any pending response is decoded BEFORE the
// receive buffer is flushed. Flushing first destroys a reply that arrived
// between ticks, which stalls the rotation on a healthy link.
func (e *Engine) Tick() (*Reading, error) {
	// Fallback decode: the fast tick is not guaranteed to have run.
	reading, err := e.Poll()

	switch {
	case e.last == outcomeGood:
		e.advance()
	case e.last == outcomeBad:
		// A corrupted-but-complete frame still advances; only the
		// absence of a frame triggers a retry.
		e.advance()
	case e.awaiting:
		e.miss++
		e.stats.recordTimeout()
		if e.miss >= MaxMissCount {
			e.stats.recordForcedSkip()
			e.advance()
		}
	}
	e.last = outcomeNone
	e.awaiting = false

	// Stray bytes (partial frames, line noise) cannot belong to the
	// response we are about to request.
	if n := e.transport.BytesAvailable(); n > 0 {
		e.transport.ConsumeBytes(n)
	}

	desc := e.table[e.index]
	req := EncodeRequest(desc.Address)
	for _, b := range req {
		if sendErr := e.transport.SendByte(b); sendErr != nil {
			return reading, fmt.Errorf("send request for %s: %w", desc.Name, sendErr)
		}
	}
	e.stats.recordTx()
	e.awaiting = true

	return reading, err
}

// advance moves the rotation to the next table entry, wrapping past the
// end, and clears the per-register miss count.
func (e *Engine) advance() {
	e.index = (e.index + 1) % len(e.table)
	e.miss = 0
}

// scale converts a raw register count to a physical value, applying the
// noise floor and the configured frequency model.
func (e *Engine) scale(raw uint32, desc RegisterDescriptor) float64 {
	switch desc.Quantity {
	case Voltage, Current:
		if raw&0xFFFFFF <= e.noiseFloor {
			return 0
		}
		return ScaleValue(raw, desc)
	case Frequency:
		if e.freqModel == FrequencyPeriod {
			return FrequencyFromPeriod(raw, e.periodRef)
		}
		return ScaleValue(raw, desc)
	default:
		return ScaleValue(raw, desc)
	}
}

// Measurement returns the last known value for a quantity, 0.0 before the
// first successful decode.
func (e *Engine) Measurement(q Quantity) float64 {
	return e.store.Get(q)
}

// Snapshot copies the current measurement set.
func (e *Engine) Snapshot() Snapshot {
	return e.store.Snapshot()
}

// Diagnostics returns the cumulative link-health counters.
func (e *Engine) Diagnostics() Diagnostics {
	return Diagnostics{
		TxFrames:    uint32(e.stats.TxFrames),
		GoodFrames:  uint32(e.stats.GoodFrames),
		BadFrames:   uint32(e.stats.ChecksumErrors),
		Timeouts:    uint32(e.stats.Timeouts),
		ForcedSkips: uint32(e.stats.ForcedSkips),
	}
}

// Stats returns the live statistics tracker.
func (e *Engine) Stats() *LinkStats {
	return e.stats
}

// CurrentRegister returns the rotation entry the next Tick will request.
func (e *Engine) CurrentRegister() RegisterDescriptor {
	return e.table[e.index]
}

// Table returns a copy of the register rotation.
func (e *Engine) Table() []RegisterDescriptor {
	table := make([]RegisterDescriptor, len(e.table))
	copy(table, e.table)
	return table
}

// Reconfigure changes the link's physical-layer parameters at runtime, for
// hardware variants that need a different baud rate or parity off. Only the
// transport configuration mutates; the protocol state machine is untouched.
func (e *Engine) Reconfigure(cfg LinkConfig) error {
	if err := e.transport.ConfigureLink(cfg); err != nil {
		return fmt.Errorf("%w: %v", ErrLinkMisconfigured, err)
	}
	e.linkCfg = cfg
	return nil
}

// LinkConfig returns the physical-layer parameters currently in effect.
func (e *Engine) LinkConfig() LinkConfig {
	return e.linkCfg
}
