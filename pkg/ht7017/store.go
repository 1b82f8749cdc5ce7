// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Voltaic Labs

package ht7017

import "time"

// Store holds the last-known decoded value per quantity. Each slot is
// updated only on a checksum-valid decode of its register; stale values
// persist across cycles and every slot reads 0 before its first decode.
type Store struct {
	values  [quantityCount]float64
	updated [quantityCount]time.Time
}

// NewStore returns an empty measurement store.
func NewStore() *Store {
	return &Store{}
}

// Get returns the last known value for a quantity, 0 before the first
// successful decode.
func (s *Store) Get(q Quantity) float64 {
	if q < 0 || q >= quantityCount {
		return 0
	}
	return s.values[q]
}

// Set records a decoded value for a quantity.
func (s *Store) Set(q Quantity, value float64) {
	if q < 0 || q >= quantityCount {
		return
	}
	s.values[q] = value
	s.updated[q] = time.Now()
}

// LastUpdate returns when a quantity was last written, zero time if never.
func (s *Store) LastUpdate(q Quantity) time.Time {
	if q < 0 || q >= quantityCount {
		return time.Time{}
	}
	return s.updated[q]
}

// Snapshot is a point-in-time copy of all measurement slots.
type Snapshot struct {
	Voltage   float64
	Current   float64
	Power     float64
	Frequency float64
	At        time.Time
}

// Snapshot copies the current measurement set.
func (s *Store) Snapshot() Snapshot {
	return Snapshot{
		Voltage:   s.values[Voltage],
		Current:   s.values[Current],
		Power:     s.values[Power],
		Frequency: s.values[Frequency],
		At:        time.Now(),
	}
}

// Get returns the snapshot value for a quantity.
func (snap Snapshot) Get(q Quantity) float64 {
	switch q {
	case Voltage:
		return snap.Voltage
	case Current:
		return snap.Current
	case Power:
		return snap.Power
	case Frequency:
		return snap.Frequency
	default:
		return 0
	}
}
