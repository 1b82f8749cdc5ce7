// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Voltaic Labs

package config

import "fmt"

// Validate rejects configurations the engine or the hardware cannot honor.
func Validate(cfg Config) error {
	if cfg.Link.Baud <= 0 {
		return fmt.Errorf("config: baud must be > 0, got %d", cfg.Link.Baud)
	}
	switch cfg.Link.Parity {
	case "even", "odd", "none":
	default:
		return fmt.Errorf("config: parity must be even, odd or none, got %q", cfg.Link.Parity)
	}
	if cfg.Link.StopBits != 1 && cfg.Link.StopBits != 2 {
		return fmt.Errorf("config: stop_bits must be 1 or 2, got %d", cfg.Link.StopBits)
	}

	scales := map[string]float64{
		"voltage":   cfg.Scales.Voltage,
		"current":   cfg.Scales.Current,
		"power":     cfg.Scales.Power,
		"frequency": cfg.Scales.Frequency,
	}
	for name, scale := range scales {
		if scale <= 0 {
			return fmt.Errorf("config: %s scale must be > 0, got %g", name, scale)
		}
	}

	switch cfg.Frequency.Model {
	case "period", "direct":
	default:
		return fmt.Errorf("config: frequency model must be period or direct, got %q", cfg.Frequency.Model)
	}
	if cfg.Frequency.Model == "period" && cfg.Frequency.PeriodRef <= 0 {
		return fmt.Errorf("config: period_ref must be > 0, got %g", cfg.Frequency.PeriodRef)
	}

	if cfg.Publish.IntervalMs < 0 {
		return fmt.Errorf("config: publish interval_ms must be >= 0, got %d", cfg.Publish.IntervalMs)
	}

	return nil
}
