// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Voltaic Labs

// Package config loads and stores the wattson configuration file:
// calibration scales, link parameters and telemetry publishing options.
package config

import (
	"fmt"
	"os"

	"github.com/voltaic-dev/wattson/pkg/ht7017"
	"gopkg.in/yaml.v3"
)

// Config is the on-disk configuration.
type Config struct {
	Link      LinkConfig      `yaml:"link"`
	Scales    ScaleConfig     `yaml:"scales"`
	Noise     NoiseConfig     `yaml:"noise"`
	Frequency FrequencyConfig `yaml:"frequency"`
	Publish   PublishConfig   `yaml:"publish"`
}

// LinkConfig selects the serial physical layer. The chip's contract is
// 4800/even/1; variants exist with parity disabled.
type LinkConfig struct {
	Baud     int    `yaml:"baud"`
	Parity   string `yaml:"parity"` // "even", "odd", "none"
	StopBits int    `yaml:"stop_bits"`
}

// ScaleConfig carries per-quantity calibration divisors (raw counts per
// physical unit).
type ScaleConfig struct {
	Voltage   float64 `yaml:"voltage"`
	Current   float64 `yaml:"current"`
	Power     float64 `yaml:"power"`
	Frequency float64 `yaml:"frequency"`
}

// NoiseConfig sets the raw-count floor below which voltage and current
// readings clamp to zero.
type NoiseConfig struct {
	Floor uint32 `yaml:"floor"`
}

// FrequencyConfig selects the frequency conversion model.
type FrequencyConfig struct {
	Model     string  `yaml:"model"` // "period" or "direct"
	PeriodRef float64 `yaml:"period_ref"`
}

// PublishConfig configures the telemetry publisher.
type PublishConfig struct {
	URL        string `yaml:"url"`
	IntervalMs int    `yaml:"interval_ms"`
}

// Default returns the configuration matching the chip's datasheet contract
// and the stock calibration divisors.
func Default() Config {
	return Config{
		Link: LinkConfig{
			Baud:     ht7017.DefaultBaudRate,
			Parity:   "even",
			StopBits: ht7017.DefaultStopBits,
		},
		Scales: ScaleConfig{
			Voltage:   ht7017.DefaultVoltageScale,
			Current:   ht7017.DefaultCurrentScale,
			Power:     ht7017.DefaultPowerScale,
			Frequency: ht7017.DefaultFrequencyScale,
		},
		Noise: NoiseConfig{
			Floor: ht7017.DefaultNoiseFloor,
		},
		Frequency: FrequencyConfig{
			Model:     "period",
			PeriodRef: ht7017.DefaultPeriodRef,
		},
		Publish: PublishConfig{
			IntervalMs: 5000,
		},
	}
}

// Load reads a configuration file. Missing fields fall back to defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config load failed: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config parse failed: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save writes a configuration file.
func Save(path string, cfg Config) error {
	if err := Validate(cfg); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config encode failed: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config write failed: %w", err)
	}
	return nil
}

// LinkConfig translates the file's link section to the engine's type.
func (c Config) LinkConfig() ht7017.LinkConfig {
	parity := ht7017.ParityEven
	switch c.Link.Parity {
	case "none":
		parity = ht7017.ParityNone
	case "odd":
		parity = ht7017.ParityOdd
	}
	return ht7017.LinkConfig{
		BaudRate: c.Link.Baud,
		Parity:   parity,
		StopBits: c.Link.StopBits,
	}
}

// Table builds the register rotation from the configured scales.
func (c Config) Table() []ht7017.RegisterDescriptor {
	return []ht7017.RegisterDescriptor{
		{Address: ht7017.RegVoltageRMS, Scale: c.Scales.Voltage, Quantity: ht7017.Voltage, Name: "RMS_U"},
		{Address: ht7017.RegCurrentRMS, Scale: c.Scales.Current, Quantity: ht7017.Current, Name: "RMS_I1"},
		{Address: ht7017.RegActivePower, Scale: c.Scales.Power, Quantity: ht7017.Power, Name: "POWER_P1"},
		{Address: ht7017.RegFrequency, Scale: c.Scales.Frequency, Quantity: ht7017.Frequency, Name: "FREQ"},
	}
}

// EngineOptions translates the configuration into engine options.
func (c Config) EngineOptions() []ht7017.Option {
	opts := []ht7017.Option{
		ht7017.WithTable(c.Table()),
		ht7017.WithLinkConfig(c.LinkConfig()),
		ht7017.WithNoiseFloor(c.Noise.Floor),
	}
	if c.Frequency.Model == "direct" {
		opts = append(opts, ht7017.WithDirectFrequency())
	} else if c.Frequency.PeriodRef > 0 {
		opts = append(opts, ht7017.WithPeriodRef(c.Frequency.PeriodRef))
	}
	return opts
}
