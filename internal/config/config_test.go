// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Voltaic Labs

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/voltaic-dev/wattson/pkg/ht7017"
)

func TestDefault_IsValid(t *testing.T) {
	if err := Validate(Default()); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wattson.yaml")

	cfg := Default()
	cfg.Link.Parity = "none"
	cfg.Scales.Voltage = 10250.0
	cfg.Frequency.Model = "direct"

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded != cfg {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", loaded, cfg)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wattson.yaml")
	partial := "scales:\n  voltage: 9000.5\n"
	if err := os.WriteFile(path, []byte(partial), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Scales.Voltage != 9000.5 {
		t.Errorf("voltage scale = %g, want 9000.5", cfg.Scales.Voltage)
	}
	if cfg.Link.Baud != ht7017.DefaultBaudRate {
		t.Errorf("baud = %d, want default %d", cfg.Link.Baud, ht7017.DefaultBaudRate)
	}
	if cfg.Scales.Current != ht7017.DefaultCurrentScale {
		t.Errorf("current scale = %g, want default", cfg.Scales.Current)
	}
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero baud", func(c *Config) { c.Link.Baud = 0 }},
		{"bad parity", func(c *Config) { c.Link.Parity = "mark" }},
		{"bad stop bits", func(c *Config) { c.Link.StopBits = 3 }},
		{"zero scale", func(c *Config) { c.Scales.Power = 0 }},
		{"negative scale", func(c *Config) { c.Scales.Current = -1 }},
		{"bad frequency model", func(c *Config) { c.Frequency.Model = "guess" }},
		{"zero period ref", func(c *Config) { c.Frequency.PeriodRef = 0 }},
		{"negative publish interval", func(c *Config) { c.Publish.IntervalMs = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := Validate(cfg); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLinkConfig_ParityMapping(t *testing.T) {
	tests := []struct {
		parity string
		want   ht7017.Parity
	}{
		{"even", ht7017.ParityEven},
		{"odd", ht7017.ParityOdd},
		{"none", ht7017.ParityNone},
	}
	for _, tt := range tests {
		cfg := Default()
		cfg.Link.Parity = tt.parity
		if got := cfg.LinkConfig().Parity; got != tt.want {
			t.Errorf("parity %q mapped to %v, want %v", tt.parity, got, tt.want)
		}
	}
}

func TestTable_UsesConfiguredScales(t *testing.T) {
	cfg := Default()
	cfg.Scales.Voltage = 12345.0

	table := cfg.Table()
	if len(table) != 4 {
		t.Fatalf("table length = %d, want 4", len(table))
	}
	if table[0].Address != ht7017.RegVoltageRMS || table[0].Scale != 12345.0 {
		t.Errorf("voltage entry = %+v", table[0])
	}
}
