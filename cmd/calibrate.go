// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Voltaic Labs

package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/voltaic-dev/wattson/internal/config"
)

var calibrateCmd = &cobra.Command{
	Use:   "calibrate",
	Short: "Show or set calibration scales in the config file",
	Long: `Manages the per-quantity calibration divisors stored in the YAML config
file. A divisor converts raw 24-bit register counts into physical units;
the stock values match the reference board and need adjustment per meter.

Requires --config to point at the file being managed.`,
}

var calibrateShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective calibration",
	RunE:  runCalibrateShow,
}

var calibrateSetCmd = &cobra.Command{
	Use:   "set <quantity> <scale>",
	Short: "Set one calibration divisor and write the config file",
	Long: `Sets the calibration divisor for one quantity and writes the config file.
Quantities: voltage, current, power, frequency. The noise floor is set with
the pseudo-quantity "noise-floor" (raw counts, integer).

Examples:
  wattson calibrate set voltage 11015.3 -c meter.yaml
  wattson calibrate set noise-floor 14 -c meter.yaml`,
	Args: cobra.ExactArgs(2),
	RunE: runCalibrateSet,
}

func init() {
	calibrateCmd.AddCommand(calibrateShowCmd)
	calibrateCmd.AddCommand(calibrateSetCmd)
	rootCmd.AddCommand(calibrateCmd)
}

func runCalibrateShow(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	source := "defaults"
	if cfgFile != "" {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		cfg = loaded
		source = cfgFile
	}

	fmt.Printf("Calibration (%s):\n", source)
	fmt.Printf("  voltage:     %.1f counts/V\n", cfg.Scales.Voltage)
	fmt.Printf("  current:     %.1f counts/A\n", cfg.Scales.Current)
	fmt.Printf("  power:       %.1f counts/W\n", cfg.Scales.Power)
	fmt.Printf("  frequency:   %.2f\n", cfg.Scales.Frequency)
	fmt.Printf("  noise-floor: %d counts\n", cfg.Noise.Floor)
	fmt.Printf("  freq model:  %s", cfg.Frequency.Model)
	if cfg.Frequency.Model == "period" {
		fmt.Printf(" (ref %.1f Hz)", cfg.Frequency.PeriodRef)
	}
	fmt.Println()
	return nil
}

func runCalibrateSet(cmd *cobra.Command, args []string) error {
	if cfgFile == "" {
		return fmt.Errorf("calibrate set requires --config")
	}

	quantity := args[0]
	value, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid scale %q: %v", args[1], err)
	}

	// Start from the existing file if present, defaults otherwise.
	cfg := config.Default()
	if _, statErr := os.Stat(cfgFile); statErr == nil {
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}
	}

	switch quantity {
	case "voltage":
		cfg.Scales.Voltage = value
	case "current":
		cfg.Scales.Current = value
	case "power":
		cfg.Scales.Power = value
	case "frequency":
		cfg.Scales.Frequency = value
	case "noise-floor":
		if value < 0 || value != float64(uint32(value)) {
			return fmt.Errorf("noise-floor must be a non-negative integer, got %q", args[1])
		}
		cfg.Noise.Floor = uint32(value)
	default:
		return fmt.Errorf("unknown quantity %q (voltage, current, power, frequency, noise-floor)", quantity)
	}

	if err := config.Save(cfgFile, cfg); err != nil {
		return err
	}
	fmt.Printf("Wrote %s: %s = %s\n", cfgFile, quantity, args[1])
	return nil
}
