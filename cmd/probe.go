// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Voltaic Labs

package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/voltaic-dev/wattson/pkg/ht7017"
)

var (
	probeRegister string
	probeTimeout  int
	probeCount    int
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Send a single register request and print the raw reply",
	Long: `Sends one read request for the given register address and waits for the
4-byte response. Prints the raw 24-bit value, checksum verdict and round
trip time. Useful for checking whether a meter is alive on the line and
which registers it implements.

The register may be given in hex (0x08) or decimal (8). Registers outside
the standard rotation are allowed; values are printed raw only, since no
calibration scale applies.`,
	RunE: runProbe,
}

func init() {
	probeCmd.Flags().StringVarP(&probeRegister, "register", "r", "0x08", "Register address to read (hex or decimal)")
	probeCmd.Flags().IntVarP(&probeTimeout, "timeout", "t", 1000, "Response timeout in milliseconds")
	probeCmd.Flags().IntVarP(&probeCount, "count", "n", 1, "Number of probes to send")
	rootCmd.AddCommand(probeCmd)
}

func runProbe(cmd *cobra.Command, args []string) error {
	reg64, err := strconv.ParseUint(probeRegister, 0, 8)
	if err != nil {
		return fmt.Errorf("invalid register %q: %v", probeRegister, err)
	}
	register := byte(reg64) & ht7017.AddressMask

	cfg, err := loadRuntimeConfig()
	if err != nil {
		return err
	}
	conn, desc, err := OpenConnection(cfg.LinkConfig())
	if err != nil {
		return err
	}
	defer conn.Close()

	transport := newBufferedTransport(conn)
	if err := transport.ConfigureLink(cfg.LinkConfig()); err != nil {
		return fmt.Errorf("link configuration failed: %v", err)
	}

	fmt.Printf("Connected: %s\n", desc)

	timeout := time.Duration(probeTimeout) * time.Millisecond
	good := 0
	for i := 0; i < probeCount; i++ {
		if i > 0 {
			time.Sleep(200 * time.Millisecond)
		}
		if ok, err := probeOnce(transport, register, timeout); err != nil {
			return err
		} else if ok {
			good++
		}
	}

	if probeCount > 1 {
		fmt.Printf("\n%d/%d probes answered\n", good, probeCount)
	}
	if good == 0 {
		return fmt.Errorf("register 0x%02X: no valid response", register)
	}
	return nil
}

// probeOnce sends one request and waits for a complete response. Returns
// whether a checksum-valid frame came back; transport failures are errors.
func probeOnce(transport *bufferedTransport, register byte, timeout time.Duration) (bool, error) {
	// Stray bytes cannot belong to the response we are about to request.
	if n := transport.BytesAvailable(); n > 0 {
		transport.ConsumeBytes(n)
	}

	req := ht7017.EncodeRequest(register)
	start := time.Now()
	for _, b := range req {
		if err := transport.SendByte(b); err != nil {
			return false, fmt.Errorf("send failed: %v", err)
		}
	}

	deadline := start.Add(timeout)
	for transport.BytesAvailable() < ht7017.ResponseSize {
		if time.Now().After(deadline) {
			fmt.Printf("register 0x%02X: timeout after %v (%d bytes received)\n",
				register, timeout, transport.BytesAvailable())
			return false, nil
		}
		if err := transport.Err(); err != nil {
			return false, fmt.Errorf("link error: %v", err)
		}
		time.Sleep(5 * time.Millisecond)
	}
	rtt := time.Since(start)

	d2 := transport.PeekByte(0)
	d1 := transport.PeekByte(1)
	d0 := transport.PeekByte(2)
	sum := transport.PeekByte(3)
	transport.ConsumeBytes(ht7017.ResponseSize)

	raw, err := ht7017.DecodeResponse(register, d2, d1, d0, sum)
	if err != nil {
		fmt.Printf("register 0x%02X: corrupt frame [%02X %02X %02X %02X] (%v), rtt=%v\n",
			register, d2, d1, d0, sum, err, rtt.Round(time.Millisecond))
		return false, nil
	}

	fmt.Printf("register 0x%02X: raw=0x%06X signed=%d rtt=%v\n",
		register, raw, ht7017.SignExtend24(raw), rtt.Round(time.Millisecond))
	return true, nil
}
