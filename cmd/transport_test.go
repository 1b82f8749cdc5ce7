// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Voltaic Labs

package cmd

import (
	"io"
	"sync"
	"testing"
	"time"

	"github.com/voltaic-dev/wattson/pkg/ht7017"
)

// pipeConn is an in-memory Connection fed by the test.
type pipeConn struct {
	rx chan []byte

	mu sync.Mutex
	tx []byte
}

func newPipeConn() *pipeConn {
	return &pipeConn{rx: make(chan []byte, 16)}
}

func (c *pipeConn) Read(p []byte) (int, error) {
	data, ok := <-c.rx
	if !ok {
		return 0, io.EOF
	}
	return copy(p, data), nil
}

func (c *pipeConn) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tx = append(c.tx, p...)
	return len(p), nil
}

func (c *pipeConn) Close() error {
	close(c.rx)
	return nil
}

// sentBytes copies the transmitted bytes, for inspection from a goroutine
// other than the writer's.
func (c *pipeConn) sentBytes() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]byte(nil), c.tx...)
}

// waitForBytes polls until the transport buffered at least n bytes or the
// deadline passed. The reader goroutine delivers asynchronously.
func waitForBytes(t *testing.T, tr *bufferedTransport, n int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for tr.BytesAvailable() < n {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %d bytes, have %d", n, tr.BytesAvailable())
		}
		time.Sleep(time.Millisecond)
	}
}

func TestBufferedTransport_BuffersIncomingBytes(t *testing.T) {
	conn := newPipeConn()
	tr := newBufferedTransport(conn)
	defer conn.Close()

	conn.rx <- []byte{0x29, 0x18}
	conn.rx <- []byte{0x00, 0x46}
	waitForBytes(t, tr, 4)

	want := []byte{0x29, 0x18, 0x00, 0x46}
	for i, b := range want {
		if got := tr.PeekByte(i); got != b {
			t.Errorf("PeekByte(%d) = 0x%02X, want 0x%02X", i, got, b)
		}
	}

	// Peek must not consume
	if tr.BytesAvailable() != 4 {
		t.Errorf("BytesAvailable() = %d after peek, want 4", tr.BytesAvailable())
	}
}

func TestBufferedTransport_ConsumeBytes(t *testing.T) {
	conn := newPipeConn()
	tr := newBufferedTransport(conn)
	defer conn.Close()

	conn.rx <- []byte{0x01, 0x02, 0x03, 0x04, 0x05}
	waitForBytes(t, tr, 5)

	tr.ConsumeBytes(2)
	if tr.BytesAvailable() != 3 {
		t.Fatalf("BytesAvailable() = %d after consume, want 3", tr.BytesAvailable())
	}
	if got := tr.PeekByte(0); got != 0x03 {
		t.Errorf("PeekByte(0) = 0x%02X after consume, want 0x03", got)
	}

	// Consuming more than buffered empties the buffer
	tr.ConsumeBytes(10)
	if tr.BytesAvailable() != 0 {
		t.Errorf("BytesAvailable() = %d after over-consume, want 0", tr.BytesAvailable())
	}
}

func TestBufferedTransport_PeekOutOfRange(t *testing.T) {
	conn := newPipeConn()
	tr := newBufferedTransport(conn)
	defer conn.Close()

	if got := tr.PeekByte(0); got != 0 {
		t.Errorf("PeekByte(0) on empty buffer = 0x%02X, want 0x00", got)
	}
	if got := tr.PeekByte(-1); got != 0 {
		t.Errorf("PeekByte(-1) = 0x%02X, want 0x00", got)
	}
}

func TestBufferedTransport_SendByte(t *testing.T) {
	conn := newPipeConn()
	tr := newBufferedTransport(conn)
	defer conn.Close()

	if err := tr.SendByte(0x6A); err != nil {
		t.Fatalf("SendByte() error: %v", err)
	}
	if err := tr.SendByte(0x08); err != nil {
		t.Fatalf("SendByte() error: %v", err)
	}

	if len(conn.tx) != 2 || conn.tx[0] != 0x6A || conn.tx[1] != 0x08 {
		t.Errorf("transmitted bytes = % X, want 6A 08", conn.tx)
	}
}

func TestBufferedTransport_ErrAfterClose(t *testing.T) {
	conn := newPipeConn()
	tr := newBufferedTransport(conn)

	conn.Close()
	<-tr.done

	if err := tr.Err(); err == nil {
		t.Error("Err() = nil after connection close, want error")
	}
}

func TestBufferedTransport_ConfigureLinkWithoutHardware(t *testing.T) {
	// A connection without physical-layer control (a WebSocket bridge)
	// accepts any link configuration.
	conn := newPipeConn()
	tr := newBufferedTransport(conn)
	defer conn.Close()

	if err := tr.ConfigureLink(ht7017.DefaultLinkConfig()); err != nil {
		t.Errorf("ConfigureLink() = %v, want nil", err)
	}
}

func TestBufferedTransport_DrivesEngine(t *testing.T) {
	conn := newPipeConn()
	tr := newBufferedTransport(conn)
	defer conn.Close()

	engine, err := ht7017.New(tr)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	// First tick transmits a request for the first rotation entry
	if _, err := engine.Tick(); err != nil {
		t.Fatalf("Tick() error: %v", err)
	}
	if len(conn.tx) != ht7017.RequestSize {
		t.Fatalf("transmitted %d bytes, want %d", len(conn.tx), ht7017.RequestSize)
	}
	if conn.tx[0] != ht7017.FrameHeader {
		t.Errorf("request header = 0x%02X, want 0x%02X", conn.tx[0], ht7017.FrameHeader)
	}
	register := conn.tx[1]

	// Feed a valid response and let the fast path decode it
	d2, d1, d0 := byte(0x29), byte(0x18), byte(0x00)
	conn.rx <- []byte{d2, d1, d0, ht7017.Checksum(register, d2, d1, d0)}
	waitForBytes(t, tr, ht7017.ResponseSize)

	reading, err := engine.Poll()
	if err != nil {
		t.Fatalf("Poll() error: %v", err)
	}
	if reading == nil {
		t.Fatal("Poll() returned no reading for a complete valid frame")
	}
	if reading.Raw != 0x291800 {
		t.Errorf("reading.Raw = 0x%06X, want 0x291800", reading.Raw)
	}
}
