// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Voltaic Labs

package cmd

import (
	"sync"

	"github.com/voltaic-dev/wattson/pkg/ht7017"
)

// bufferedTransport adapts a Connection to the engine's transport interface.
// A background goroutine pumps incoming bytes into a mutex-guarded buffer so
// the engine's peek/consume calls never block on I/O.
type bufferedTransport struct {
	conn Connection

	mu  sync.Mutex
	buf []byte

	done    chan struct{}
	readErr error
}

func newBufferedTransport(conn Connection) *bufferedTransport {
	t := &bufferedTransport{
		conn: conn,
		done: make(chan struct{}),
	}
	go t.readLoop()
	return t
}

// readLoop drains the connection until it closes or errors.
func (t *bufferedTransport) readLoop() {
	defer close(t.done)
	chunk := make([]byte, 256)
	for {
		n, err := t.conn.Read(chunk)
		if n > 0 {
			t.mu.Lock()
			t.buf = append(t.buf, chunk[:n]...)
			t.mu.Unlock()
		}
		if err != nil {
			t.mu.Lock()
			t.readErr = err
			t.mu.Unlock()
			return
		}
	}
}

// Err reports the terminal read error, if the reader has stopped.
func (t *bufferedTransport) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.readErr
}

func (t *bufferedTransport) BytesAvailable() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.buf)
}

func (t *bufferedTransport) PeekByte(offset int) byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	if offset < 0 || offset >= len(t.buf) {
		return 0
	}
	return t.buf[offset]
}

func (t *bufferedTransport) ConsumeBytes(count int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if count >= len(t.buf) {
		t.buf = t.buf[:0]
		return
	}
	t.buf = append(t.buf[:0], t.buf[count:]...)
}

func (t *bufferedTransport) SendByte(b byte) error {
	_, err := t.conn.Write([]byte{b})
	return err
}

// ConfigureLink applies link parameters when the underlying connection
// controls the physical layer. A WebSocket bridge does not, so the request
// is accepted and trusted to match the far side.
func (t *bufferedTransport) ConfigureLink(cfg ht7017.LinkConfig) error {
	if lc, ok := t.conn.(linkConfigurer); ok {
		return lc.SetLinkConfig(cfg)
	}
	return nil
}
