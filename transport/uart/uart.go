// lin-go
// SPDX-License-Identifier: LGPL-3.0-or-later

// Package uart implements lin.Driver over a real serial port using
// go.bug.st/serial.
package uart

import (
	"sync"
	"time"

	lin "github.com/mestrode/lin-go"
	"github.com/mestrode/lin-go/internal/transport"
	"go.bug.st/serial"
)

// Port implements lin.Driver over an OS serial port. A master-side LIN
// stack never shares a port's baud rate with higher protocols: Begin
// always reconfigures the already-open port to the requested rate.
//
// go.bug.st/serial has no primitive for "how many bytes are waiting", so
// Port runs a background goroutine that reads single bytes off the port
// into an in-memory buffer; Available and Read are then non-blocking
// reads off that buffer, satisfying the Driver contract's
// "Available() > 0 before calling Read" guarantee for real hardware the
// same way internal/testing.VirtualSlave satisfies it in memory.
type Port struct {
	port serial.Port
	path string
	baud int

	mu      sync.Mutex
	rx      []byte
	readErr error
}

// Options configures Open.
type Options struct {
	// OpenRetries is how many times to retry opening the port if it is
	// briefly unavailable (e.g. a USB-serial adapter re-enumerating).
	OpenRetries int
	RetryDelay  time.Duration
}

// DefaultOptions returns the options Open uses when none are given.
func DefaultOptions() Options {
	return Options{OpenRetries: 3, RetryDelay: 100 * time.Millisecond}
}

// Open opens the serial port at path, retrying per opts if the port is
// briefly unavailable, and starts the background reader goroutine. The
// port is opened at lin.DefaultBaud; Begin then applies the rate the
// caller asks for.
func Open(path string, opts ...Options) (*Port, error) {
	opt := DefaultOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}

	sp, err := transport.Retry(transport.Options{
		MaxAttempts: opt.OpenRetries + 1,
		Delay:       opt.RetryDelay,
	}, func() (serial.Port, error) {
		return serial.Open(path, &serial.Mode{BaudRate: lin.DefaultBaud})
	})
	if err != nil {
		return nil, &lin.TransportError{Op: "open", Port: path, Err: err, Type: lin.ErrorTypeTransient, Retryable: true}
	}

	port := &Port{port: sp, path: path}
	go port.readLoop()
	return port, nil
}

// readLoop feeds rx until the port is closed, at which point the
// underlying Read call returns an error and the goroutine exits.
func (p *Port) readLoop() {
	buf := make([]byte, 1)
	for {
		n, err := p.port.Read(buf)
		if err != nil {
			p.mu.Lock()
			p.readErr = err
			p.mu.Unlock()
			return
		}
		if n == 0 {
			continue
		}
		p.mu.Lock()
		p.rx = append(p.rx, buf[0])
		p.mu.Unlock()
	}
}

// Begin implements lin.Driver: it applies baud to the already-open port.
// rxPin and txPin are accepted for interface parity with microcontroller
// drivers but are meaningless for a USB-serial adapter and are ignored.
func (p *Port) Begin(baud int, _, _ int) error {
	return p.UpdateBaud(baud)
}

// End implements lin.Driver by closing the underlying port, which also
// unblocks and terminates the background reader goroutine.
func (p *Port) End() error {
	if err := p.port.Close(); err != nil {
		return &lin.TransportError{Op: "close", Port: p.path, Err: err, Type: lin.ErrorTypePermanent}
	}
	return nil
}

// Close is an io.Closer-friendly alias for End, for callers that never
// touch the Driver interface directly.
func (p *Port) Close() error {
	return p.End()
}

// UpdateBaud implements lin.Driver's baud-switch requirement, used both
// at Begin and for the half-rate break byte of Wakeup and
// FrameTransfer.writeBreak.
func (p *Port) UpdateBaud(baud int) error {
	if err := p.port.SetMode(&serial.Mode{BaudRate: baud}); err != nil {
		return &lin.TransportError{Op: "set_baud", Port: p.path, Err: err, Type: lin.ErrorTypePermanent}
	}
	p.baud = baud
	return nil
}

// Write implements lin.Driver.
func (p *Port) Write(b byte) (int, error) {
	n, err := p.port.Write([]byte{b})
	if err != nil {
		return n, &lin.TransportError{Op: "write", Port: p.path, Err: err, Type: lin.ErrorTypeTransient, Retryable: true}
	}
	return n, nil
}

// Read implements lin.Driver: a non-blocking pop off the background
// reader's buffer. Callers are expected to check Available() first, per
// the Driver contract; called with nothing buffered, it reports the
// same ErrFramingTimeout a stalled bus would.
func (p *Port) Read() (byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.rx) == 0 {
		if p.readErr != nil {
			return 0, &lin.TransportError{Op: "read", Port: p.path, Err: p.readErr, Type: lin.ErrorTypeTransient, Retryable: true}
		}
		return 0, &lin.TransportError{Op: "read", Port: p.path, Err: lin.ErrFramingTimeout, Type: lin.ErrorTypeTimeout, Retryable: true}
	}
	b := p.rx[0]
	p.rx = p.rx[1:]
	return b, nil
}

// Available implements lin.Driver by reporting the background reader's
// current buffer depth.
func (p *Port) Available() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.rx)
}

// Flush implements lin.Driver by draining the OS write buffer.
func (p *Port) Flush() error {
	if err := p.port.Drain(); err != nil {
		return &lin.TransportError{Op: "flush", Port: p.path, Err: err, Type: lin.ErrorTypeTransient, Retryable: true}
	}
	return nil
}
