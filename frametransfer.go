// lin-go
// SPDX-License-Identifier: LGPL-3.0-or-later

package lin

import (
	"time"

	"github.com/mestrode/lin-go/internal/frame"
)

// DefaultBaud is the nominal LIN 2.2A bit rate used when no WithBaud
// option is given.
const DefaultBaud = 19200

// FrameTransfer emits and receives single LIN frames: Break, Sync,
// Protected ID, optional data and checksum. It is the only layer that
// touches the Driver directly.
type FrameTransfer struct {
	driver Driver
	clock  Clock
	debug  DebugSink

	baud           int
	rxPin, txPin   int
	verifyReadback bool
	drainReadback  bool

	begun bool
}

// NewFrameTransfer opens driver at the configured baud rate and pin
// assignment and returns a FrameTransfer ready for WriteFrame/ReadFrame.
// Default configuration: 19200 baud, default pins, readback verification
// enabled, no debug output.
func NewFrameTransfer(driver Driver, opts ...Option) (*FrameTransfer, error) {
	ft := &FrameTransfer{
		driver:         driver,
		clock:          NewSystemClock(),
		debug:          NopDebugSink(),
		baud:           DefaultBaud,
		rxPin:          -1,
		txPin:          -1,
		verifyReadback: true,
	}
	for _, opt := range opts {
		if err := opt(ft); err != nil {
			return nil, err
		}
	}
	if err := driver.Begin(ft.baud, ft.rxPin, ft.txPin); err != nil {
		return nil, &TransportError{Op: "begin", Err: err, Type: ErrorTypePermanent}
	}
	ft.begun = true
	return ft, nil
}

// Close ends the underlying driver session. The transmit buffer must
// already be flushed; FrameTransfer always flushes after writing, so
// this is only unsafe if a caller writes to the Driver directly.
func (ft *FrameTransfer) Close() error {
	if !ft.begun {
		return nil
	}
	ft.begun = false
	return ft.driver.End()
}

// WriteFrame sends one LIN frame for frameID. An empty data sends a
// request-only frame head (Break, Sync, PID) with no checksum; a
// non-empty data also sends the data bytes and checksum (LIN 2.2A
// §2.3.1.5, dispatched classic/enhanced by Checksum). When readback
// verification is enabled, the emitted bytes are read back off the
// (assumed half-duplex, looped-back) bus and compared; a mismatch
// returns ErrReadbackMismatch.
func (ft *FrameTransfer) WriteFrame(frameID byte, data []byte) error {
	if len(data) > frame.MaxDataLength {
		return &TransportError{Op: "write_frame", Err: ErrPduMalformed, Type: ErrorTypePermanent}
	}
	if len(data) == 0 {
		return ft.writeEmptyFrame(frameID)
	}

	protectedID := ProtectedID(frameID)

	if err := ft.writeFrameHead(protectedID); err != nil {
		return err
	}
	for _, b := range data {
		if _, err := ft.driver.Write(b); err != nil {
			return &TransportError{Op: "write_frame", Err: err, Type: ErrorTypeTransient, Retryable: true}
		}
	}
	checksum := Checksum(protectedID, data)
	if _, err := ft.driver.Write(checksum); err != nil {
		return &TransportError{Op: "write_frame", Err: err, Type: ErrorTypeTransient, Retryable: true}
	}
	if err := ft.driver.Flush(); err != nil {
		return &TransportError{Op: "write_frame", Err: err, Type: ErrorTypeTransient, Retryable: true}
	}

	if ft.verifyReadback {
		got, err := ft.receiveFrameData(protectedID, len(data), false)
		if err != nil {
			return err
		}
		for i, b := range got {
			if b != data[i] {
				ft.debug.Printf("write_frame: readback mismatch at byte %d: got %#02x want %#02x", i, b, data[i])
				return &TransportError{Op: "write_frame", Err: ErrReadbackMismatch, Type: ErrorTypeTransient, Retryable: true}
			}
		}
	} else if ft.drainReadback {
		ft.drainBytes(3 + len(data) + 1)
	}

	return nil
}

func (ft *FrameTransfer) writeEmptyFrame(frameID byte) error {
	protectedID := ProtectedID(frameID)

	if err := ft.writeFrameHead(protectedID); err != nil {
		return err
	}
	if err := ft.driver.Flush(); err != nil {
		return &TransportError{Op: "write_frame", Err: err, Type: ErrorTypeTransient, Retryable: true}
	}

	if ft.verifyReadback {
		if err := ft.receiveFrameHead(protectedID); err != nil {
			return err
		}
	} else if ft.drainReadback {
		ft.drainBytes(3)
	}

	return nil
}

// ReadFrame sends a request-only frame head for frameID, then waits for
// the response frame (which may be the hardware's own loopback of the
// request head followed by a slave's data, or a slave's data alone on a
// non-looping bus) of expectedDataLength data bytes. The bus is taken to
// loop back when readback verification or readback draining is enabled;
// with both disabled, the reader starts at the data field, since the
// head this master just sent never appears on RX. Returns the data
// bytes on success, or an error on timeout/checksum failure.
func (ft *FrameTransfer) ReadFrame(frameID byte, expectedDataLength int) ([]byte, error) {
	protectedID := ProtectedID(frameID)

	if err := ft.writeFrameHead(protectedID); err != nil {
		return nil, err
	}
	if err := ft.driver.Flush(); err != nil {
		return nil, &TransportError{Op: "read_frame", Err: err, Type: ErrorTypeTransient, Retryable: true}
	}

	return ft.receiveFrameData(protectedID, expectedDataLength, !ft.verifyReadback && !ft.drainReadback)
}

func (ft *FrameTransfer) writeFrameHead(protectedID byte) error {
	if err := ft.writeBreak(); err != nil {
		return err
	}
	if _, err := ft.driver.Write(frame.SyncField); err != nil {
		return &TransportError{Op: "write_frame_head", Err: err, Type: ErrorTypeTransient, Retryable: true}
	}
	if _, err := ft.driver.Write(protectedID); err != nil {
		return &TransportError{Op: "write_frame_head", Err: err, Type: ErrorTypeTransient, Retryable: true}
	}
	return nil
}

// writeBreak emits the Break field. A driver that implements
// frame.BreakCapable (detected via frame.HasNativeBreak) asserts the
// break directly at the line-control level; otherwise writeBreak falls
// back to the half-baud trick, writing the 0x00 byte (including its
// stop bit) at half the configured baud rate so it occupies at least 14
// nominal bit times (LIN 2.2A §2.3.1.1).
func (ft *FrameTransfer) writeBreak() error {
	if frame.HasNativeBreak(ft.driver) {
		breaker := ft.driver.(frame.BreakCapable)
		if err := ft.driver.Flush(); err != nil {
			return &TransportError{Op: "write_break", Err: err, Type: ErrorTypeTransient, Retryable: true}
		}
		if err := breaker.Break(frame.BreakDuration(ft.baud)); err != nil {
			return &TransportError{Op: "write_break", Err: err, Type: ErrorTypeTransient, Retryable: true}
		}
		return nil
	}

	if err := ft.driver.Flush(); err != nil {
		return &TransportError{Op: "write_break", Err: err, Type: ErrorTypeTransient, Retryable: true}
	}
	if err := ft.driver.UpdateBaud(ft.baud / 2); err != nil {
		return &TransportError{Op: "write_break", Err: err, Type: ErrorTypeTransient, Retryable: true}
	}
	_, err := ft.driver.Write(frame.BreakField)
	if err != nil {
		return &TransportError{Op: "write_break", Err: err, Type: ErrorTypeTransient, Retryable: true}
	}
	if err := ft.driver.Flush(); err != nil {
		return &TransportError{Op: "write_break", Err: err, Type: ErrorTypeTransient, Retryable: true}
	}
	return ft.driver.UpdateBaud(ft.baud)
}

// receiveFrameData drives a frame.Reader over incoming bytes until
// FrameComplete or the 50ms receive window elapses. With headSent, the
// reader is first fed the head this master transmitted, so it expects
// only data and checksum bytes on the wire.
func (ft *FrameTransfer) receiveFrameData(protectedID byte, expectedDataLength int, headSent bool) ([]byte, error) {
	reader := frame.New(protectedID, expectedDataLength, Checksum)
	reader.Debug = ft.debug.Printf
	if headSent {
		reader.ProcessByte(frame.BreakField)
		reader.ProcessByte(frame.SyncField)
		reader.ProcessByte(protectedID)
	}

	deadline := ft.clock.Millis() + frame.ReadTimeoutMS
	for ft.clock.Millis() < deadline && !reader.Done() {
		if ft.driver.Available() == 0 {
			continue
		}
		b, err := ft.driver.Read()
		if err != nil {
			return nil, &TransportError{Op: "read_frame", Err: err, Type: ErrorTypeTransient, Retryable: true}
		}
		reader.ProcessByte(b)
	}

	if !reader.Done() {
		ft.debug.Printf("read_frame: timeout, no valid frame received")
		return nil, &TransportError{Op: "read_frame", Err: ErrFramingTimeout, Type: ErrorTypeTimeout, Retryable: true}
	}
	return reader.Data(), nil
}

// receiveFrameHead waits only for Break, Sync and the expected PID to be
// matched, for request-only frame readback (WriteFrame with empty data).
func (ft *FrameTransfer) receiveFrameHead(protectedID byte) error {
	reader := frame.New(protectedID, 0, Checksum)
	reader.Debug = ft.debug.Printf

	deadline := ft.clock.Millis() + frame.ReadTimeoutMS
	for ft.clock.Millis() < deadline && !reader.HasHead() {
		if ft.driver.Available() == 0 {
			continue
		}
		b, err := ft.driver.Read()
		if err != nil {
			return &TransportError{Op: "write_frame", Err: err, Type: ErrorTypeTransient, Retryable: true}
		}
		reader.ProcessByte(b)
	}

	if !reader.HasHead() {
		ft.debug.Printf("write_frame: timeout, no valid frame head received")
		return &TransportError{Op: "write_frame", Err: ErrFramingTimeout, Type: ErrorTypeTimeout, Retryable: true}
	}
	return nil
}

func (ft *FrameTransfer) drainBytes(n int) {
	for i := 0; i < n; i++ {
		if ft.driver.Available() == 0 {
			ft.clock.Sleep(time.Millisecond)
		}
		if ft.driver.Available() > 0 {
			_, _ = ft.driver.Read()
		}
	}
}
