// lin-go
// SPDX-License-Identifier: LGPL-3.0-or-later

package lin

import (
	"testing"
	"time"

	lintesting "github.com/mestrode/lin-go/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock advances by one millisecond on every read, so a
// FrameTransfer's receive busy-loop (which polls Millis() without
// sleeping while no bytes are available) reaches the 50ms deadline after
// a bounded number of iterations instead of depending on wall-clock
// timing or a concurrently-advancing goroutine.
type fakeClock struct {
	ms uint32
}

func (c *fakeClock) Millis() uint32 {
	c.ms++
	return c.ms
}

func (c *fakeClock) Sleep(time.Duration) {}

func TestFrameTransfer_WriteFrame_ReadbackVerifiesAndSucceeds(t *testing.T) {
	t.Parallel()

	slave := lintesting.New() // loopback on by default
	ft, err := NewFrameTransfer(slave)
	require.NoError(t, err)

	err = ft.WriteFrame(0x10, []byte{0x01, 0x02, 0x03})
	require.NoError(t, err)
}

func TestFrameTransfer_WriteFrame_ReadbackMismatchFails(t *testing.T) {
	t.Parallel()

	slave := lintesting.New()
	slave.Loopback = false

	sent := []byte{0x01, 0x02, 0x03}
	corrupted := []byte{0x01, 0x02, 0x99} // differs in the last byte
	pid := ProtectedID(0x10)
	corruptedChecksum := Checksum(pid, corrupted)

	slave.OnWrite(func(s *lintesting.VirtualSlave, b byte) {
		// 3 head bytes + len(sent) data bytes + 1 checksum byte.
		if len(s.Written()) == 3+len(sent)+1 {
			s.QueueResponse(frameBreak, frameSync, pid)
			s.QueueResponse(corrupted...)
			s.QueueResponse(corruptedChecksum)
		}
	})

	transfer, err := NewFrameTransfer(slave)
	require.NoError(t, err)

	err = transfer.WriteFrame(0x10, sent)
	assert.ErrorIs(t, err, ErrReadbackMismatch)
}

func TestFrameTransfer_WriteEmptyFrame_HeaderReadbackSucceeds(t *testing.T) {
	t.Parallel()

	slave := lintesting.New()
	fc, transfer := frameTransferWithClock(t, slave)
	_ = fc

	err := transfer.WriteFrame(0x3C, nil)
	require.NoError(t, err)
}

func TestFrameTransfer_ReadFrame_Succeeds(t *testing.T) {
	t.Parallel()

	slave := lintesting.New()
	pid := ProtectedID(0x21)
	data := []byte{0xAA, 0xBB}
	checksum := Checksum(pid, data)

	slave.OnWrite(func(s *lintesting.VirtualSlave, b byte) {
		written := s.Written()
		if len(written) == 3 && written[2] == pid {
			s.QueueResponse(data[0], data[1], checksum)
		}
	})

	transfer, err := NewFrameTransfer(slave)
	require.NoError(t, err)

	got, err := transfer.ReadFrame(0x21, len(data))
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestFrameTransfer_ReadFrame_ChecksumMismatchTimesOut(t *testing.T) {
	t.Parallel()

	slave := lintesting.New()
	slave.Loopback = false
	fc := &fakeClock{}

	pid := ProtectedID(0x44)
	data := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}

	slave.OnWrite(func(s *lintesting.VirtualSlave, b byte) {
		written := s.Written()
		if len(written) == 3 && written[2] == pid {
			s.QueueResponse(data...)
			s.QueueResponse(Checksum(pid, data) ^ 0xFF) // deliberately wrong checksum
		}
	})

	transfer, err := NewFrameTransfer(slave, WithClock(fc), WithVerifyReadback(false))
	require.NoError(t, err)

	_, err = transfer.ReadFrame(0x44, len(data))
	assert.ErrorIs(t, err, ErrFramingTimeout)
}

func TestFrameTransfer_ReadFrame_TimesOutWhenNoResponse(t *testing.T) {
	t.Parallel()

	slave := lintesting.New()
	slave.Loopback = false
	fc := &fakeClock{}

	transfer, err := NewFrameTransfer(slave, WithClock(fc))
	require.NoError(t, err)

	_, err = transfer.ReadFrame(0x21, 2)
	assert.ErrorIs(t, err, ErrFramingTimeout)
}

func frameTransferWithClock(t *testing.T, slave *lintesting.VirtualSlave) (*fakeClock, *FrameTransfer) {
	t.Helper()
	fc := &fakeClock{}
	transfer, err := NewFrameTransfer(slave, WithClock(fc))
	require.NoError(t, err)
	return fc, transfer
}

const (
	frameBreak = 0x00
	frameSync  = 0x55
)

// breakCapableSlave wraps a VirtualSlave with a native Break, so
// writeBreak's frame.HasNativeBreak fast path can be exercised without a
// real driver. Break delivers the same 0x00 a receiver would synthesize
// from a detected break condition, matching what real UART drivers
// report to their read side.
type breakCapableSlave struct {
	*lintesting.VirtualSlave
	breakCalls  int
	halfBaudSet bool
}

func (b *breakCapableSlave) Break(time.Duration) error {
	b.breakCalls++
	_, err := b.VirtualSlave.Write(frameBreak)
	return err
}

func (b *breakCapableSlave) UpdateBaud(baud int) error {
	if baud == b.VirtualSlave.Baud()/2 {
		b.halfBaudSet = true
	}
	return b.VirtualSlave.UpdateBaud(baud)
}

func TestFrameTransfer_WriteFrame_UsesNativeBreakWhenAvailable(t *testing.T) {
	t.Parallel()

	slave := &breakCapableSlave{VirtualSlave: lintesting.New()}
	transfer, err := NewFrameTransfer(slave)
	require.NoError(t, err)

	err = transfer.WriteFrame(0x10, []byte{0x01, 0x02, 0x03})
	require.NoError(t, err)

	assert.Equal(t, 1, slave.breakCalls)
	assert.False(t, slave.halfBaudSet, "native break must not fall back to the half-baud trick")
}
