// lin-go
// SPDX-License-Identifier: LGPL-3.0-or-later

package frame

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sumChecksum(_ byte, data []byte) byte {
	var sum byte
	for _, b := range data {
		sum += b
	}
	return sum
}

func TestReader_CompleteFrame(t *testing.T) {
	t.Parallel()

	r := New(0x7D, 3, sumChecksum)
	bytes := []byte{BreakField, SyncField, 0x7D, 0x01, 0x02, 0x03, 0x06}

	var done bool
	for _, b := range bytes {
		done = r.ProcessByte(b)
	}

	assert.True(t, done)
	assert.True(t, r.Done())
	assert.Equal(t, []byte{0x01, 0x02, 0x03}, r.Data())
}

func TestReader_HeaderOnly(t *testing.T) {
	t.Parallel()

	r := New(0x3C, 0, sumChecksum)
	assert.False(t, r.ProcessByte(BreakField))
	assert.False(t, r.ProcessByte(SyncField))
	assert.True(t, r.ProcessByte(0x3C))
	assert.True(t, r.HasHead())
}

func TestReader_NoiseBeforeBreakIsIgnored(t *testing.T) {
	t.Parallel()

	r := New(0x7D, 1, sumChecksum)
	for _, noise := range []byte{0x01, 0xFF, 0x80} {
		assert.False(t, r.ProcessByte(noise))
		assert.Equal(t, WaitForBreak, r.state)
	}

	done := false
	for _, b := range []byte{BreakField, SyncField, 0x7D, 0x05, 0x05} {
		done = r.ProcessByte(b)
	}
	assert.True(t, done)
	assert.Equal(t, []byte{0x05}, r.Data())
}

func TestReader_BadSyncResets(t *testing.T) {
	t.Parallel()

	r := New(0x7D, 1, sumChecksum)
	r.ProcessByte(BreakField)
	r.ProcessByte(0x11) // not SyncField
	assert.Equal(t, WaitForBreak, r.state)
}

func TestReader_BadPIDResets(t *testing.T) {
	t.Parallel()

	r := New(0x7D, 1, sumChecksum)
	r.ProcessByte(BreakField)
	r.ProcessByte(SyncField)
	r.ProcessByte(0x44) // not the expected PID
	assert.Equal(t, WaitForBreak, r.state)
}

func TestReader_ChecksumMismatchResets(t *testing.T) {
	t.Parallel()

	r := New(0x7D, 1, sumChecksum)
	r.ProcessByte(BreakField)
	r.ProcessByte(SyncField)
	r.ProcessByte(0x7D)
	r.ProcessByte(0x05)
	done := r.ProcessByte(0xAA) // wrong checksum, expected 0x05
	assert.False(t, done)
	assert.Equal(t, WaitForBreak, r.state)
}

func TestReader_ResetClearsPartialData(t *testing.T) {
	t.Parallel()

	r := New(0x7D, 2, sumChecksum)
	r.ProcessByte(BreakField)
	r.ProcessByte(SyncField)
	r.ProcessByte(0x7D)
	r.ProcessByte(0x01)
	r.Reset()
	assert.Equal(t, WaitForBreak, r.state)
	assert.Empty(t, r.Data())
}
