// lin-go
// SPDX-License-Identifier: LGPL-3.0-or-later

package pdu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSingleFrame_RoundTrip(t *testing.T) {
	t.Parallel()

	p, err := SingleFrame(0x01, []byte{0xAA, 0xBB, 0xCC})
	require.NoError(t, err)
	assert.Equal(t, byte(0x01), NAD(p))
	assert.Equal(t, KindSingle, DecodeKind(p))
	assert.Equal(t, [Size]byte{0x01, 0x03, 0xAA, 0xBB, 0xCC, 0xFF, 0xFF, 0xFF}, p)

	data, err := DecodeSingleFrame(p)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xAA, 0xBB, 0xCC}, data)
}

func TestSingleFrame_TooLong(t *testing.T) {
	t.Parallel()

	_, err := SingleFrame(0x01, make([]byte, 7))
	assert.Error(t, err)
}

func TestDecodeSingleFrame_RejectsWrongKind(t *testing.T) {
	t.Parallel()

	p, _ := FirstFrame(0x01, 10, []byte{1, 2, 3, 4, 5})
	_, err := DecodeSingleFrame(p)
	assert.Error(t, err)
}

func TestFirstFrame_RoundTrip(t *testing.T) {
	t.Parallel()

	payload := []byte{0x01, 0x02, 0x03, 0x04, 0x05}
	p, err := FirstFrame(0x10, 12, payload)
	require.NoError(t, err)
	assert.Equal(t, KindFirst, DecodeKind(p))

	total, got, err := DecodeFirstFrame(p)
	require.NoError(t, err)
	assert.Equal(t, 12, total)
	assert.Equal(t, payload, got)
}

func TestFirstFrame_RejectsShortAnnouncedLength(t *testing.T) {
	t.Parallel()

	_, err := FirstFrame(0x10, DataLenSingle, make([]byte, DataLenFirst))
	assert.Error(t, err)
}

func TestFirstFrame_RejectsShortPayload(t *testing.T) {
	t.Parallel()

	_, err := FirstFrame(0x10, 20, []byte{1, 2})
	assert.Error(t, err)
}

func TestConsecutiveFrame_RoundTrip(t *testing.T) {
	t.Parallel()

	payload := []byte{0x06, 0x07, 0x08, 0x09, 0x0A, 0x0B, 0x0C}
	p, err := ConsecutiveFrame(0x10, 1, payload, 0)
	require.NoError(t, err)
	assert.Equal(t, KindConsecutive, DecodeKind(p))

	got, err := DecodeConsecutiveFrame(p, 1, len(payload))
	require.NoError(t, err)
	assert.Equal(t, payload[:DataLenSingle], got)
}

func TestConsecutiveFrame_TailIsFillPadded(t *testing.T) {
	t.Parallel()

	p, err := ConsecutiveFrame(0x10, 2, []byte{0x0D}, 0)
	require.NoError(t, err)
	assert.Equal(t, [Size]byte{0x10, 0x22, 0x0D, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}, p)
}

func TestConsecutiveFrame_SequenceWraps(t *testing.T) {
	t.Parallel()

	p, err := ConsecutiveFrame(0x10, 17, []byte{0x01}, 0)
	require.NoError(t, err)
	assert.Equal(t, byte(0x21), p[1])
}

func TestDecodeConsecutiveFrame_SequenceMismatch(t *testing.T) {
	t.Parallel()

	p, _ := ConsecutiveFrame(0x10, 3, []byte{0x01}, 0)
	_, err := DecodeConsecutiveFrame(p, 4, 1)
	assert.Error(t, err)
}

func TestSleepCommand(t *testing.T) {
	t.Parallel()

	p := SleepCommand()
	assert.Equal(t, [Size]byte{0x00, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}, p)
}
