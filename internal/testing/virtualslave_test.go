// lin-go
// SPDX-License-Identifier: LGPL-3.0-or-later

package testing

import (
	stdtesting "testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVirtualSlave_LoopbackEchoesWrites(t *stdtesting.T) {
	t.Parallel()

	v := New()
	require.NoError(t, v.Begin(19200, -1, -1))

	_, err := v.Write(0x55)
	require.NoError(t, err)
	assert.Equal(t, 1, v.Available())

	b, err := v.Read()
	require.NoError(t, err)
	assert.Equal(t, byte(0x55), b)
}

func TestVirtualSlave_QueueResponseAppendsAfterLoopback(t *stdtesting.T) {
	t.Parallel()

	v := New()
	require.NoError(t, v.Begin(19200, -1, -1))

	_, _ = v.Write(0xAA)
	v.QueueResponse(0x01, 0x02)

	assert.Equal(t, 3, v.Available())
	got := make([]byte, 0, 3)
	for v.Available() > 0 {
		b, err := v.Read()
		require.NoError(t, err)
		got = append(got, b)
	}
	assert.Equal(t, []byte{0xAA, 0x01, 0x02}, got)
}

func TestVirtualSlave_OnWriteScriptsAReply(t *stdtesting.T) {
	t.Parallel()

	v := New()
	v.Loopback = false
	require.NoError(t, v.Begin(19200, -1, -1))

	var seen []byte
	v.OnWrite(func(slave *VirtualSlave, written byte) {
		seen = append(seen, written)
		if len(seen) == 3 {
			slave.QueueResponse(0x10, 0x20, 0x30)
		}
	})

	_, _ = v.Write(0x00)
	_, _ = v.Write(0x55)
	_, _ = v.Write(0x7D)

	assert.Equal(t, 3, v.Available())
}

func TestVirtualSlave_WriteBeforeBeginFails(t *stdtesting.T) {
	t.Parallel()

	v := New()
	_, err := v.Write(0x00)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestVirtualSlave_DoubleBeginFails(t *stdtesting.T) {
	t.Parallel()

	v := New()
	require.NoError(t, v.Begin(19200, -1, -1))
	assert.Error(t, v.Begin(19200, -1, -1))
}

func TestVirtualSlave_Written(t *stdtesting.T) {
	t.Parallel()

	v := New()
	require.NoError(t, v.Begin(19200, -1, -1))
	_, _ = v.Write(0x01)
	_, _ = v.Write(0x02)

	assert.Equal(t, []byte{0x01, 0x02}, v.Written())
}
