// lin-go
// SPDX-License-Identifier: LGPL-3.0-or-later

package lin

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProtectedID_KnownVectors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		frameID byte
		want    byte
	}{
		{0x00, 0x80},
		{0x01, 0xC1},
		{0x21, 0x61},
		{0x3C, 0x3C},
		{0x3D, 0x7D},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ProtectedID(c.frameID), "frameID %#02x", c.frameID)
	}
}

func TestFrameID_StripsParity(t *testing.T) {
	t.Parallel()

	assert.Equal(t, byte(0x01), FrameID(ProtectedID(0x01)))
}

func TestChecksum_ClassicWorkedExample(t *testing.T) {
	t.Parallel()

	// LIN 2.2A §2.3.1.5 classic checksum worked example.
	got := classicChecksum([]byte{0x4A, 0x55, 0x93, 0xE5})
	assert.Equal(t, byte(0xE6), got)
}

func TestChecksum_DispatchesClassicForDiagnosticFID(t *testing.T) {
	t.Parallel()

	pid := ProtectedID(0x3C)
	assert.Equal(t, classicChecksum([]byte{0x01, 0x02}), Checksum(pid, []byte{0x01, 0x02}))
}

func TestChecksum_DispatchesEnhancedBelowThreshold(t *testing.T) {
	t.Parallel()

	pid := ProtectedID(0x10)
	assert.Equal(t, enhancedChecksum(pid, []byte{0x01, 0x02}), Checksum(pid, []byte{0x01, 0x02}))
	assert.NotEqual(t, classicChecksum([]byte{0x01, 0x02}), Checksum(pid, []byte{0x01, 0x02}))
}

func TestChecksum_RoundTripsThroughVerification(t *testing.T) {
	t.Parallel()

	pid := ProtectedID(0x05)
	data := []byte{0x11, 0x22, 0x33}
	sum := Checksum(pid, data)
	assert.Equal(t, sum, Checksum(pid, data))
}
