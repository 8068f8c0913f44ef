// lin-go
// SPDX-License-Identifier: LGPL-3.0-or-later

package lin

// ProtectedID combines a 6-bit Frame Identifier with its two parity bits
// (LIN 2.2A §2.3.1.3). Bit 6 (P0) is the XOR of ID0, ID1, ID2, ID4; bit 7
// (P1) is the complemented XOR of ID1, ID3, ID4, ID5.
func ProtectedID(frameID byte) byte {
	id := frameID & 0x3F

	bit := func(n uint) byte { return (id >> n) & 1 }

	p0 := bit(0) ^ bit(1) ^ bit(2) ^ bit(4)
	p1 := 1 ^ bit(1) ^ bit(3) ^ bit(4) ^ bit(5)

	return id | (p0 << 6) | (p1 << 7)
}

// FrameID extracts the 6-bit Frame Identifier from a Protected ID,
// discarding the parity bits.
func FrameID(protectedID byte) byte {
	return protectedID & 0x3F
}

// classicChecksumThreshold is the Frame ID at and above which a classic
// (unprotected) checksum is used rather than the enhanced checksum,
// because LIN 1.x nodes and diagnostic frames (0x3C, 0x3D) predate the
// enhanced scheme (LIN 2.2A §2.3.1.5).
const classicChecksumThreshold = 0x3C

// Checksum computes the checksum byte for a frame, dispatching between
// the classic and enhanced algorithms based on the frame's identifier
// (LIN 2.2A §2.3.1.5). protectedID carries the Frame ID (with parity
// bits, which this function strips); data is the frame's data bytes.
func Checksum(protectedID byte, data []byte) byte {
	if FrameID(protectedID) >= classicChecksumThreshold {
		return classicChecksum(data)
	}
	return enhancedChecksum(protectedID, data)
}

// classicChecksum sums only the data bytes (LIN 1.x compatibility mode
// and diagnostic frames 0x3C/0x3D).
func classicChecksum(data []byte) byte {
	return invertedChecksum(0, data)
}

// enhancedChecksum includes the Protected ID byte in the sum (LIN 2.x
// frames with a Frame ID below 0x3C).
func enhancedChecksum(protectedID byte, data []byte) byte {
	return invertedChecksum(protectedID, data)
}

// invertedChecksum implements the classic/enhanced checksum body shared
// by both variants: a 16-bit accumulator seeded with seed, summed against
// every data byte, then folded twice to collapse any carry into the low
// byte, then bitwise-inverted (LIN 2.2A §2.3.1.5 worked example).
func invertedChecksum(seed byte, data []byte) byte {
	sum := uint16(seed)
	for _, b := range data {
		sum += uint16(b)
	}
	sum = (sum & 0xFF) + (sum >> 8)
	sum = (sum & 0xFF) + (sum >> 8)
	return ^byte(sum)
}
