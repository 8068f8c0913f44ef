// lin-go
// SPDX-License-Identifier: LGPL-3.0-or-later

// Package frame implements the on-wire LIN frame: Break, Sync, Protected
// Identifier, up to 8 data bytes and a checksum, plus the byte-level
// receive state machine that reassembles one from an incoming stream.
package frame

// Break and Sync field values (LIN 2.2A §2.3.1.1, §2.3.1.2).
const (
	BreakField = 0x00
	SyncField  = 0x55
)

// FrameIDMask isolates the 6-bit Frame Identifier from a Protected
// Identifier or raw FID byte.
const FrameIDMask = 0b0011_1111

// Reserved Frame Identifiers (LIN 2.2A §2.3.3.5 / §4.2.3.5).
const (
	MasterRequestFID = 0x3C
	SlaveResponseFID = 0x3D
)

// MaxDataLength is the largest data-byte count a LIN frame may carry.
const MaxDataLength = 8

// ReadTimeoutMS is the maximum time, in milliseconds, allowed for a full frame to arrive,
// measured from the moment the read is requested (LIN 2.2A Table 3.2).
const ReadTimeoutMS = 50
