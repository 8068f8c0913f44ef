// lin-go
// SPDX-License-Identifier: LGPL-3.0-or-later

// Package pdu implements the 8-byte Diagnostic Transport Layer carrier
// (LIN 2.2A §4.2.3): Single-Frame, First-Frame and Consecutive-Frame
// encodings over the Master-Request / Slave-Response PDU, plus their
// decoders. Encoders and decoders operate on explicit byte arrays — the
// original C++ reinterprets a raw buffer as a union of frame kinds; this
// package instead validates the PCI kind before exposing any field and
// never aliases storage.
package pdu

import "fmt"

// Size is the fixed length of every PDU (LIN 2.2A §4.2.3.1).
const Size = 8

// FillByte pads unused PDU positions.
const FillByte = 0xFF

// NAD well-known values (LIN 2.2A §4.2.3.2).
const (
	NADSleep      = 0x00
	NADFunctional = 0x7E
	NADBroadcast  = 0x7F // wildcard
)

// Kind is the PCI type carried in the high nibble of byte 1.
type Kind byte

const (
	KindSingle      Kind = 0x00
	KindFirst       Kind = 0x10
	KindConsecutive Kind = 0x20
)

const (
	maskPCIKind = 0xF0
	maskPCILen  = 0x0F

	// DataLenSingle is the payload capacity of a Single Frame or
	// Consecutive Frame (LIN 2.2A Table 4.4).
	DataLenSingle = 6
	// DataLenFirst is the payload carried inline by a First Frame; the
	// remaining bytes of the announced length follow in Consecutive
	// Frames.
	DataLenFirst = DataLenSingle - 1
)

// SingleFrame encodes a payload that fits into one PDU.
func SingleFrame(nad byte, payload []byte) ([Size]byte, error) {
	var out [Size]byte
	if len(payload) > DataLenSingle {
		return out, fmt.Errorf("pdu: single frame payload too long: %d bytes", len(payload))
	}
	out[0] = nad
	out[1] = byte(KindSingle) | byte(len(payload)&maskPCILen)
	copy(out[2:], payload)
	fill(out[2+len(payload):])
	return out, nil
}

// DecodeSingleFrame extracts the payload of a Single Frame PDU, rejecting
// a declared length greater than 6 (LIN 2.2A §4.2.3.3.1).
func DecodeSingleFrame(p [Size]byte) ([]byte, error) {
	if Kind(p[1]&maskPCIKind) != KindSingle {
		return nil, fmt.Errorf("pdu: not a single frame: pci=%#02x", p[1])
	}
	length := int(p[1] & maskPCILen)
	if length > DataLenSingle {
		return nil, fmt.Errorf("pdu: single frame length %d exceeds %d", length, DataLenSingle)
	}
	return append([]byte(nil), p[2:2+length]...), nil
}

// FirstFrame encodes the first PDU of a multi-frame message: the total
// announced length and the first 5 payload bytes. Callers must ensure
// totalLen > DataLenSingle (otherwise the message must use a Single
// Frame) and that payload holds at least DataLenFirst bytes.
func FirstFrame(nad byte, totalLen int, payload []byte) ([Size]byte, error) {
	var out [Size]byte
	if totalLen <= DataLenSingle {
		return out, fmt.Errorf("pdu: first frame announced length %d must exceed %d", totalLen, DataLenSingle)
	}
	if len(payload) < DataLenFirst {
		return out, fmt.Errorf("pdu: first frame needs %d leading bytes, got %d", DataLenFirst, len(payload))
	}
	out[0] = nad
	out[1] = byte(KindFirst) | byte((totalLen>>8)&maskPCILen)
	out[2] = byte(totalLen & 0xFF)
	copy(out[3:], payload[:DataLenFirst])
	return out, nil
}

// DecodeFirstFrame extracts the announced total length and the inline
// payload bytes of a First Frame, rejecting an announced length of 6 or
// less (LIN 2.2A §4.2.3.3.2 — such a message must have used a Single
// Frame).
func DecodeFirstFrame(p [Size]byte) (totalLen int, payload []byte, err error) {
	if Kind(p[1]&maskPCIKind) != KindFirst {
		return 0, nil, fmt.Errorf("pdu: not a first frame: pci=%#02x", p[1])
	}
	totalLen = int(p[1]&maskPCILen)<<8 | int(p[2])
	if totalLen <= DataLenSingle {
		return 0, nil, fmt.Errorf("pdu: first frame announced length %d must exceed %d", totalLen, DataLenSingle)
	}
	return totalLen, append([]byte(nil), p[3:3+DataLenFirst]...), nil
}

// ConsecutiveFrame encodes up to 6 bytes of payload, starting at offset,
// under the given sequence number (taken modulo 16).
func ConsecutiveFrame(nad byte, sequenceNumber int, payload []byte, offset int) ([Size]byte, error) {
	var out [Size]byte
	if offset > len(payload) {
		return out, fmt.Errorf("pdu: consecutive frame offset %d beyond payload length %d", offset, len(payload))
	}
	out[0] = nad
	out[1] = byte(KindConsecutive) | byte(sequenceNumber&maskPCILen)
	n := copy(out[2:], payload[offset:])
	fill(out[2+n:])
	return out, nil
}

// DecodeConsecutiveFrame validates the sequence number against the
// expected value (modulo 16) and returns up to maxLen payload bytes,
// discarding trailing fill bytes (LIN 2.2A §4.2.3.3.3).
func DecodeConsecutiveFrame(p [Size]byte, expectedSeq int, maxLen int) ([]byte, error) {
	if Kind(p[1]&maskPCIKind) != KindConsecutive {
		return nil, fmt.Errorf("pdu: not a consecutive frame: pci=%#02x", p[1])
	}
	seq := int(p[1] & maskPCILen)
	if seq != expectedSeq&maskPCILen {
		return nil, fmt.Errorf("pdu: sequence mismatch: got %d want %d", seq, expectedSeq&maskPCILen)
	}
	n := maxLen
	if n > DataLenSingle {
		n = DataLenSingle
	}
	if n < 0 {
		n = 0
	}
	return append([]byte(nil), p[2:2+n]...), nil
}

// NAD returns the Node Address carried in byte 0 of any PDU kind.
func NAD(p [Size]byte) byte {
	return p[0]
}

// DecodeKind returns the PCI kind carried in byte 1 of any PDU.
func DecodeKind(p [Size]byte) Kind {
	return Kind(p[1] & maskPCIKind)
}

// SleepCommand builds the Go-To-Sleep PDU: NAD=0x00, PCI=0xFF, all data
// bytes 0xFF (LIN 2.2A §2.6.3).
func SleepCommand() [Size]byte {
	var out [Size]byte
	out[0] = NADSleep
	fill(out[1:])
	return out
}

func fill(b []byte) {
	for i := range b {
		b[i] = FillByte
	}
}
