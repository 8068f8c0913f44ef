// lin-go
// SPDX-License-Identifier: LGPL-3.0-or-later

package lin

import (
	"github.com/mestrode/lin-go/internal/frame"
	"github.com/mestrode/lin-go/internal/pdu"
)

// maxAnnouncedLength is the largest total length a First Frame's 12-bit
// PCI length field can announce (LIN 2.2A §4.2.3.3.2).
const maxAnnouncedLength = 0x0FFF

// TransportLayer segments a request payload into one or more Diagnostic
// Transport Layer PDUs and reassembles a response payload from the
// frames a slave answers with. It holds a FrameTransfer rather than
// inheriting from it; the reference is the concrete *FrameTransfer, not
// an interface, so it is tested over a fake Driver beneath a real
// FrameTransfer rather than against a fake FrameTransfer.
type TransportLayer struct {
	ft    *FrameTransfer
	debug DebugSink

	maxReassembly int
}

// TransportLayerOption configures NewTransportLayer.
type TransportLayerOption func(*TransportLayer)

// WithMaxReassemblySize bounds the payload length WritePDU will reserve a
// buffer for when reassembling a multi-frame response. A First Frame
// announcing more than n total bytes is rejected with ErrBufferTooSmall
// instead of being reassembled, protecting a resource-constrained master
// from a misbehaving slave announcing a length near the protocol's
// 4095-byte ceiling. The default, used when n is left at zero, is that
// ceiling itself (no extra restriction beyond what the wire format
// allows).
func WithMaxReassemblySize(n int) TransportLayerOption {
	return func(tl *TransportLayer) {
		if n <= 0 {
			n = maxAnnouncedLength
		}
		tl.maxReassembly = n
	}
}

// NewTransportLayer builds a TransportLayer over ft. Debug output from ft
// (set via WithDebugSink at FrameTransfer construction) is reused here.
func NewTransportLayer(ft *FrameTransfer, opts ...TransportLayerOption) *TransportLayer {
	tl := &TransportLayer{ft: ft, debug: ft.debug, maxReassembly: maxAnnouncedLength}
	for _, opt := range opts {
		opt(tl)
	}
	return tl
}

// WritePDU segments payload, writes every resulting PDU as a
// Master-Request frame, then reads the slave's response and reassembles
// it. nad is read for the outbound NAD and, on successful wildcard
// resolution or a matching newNAD, overwritten with the address the
// slave actually answered from (LIN 2.2A §4.2.3.4). newNAD should be 0
// unless the call is a Conditional Change NAD, in which case it is the
// address the slave is expected to adopt before replying.
func (tl *TransportLayer) WritePDU(nad *byte, payload []byte, newNAD byte) ([]byte, error) {
	frameset, err := segmentPayload(*nad, payload)
	if err != nil {
		return nil, err
	}
	for _, p := range frameset {
		if err := tl.ft.WriteFrame(frame.MasterRequestFID, p[:]); err != nil {
			return nil, err
		}
	}
	return tl.readResponse(nad, newNAD)
}

// segmentPayload implements §4.6.1: a payload of 6 bytes or fewer
// becomes a single Single Frame; a longer payload becomes one First
// Frame (the first 5 bytes) followed by as many Consecutive Frames
// (6 bytes each, sequence numbers 1, 2, … mod 16) as needed to carry the
// remainder.
func segmentPayload(nad byte, payload []byte) ([][pdu.Size]byte, error) {
	if len(payload) <= pdu.DataLenSingle {
		sf, err := pdu.SingleFrame(nad, payload)
		if err != nil {
			return nil, err
		}
		return [][pdu.Size]byte{sf}, nil
	}

	ff, err := pdu.FirstFrame(nad, len(payload), payload)
	if err != nil {
		return nil, err
	}
	frameset := [][pdu.Size]byte{ff}

	offset := pdu.DataLenFirst
	seq := 1
	for offset < len(payload) {
		cf, err := pdu.ConsecutiveFrame(nad, seq, payload, offset)
		if err != nil {
			return nil, err
		}
		frameset = append(frameset, cf)
		offset += pdu.DataLenSingle
		seq++
	}
	return frameset, nil
}

// readResponse implements §4.6.2: it reads Slave-Response frames until a
// complete payload has been reassembled, a 50ms-per-frame timeout
// expires, or a strict-mode violation aborts the transaction.
func (tl *TransportLayer) readResponse(nad *byte, newNAD byte) ([]byte, error) {
	requestedNAD := *nad
	acceptedNAD := requestedNAD

	var payload []byte
	var announced int
	expectingConsecutive := false
	expectedSeq := 1

	for {
		raw, err := tl.ft.ReadFrame(frame.SlaveResponseFID, pdu.Size)
		if err != nil {
			if len(payload) == 0 {
				return nil, err
			}
			return nil, &TransportError{Op: "write_pdu", Err: err, Type: ErrorTypeTimeout, Retryable: true}
		}
		var p [pdu.Size]byte
		copy(p[:], raw)

		if !expectingConsecutive {
			if requestedNAD == pdu.NADBroadcast || pdu.NAD(p) == newNAD {
				acceptedNAD = pdu.NAD(p)
			}
			if acceptedNAD != pdu.NAD(p) {
				continue
			}

			switch pdu.DecodeKind(p) {
			case pdu.KindSingle:
				data, err := pdu.DecodeSingleFrame(p)
				if err != nil {
					tl.debug.Printf("write_pdu: single frame rejected: %v", err)
					acceptedNAD = requestedNAD
					continue
				}
				payload = data
				return tl.finish(nad, requestedNAD, acceptedNAD, newNAD, payload)
			case pdu.KindFirst:
				total, first, err := pdu.DecodeFirstFrame(p)
				if err != nil {
					tl.debug.Printf("write_pdu: first frame rejected: %v", err)
					acceptedNAD = requestedNAD
					continue
				}
				if total > tl.maxReassembly {
					// Unlike a malformed or rejected PDU, this slave is not
					// going to produce a different answer on the next poll:
					// it will keep announcing the same oversized length, so
					// aborting immediately instead of reverting and
					// continuing to listen avoids burning the rest of the
					// per-frame timeout budget on a doomed transaction.
					tl.debug.Printf("write_pdu: announced length %d exceeds %d-byte reassembly limit", total, tl.maxReassembly)
					return nil, &TransportError{Op: "write_pdu", Err: ErrBufferTooSmall, Type: ErrorTypePermanent}
				}
				payload = append(make([]byte, 0, total), first...)
				announced = total
				expectingConsecutive = true
				expectedSeq = 1
				continue
			default:
				tl.debug.Printf("write_pdu: unexpected frame type in first-frame phase")
				acceptedNAD = requestedNAD
				continue
			}
		}

		// Consecutive-frame phase: strict mode, any violation aborts.
		if acceptedNAD != pdu.NAD(p) {
			return nil, &TransportError{Op: "write_pdu", Err: ErrNadMismatch, Type: ErrorTypePermanent}
		}
		if pdu.DecodeKind(p) != pdu.KindConsecutive {
			return nil, &TransportError{Op: "write_pdu", Err: ErrUnexpectedFrameType, Type: ErrorTypePermanent}
		}
		remaining := announced - len(payload)
		data, err := pdu.DecodeConsecutiveFrame(p, expectedSeq, remaining)
		if err != nil {
			return nil, &TransportError{Op: "write_pdu", Err: ErrSequenceMismatch, Type: ErrorTypePermanent}
		}
		payload = append(payload, data...)
		expectedSeq++
		if len(payload) >= announced {
			return tl.finish(nad, requestedNAD, acceptedNAD, newNAD, payload)
		}
	}
}

// finish applies the NAD-update rule of §4.6.2: the caller's NAD is
// overwritten with the address the slave actually answered from only
// when the request was a wildcard (broadcast) or a specific newNAD was
// expected (Conditional Change NAD), matching the original
// writePDU/readPduResponse semantics.
func (tl *TransportLayer) finish(nad *byte, requestedNAD, acceptedNAD, newNAD byte, payload []byte) ([]byte, error) {
	if requestedNAD == pdu.NADBroadcast || newNAD != 0 {
		*nad = acceptedNAD
	}
	return payload, nil
}
