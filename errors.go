// lin-go
// SPDX-License-Identifier: LGPL-3.0-or-later

package lin

import (
	"errors"
	"fmt"
)

// ErrorType classifies an error for retry decisions.
type ErrorType int

const (
	ErrorTypeUnknown ErrorType = iota
	ErrorTypeTransient
	ErrorTypeTimeout
	ErrorTypePermanent
)

// Sentinel errors for the frame and transport layers (spec §7). They are
// wrapped by TransportError or ServiceError, never returned bare, so
// callers match with errors.Is against these values.
var (
	ErrFramingTimeout      = errors.New("lin: frame reader did not complete within the receive window")
	ErrChecksumMismatch    = errors.New("lin: received checksum does not match computed checksum")
	ErrReadbackMismatch    = errors.New("lin: transmitted bytes were not echoed verbatim on loopback")
	ErrPduMalformed        = errors.New("lin: malformed PDU")
	ErrSequenceMismatch    = errors.New("lin: consecutive frame sequence number is not the expected successor")
	ErrNadMismatch         = errors.New("lin: consecutive frame NAD does not match the first frame's NAD")
	ErrUnexpectedFrameType = errors.New("lin: expected a consecutive frame")
	ErrBufferTooSmall      = errors.New("lin: reassembly buffer cannot hold the announced payload length")
	ErrUnexpectedRsid      = errors.New("lin: response byte 0 is neither SID|0x40 nor 0x7F")
	ErrNegativeResponse    = errors.New("lin: negative response")
)

// TransportError wraps a failure from the Driver or FrameTransfer layer
// with enough context to decide whether retrying the surrounding
// connection (not the protocol exchange itself — spec §5 forbids that)
// is worthwhile.
type TransportError struct {
	Err       error
	Op        string
	Port      string
	Type      ErrorType
	Retryable bool
}

func (e *TransportError) Error() string {
	if e.Port != "" {
		return fmt.Sprintf("lin: %s on %s: %v", e.Op, e.Port, e.Err)
	}
	return fmt.Sprintf("lin: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ServiceError wraps a Node Configuration service failure: either a
// decoded negative response or a malformed/unexpected response frame.
type ServiceError struct {
	Err     error
	Service string
	NRC     NegativeResponseCode
	HasNRC  bool
}

func (e *ServiceError) Error() string {
	if e.HasNRC {
		return fmt.Sprintf("lin: %s: negative response: %s", e.Service, e.NRC)
	}
	return fmt.Sprintf("lin: %s: %v", e.Service, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether err represents a condition worth retrying
// the connection for. A nil error is not retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var te *TransportError
	if errors.As(err, &te) {
		return te.Retryable
	}
	switch GetErrorType(err) {
	case ErrorTypeTransient, ErrorTypeTimeout:
		return true
	default:
		return false
	}
}

// GetErrorType classifies err for callers that want finer-grained
// handling than IsRetryable's boolean.
func GetErrorType(err error) ErrorType {
	if err == nil {
		return ErrorTypeUnknown
	}
	var te *TransportError
	if errors.As(err, &te) {
		return te.Type
	}
	switch {
	case errors.Is(err, ErrFramingTimeout):
		return ErrorTypeTimeout
	case errors.Is(err, ErrChecksumMismatch),
		errors.Is(err, ErrReadbackMismatch),
		errors.Is(err, ErrSequenceMismatch),
		errors.Is(err, ErrNadMismatch),
		errors.Is(err, ErrUnexpectedFrameType):
		return ErrorTypeTransient
	case errors.Is(err, ErrPduMalformed),
		errors.Is(err, ErrBufferTooSmall),
		errors.Is(err, ErrUnexpectedRsid),
		errors.Is(err, ErrNegativeResponse):
		return ErrorTypePermanent
	default:
		return ErrorTypeUnknown
	}
}
