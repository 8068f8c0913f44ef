// lin-go
// SPDX-License-Identifier: LGPL-3.0-or-later

package lin

// Option configures a FrameTransfer.
type Option func(*FrameTransfer) error

// WithBaud sets the bit rate. Default: 19200 (LIN 2.2A nominal rate).
func WithBaud(baud int) Option {
	return func(ft *FrameTransfer) error {
		ft.baud = baud
		return nil
	}
}

// WithPins overrides the UART RX/TX pin assignment passed to
// Driver.Begin. Pass -1 for either to keep the driver's default.
func WithPins(rxPin, txPin int) Option {
	return func(ft *FrameTransfer) error {
		ft.rxPin = rxPin
		ft.txPin = txPin
		return nil
	}
}

// WithVerifyReadback enables loopback verification: every transmitted
// frame is read back off the half-duplex bus and compared byte-for-byte
// against what was sent. Requires hardware echo; disable on transceivers
// that don't loop back transmitted bytes onto RX.
func WithVerifyReadback(enabled bool) Option {
	return func(ft *FrameTransfer) error {
		ft.verifyReadback = enabled
		return nil
	}
}

// WithDrainReadback drains the loopback bytes of a transmitted frame
// without comparing them, so the receive buffer doesn't fill with a
// transaction's own echo. Ignored when WithVerifyReadback is enabled,
// since readback is drained as part of verification.
func WithDrainReadback(enabled bool) Option {
	return func(ft *FrameTransfer) error {
		ft.drainReadback = enabled
		return nil
	}
}

// WithDebugSink routes FrameTransfer trace output to sink. Default:
// NopDebugSink.
func WithDebugSink(sink DebugSink) Option {
	return func(ft *FrameTransfer) error {
		ft.debug = sink
		return nil
	}
}

// WithClock overrides the monotonic clock and sleep primitive. Default:
// NewSystemClock(). Tests substitute a fake clock to exercise the 50ms
// receive timeout deterministically.
func WithClock(clock Clock) Option {
	return func(ft *FrameTransfer) error {
		ft.clock = clock
		return nil
	}
}
