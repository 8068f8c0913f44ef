// lin-go
// SPDX-License-Identifier: LGPL-3.0-or-later

package frame

import "time"

// BreakCapable is implemented by drivers that can assert a break
// condition on the wire directly (typically via the UART's line-control
// register), instead of relying on FrameTransfer's half-baud
// write-a-zero-byte trick. It is declared here, not against lin.Driver,
// so internal/frame stays free of the import that would cycle back to
// the root package; a driver satisfies it structurally.
type BreakCapable interface {
	Break(d time.Duration) error
}

// HasNativeBreak reports whether driver implements BreakCapable.
func HasNativeBreak(driver any) bool {
	_, ok := driver.(BreakCapable)
	return ok
}

// BreakDuration is the minimum break-field width LIN 2.2A requires (13
// nominal bit times, LIN 2.2A §2.3.1.1) for a native break at baud.
func BreakDuration(baud int) time.Duration {
	return time.Duration(13) * time.Second / time.Duration(baud)
}
