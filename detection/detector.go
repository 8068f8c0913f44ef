// lin-go
// SPDX-License-Identifier: LGPL-3.0-or-later

// Package detection enumerates serial ports that might carry a LIN bus,
// filtering out devices the caller has asked to ignore or that are known
// to misbehave under LIN-style break/sync framing.
package detection

import (
	"fmt"

	"go.bug.st/serial/enumerator"
)

// DeviceInfo describes one candidate serial port.
type DeviceInfo struct {
	Path   string
	VID    string
	PID    string
	Serial string
}

// Options controls which ports Detect skips.
type Options struct {
	IgnorePaths []string
	Blocklist   []string
}

// DefaultOptions returns an Options with no ports excluded.
func DefaultOptions() Options {
	return Options{}
}

// Detect lists the serial ports visible to the OS, in the order the OS
// reports them, dropping any port whose path is in opts.IgnorePaths or
// whose VID:PID is in opts.Blocklist (DefaultBlocklist when nil).
func Detect(opts Options) ([]DeviceInfo, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("list serial ports: %w", err)
	}

	blocklist := opts.Blocklist
	if blocklist == nil {
		blocklist = DefaultBlocklist()
	}

	devices := make([]DeviceInfo, 0, len(ports))
	for _, p := range ports {
		if IsPathIgnored(p.Name, opts.IgnorePaths) {
			continue
		}
		if IsBlocked(p.VID, p.PID, blocklist) {
			continue
		}
		devices = append(devices, DeviceInfo{
			Path:   p.Name,
			VID:    p.VID,
			PID:    p.PID,
			Serial: p.SerialNumber,
		})
	}
	return devices, nil
}
