// lin-go
// SPDX-License-Identifier: LGPL-3.0-or-later

package detection

import (
	"path/filepath"
	"strings"
)

// VIDPID identifies a USB device by vendor and product ID, normalized to
// uppercase hex digits with no "0x" prefix, so blocklist entries and
// values reported by the OS compare equal regardless of case or prefix
// style.
type VIDPID struct {
	VID string
	PID string
}

func newVIDPID(vid, pid string) VIDPID {
	return VIDPID{VID: normalizeHexID(vid), PID: normalizeHexID(pid)}
}

func normalizeHexID(s string) string {
	return strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(s), "0x"))
}

// DefaultBlocklist is empty. Known-bad USB-serial bridges — ones observed
// to corrupt break framing or drop bytes at LIN's 19200+ baud rates — get
// added here as "VID:PID" entries as they're discovered in the field.
func DefaultBlocklist() []string {
	return nil
}

// splitVIDPID parses one "VID:PID" blocklist entry. A spec that doesn't
// parse is skipped by the caller rather than failing detection outright
// over a typo'd entry.
func splitVIDPID(spec string) (vid, pid string, ok bool) {
	parts := strings.SplitN(strings.TrimSpace(spec), ":", 2)
	if len(parts) != 2 || !isHex(normalizeHexID(parts[0])) || !isHex(normalizeHexID(parts[1])) {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// IsBlocked reports whether the device identified by vid and pid (as
// reported by the OS) matches any "VID:PID" entry in blocklist.
func IsBlocked(vid, pid string, blocklist []string) bool {
	target := newVIDPID(vid, pid)
	for _, spec := range blocklist {
		specVID, specPID, ok := splitVIDPID(spec)
		if !ok {
			continue
		}
		if newVIDPID(specVID, specPID) == target {
			return true
		}
	}
	return false
}

func isHex(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'A' && r <= 'F':
		case r >= 'a' && r <= 'f':
		default:
			return false
		}
	}
	return true
}

// IsPathIgnored reports whether devicePath matches any entry in
// ignorePaths once both sides are cleaned and lowercased, so "COM3" vs
// "com3" or "/dev/ttyUSB0" vs "/dev/./ttyUSB0" are treated as the same
// port.
func IsPathIgnored(devicePath string, ignorePaths []string) bool {
	if devicePath == "" {
		return false
	}
	target := normalizedPath(devicePath)
	for _, ignore := range ignorePaths {
		if ignore == "" {
			continue
		}
		if target == normalizedPath(ignore) {
			return true
		}
	}
	return false
}

func normalizedPath(path string) string {
	return strings.ToLower(filepath.Clean(path))
}
