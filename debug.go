// lin-go
// SPDX-License-Identifier: LGPL-3.0-or-later

package lin

import (
	"context"
	"fmt"
	"log/slog"
)

// SlogDebugSink adapts a *slog.Logger to the DebugSink contract (spec §6),
// so trace output from the frame, transport and node-configuration layers
// flows through the same structured logger as the rest of a host
// application rather than a bespoke print sink.
type SlogDebugSink struct {
	logger *slog.Logger
	level  int
}

// NewSlogDebugSink wraps logger. level controls DebugSink.Level(); callers
// typically pass a small non-negative integer, higher meaning chattier.
func NewSlogDebugSink(logger *slog.Logger, level int) *SlogDebugSink {
	return &SlogDebugSink{logger: logger, level: level}
}

func (s *SlogDebugSink) Printf(format string, args ...any) {
	if s.level <= 0 {
		return
	}
	s.logger.Log(context.Background(), slog.LevelDebug, fmt.Sprintf(format, args...))
}

func (s *SlogDebugSink) Level() int {
	return s.level
}

// NopDebugSink discards all output. It is the default when no DebugSink
// is configured via WithDebugSink.
type nopDebugSink struct{}

func (nopDebugSink) Printf(string, ...any) {}
func (nopDebugSink) Level() int            { return 0 }

// NopDebugSink returns a DebugSink that discards everything.
func NopDebugSink() DebugSink {
	return nopDebugSink{}
}
