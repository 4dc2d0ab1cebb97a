// Package limiter applies a resolved speed rule to a downloader backend.
// It owns the MB/s to KB/s unit conversion and the capability interface a
// backend must implement; it knows nothing about cron schedules.
package limiter

import (
	"context"
	"errors"
	"fmt"

	"github.com/qlimitd/qlimitd/internal/rules"
)

var (
	ErrNoDownloader = errors.New("no downloader backend configured")
)

// SpeedLimiter is the capability a downloader backend implements to accept
// transfer limits. Limits are in KB/s with rules.Unlimited meaning no
// limit; backends translate to their own wire unit.
type SpeedLimiter interface {
	// Check verifies the backend is reachable and of a supported protocol
	// family. Called before every apply so a cycle never mutates state
	// against the wrong downloader.
	Check(ctx context.Context) error

	// SetSpeedLimit sets the global upload and download limits in KB/s.
	SetSpeedLimit(ctx context.Context, uploadKBps, downloadKBps int64) error
}

// ToKBps converts a rule limit from MB/s to KB/s. The unlimited sentinel
// passes through unchanged, it is never multiplied.
func ToKBps(mbps int64) int64 {
	if mbps < 0 {
		return rules.Unlimited
	}
	return mbps * 1024
}

// FormatKBps renders a KB/s limit for humans: MB/s with one decimal place,
// or the "unlimited" literal for the sentinel.
func FormatKBps(kbps int64) string {
	if kbps < 0 {
		return "unlimited"
	}
	return fmt.Sprintf("%.1fMB/s", float64(kbps)/1024)
}
