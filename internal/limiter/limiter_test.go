package limiter

import (
	"testing"

	"github.com/qlimitd/qlimitd/internal/rules"
)

func TestToKBps(t *testing.T) {
	tests := []struct {
		name string
		mbps int64
		want int64
	}{
		{"two mbps", 2, 2048},
		{"one mbps", 1, 1024},
		{"zero is a real limit", 0, 0},
		{"unlimited passes through", rules.Unlimited, rules.Unlimited},
		{"other negatives treated as unlimited", -5, rules.Unlimited},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ToKBps(tc.mbps); got != tc.want {
				t.Errorf("ToKBps(%d) = %d, want %d", tc.mbps, got, tc.want)
			}
		})
	}
}

func TestFormatKBps(t *testing.T) {
	tests := []struct {
		kbps int64
		want string
	}{
		{2048, "2.0MB/s"},
		{1024, "1.0MB/s"},
		{1536, "1.5MB/s"},
		{0, "0.0MB/s"},
		{rules.Unlimited, "unlimited"},
	}
	for _, tc := range tests {
		if got := FormatKBps(tc.kbps); got != tc.want {
			t.Errorf("FormatKBps(%d) = %q, want %q", tc.kbps, got, tc.want)
		}
	}
}
