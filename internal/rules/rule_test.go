package rules

import (
	"strings"
	"testing"
	"time"
)

func TestValidateCron(t *testing.T) {
	tests := []struct {
		name    string
		expr    string
		wantErr bool
	}{
		{"hour range", "0 8-23 * * *", false},
		{"every 15 minutes", "*/15 * * * *", false},
		{"day of week", "5 4 * * 2", false},
		{"empty", "", true},
		{"not a cron", "not-a-cron", true},
		{"four fields", "0 8 * *", true},
		{"six fields (seconds)", "0 0 8 * * *", true},
		{"bad field value", "0 25 * * *", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateCron(tc.expr)
			if (err != nil) != tc.wantErr {
				t.Errorf("ValidateCron(%q) error = %v, wantErr %v", tc.expr, err, tc.wantErr)
			}
		})
	}
}

func TestValidate_AggregatesErrors(t *testing.T) {
	rules := []Rule{
		{Cron: "0 8-23 * * *", UploadLimit: 1, DownloadLimit: 2},
		{Cron: "bogus", UploadLimit: 1},
		{Cron: "0 * * * *", UploadLimit: -2},
	}
	err := Validate(rules)
	if err == nil {
		t.Fatal("expected validation errors")
	}
	msg := err.Error()
	if !strings.Contains(msg, "rule 1") {
		t.Errorf("missing cron error for rule 1: %s", msg)
	}
	if !strings.Contains(msg, "rule 2") {
		t.Errorf("missing limit error for rule 2: %s", msg)
	}
}

func TestValidate_UnlimitedSentinelAllowed(t *testing.T) {
	rules := []Rule{{Cron: "0 8-23 * * *", UploadLimit: Unlimited, DownloadLimit: Unlimited}}
	if err := Validate(rules); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestWindowContains(t *testing.T) {
	w := Window{
		Start: time.Date(2026, time.March, 17, 14, 0, 0, 0, time.UTC),
		End:   time.Date(2026, time.March, 17, 15, 0, 0, 0, time.UTC),
	}
	tests := []struct {
		t    time.Time
		want bool
	}{
		{w.Start, true},
		{w.End, true},
		{w.Start.Add(30 * time.Minute), true},
		{w.Start.Add(-time.Second), false},
		{w.End.Add(time.Second), false},
	}
	for _, tc := range tests {
		if got := w.Contains(tc.t); got != tc.want {
			t.Errorf("Contains(%v) = %v, want %v", tc.t, got, tc.want)
		}
	}
}
