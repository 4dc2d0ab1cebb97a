package rules

import (
	"testing"
	"time"
)

// at builds an instant on a fixed reference day (a Tuesday) in UTC.
func at(hour, min int) time.Time {
	return time.Date(2026, time.March, 17, hour, min, 0, 0, time.UTC)
}

func TestResolve_DaytimeRuleActive(t *testing.T) {
	rules := []Rule{{Cron: "0 8-23 * * *", UploadLimit: 1, DownloadLimit: 2}}

	active, invalid := Resolve(rules, at(14, 0))
	if len(invalid) != 0 {
		t.Fatalf("unexpected invalid rules: %v", invalid)
	}
	if active == nil {
		t.Fatal("expected an active rule at 14:00")
	}
	if active.Rule.UploadLimit != 1 || active.Rule.DownloadLimit != 2 {
		t.Errorf("wrong rule resolved: %+v", active.Rule)
	}
	if !active.Window.Start.Equal(at(14, 0)) {
		t.Errorf("window start = %v, want 14:00", active.Window.Start)
	}
	if !active.Window.End.Equal(at(15, 0)) {
		t.Errorf("window end = %v, want 15:00", active.Window.End)
	}
	if !active.Window.Contains(at(14, 0)) {
		t.Error("resolved window does not contain the reference instant")
	}
}

func TestResolve_OvernightNoActiveRule(t *testing.T) {
	rules := []Rule{{Cron: "0 8-23 * * *", UploadLimit: 1, DownloadLimit: 2}}

	active, invalid := Resolve(rules, at(3, 0))
	if len(invalid) != 0 {
		t.Fatalf("unexpected invalid rules: %v", invalid)
	}
	if active != nil {
		t.Fatalf("expected no active rule at 03:00, got window %v..%v",
			active.Window.Start, active.Window.End)
	}
}

func TestResolve_WindowBoundaries(t *testing.T) {
	rules := []Rule{{Cron: "0 8-23 * * *"}}

	tests := []struct {
		name   string
		now    time.Time
		active bool
	}{
		{"first firing", at(8, 0), true},
		{"just after first firing", at(8, 15), true},
		{"mid window", at(14, 30), true},
		{"last firing instant", at(23, 0), true},
		{"after last firing", at(23, 30), false},
		{"before first firing", at(7, 59), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			active, _ := Resolve(rules, tc.now)
			if got := active != nil; got != tc.active {
				t.Errorf("active at %v = %v, want %v", tc.now, got, tc.active)
			}
		})
	}
}

func TestResolve_LatestWindowStartWins(t *testing.T) {
	hourly := Rule{Cron: "0 8-23 * * *", UploadLimit: 1, DownloadLimit: 1}
	midday := Rule{Cron: "30 12 * * *", UploadLimit: 5, DownloadLimit: 5}
	rules := []Rule{hourly, midday}

	// At 12:45 the midday rule started most recently (12:30 vs 12:00).
	active, _ := Resolve(rules, at(12, 45))
	if active == nil {
		t.Fatal("expected an active rule at 12:45")
	}
	if active.Index != 1 {
		t.Errorf("active rule index = %d, want 1 (window started 12:30)", active.Index)
	}

	// At 14:00 the hourly rule's window (14:00) is the most recent start.
	active, _ = Resolve(rules, at(14, 0))
	if active == nil {
		t.Fatal("expected an active rule at 14:00")
	}
	if active.Index != 0 {
		t.Errorf("active rule index = %d, want 0 (window started 14:00)", active.Index)
	}
}

func TestResolve_IdenticalStartsFallBackToOrder(t *testing.T) {
	rules := []Rule{
		{Cron: "0 * * * *", UploadLimit: 1},
		{Cron: "0 * * * *", UploadLimit: 2},
	}
	active, _ := Resolve(rules, at(10, 20))
	if active == nil {
		t.Fatal("expected an active rule")
	}
	if active.Index != 0 {
		t.Errorf("tie broke to index %d, want 0 (first configured wins)", active.Index)
	}
}

func TestResolve_InvalidRuleSkipped(t *testing.T) {
	rules := []Rule{
		{Cron: "not-a-cron", UploadLimit: 9, DownloadLimit: 9},
		{Cron: "0 8-23 * * *", UploadLimit: 1, DownloadLimit: 2},
	}
	active, invalid := Resolve(rules, at(14, 0))
	if len(invalid) != 1 {
		t.Fatalf("invalid count = %d, want 1", len(invalid))
	}
	if invalid[0].Index != 0 || invalid[0].Err == nil {
		t.Errorf("unexpected invalid report: %+v", invalid[0])
	}
	if active == nil || active.Index != 1 {
		t.Fatalf("valid rule did not resolve, got %+v", active)
	}
}

func TestResolve_NoRules(t *testing.T) {
	if active, _ := Resolve(nil, at(14, 0)); active != nil {
		t.Errorf("expected nil for empty rule list, got %+v", active)
	}
	if active, invalid := Resolve([]Rule{{Cron: "nope"}}, at(14, 0)); active != nil || len(invalid) != 1 {
		t.Errorf("expected nil active and 1 invalid, got %+v / %v", active, invalid)
	}
}

func TestResolve_Idempotent(t *testing.T) {
	rules := []Rule{
		{Cron: "0 8-23 * * *", UploadLimit: 1},
		{Cron: "*/15 * * * *", UploadLimit: 2},
	}
	now := at(9, 10)
	a1, _ := Resolve(rules, now)
	a2, _ := Resolve(rules, now)
	if a1 == nil || a2 == nil {
		t.Fatal("expected active rules on both passes")
	}
	if a1.Index != a2.Index || !a1.Window.Start.Equal(a2.Window.Start) {
		t.Errorf("resolution not idempotent: %+v vs %+v", a1, a2)
	}
}

func TestNextTransition(t *testing.T) {
	rules := []Rule{
		{Cron: "0 8-23 * * *"},
		{Cron: "30 12 * * *"},
	}
	now := at(12, 10)
	next, ok := NextTransition(rules, now)
	if !ok {
		t.Fatal("expected a next transition")
	}
	if !next.After(now) {
		t.Errorf("next transition %v is not strictly after %v", next, now)
	}
	// 12:30 (second rule) comes before 13:00 (first rule).
	if !next.Equal(at(12, 30)) {
		t.Errorf("next transition = %v, want 12:30", next)
	}
}

func TestNextTransition_SkipsInvalid(t *testing.T) {
	rules := []Rule{
		{Cron: "garbage"},
		{Cron: "0 * * * *"},
	}
	next, ok := NextTransition(rules, at(10, 15))
	if !ok {
		t.Fatal("expected a next transition from the valid rule")
	}
	if !next.Equal(at(11, 0)) {
		t.Errorf("next transition = %v, want 11:00", next)
	}
}

func TestNextTransition_NoValidRules(t *testing.T) {
	if _, ok := NextTransition([]Rule{{Cron: "nope"}}, at(10, 0)); ok {
		t.Error("expected no transition when no rule has a valid schedule")
	}
	if _, ok := NextTransition(nil, at(10, 0)); ok {
		t.Error("expected no transition for empty rule list")
	}
}

func TestNextTransition_IsLowerBound(t *testing.T) {
	rules := []Rule{
		{Cron: "0 8-23 * * *"},
		{Cron: "*/20 * * * *"},
		{Cron: "5 4 * * 2"},
	}
	now := at(9, 3)
	next, ok := NextTransition(rules, now)
	if !ok {
		t.Fatal("expected a next transition")
	}
	for i, r := range rules {
		w, _, err := WindowAt(r.Cron, now)
		if err != nil {
			continue
		}
		if next.After(w.End) {
			t.Errorf("transition %v is after rule %d's next firing %v", next, i, w.End)
		}
	}
}

func TestEvaluate(t *testing.T) {
	rules := []Rule{
		{Cron: "bad expr here"},
		{Cron: "0 8-23 * * *", UploadLimit: 3, DownloadLimit: 4},
	}
	ev := Evaluate(rules, at(14, 40))
	if ev.Active == nil || ev.Active.Index != 1 {
		t.Fatalf("unexpected active: %+v", ev.Active)
	}
	if len(ev.Invalid) != 1 {
		t.Errorf("invalid count = %d, want 1", len(ev.Invalid))
	}
	if !ev.HasNext || !ev.Next.Equal(at(15, 0)) {
		t.Errorf("next = %v (has=%v), want 15:00", ev.Next, ev.HasNext)
	}
}
