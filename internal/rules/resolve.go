package rules

import (
	"time"

	"github.com/adhocore/gronx"
)

// RuleWindow pairs a rule with the window that makes it a candidate at the
// reference instant. Index is the rule's position in the configured list.
type RuleWindow struct {
	Rule   Rule
	Index  int
	Window Window
}

// InvalidRule reports a rule whose cron expression could not be parsed.
// Such rules are excluded from matching, they never abort evaluation of
// the remaining rules.
type InvalidRule struct {
	Rule  Rule
	Index int
	Err   error
}

// Resolve returns the rule in effect at now, or nil when no rule's window
// contains now. When several windows overlap, the most recently started
// one wins; identical start instants fall back to configuration order
// (first configured wins).
func Resolve(rules []Rule, now time.Time) (*RuleWindow, []InvalidRule) {
	var active *RuleWindow
	var invalid []InvalidRule
	for i, r := range rules {
		w, open, err := WindowAt(r.Cron, now)
		if err != nil {
			invalid = append(invalid, InvalidRule{Rule: r, Index: i, Err: err})
			continue
		}
		if !open {
			continue
		}
		if active == nil || w.Start.After(active.Window.Start) {
			active = &RuleWindow{Rule: r, Index: i, Window: w}
		}
	}
	return active, invalid
}

// NextTransition returns the earliest future instant at which any rule's
// window can open or close, i.e. the earliest point the result of Resolve
// can change. The result is strictly after now. ok is false when no rule
// has a valid schedule.
func NextTransition(rules []Rule, now time.Time) (next time.Time, ok bool) {
	for _, r := range rules {
		t, err := gronx.NextTickAfter(r.Cron, now, false)
		if err != nil {
			continue
		}
		if !ok || t.Before(next) {
			next, ok = t, true
		}
	}
	return next, ok
}

// Evaluation is a combined snapshot of one resolution pass.
type Evaluation struct {
	Active  *RuleWindow
	Invalid []InvalidRule
	Next    time.Time
	HasNext bool
}

// Evaluate runs Resolve and NextTransition over the same instant.
func Evaluate(rules []Rule, now time.Time) Evaluation {
	active, invalid := Resolve(rules, now)
	next, ok := NextTransition(rules, now)
	return Evaluation{
		Active:  active,
		Invalid: invalid,
		Next:    next,
		HasNext: ok,
	}
}
