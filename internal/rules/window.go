package rules

import (
	"time"

	"github.com/adhocore/gronx"
)

// Window is one activation span of a schedule: it opens at a firing and
// closes at the following firing. Both ends are closed, so the shared
// instant of two consecutive windows belongs to both.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t lies inside the window, boundaries included.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// WindowAt computes the window of expr bracketing now and whether that
// window is open at now.
//
// The firings bracketing now always exist for a valid expression, so the
// bracket alone cannot decide activity. What does is the shape of the
// schedule around it: consecutive firings of a range expression like
// "0 8-23 * * *" are an hour apart inside the range and nine hours apart
// across the overnight stretch. A bracket gap that is strictly wider than
// both of its neighbouring gaps is that dead stretch between two runs of
// firings, not an open window. Exact firing instants are always in-window
// (closed boundaries).
func WindowAt(expr string, now time.Time) (w Window, active bool, err error) {
	prev, err := gronx.PrevTickBefore(expr, now, true)
	if err != nil {
		return Window{}, false, err
	}
	next, err := gronx.NextTickAfter(expr, now, false)
	if err != nil {
		return Window{}, false, err
	}
	w = Window{Start: prev, End: next}
	if now.Equal(prev) {
		return w, true, nil
	}
	gap := next.Sub(prev)
	if p2, err := gronx.PrevTickBefore(expr, prev, false); err == nil && gap <= prev.Sub(p2) {
		return w, true, nil
	}
	if n2, err := gronx.NextTickAfter(expr, next, false); err == nil && gap <= n2.Sub(next) {
		return w, true, nil
	}
	return w, false, nil
}
