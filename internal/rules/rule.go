// Package rules implements cron-windowed speed-limit rules: deciding which
// rule is in effect at a given instant and when the next rule transition
// can occur.
//
// Each rule carries a 5-field cron expression. A firing of that expression
// opens an activation window which stays open until the following firing,
// so "0 8-23 * * *" describes the 08:00-23:00 stretch of every day. All
// evaluation is pure: rules in, instant in, decision out.
package rules

import (
	"fmt"
	"strings"

	"github.com/adhocore/gronx"
	"github.com/hashicorp/go-multierror"
)

// Unlimited is the sentinel limit value meaning "no limit". It is never
// scaled during unit conversion.
const Unlimited int64 = -1

// Rule binds a cron schedule to the speed limits that apply while one of
// its windows is open. Limits are in MB/s.
type Rule struct {
	Cron          string `json:"cron"`
	UploadLimit   int64  `json:"upload_limit"`
	DownloadLimit int64  `json:"download_limit"`
}

// ValidateCron checks that expr is a well-formed 5-field cron expression.
// Exactly 5 fields are required; gronx.IsValid alone would also accept
// the 6-field seconds variant.
func ValidateCron(expr string) error {
	if expr == "" {
		return fmt.Errorf("empty cron expression, expected 5-field format (minute hour day-of-month month day-of-week)")
	}
	if fields := strings.Fields(expr); len(fields) != 5 {
		return fmt.Errorf("invalid cron expression %q, expected 5-field format (minute hour day-of-month month day-of-week)", expr)
	}
	if !gronx.IsValid(expr) {
		return fmt.Errorf("invalid cron expression %q, expected 5-field format (minute hour day-of-month month day-of-week)", expr)
	}
	return nil
}

// Validate checks a whole rule list and aggregates every problem found.
// An invalid cron expression is reported here so callers can warn about it
// up front, but it is never fatal to evaluation: Resolve and NextTransition
// simply skip such rules.
func Validate(rules []Rule) error {
	var result *multierror.Error
	for i, r := range rules {
		if err := ValidateCron(r.Cron); err != nil {
			result = multierror.Append(result, fmt.Errorf("rule %d: %w", i, err))
		}
		if r.UploadLimit < Unlimited {
			result = multierror.Append(result, fmt.Errorf("rule %d: upload_limit %d is negative (use %d for unlimited)", i, r.UploadLimit, Unlimited))
		}
		if r.DownloadLimit < Unlimited {
			result = multierror.Append(result, fmt.Errorf("rule %d: download_limit %d is negative (use %d for unlimited)", i, r.DownloadLimit, Unlimited))
		}
	}
	return result.ErrorOrNil()
}
