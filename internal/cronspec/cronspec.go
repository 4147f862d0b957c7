// Package cronspec validates a script's declared cron trigger
// expression and computes its next fire time, using robfig/cron's
// standard parser. Actually scheduling a script's execution at that
// time is the hotkey daemon's job; this package only makes `is:cron`
// filterable and displayable — e.g. a "next run" hint next to a
// cron-triggered item in the list.
package cronspec

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Validate reports whether expr parses as a standard five-field cron
// expression, returning a descriptive error if not.
func Validate(expr string) error {
	if _, err := parser.Parse(expr); err != nil {
		return fmt.Errorf("cronspec: invalid cron expression %q: %w", expr, err)
	}
	return nil
}

// Next returns the next time expr fires strictly after from. Callers
// must have already validated expr with Validate; an invalid
// expression here returns the zero time.
func Next(expr string, from time.Time) time.Time {
	sched, err := parser.Parse(expr)
	if err != nil {
		return time.Time{}
	}
	return sched.Next(from)
}
