// Package period classifies ledger dates into reporting windows and
// provides the cutoff comparisons used by point-in-time aggregation.
// All functions are pure; the reference instant is always passed in.
package period

import (
	"time"

	"github.com/RiccardoZanardi/Calvenzano/internal/core"
)

// Period selects the reporting window for live aggregation.
type Period string

const (
	// Monthly covers the calendar month of the reference instant.
	Monthly Period = "monthly"
	// Seasonal covers the football season (Aug 1 – Jul 31) containing
	// the reference instant, clamped to the season epoch.
	Seasonal Period = "seasonal"
	// All disables period filtering.
	All Period = ""
)

// seasonEpoch is the first official season start; earlier nominal
// season starts are clamped to it.
var seasonEpoch = time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC)

// SeasonBounds returns the nominal start and end of the season that
// contains now. Seasons run from August 1st to July 31st.
func SeasonBounds(now time.Time) (start, end time.Time) {
	year := now.Year()
	if now.Month() >= time.August {
		start = time.Date(year, time.August, 1, 0, 0, 0, 0, time.UTC)
		end = time.Date(year+1, time.July, 31, 0, 0, 0, 0, time.UTC)
	} else {
		start = time.Date(year-1, time.August, 1, 0, 0, 0, 0, time.UTC)
		end = time.Date(year, time.July, 31, 0, 0, 0, 0, time.UTC)
	}
	if start.Before(seasonEpoch) {
		start = seasonEpoch
	}
	return start, end
}

// InPeriod reports whether a ledger date string falls inside the given
// period relative to now. The seasonal window is bounded above by now
// itself, not by the season's nominal end. Unknown periods (including
// All) match everything.
func InPeriod(date string, p Period, now time.Time) bool {
	d := core.ParseDate(date)
	switch p {
	case Monthly:
		return d.Month() == now.Month() && d.Year() == now.Year()
	case Seasonal:
		start, _ := SeasonBounds(now)
		return !d.Before(start) && !d.After(now)
	default:
		return true
	}
}

// OnOrBefore reports whether a ledger date string is on or before the
// cutoff. Missing dates default to the epoch and always qualify.
func OnOrBefore(date string, cutoff time.Time) bool {
	return !core.ParseDate(date).After(cutoff)
}

// EffectivePaymentDate returns the instant a fine counts as paid for
// cutoff filtering: the recorded payment date, or the assignment date
// when none was recorded.
func EffectivePaymentDate(f core.Fine) time.Time {
	if f.PaymentDate != "" {
		return core.ParseDate(f.PaymentDate)
	}
	return core.ParseDate(f.Date)
}

// EndOfPreviousMonth returns the last day of the month before now,
// used as the cutoff of the monthly report.
func EndOfPreviousMonth(now time.Time) time.Time {
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return firstOfMonth.AddDate(0, 0, -1)
}
