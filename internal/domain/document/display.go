package document

import "time"

const (
	hoursPerDay = 24
	// Thresholds in elapsed days.
	yearThreshold = 365
	weekThreshold = 6
)

// Go layouts for the relative date labels.
const (
	layoutMonthDay     = "January 02"
	layoutMonthDayYear = "January 02, 2006"
	layoutWeekday      = "Monday"
	layoutShortTime    = "3:04 PM"
)

// RelativeDate renders modified relative to now. Elapsed time is measured in
// fractional days; "Yesterday" and "Today" apply only when the difference is
// exactly 1 or 0 days. Output uses the location of modified.
func RelativeDate(modified, now time.Time) string {
	days := now.Sub(modified).Hours() / hoursPerDay

	switch {
	case days > yearThreshold:
		return modified.Format(layoutMonthDayYear)
	case days > weekThreshold:
		return modified.Format(layoutMonthDay)
	case days == 1:
		return "Yesterday at " + modified.Format(layoutShortTime)
	case days == 0:
		return "Today at " + modified.Format(layoutShortTime)
	default:
		return modified.Format(layoutWeekday) + " at " + modified.Format(layoutShortTime)
	}
}
