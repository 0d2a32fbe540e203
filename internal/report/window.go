package report

import "time"

// Window is one half-open observation interval [Start, End). FromDate and
// ToDate are the inclusive calendar dates shown to users.
type Window struct {
	Start time.Time
	End   time.Time
}

// FromDate returns the first calendar day of the window.
func (w Window) FromDate() string {
	return w.Start.Format("2006-01-02")
}

// ToDate returns the last calendar day covered by the window.
func (w Window) ToDate() string {
	return w.End.Add(-time.Second).Format("2006-01-02")
}

// dailyWindows returns yesterday's full day and the day before it, in the
// local timezone of now.
func dailyWindows(now time.Time) (current, baseline Window) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	current = Window{Start: today.AddDate(0, 0, -1), End: today}
	baseline = Window{Start: today.AddDate(0, 0, -2), End: today.AddDate(0, 0, -1)}
	return current, baseline
}

// weeklyWindows returns the last 7 full days and the 7 days before those.
func weeklyWindows(now time.Time) (current, baseline Window) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	current = Window{Start: today.AddDate(0, 0, -7), End: today}
	baseline = Window{Start: today.AddDate(0, 0, -14), End: today.AddDate(0, 0, -7)}
	return current, baseline
}

// monitorWindows returns the last 24 hours and the 7 days preceding them.
// The baseline is used as a daily average for surge detection.
func monitorWindows(now time.Time) (current, baseline Window) {
	current = Window{Start: now.Add(-24 * time.Hour), End: now}
	baseline = Window{Start: current.Start.AddDate(0, 0, -7), End: current.Start}
	return current, baseline
}
