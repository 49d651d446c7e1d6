package loader

import "time"

// UpdateHour is the UTC hour at which the upstream dataset is regenerated
// every Sunday.
const UpdateHour = 3

// NextScheduledUpdate returns the next weekly dataset regeneration after
// now: today at 03:00 UTC if now is a Sunday before 03:00 UTC, otherwise
// the following Sunday at 03:00 UTC.
func NextScheduledUpdate(now time.Time) time.Time {
	now = now.UTC()
	days := (7 - int(now.Weekday())) % 7

	if days == 0 && now.Hour() >= UpdateHour {
		days = 7
	}

	y, m, d := now.Date()
	return time.Date(y, m, d+days, UpdateHour, 0, 0, 0, time.UTC)
}
