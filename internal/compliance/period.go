package compliance

import "time"

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// endOfDay returns the last representable instant of t's calendar day, so an
// intake stamped in the final sub-second still falls inside the day.
func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999_999_999, t.Location())
}

// mondayOf returns the Monday of the week containing t, at midnight.
func mondayOf(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return startOfDay(t.AddDate(0, 0, -offset))
}

// PeriodRange maps a preset period name and anchor date to an inclusive date
// range. Weekly spans Monday through Sunday of the anchor's week; monthly
// spans the anchor's calendar month. ok is false for unknown period names.
func PeriodRange(period string, anchor time.Time) (start, end time.Time, ok bool) {
	day := startOfDay(anchor)
	switch period {
	case "daily":
		return day, day, true
	case "weekly":
		start = mondayOf(day)
		return start, start.AddDate(0, 0, 6), true
	case "monthly":
		start = time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
		return start, start.AddDate(0, 1, -1), true
	}
	return time.Time{}, time.Time{}, false
}
