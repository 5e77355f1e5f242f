// Package schedule expands recurring weekly reminders into the concrete doses
// scheduled on a calendar date range. It is pure: callers fetch reminders and
// pass them in, nothing here touches storage.
package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/dosewell/dosewell/internal/model"
)

// DaySet is a set of weekdays, stored as a bitmask with bit 0 = Monday.
type DaySet uint8

var dayNames = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// longDayNames maps the bitmask index to the full weekday name used in
// API responses and reports.
var longDayNames = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// dayIndex converts time.Weekday (Sunday = 0) to our Monday-first index.
func dayIndex(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}

// ParseDays parses a comma-separated list of short weekday names
// ("Mon,Wed,Fri") into a DaySet. The set must be non-empty and every name
// must be one of Mon..Sun.
func ParseDays(s string) (DaySet, error) {
	var set DaySet
	for _, part := range strings.Split(s, ",") {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		idx := -1
		for i, dn := range dayNames {
			if name == dn {
				idx = i
				break
			}
		}
		if idx < 0 {
			return 0, fmt.Errorf("unknown weekday %q", name)
		}
		set |= 1 << idx
	}
	if set == 0 {
		return 0, fmt.Errorf("day set is empty")
	}
	return set, nil
}

// Contains reports whether the set includes the given weekday.
func (s DaySet) Contains(wd time.Weekday) bool {
	return s&(1<<dayIndex(wd)) != 0
}

// String renders the set back to the stored comma-separated form, Monday first.
func (s DaySet) String() string {
	var names []string
	for i, dn := range dayNames {
		if s&(1<<i) != 0 {
			names = append(names, dn)
		}
	}
	return strings.Join(names, ",")
}

// DayName returns the full weekday name ("Monday") for a date.
func DayName(d time.Time) string {
	return longDayNames[dayIndex(d.Weekday())]
}

// Occurrence is one scheduled dose: a reminder falling on a calendar date.
type Occurrence struct {
	Date     time.Time
	Reminder model.Reminder
}

// Occurrences expands the given reminders over [start, end] inclusive and
// returns one occurrence per reminder per matching day, in date order.
// Inactive reminders and reminders with an unparseable day set are skipped.
// Two reminders for the same supplement on the same day yield two
// occurrences: each reminder is an independent scheduled dose.
func Occurrences(reminders []model.Reminder, start, end time.Time) []Occurrence {
	type parsed struct {
		reminder model.Reminder
		days     DaySet
	}

	var active []parsed
	for _, r := range reminders {
		if !r.Active {
			continue
		}
		set, err := ParseDays(r.Days)
		if err != nil {
			continue
		}
		active = append(active, parsed{reminder: r, days: set})
	}

	var occ []Occurrence
	for d := startOfDay(start); !d.After(end); d = d.AddDate(0, 0, 1) {
		for _, p := range active {
			if p.days.Contains(d.Weekday()) {
				occ = append(occ, Occurrence{Date: d, Reminder: p.reminder})
			}
		}
	}
	return occ
}

// Count returns the number of doses scheduled over [start, end] inclusive.
func Count(reminders []model.Reminder, start, end time.Time) int {
	return len(Occurrences(reminders, start, end))
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
