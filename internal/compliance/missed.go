package compliance

import (
	"errors"
	"fmt"
	"time"

	"github.com/dosewell/dosewell/internal/model"
	"github.com/dosewell/dosewell/internal/schedule"
)

// DefaultMissedDays is the lookback window when the caller does not name one.
const DefaultMissedDays = 7

// MaxMissedDays caps the lookback window.
const MaxMissedDays = 90

var ErrLookbackOutOfRange = errors.New("lookback must be between 1 and 90 days")

// MissedDose is a scheduled dose with no matching intake on its date.
type MissedDose struct {
	Date           string `json:"date"`
	Day            string `json:"day_of_week"`
	SupplementID   int64  `json:"supplement_id"`
	SupplementName string `json:"supplement_name"`
	Time           string `json:"time"`
}

// MissedDoses diffs the schedule against logged intakes over the last `days`
// days ending at now. A dose counts as taken when any intake of the same
// supplement exists on the same date, regardless of clock time. Results are
// ordered most recent date first.
func (c *Calculator) MissedDoses(owner model.Owner, days int, now time.Time) ([]MissedDose, error) {
	if days < 1 || days > MaxMissedDays {
		return nil, ErrLookbackOutOfRange
	}

	reminders, err := c.reminders.ListActiveByOwner(owner)
	if err != nil {
		return nil, fmt.Errorf("missed doses reminders: %w", err)
	}

	names := make(map[int64]string)
	var missed []MissedDose

	today := startOfDay(now)
	for i := 0; i < days; i++ {
		day := today.AddDate(0, 0, -i)

		occurrences := schedule.Occurrences(reminders, day, day)
		if len(occurrences) == 0 {
			continue
		}

		intakes, err := c.intakes.ListRange(owner, day, endOfDay(day))
		if err != nil {
			return nil, fmt.Errorf("missed doses intakes: %w", err)
		}
		takenSupplements := make(map[int64]bool)
		for _, in := range intakes {
			takenSupplements[in.SupplementID] = true
		}

		for _, occ := range occurrences {
			if takenSupplements[occ.Reminder.SupplementID] {
				continue
			}
			name, ok := names[occ.Reminder.SupplementID]
			if !ok {
				sp, err := c.supplements.GetByID(occ.Reminder.SupplementID)
				if err != nil {
					return nil, fmt.Errorf("missed doses supplement: %w", err)
				}
				if sp != nil {
					name = sp.Name
				}
				names[occ.Reminder.SupplementID] = name
			}
			missed = append(missed, MissedDose{
				Date:           day.Format("2006-01-02"),
				Day:            schedule.DayName(day),
				SupplementID:   occ.Reminder.SupplementID,
				SupplementName: name,
				Time:           occ.Reminder.TimeOfDay,
			})
		}
	}
	return missed, nil
}
