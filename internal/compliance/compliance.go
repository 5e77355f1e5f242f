// Package compliance derives adherence figures from reminder schedules and
// intake history. Nothing here is stored; every figure is recomputed from the
// raw rows on each request.
package compliance

import (
	"fmt"
	"math"
	"time"

	"github.com/dosewell/dosewell/internal/model"
	"github.com/dosewell/dosewell/internal/schedule"
)

// ReminderSource supplies the active reminders that define an owner's
// expected schedule.
type ReminderSource interface {
	ListActiveByOwner(owner model.Owner) ([]model.Reminder, error)
}

// IntakeSource supplies logged intakes for an owner.
type IntakeSource interface {
	CountRange(owner model.Owner, start, end time.Time) (int, error)
	ListRange(owner model.Owner, start, end time.Time) ([]model.Intake, error)
}

// SupplementSource resolves supplement names for missed-dose reporting.
type SupplementSource interface {
	GetByID(id int64) (*model.Supplement, error)
}

type Calculator struct {
	reminders   ReminderSource
	intakes     IntakeSource
	supplements SupplementSource
}

func NewCalculator(reminders ReminderSource, intakes IntakeSource, supplements SupplementSource) *Calculator {
	return &Calculator{reminders: reminders, intakes: intakes, supplements: supplements}
}

// Summary is the basic adherence triple for one period.
type Summary struct {
	Scheduled int     `json:"scheduled_doses"`
	Taken     int     `json:"taken_doses"`
	Rate      float64 `json:"compliance_rate"`
}

// Rate returns the adherence percentage rounded to two decimal places.
// A period with nothing scheduled has a rate of zero, never a division error.
func Rate(scheduled, taken int) float64 {
	if scheduled == 0 {
		return 0
	}
	return round2(100 * float64(taken) / float64(scheduled))
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

func summarize(scheduled, taken int) Summary {
	return Summary{Scheduled: scheduled, Taken: taken, Rate: Rate(scheduled, taken)}
}

// Range computes the owner's adherence over [start, end] in whole days.
func (c *Calculator) Range(owner model.Owner, start, end time.Time) (Summary, error) {
	reminders, err := c.reminders.ListActiveByOwner(owner)
	if err != nil {
		return Summary{}, fmt.Errorf("range reminders: %w", err)
	}
	scheduled := schedule.Count(reminders, start, end)

	taken, err := c.intakes.CountRange(owner, startOfDay(start), endOfDay(end))
	if err != nil {
		return Summary{}, fmt.Errorf("range intakes: %w", err)
	}
	return summarize(scheduled, taken), nil
}

// DayDetail is one day's adherence inside a larger report.
type DayDetail struct {
	Date string `json:"date"`
	Day  string `json:"day_of_week"`
	Summary
}

// DailyReport is the adherence for a single calendar day.
type DailyReport struct {
	Date string `json:"date"`
	Day  string `json:"day_of_week"`
	Summary
}

func (c *Calculator) Daily(owner model.Owner, date time.Time) (*DailyReport, error) {
	s, err := c.Range(owner, date, date)
	if err != nil {
		return nil, err
	}
	return &DailyReport{
		Date:    date.Format("2006-01-02"),
		Day:     schedule.DayName(date),
		Summary: s,
	}, nil
}

// WeeklyReport covers the Monday-to-Sunday week containing the anchor date.
// The overall figures are recomputed from the daily sums.
type WeeklyReport struct {
	WeekStart string `json:"week_start"`
	WeekEnd   string `json:"week_end"`
	Summary
	Days []DayDetail `json:"daily_breakdown"`
}

func (c *Calculator) Weekly(owner model.Owner, anchor time.Time) (*WeeklyReport, error) {
	start := mondayOf(anchor)
	end := start.AddDate(0, 0, 6)

	days, err := c.DailyRange(owner, start, end)
	if err != nil {
		return nil, err
	}

	var scheduled, taken int
	for _, d := range days {
		scheduled += d.Scheduled
		taken += d.Taken
	}
	return &WeeklyReport{
		WeekStart: start.Format("2006-01-02"),
		WeekEnd:   end.Format("2006-01-02"),
		Summary:   summarize(scheduled, taken),
		Days:      days,
	}, nil
}

// WeekDetail is one week's slice of a monthly report, clipped to the month.
type WeekDetail struct {
	WeekStart string `json:"week_start"`
	WeekEnd   string `json:"week_end"`
	Summary
}

// MonthlyReport covers a full calendar month with a per-week breakdown.
// Weeks run Monday to Sunday but are clipped at the month boundaries, so the
// weekly figures always sum to the monthly totals.
type MonthlyReport struct {
	Month string `json:"month"`
	Summary
	Weeks []WeekDetail `json:"weekly_breakdown"`
}

func (c *Calculator) Monthly(owner model.Owner, anchor time.Time) (*MonthlyReport, error) {
	first := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, anchor.Location())
	last := first.AddDate(0, 1, -1)

	var weeks []WeekDetail
	var scheduled, taken int

	weekStart := first
	for !weekStart.After(last) {
		weekEnd := mondayOf(weekStart).AddDate(0, 0, 6)
		if weekEnd.After(last) {
			weekEnd = last
		}

		s, err := c.Range(owner, weekStart, weekEnd)
		if err != nil {
			return nil, err
		}
		weeks = append(weeks, WeekDetail{
			WeekStart: weekStart.Format("2006-01-02"),
			WeekEnd:   weekEnd.Format("2006-01-02"),
			Summary:   s,
		})
		scheduled += s.Scheduled
		taken += s.Taken

		weekStart = weekEnd.AddDate(0, 0, 1)
	}

	return &MonthlyReport{
		Month:   first.Format("2006-01"),
		Summary: summarize(scheduled, taken),
		Weeks:   weeks,
	}, nil
}

// DailyRange returns one DayDetail per calendar day in [start, end].
func (c *Calculator) DailyRange(owner model.Owner, start, end time.Time) ([]DayDetail, error) {
	reminders, err := c.reminders.ListActiveByOwner(owner)
	if err != nil {
		return nil, fmt.Errorf("breakdown reminders: %w", err)
	}

	var days []DayDetail
	for d := startOfDay(start); !d.After(end); d = d.AddDate(0, 0, 1) {
		scheduled := schedule.Count(reminders, d, d)
		taken, err := c.intakes.CountRange(owner, d, endOfDay(d))
		if err != nil {
			return nil, fmt.Errorf("breakdown intakes: %w", err)
		}
		days = append(days, DayDetail{
			Date:    d.Format("2006-01-02"),
			Day:     schedule.DayName(d),
			Summary: summarize(scheduled, taken),
		})
	}
	return days, nil
}
