package compliance

import (
	"testing"
	"time"

	"github.com/dosewell/dosewell/internal/model"
)

type fakeReminders struct {
	byOwner map[string][]model.Reminder
}

func (f *fakeReminders) ListActiveByOwner(owner model.Owner) ([]model.Reminder, error) {
	return f.byOwner[owner.String()], nil
}

type fakeIntakes struct {
	byOwner map[string][]model.Intake
}

func (f *fakeIntakes) CountRange(owner model.Owner, start, end time.Time) (int, error) {
	list, err := f.ListRange(owner, start, end)
	return len(list), err
}

func (f *fakeIntakes) ListRange(owner model.Owner, start, end time.Time) ([]model.Intake, error) {
	var out []model.Intake
	for _, in := range f.byOwner[owner.String()] {
		if !in.TakenAt.Before(start) && !in.TakenAt.After(end) {
			out = append(out, in)
		}
	}
	return out, nil
}

type fakeSupplements struct {
	byID map[int64]*model.Supplement
}

func (f *fakeSupplements) GetByID(id int64) (*model.Supplement, error) {
	return f.byID[id], nil
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func at(y int, m time.Month, d, hour int) time.Time {
	return time.Date(y, m, d, hour, 0, 0, 0, time.UTC)
}

type fixture struct {
	reminders   *fakeReminders
	intakes     *fakeIntakes
	supplements *fakeSupplements
	calc        *Calculator
}

func newFixture() *fixture {
	f := &fixture{
		reminders:   &fakeReminders{byOwner: make(map[string][]model.Reminder)},
		intakes:     &fakeIntakes{byOwner: make(map[string][]model.Intake)},
		supplements: &fakeSupplements{byID: make(map[int64]*model.Supplement)},
	}
	f.calc = NewCalculator(f.reminders, f.intakes, f.supplements)
	return f
}

func (f *fixture) addReminder(owner model.Owner, supplementID int64, timeOfDay, days string) {
	f.reminders.byOwner[owner.String()] = append(f.reminders.byOwner[owner.String()], model.Reminder{
		ID:           int64(len(f.reminders.byOwner[owner.String()]) + 1),
		SupplementID: supplementID,
		TimeOfDay:    timeOfDay,
		Days:         days,
		Active:       true,
	})
}

func (f *fixture) addIntake(owner model.Owner, supplementID int64, takenAt time.Time) {
	f.intakes.byOwner[owner.String()] = append(f.intakes.byOwner[owner.String()], model.Intake{
		SupplementID: supplementID,
		TakenAt:      takenAt,
	})
}

func TestRate(t *testing.T) {
	tests := []struct {
		scheduled int
		taken     int
		want      float64
	}{
		{0, 0, 0},
		{0, 5, 0},
		{3, 2, 66.67},
		{3, 3, 100},
		{7, 0, 0},
		{6, 1, 16.67},
	}
	for _, tt := range tests {
		if got := Rate(tt.scheduled, tt.taken); got != tt.want {
			t.Errorf("Rate(%d, %d) = %v, want %v", tt.scheduled, tt.taken, got, tt.want)
		}
	}
}

func TestRangeBasic(t *testing.T) {
	f := newFixture()
	owner := model.UserOwner(1)

	// Mon/Wed/Fri reminder across the week of 2026-08-31 (a Monday).
	f.addReminder(owner, 10, "08:00", "Mon,Wed,Fri")
	f.addIntake(owner, 10, at(2026, time.August, 31, 8))
	f.addIntake(owner, 10, at(2026, time.September, 2, 9))

	s, err := f.calc.Range(owner, date(2026, time.August, 31), date(2026, time.September, 6))
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if s.Scheduled != 3 {
		t.Errorf("scheduled = %d, want 3", s.Scheduled)
	}
	if s.Taken != 2 {
		t.Errorf("taken = %d, want 2", s.Taken)
	}
	if s.Rate != 66.67 {
		t.Errorf("rate = %v, want 66.67", s.Rate)
	}
}

func TestRangeNoScheduleZeroRate(t *testing.T) {
	f := newFixture()
	owner := model.UserOwner(1)

	f.addIntake(owner, 10, at(2026, time.August, 31, 8))

	s, err := f.calc.Range(owner, date(2026, time.August, 31), date(2026, time.August, 31))
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if s.Scheduled != 0 || s.Rate != 0 {
		t.Errorf("summary = %+v, want zero scheduled and zero rate", s)
	}
}

func TestRangeCountsWholeDays(t *testing.T) {
	f := newFixture()
	owner := model.UserOwner(1)

	f.addReminder(owner, 10, "08:00", "Mon")
	// Logged late in the evening, well after the reminder time.
	f.addIntake(owner, 10, time.Date(2026, time.August, 31, 23, 30, 0, 0, time.UTC))

	s, err := f.calc.Range(owner, date(2026, time.August, 31), date(2026, time.August, 31))
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if s.Taken != 1 {
		t.Errorf("taken = %d, want 1; day boundaries are calendar days", s.Taken)
	}
}

func TestRangeIncludesFinalSubSecond(t *testing.T) {
	f := newFixture()
	owner := model.UserOwner(1)

	// 2026-08-09 is a Sunday.
	f.addReminder(owner, 10, "08:00", "Sun")
	f.addIntake(owner, 10, time.Date(2026, time.August, 9, 23, 59, 59, 999_000_000, time.UTC))

	s, err := f.calc.Range(owner, date(2026, time.August, 9), date(2026, time.August, 9))
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if s.Taken != 1 {
		t.Errorf("taken = %d, want 1; an intake in the last sub-second of end_date counts", s.Taken)
	}
	if s.Rate != 100 {
		t.Errorf("rate = %v, want 100", s.Rate)
	}
}

func TestDaily(t *testing.T) {
	f := newFixture()
	owner := model.UserOwner(1)

	f.addReminder(owner, 10, "08:00", "Mon,Tue,Wed,Thu,Fri,Sat,Sun")
	f.addIntake(owner, 10, at(2026, time.August, 31, 8))

	report, err := f.calc.Daily(owner, date(2026, time.August, 31))
	if err != nil {
		t.Fatalf("daily: %v", err)
	}
	if report.Date != "2026-08-31" {
		t.Errorf("date = %q", report.Date)
	}
	if report.Day != "Monday" {
		t.Errorf("day = %q, want Monday", report.Day)
	}
	if report.Rate != 100 {
		t.Errorf("rate = %v, want 100", report.Rate)
	}
}

func TestWeeklyNormalizesToMonday(t *testing.T) {
	f := newFixture()
	owner := model.UserOwner(1)

	f.addReminder(owner, 10, "08:00", "Mon,Wed,Fri")
	f.addIntake(owner, 10, at(2026, time.August, 31, 8))

	// Anchor on Thursday; the report should still cover Mon Aug 31 to Sun Sep 6.
	report, err := f.calc.Weekly(owner, date(2026, time.September, 3))
	if err != nil {
		t.Fatalf("weekly: %v", err)
	}
	if report.WeekStart != "2026-08-31" {
		t.Errorf("week start = %q, want 2026-08-31", report.WeekStart)
	}
	if report.WeekEnd != "2026-09-06" {
		t.Errorf("week end = %q, want 2026-09-06", report.WeekEnd)
	}
	if len(report.Days) != 7 {
		t.Fatalf("days = %d, want 7", len(report.Days))
	}

	var scheduled, taken int
	for _, d := range report.Days {
		scheduled += d.Scheduled
		taken += d.Taken
	}
	if scheduled != report.Scheduled || taken != report.Taken {
		t.Errorf("daily sums %d/%d do not match totals %d/%d", scheduled, taken, report.Scheduled, report.Taken)
	}
	if report.Scheduled != 3 || report.Taken != 1 {
		t.Errorf("totals = %d/%d, want 3/1", report.Scheduled, report.Taken)
	}
}

func TestMonthlyWeeksClippedAndSum(t *testing.T) {
	f := newFixture()
	owner := model.UserOwner(1)

	f.addReminder(owner, 10, "08:00", "Mon,Tue,Wed,Thu,Fri,Sat,Sun")
	f.addIntake(owner, 10, at(2026, time.September, 1, 8))
	f.addIntake(owner, 10, at(2026, time.September, 15, 8))
	f.addIntake(owner, 10, at(2026, time.September, 30, 8))

	report, err := f.calc.Monthly(owner, date(2026, time.September, 10))
	if err != nil {
		t.Fatalf("monthly: %v", err)
	}
	if report.Month != "2026-09" {
		t.Errorf("month = %q", report.Month)
	}
	if report.Scheduled != 30 {
		t.Errorf("scheduled = %d, want 30", report.Scheduled)
	}
	if report.Taken != 3 {
		t.Errorf("taken = %d, want 3", report.Taken)
	}

	if first := report.Weeks[0]; first.WeekStart != "2026-09-01" {
		t.Errorf("first week starts %q, want clipped to 2026-09-01", first.WeekStart)
	}
	if last := report.Weeks[len(report.Weeks)-1]; last.WeekEnd != "2026-09-30" {
		t.Errorf("last week ends %q, want clipped to 2026-09-30", last.WeekEnd)
	}

	var scheduled, taken int
	for _, w := range report.Weeks {
		scheduled += w.Scheduled
		taken += w.Taken
	}
	if scheduled != report.Scheduled || taken != report.Taken {
		t.Errorf("week sums %d/%d do not match totals %d/%d", scheduled, taken, report.Scheduled, report.Taken)
	}
}

func TestMonthlyLeapFebruary(t *testing.T) {
	f := newFixture()
	owner := model.UserOwner(1)

	f.addReminder(owner, 10, "08:00", "Mon,Tue,Wed,Thu,Fri,Sat,Sun")

	report, err := f.calc.Monthly(owner, date(2028, time.February, 14))
	if err != nil {
		t.Fatalf("monthly: %v", err)
	}
	if report.Scheduled != 29 {
		t.Errorf("scheduled = %d, want 29 for a leap February", report.Scheduled)
	}
	if last := report.Weeks[len(report.Weeks)-1]; last.WeekEnd != "2028-02-29" {
		t.Errorf("last week ends %q, want 2028-02-29", last.WeekEnd)
	}
}

func TestOwnerScopingSeparatesMembers(t *testing.T) {
	f := newFixture()
	user := model.UserOwner(1)
	member := model.FamilyMemberOwner(7)

	f.addReminder(user, 10, "08:00", "Mon")
	f.addReminder(member, 10, "08:00", "Mon,Tue")
	f.addIntake(user, 10, at(2026, time.August, 31, 8))

	us, _ := f.calc.Range(user, date(2026, time.August, 31), date(2026, time.September, 1))
	ms, _ := f.calc.Range(member, date(2026, time.August, 31), date(2026, time.September, 1))

	if us.Scheduled != 1 || us.Taken != 1 {
		t.Errorf("user summary = %+v", us)
	}
	if ms.Scheduled != 2 || ms.Taken != 0 {
		t.Errorf("member summary = %+v", ms)
	}
}
