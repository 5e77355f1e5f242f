package report

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/dosewell/dosewell/internal/compliance"
	"github.com/dosewell/dosewell/internal/model"
)

type fakeSource struct {
	days []compliance.DayDetail
}

func (f *fakeSource) DailyRange(owner model.Owner, start, end time.Time) ([]compliance.DayDetail, error) {
	return f.days, nil
}

func day(date, name string, scheduled, taken int) compliance.DayDetail {
	return compliance.DayDetail{
		Date: date,
		Day:  name,
		Summary: compliance.Summary{
			Scheduled: scheduled,
			Taken:     taken,
			Rate:      compliance.Rate(scheduled, taken),
		},
	}
}

func testReport(t *testing.T) *Report {
	t.Helper()
	src := &fakeSource{days: []compliance.DayDetail{
		day("2026-08-31", "Monday", 2, 2),
		day("2026-09-01", "Tuesday", 2, 1),
		day("2026-09-02", "Wednesday", 2, 0),
	}}
	r, err := Build(src, model.UserOwner(1), "Priya Sharma", "weekly",
		time.Date(2026, time.August, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.September, 2, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	return r
}

func TestBuildRecomputesOverallFromSums(t *testing.T) {
	r := testReport(t)

	if r.Overall.Scheduled != 6 {
		t.Errorf("scheduled = %d, want 6", r.Overall.Scheduled)
	}
	if r.Overall.Taken != 3 {
		t.Errorf("taken = %d, want 3", r.Overall.Taken)
	}
	// 3/6 = 50%, not the 66.67% average of the daily rates.
	if r.Overall.Rate != 50 {
		t.Errorf("rate = %v, want 50", r.Overall.Rate)
	}
}

func TestWriteCSV(t *testing.T) {
	r := testReport(t)

	var buf strings.Builder
	if err := r.WriteCSV(&buf); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	out := buf.String()

	wantLines := []string{
		"Compliance Report",
		"Member,Priya Sharma",
		"Period,weekly",
		"Date Range,2026-08-31 to 2026-09-02",
		"Overall Compliance Rate,50.00%",
		"Total Scheduled Doses,6",
		"Total Taken Doses,3",
		"Date,Day of Week,Scheduled Doses,Taken Doses,Compliance Rate (%)",
		"2026-08-31,Monday,2,2,100.00",
		"2026-09-01,Tuesday,2,1,50.00",
		"2026-09-02,Wednesday,2,0,0.00",
	}
	for _, line := range wantLines {
		if !strings.Contains(out, line) {
			t.Errorf("csv missing line %q\ngot:\n%s", line, out)
		}
	}
}

func TestJSONPayload(t *testing.T) {
	r := testReport(t)

	raw, err := json.Marshal(r.JSONPayload())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded struct {
		Member    string `json:"member"`
		Period    string `json:"period"`
		DateRange struct {
			Start string `json:"start"`
			End   string `json:"end"`
		} `json:"date_range"`
		Overall struct {
			Rate float64 `json:"compliance_rate"`
		} `json:"overall"`
		DailyData []struct {
			Date string `json:"date"`
		} `json:"daily_data"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if decoded.Member != "Priya Sharma" {
		t.Errorf("member = %q", decoded.Member)
	}
	if decoded.DateRange.Start != "2026-08-31" || decoded.DateRange.End != "2026-09-02" {
		t.Errorf("date range = %+v", decoded.DateRange)
	}
	if decoded.Overall.Rate != 50 {
		t.Errorf("overall rate = %v, want 50", decoded.Overall.Rate)
	}
	if len(decoded.DailyData) != 3 {
		t.Errorf("daily data = %d entries, want 3", len(decoded.DailyData))
	}
}

func TestFilename(t *testing.T) {
	r := testReport(t)

	want := "compliance_report_Priya_Sharma_20260831_to_20260902.csv"
	if got := r.Filename(); got != want {
		t.Errorf("filename = %q, want %q", got, want)
	}
}
