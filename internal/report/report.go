// Package report renders adherence reports for download as CSV or JSON.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dosewell/dosewell/internal/compliance"
	"github.com/dosewell/dosewell/internal/model"
)

// Source is the slice of the compliance calculator a report needs.
type Source interface {
	DailyRange(owner model.Owner, start, end time.Time) ([]compliance.DayDetail, error)
}

// Report is a fully materialized adherence report for one member and period.
type Report struct {
	Member  string
	Period  string
	Start   time.Time
	End     time.Time
	Overall compliance.Summary
	Days    []compliance.DayDetail
}

// Build assembles the report. The overall figures are recomputed from the raw
// daily sums rather than averaging daily rates.
func Build(src Source, owner model.Owner, member, period string, start, end time.Time) (*Report, error) {
	days, err := src.DailyRange(owner, start, end)
	if err != nil {
		return nil, fmt.Errorf("build report: %w", err)
	}

	var scheduled, taken int
	for _, d := range days {
		scheduled += d.Scheduled
		taken += d.Taken
	}

	return &Report{
		Member: member,
		Period: period,
		Start:  start,
		End:    end,
		Overall: compliance.Summary{
			Scheduled: scheduled,
			Taken:     taken,
			Rate:      compliance.Rate(scheduled, taken),
		},
		Days: days,
	}, nil
}

// WriteCSV renders the report with a preamble block above the daily rows.
func (r *Report) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)

	preamble := [][]string{
		{"Compliance Report"},
		{"Member", r.Member},
		{"Period", r.Period},
		{"Date Range", r.Start.Format("2006-01-02") + " to " + r.End.Format("2006-01-02")},
		{"Overall Compliance Rate", fmt.Sprintf("%.2f%%", r.Overall.Rate)},
		{"Total Scheduled Doses", fmt.Sprintf("%d", r.Overall.Scheduled)},
		{"Total Taken Doses", fmt.Sprintf("%d", r.Overall.Taken)},
		{},
		{"Date", "Day of Week", "Scheduled Doses", "Taken Doses", "Compliance Rate (%)"},
	}
	for _, row := range preamble {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
	}

	for _, d := range r.Days {
		row := []string{
			d.Date,
			d.Day,
			fmt.Sprintf("%d", d.Scheduled),
			fmt.Sprintf("%d", d.Taken),
			fmt.Sprintf("%.2f", d.Rate),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

type dateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type jsonReport struct {
	Member    string                 `json:"member"`
	Period    string                 `json:"period"`
	DateRange dateRange              `json:"date_range"`
	Overall   compliance.Summary     `json:"overall"`
	DailyData []compliance.DayDetail `json:"daily_data"`
}

// JSONPayload returns the structure serialized for JSON downloads.
func (r *Report) JSONPayload() any {
	return jsonReport{
		Member: r.Member,
		Period: r.Period,
		DateRange: dateRange{
			Start: r.Start.Format("2006-01-02"),
			End:   r.End.Format("2006-01-02"),
		},
		Overall:   r.Overall,
		DailyData: r.Days,
	}
}

// Filename builds the attachment name for a CSV download. Spaces in the
// member name become underscores.
func (r *Report) Filename() string {
	member := strings.ReplaceAll(r.Member, " ", "_")
	return fmt.Sprintf("compliance_report_%s_%s_to_%s.csv",
		member, r.Start.Format("20060102"), r.End.Format("20060102"))
}
