// Package models defines the performance report shapes and the pure
// aggregation arithmetic behind them. Counting happens in the stores; every
// rate and ranking rule lives here so the math is testable without a database.
package models

import (
	"sort"
	"time"

	"cityline/pkg/domain"
	dErrors "cityline/pkg/domain-errors"
)

// Timeframe bounds a report to complaints submitted within a trailing window.
// It only ever narrows the lower bound on submission time; resolution
// timestamps are never windowed.
type Timeframe string

const (
	TimeframeWeek    Timeframe = "week"
	TimeframeMonth   Timeframe = "month"
	TimeframeYear    Timeframe = "year"
	TimeframeAllTime Timeframe = "all-time"
)

// ParseTimeframe validates external input into a Timeframe. Empty input means
// the caller did not ask for a window and gets the all-time default.
func ParseTimeframe(s string) (Timeframe, error) {
	switch Timeframe(s) {
	case "":
		return TimeframeAllTime, nil
	case TimeframeWeek, TimeframeMonth, TimeframeYear, TimeframeAllTime:
		return Timeframe(s), nil
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput,
			"timeframe must be one of week, month, year, all-time")
	}
}

// CutoffFrom converts the timeframe into a lower bound on submission time.
// The all-time window returns the zero time, which every real submission
// postdates.
func (tf Timeframe) CutoffFrom(now time.Time) time.Time {
	switch tf {
	case TimeframeWeek:
		return now.AddDate(0, 0, -7)
	case TimeframeMonth:
		return now.AddDate(0, -1, 0)
	case TimeframeYear:
		return now.AddDate(-1, 0, 0)
	default:
		return time.Time{}
	}
}

// InstitutionCounts is the raw per-institution tally a performance source
// produces for one window. ResolutionDays sums the submission-to-resolution
// duration in fractional days across resolved complaints only.
type InstitutionCounts struct {
	InstitutionID   domain.InstitutionID
	InstitutionName string
	Total           int
	Resolved        int
	OnTime          int
	ResolutionDays  float64
}

// InstitutionPerformance is one ranked row of the report.
//
// Invariants:
//   - ResolutionRate is resolved/total as a percentage, 0 when total is 0
//   - OnTimeRate divides by max(resolved, 1) so unresolved-only rows read 0
//   - AvgResolutionDays is nil unless at least one complaint was resolved
type InstitutionPerformance struct {
	InstitutionID     domain.InstitutionID `json:"institution_id"`
	InstitutionName   string               `json:"institution_name"`
	Total             int                  `json:"total_complaints"`
	Resolved          int                  `json:"resolved_complaints"`
	OnTime            int                  `json:"resolved_on_time"`
	ResolutionRate    float64              `json:"resolution_rate"`
	OnTimeRate        float64              `json:"on_time_rate"`
	AvgResolutionDays *float64             `json:"avg_resolution_days"`
}

// NewInstitutionPerformance derives the rate row from raw counts.
func NewInstitutionPerformance(c InstitutionCounts) InstitutionPerformance {
	perf := InstitutionPerformance{
		InstitutionID:   c.InstitutionID,
		InstitutionName: c.InstitutionName,
		Total:           c.Total,
		Resolved:        c.Resolved,
		OnTime:          c.OnTime,
		ResolutionRate:  percentage(c.Resolved, c.Total),
		OnTimeRate:      percentage(c.OnTime, max(c.Resolved, 1)),
	}
	if c.Resolved > 0 {
		avg := c.ResolutionDays / float64(c.Resolved)
		perf.AvgResolutionDays = &avg
	}
	return perf
}

// SystemPerformance rolls the per-institution counters into one city-wide
// summary using the same zero-guarded rates.
type SystemPerformance struct {
	Total          int     `json:"total_complaints"`
	Resolved       int     `json:"resolved_complaints"`
	OnTime         int     `json:"resolved_on_time"`
	ResolutionRate float64 `json:"resolution_rate"`
	OnTimeRate     float64 `json:"on_time_rate"`
}

// Report is the full payload served to authenticated readers. Institutions
// with zero complaints in the window still appear so the ranking covers the
// whole registry.
type Report struct {
	Timeframe    Timeframe                `json:"timeframe"`
	GeneratedAt  time.Time                `json:"generated_at"`
	Institutions []InstitutionPerformance `json:"institutions"`
	System       SystemPerformance        `json:"system"`
}

// BuildReport ranks the counted rows and computes the system summary.
// Ordering is on-time rate descending with name ascending breaking ties, so
// the ranking is deterministic across runs.
func BuildReport(tf Timeframe, generatedAt time.Time, counts []InstitutionCounts) *Report {
	report := &Report{
		Timeframe:    tf,
		GeneratedAt:  generatedAt,
		Institutions: make([]InstitutionPerformance, 0, len(counts)),
	}
	for _, c := range counts {
		report.Institutions = append(report.Institutions, NewInstitutionPerformance(c))
		report.System.Total += c.Total
		report.System.Resolved += c.Resolved
		report.System.OnTime += c.OnTime
	}
	report.System.ResolutionRate = percentage(report.System.Resolved, report.System.Total)
	report.System.OnTimeRate = percentage(report.System.OnTime, max(report.System.Resolved, 1))

	sort.SliceStable(report.Institutions, func(i, j int) bool {
		a, b := report.Institutions[i], report.Institutions[j]
		if a.OnTimeRate != b.OnTimeRate {
			return a.OnTimeRate > b.OnTimeRate
		}
		return a.InstitutionName < b.InstitutionName
	})
	return report
}

func percentage(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}
