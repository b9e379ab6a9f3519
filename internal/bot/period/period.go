// Package period computes the date ranges the bot offers.
package period

import (
	"fmt"
	"strings"
	"time"

	"github.com/kiribu/budget-buddy/internal/ledger/model"
)

const (
	dateLayout     = "2006-01-02"
	callbackPrefix = "report"
)

type Preset struct {
	Label  string
	Period model.Period
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// EndOfDay is the last instant of t's day.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location()).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// ReportPresets returns the periods offered by /report, in keyboard order.
func ReportPresets(now time.Time) []Preset {
	monthStart := startOfMonth(now)
	yearStart := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
	today := EndOfDay(now)

	return []Preset{
		{Label: "Current month", Period: model.NewPeriod(monthStart, today)},
		{Label: "Last 3 months", Period: model.NewPeriod(startOfMonth(monthStart.AddDate(0, 0, -90)), today)},
		{Label: "Last 6 months", Period: model.NewPeriod(startOfMonth(monthStart.AddDate(0, 0, -180)), today)},
		{Label: "Current year", Period: model.NewPeriod(yearStart, yearStart.AddDate(1, 0, 0).Add(-time.Nanosecond))},
		{Label: "Last year", Period: model.NewPeriod(yearStart.AddDate(-1, 0, 0), yearStart.Add(-time.Nanosecond))},
	}
}

// Analytics returns the current month to date and the whole previous month.
// The previous month ends right before the current one starts.
func Analytics(now time.Time) (original, compared model.Period) {
	monthStart := startOfMonth(now)
	original = model.NewPeriod(monthStart, EndOfDay(now))
	compared = model.NewPeriod(monthStart.AddDate(0, -1, 0), monthStart.Add(-time.Nanosecond))
	return original, compared
}

// PackCallback encodes a report period as inline keyboard callback data with
// day precision.
func PackCallback(p model.Period) string {
	return strings.Join([]string{callbackPrefix, p.Start.Format(dateLayout), p.End.Format(dateLayout)}, ":")
}

func IsCallback(data string) bool {
	return strings.HasPrefix(data, callbackPrefix+":")
}

// ParseCallback decodes PackCallback data. The end date covers its whole day.
func ParseCallback(data string, loc *time.Location) (model.Period, error) {
	parts := strings.Split(data, ":")
	if len(parts) != 3 || parts[0] != callbackPrefix {
		return model.Period{}, fmt.Errorf("malformed report callback %q", data)
	}

	start, err := time.ParseInLocation(dateLayout, parts[1], loc)
	if err != nil {
		return model.Period{}, fmt.Errorf("invalid start date: %w", err)
	}
	end, err := time.ParseInLocation(dateLayout, parts[2], loc)
	if err != nil {
		return model.Period{}, fmt.Errorf("invalid end date: %w", err)
	}

	return model.NewPeriod(start, EndOfDay(end)), nil
}
