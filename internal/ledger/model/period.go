package model

import (
	"fmt"
	"time"
)

// Period is a closed interval [Start, End].
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func NewPeriod(start, end time.Time) Period {
	return Period{Start: start, End: end}
}

// Contains reports whether ts lies within the bounds, both inclusive.
func (p Period) Contains(ts time.Time) bool {
	return !ts.Before(p.Start) && !ts.After(p.End)
}

// ValidateInclusive requires Start <= End, the rule for a single report.
func (p Period) ValidateInclusive() error {
	if p.Start.After(p.End) {
		return fmt.Errorf("%w: start %s is after end %s", ErrInvalidPeriod, formatTime(p.Start), formatTime(p.End))
	}
	return nil
}

// ValidateStrict requires Start < End, the rule for analytics periods.
func (p Period) ValidateStrict() error {
	if !p.Start.Before(p.End) {
		return fmt.Errorf("%w: start %s is not before end %s", ErrInvalidPeriod, formatTime(p.Start), formatTime(p.End))
	}
	return nil
}

// ValidateComparison checks that both periods are strict and that compared
// ends no later than original starts. Adjacent periods are allowed.
func ValidateComparison(original, compared Period) error {
	if err := original.ValidateStrict(); err != nil {
		return fmt.Errorf("original period: %w", err)
	}
	if err := compared.ValidateStrict(); err != nil {
		return fmt.Errorf("compared period: %w", err)
	}
	if compared.End.After(original.Start) {
		return fmt.Errorf("%w: compared period ends %s after original period starts %s",
			ErrInvalidPeriod, formatTime(compared.End), formatTime(original.Start))
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}
