package engine

import (
	"fmt"
	"strconv"
	"time"

	"github.com/tartampluch/go-agecategory/internal/config"
)

// YearWindow bounds accepted years relative to the current year.
type YearWindow struct {
	Past   int
	Future int
}

// DefaultYearWindow accepts [current-150, current+100] for both flows.
var DefaultYearWindow = YearWindow{Past: config.DefaultYearsPast, Future: config.DefaultYearsFuture}

// Bounds returns the inclusive year range for the year of now.
func (w YearWindow) Bounds(now time.Time) (lowest, highest int) {
	cy := now.Year()
	return cy - w.Past, cy + w.Future
}

// Contains reports whether year falls within the window.
func (w YearWindow) Contains(year int, now time.Time) bool {
	lowest, highest := w.Bounds(now)
	return year >= lowest && year <= highest
}

// ResolveYear turns year text into a 4-digit year. Exactly two digits are
// expanded around a pivot of current year + 1: "26" is 2026 in 2025 and
// "30" is 1930. Any other length is taken literally.
func ResolveYear(text string, now time.Time, w YearWindow) (int, error) {
	f := Normalize(text)
	if f.Absent() {
		return 0, ErrMissingField
	}
	if !f.Numeric() {
		return 0, invalidf(config.ErrYearNotNumeric, f.Text)
	}

	year, err := strconv.Atoi(f.Text)
	if err != nil {
		return 0, invalidf(config.ErrYearNotNumeric, f.Text)
	}
	if len(f.Text) == config.TwoDigitYearLen {
		year = expandTwoDigitYear(year, now.Year())
	}

	if !w.Contains(year, now) {
		lowest, highest := w.Bounds(now)
		return 0, fmt.Errorf("%w: %s [%d, %d]: %d", ErrInvalid, config.ErrYearRange, lowest, highest, year)
	}
	return year, nil
}

func expandTwoDigitYear(n, currentYear int) int {
	if y := config.CenturyCurrent + n; y <= currentYear+config.TwoDigitPivotOffset {
		return y
	}
	return config.CenturyPrevious + n
}

// ConfirmYear resolves the year field when the user commits it.
func ConfirmYear(text string, now time.Time, w YearWindow) FieldResult {
	if Normalize(text).Absent() {
		return FieldResult{State: FieldEmpty}
	}
	year, err := ResolveYear(text, now, w)
	if err != nil {
		return FieldResult{State: FieldCleared}
	}
	return FieldResult{Display: fmt.Sprintf(config.YearDisplayFormat, year), State: FieldValid}
}
