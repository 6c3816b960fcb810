// Package engine turns free-form year/month/day text into calendar dates
// and derives ages, month counts, age categories and JK eligibility from
// them. It also loads child rosters and renders the eligibility calendar.
package engine

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/tartampluch/go-agecategory/internal/config"
)

// Calculator is the entry point of both flows. It reads "today" from Clock
// and validates years against Years.
type Calculator struct {
	Clock Clock      // Interface for time mocking.
	Years YearWindow // Zero value means DefaultYearWindow.
}

// NewCalculator returns a Calculator using the default year window.
func NewCalculator(clock Clock) *Calculator {
	return &Calculator{Clock: clock, Years: DefaultYearWindow}
}

// AgeResult is the outcome of the age flow.
type AgeResult struct {
	Birth ResolvedDate
	Today ResolvedDate
	Span
	Category    Category
	Eligibility Eligibility
}

// DurationResult is the outcome of the time-between flow.
type DurationResult struct {
	Start ResolvedDate
	End   ResolvedDate
	Span
}

func (c *Calculator) now() time.Time {
	if c.Clock == nil {
		return time.Now()
	}
	return c.Clock.Now()
}

func (c *Calculator) window() YearWindow {
	if c.Years == (YearWindow{}) {
		return DefaultYearWindow
	}
	return c.Years
}

// Today returns the current calendar date.
func (c *Calculator) Today() ResolvedDate {
	return DateOf(c.now())
}

// Resolve assembles one date trio.
func (c *Calculator) Resolve(in DateInput) (ResolvedDate, error) {
	return Assemble(in, c.now(), c.window())
}

// Age computes age, category and JK eligibility for a birth date input.
func (c *Calculator) Age(in DateInput) (AgeResult, error) {
	now := c.now()
	birth, err := Assemble(in, now, c.window())
	if err != nil {
		return AgeResult{}, err
	}
	return ageAt(birth, DateOf(now))
}

// AgeOf is Age for an already resolved birth date.
func (c *Calculator) AgeOf(birth ResolvedDate) (AgeResult, error) {
	return ageAt(birth, c.Today())
}

func ageAt(birth, today ResolvedDate) (AgeResult, error) {
	if birth.After(today) {
		return AgeResult{}, fmt.Errorf("%w: %s", ErrBirthInFuture, birth)
	}

	total := MonthsBetween(birth, today)
	res := AgeResult{
		Birth:       birth,
		Today:       today,
		Span:        SpanOf(total),
		Category:    Classify(total),
		Eligibility: EligibilityFor(birth, today),
	}

	slog.Debug(config.MsgRecalculated,
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyMonths, total,
	)
	return res, nil
}

// Between computes the whole months from start to end. An end before start
// yields ErrEndBeforeStart; the same day is zero months.
func (c *Calculator) Between(start, end DateInput) (DurationResult, error) {
	now, w := c.now(), c.window()

	s, err := Assemble(start, now, w)
	if err != nil {
		return DurationResult{}, fmt.Errorf("start: %w", err)
	}
	e, err := Assemble(end, now, w)
	if err != nil {
		return DurationResult{}, fmt.Errorf("end: %w", err)
	}
	if e.Before(s) {
		return DurationResult{}, fmt.Errorf("%w: %s < %s", ErrEndBeforeStart, e, s)
	}

	total := MonthsBetween(s, e)
	slog.Debug(config.MsgRecalculated,
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyMonths, total,
	)
	return DurationResult{Start: s, End: e, Span: SpanOf(total)}, nil
}

// ConfirmYear resolves a committed year field against the clock.
func (c *Calculator) ConfirmYear(text string) FieldResult {
	return ConfirmYear(text, c.now(), c.window())
}

// ConfirmMonth resolves a committed month field.
func (c *Calculator) ConfirmMonth(text string) FieldResult {
	return ConfirmMonth(text)
}

// ConfirmDay resolves a committed day field in the context of its trio.
func (c *Calculator) ConfirmDay(in DateInput) FieldResult {
	return ConfirmDay(in, c.now(), c.window())
}

// Days lists the valid days for a year and month text. It fails like
// Assemble when either field is missing or unresolved.
func (c *Calculator) Days(yearText, monthText string) ([]string, error) {
	year, err := ResolveYear(yearText, c.now(), c.window())
	if err != nil {
		return nil, err
	}
	if Normalize(monthText).Absent() {
		return nil, ErrMissingField
	}
	month, ok := ResolveMonth(monthText)
	if !ok {
		return nil, invalidf(config.ErrMonthUnresolved, monthText)
	}
	return DayOptions(year, month.Number), nil
}

// DayOptions lists the valid days for the trio's year and month, or nil
// while either is unresolved.
func (c *Calculator) DayOptions(in DateInput) []string {
	days, err := c.Days(in.Year, in.Month)
	if err != nil {
		return nil
	}
	return days
}
