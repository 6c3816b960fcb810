package engine

import (
	"fmt"
	"strconv"
	"time"
	"unicode/utf8"

	"cloudeng.io/datetime"

	"github.com/tartampluch/go-agecategory/internal/config"
)

// DateInput is the raw text of one year/month/day trio.
type DateInput struct {
	Year  string
	Month string
	Day   string
}

// ResolvedDate is a calendar date that exists. The zero value is not valid;
// construct it with NewResolvedDate, DateOf or Assemble.
type ResolvedDate struct {
	t time.Time
}

// NewResolvedDate validates y-m-d and builds the date at midnight UTC.
// The date must round-trip unchanged, so Feb 29 only exists in leap years.
func NewResolvedDate(year, month, day int) (ResolvedDate, error) {
	if month < 1 || month > config.MonthsPerYear {
		return ResolvedDate{}, invalidf(config.ErrMonthUnresolved, month)
	}
	if day < 1 || day > DaysInMonth(year, month) {
		return ResolvedDate{}, invalidf(config.ErrDayRange, day)
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return ResolvedDate{}, invalidf(config.ErrRoundTrip, fmt.Sprintf("%d-%d-%d", year, month, day))
	}
	return ResolvedDate{t: t}, nil
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) ResolvedDate {
	y, m, d := t.Date()
	return ResolvedDate{t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func (d ResolvedDate) Year() int { return d.t.Year() }

func (d ResolvedDate) Month() time.Month { return d.t.Month() }

func (d ResolvedDate) Day() int { return d.t.Day() }

// Time returns midnight UTC of the date.
func (d ResolvedDate) Time() time.Time { return d.t }

func (d ResolvedDate) IsZero() bool { return d.t.IsZero() }

func (d ResolvedDate) Before(o ResolvedDate) bool { return d.t.Before(o.t) }

func (d ResolvedDate) After(o ResolvedDate) bool { return d.t.After(o.t) }

func (d ResolvedDate) Equal(o ResolvedDate) bool { return d.t.Equal(o.t) }

// CalendarDate converts to the cloudeng.io representation.
func (d ResolvedDate) CalendarDate() datetime.CalendarDate {
	return datetime.NewCalendarDate(d.Year(), datetime.Month(d.Month()), d.Day())
}

func (d ResolvedDate) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(config.DateFormatFullDash)
}

// MarshalText renders the date as YYYY-MM-DD.
func (d ResolvedDate) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Assemble combines the three fields into a ResolvedDate.
//
// Missing fields and a single-character day yield ErrIncomplete; anything
// that cannot form a real date yields ErrInvalid.
func Assemble(in DateInput, now time.Time, w YearWindow) (ResolvedDate, error) {
	year, month, day := Normalize(in.Year), Normalize(in.Month), Normalize(in.Day)
	if year.Absent() || month.Absent() || day.Absent() {
		return ResolvedDate{}, ErrMissingField
	}
	if utf8.RuneCountInString(day.Text) < config.MinDayDigits {
		return ResolvedDate{}, ErrPartialDay
	}

	y, err := ResolveYear(year.Text, now, w)
	if err != nil {
		return ResolvedDate{}, err
	}
	tok, ok := ResolveMonth(month.Text)
	if !ok {
		return ResolvedDate{}, invalidf(config.ErrMonthUnresolved, month.Text)
	}
	if !day.Numeric() {
		return ResolvedDate{}, invalidf(config.ErrDayNotNumeric, day.Text)
	}
	d, err := strconv.Atoi(day.Text)
	if err != nil {
		return ResolvedDate{}, invalidf(config.ErrDayNotNumeric, day.Text)
	}
	return NewResolvedDate(y, tok.Number, d)
}
