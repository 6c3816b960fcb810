package engine

import (
	"fmt"
	"strconv"
	"time"

	"cloudeng.io/datetime"

	"github.com/tartampluch/go-agecategory/internal/config"
)

// DaysInMonth returns the number of days in month (1-12) of year, leap
// years included. It returns 0 for an out-of-range month.
func DaysInMonth(year, month int) int {
	if month < 1 || month > config.MonthsPerYear {
		return 0
	}
	return int(datetime.DaysInMonth(year, datetime.Month(month)))
}

// DayOptions lists the zero-padded day strings "01".."NN" for the month.
func DayOptions(year, month int) []string {
	n := DaysInMonth(year, month)
	out := make([]string, n)
	for i := range n {
		out[i] = fmt.Sprintf(config.DayOptionFormat, i+1)
	}
	return out
}

// ConfirmDay resolves the day field when the user commits it. The day is
// only kept when the year and month also resolve and it fits the month.
func ConfirmDay(in DateInput, now time.Time, w YearWindow) FieldResult {
	day := Normalize(in.Day)
	if day.Absent() {
		return FieldResult{State: FieldEmpty}
	}
	if !day.Numeric() {
		return FieldResult{State: FieldCleared}
	}

	year, err := ResolveYear(in.Year, now, w)
	if err != nil {
		return FieldResult{State: FieldCleared}
	}
	month, ok := ResolveMonth(in.Month)
	if !ok {
		return FieldResult{State: FieldCleared}
	}

	n, err := strconv.Atoi(day.Text)
	if err != nil || n < 1 || n > DaysInMonth(year, month.Number) {
		return FieldResult{State: FieldCleared}
	}
	return FieldResult{Display: fmt.Sprintf(config.DayOptionFormat, n), State: FieldValid}
}
