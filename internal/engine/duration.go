package engine

import "github.com/tartampluch/go-agecategory/internal/config"

// MonthsBetween counts whole calendar months from start to end. A month is
// only complete once the end day-of-month reaches the start day-of-month,
// so Jan 31 to Feb 28 is 0 and Jan 31 to Mar 1 is 1. The count never goes
// below zero; an end before the start yields 0.
func MonthsBetween(start, end ResolvedDate) int {
	months := (end.Year()-start.Year())*config.MonthsPerYear + int(end.Month()) - int(start.Month())
	if end.Day() < start.Day() {
		months--
	}
	return max(0, months)
}

// Span is a whole-month duration with its year/month decomposition.
type Span struct {
	TotalMonths int
	Years       int
	Months      int
}

// SpanOf decomposes a month count.
func SpanOf(totalMonths int) Span {
	return Span{
		TotalMonths: totalMonths,
		Years:       totalMonths / config.MonthsPerYear,
		Months:      totalMonths % config.MonthsPerYear,
	}
}

// String renders "Y years, M months".
func (s Span) String() string {
	return FormatAge(s.Years, s.Months)
}

// Total renders "(N Months total)".
func (s Span) Total() string {
	return FormatTotalMonths(s.TotalMonths)
}
