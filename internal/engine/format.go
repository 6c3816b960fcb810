package engine

import (
	"fmt"

	"github.com/tartampluch/go-agecategory/internal/config"
)

// FormatAge renders "Y year(s), M month(s)".
func FormatAge(years, months int) string {
	return plural(years, config.FormatYearSingular, config.FormatYearPlural) +
		config.AgeSeparator +
		plural(months, config.FormatMonthSingular, config.FormatMonthPlural)
}

// FormatTotalMonths renders "(N Month(s) total)".
func FormatTotalMonths(n int) string {
	return plural(n, config.FormatTotalSingular, config.FormatTotalPlural)
}

// Singular only for exactly 1; 0 is plural.
func plural(n int, singular, many string) string {
	if n == 1 {
		return fmt.Sprintf(singular, n)
	}
	return fmt.Sprintf(many, n)
}
