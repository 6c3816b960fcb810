package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/tartampluch/go-agecategory/internal/config"
)

// MonthToken is a fully resolved month.
type MonthToken struct {
	// Name is the canonical 3-letter English name ("Feb").
	Name string
	// Number is 1-based (1 = January).
	Number int
}

var monthNames = [12]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

var foldedMonthNames = func() [12]string {
	var out [12]string
	for i, name := range monthNames {
		out[i] = fold(name)
	}
	return out
}()

var canonicalMonthRe = regexp.MustCompile(`(?i)^(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec) - \((\d{2})\)$`)

func monthToken(n int) MonthToken {
	return MonthToken{Name: monthNames[n-1][:3], Number: n}
}

// MonthOf returns the token for a 1-based month number.
func MonthOf(n int) (MonthToken, bool) {
	if n < 1 || n > config.MonthsPerYear {
		return MonthToken{}, false
	}
	return monthToken(n), true
}

// Canonical renders the display form "Feb - (02)".
func (m MonthToken) Canonical() string {
	return fmt.Sprintf(config.CanonicalMonthFormat, m.Name, m.Number)
}

// Month converts the token to a time.Month.
func (m MonthToken) Month() time.Month {
	return time.Month(m.Number)
}

func (m MonthToken) String() string {
	return m.Canonical()
}

// parseCanonicalMonth accepts "Name - (NN)" when name and number agree.
func parseCanonicalMonth(text string) (tok MonthToken, matched, ok bool) {
	m := canonicalMonthRe.FindStringSubmatch(text)
	if m == nil {
		return MonthToken{}, false, false
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return MonthToken{}, true, false
	}
	tok, ok = MonthOf(n)
	if !ok || !strings.EqualFold(tok.Name, m[1]) {
		return MonthToken{}, true, false
	}
	return tok, true, true
}

// IsCanonicalMonth reports whether text is a consistent canonical month
// string, i.e. a value picked from the suggestion list.
func IsCanonicalMonth(text string) bool {
	_, _, ok := parseCanonicalMonth(strings.TrimSpace(text))
	return ok
}

// ResolveMonth maps typed text to a month. Rules, in order:
// canonical "Name - (NN)" form, pure digits 1-12, then the first entry of
// SuggestMonths for text containing letters. Anything else is unresolved.
func ResolveMonth(text string) (MonthToken, bool) {
	f := Normalize(text)
	if f.Absent() {
		return MonthToken{}, false
	}

	if tok, matched, ok := parseCanonicalMonth(f.Text); matched {
		return tok, ok
	}

	if f.Numeric() {
		n, err := strconv.Atoi(f.Text)
		if err != nil {
			return MonthToken{}, false
		}
		return MonthOf(n)
	}

	// Confirm always picks from the set the user was offered.
	if f.HasLetters() {
		if offered := SuggestMonths(f.Text); len(offered) > 0 {
			return offered[0], true
		}
	}
	return MonthToken{}, false
}

// SuggestMonths returns the live suggestion list for a partial month input.
//
//	"0"               -> Jan..Sep
//	"1"               -> Jan, Oct, Nov, Dec
//	digits in 1..12   -> that month
//	other digits      -> nothing
//	letters           -> every month whose name starts with the text
func SuggestMonths(text string) []MonthToken {
	f := Normalize(text)
	if f.Absent() {
		return nil
	}

	if tok, matched, ok := parseCanonicalMonth(f.Text); matched {
		if !ok {
			return nil
		}
		return []MonthToken{tok}
	}

	if f.Numeric() {
		switch f.Text {
		case "0":
			out := make([]MonthToken, 0, 9)
			for n := 1; n <= 9; n++ {
				out = append(out, monthToken(n))
			}
			return out
		case "1":
			return []MonthToken{monthToken(1), monthToken(10), monthToken(11), monthToken(12)}
		}
		n, err := strconv.Atoi(f.Text)
		if err != nil {
			return nil
		}
		if tok, ok := MonthOf(n); ok {
			return []MonthToken{tok}
		}
		return nil
	}

	var out []MonthToken
	for i, name := range foldedMonthNames {
		if strings.HasPrefix(name, f.Key) {
			out = append(out, monthToken(i+1))
		}
	}
	return out
}

// CanonicalStrings renders tokens in their display form.
func CanonicalStrings(tokens []MonthToken) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.Canonical()
	}
	return out
}

// ConfirmMonth resolves the month field when the user commits it.
func ConfirmMonth(text string) FieldResult {
	if Normalize(text).Absent() {
		return FieldResult{State: FieldEmpty}
	}
	tok, ok := ResolveMonth(text)
	if !ok {
		return FieldResult{State: FieldCleared}
	}
	return FieldResult{Display: tok.Canonical(), State: FieldValid}
}
