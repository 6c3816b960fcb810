package engine

import (
	"fmt"
	"time"

	"github.com/tartampluch/go-agecategory/internal/config"
)

// EligibilityStatus places the JK entry year relative to today.
type EligibilityStatus int

const (
	EligibleLater EligibilityStatus = iota
	EligibleNextYear
	EligibleThisYear
	EligibilityPassed
)

func (s EligibilityStatus) String() string {
	switch s {
	case EligibleThisYear:
		return "this_year"
	case EligibleNextYear:
		return "next_year"
	case EligibilityPassed:
		return "passed"
	default:
		return "later"
	}
}

// MarshalText renders the wire name.
func (s EligibilityStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Eligibility is the Junior Kindergarten entry: September 1 of the year the
// child turns four.
type Eligibility struct {
	Year   int
	Status EligibilityStatus
}

// EligibilityFor computes the entry year from the birth year alone.
func EligibilityFor(birth, today ResolvedDate) Eligibility {
	year := birth.Year() + config.JKEntryAge
	cy := today.Year()

	e := Eligibility{Year: year}
	switch {
	case cy == year:
		e.Status = EligibleThisYear
	case cy+1 == year:
		e.Status = EligibleNextYear
	case cy > year:
		e.Status = EligibilityPassed
	default:
		e.Status = EligibleLater
	}
	return e
}

// Starts returns September 1 of the entry year at midnight UTC.
func (e Eligibility) Starts() time.Time {
	return time.Date(e.Year, config.JKStartMonth, config.JKStartDay, 0, 0, 0, 0, time.UTC)
}

// Note is the parenthetical status text; empty for EligibleLater.
func (e Eligibility) Note() string {
	switch e.Status {
	case EligibleThisYear:
		return config.NoteEligibleThisYear
	case EligibleNextYear:
		return config.NoteEligibleNextYear
	case EligibilityPassed:
		return config.NoteEligiblePassed
	default:
		return ""
	}
}

// String renders "Eligible Sept YYYY" followed by the note, if any.
func (e Eligibility) String() string {
	s := fmt.Sprintf(config.FormatEligible, e.Year)
	if note := e.Note(); note != "" {
		s += " " + note
	}
	return s
}
