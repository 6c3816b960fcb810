package engine

import (
	"errors"
	"fmt"

	"github.com/tartampluch/go-agecategory/internal/config"
)

// Resolution outcomes. Every path through the pipeline returns nil or an
// error matching exactly one of ErrIncomplete, ErrInvalid or ErrEndBeforeStart.
var (
	// ErrIncomplete means the input is not yet sufficient. It is not a failure:
	// callers wait for more input.
	ErrIncomplete = errors.New(config.ErrIncomplete)

	// ErrMissingField is returned when a year, month or day field is empty.
	ErrMissingField = fmt.Errorf("%w: %s", ErrIncomplete, config.ErrMissingField)

	// ErrPartialDay is returned while the day holds a single character.
	ErrPartialDay = fmt.Errorf("%w: %s", ErrIncomplete, config.ErrPartialDay)

	// ErrInvalid means a field cannot be resolved and must be reset.
	ErrInvalid = errors.New(config.ErrInvalid)

	// ErrBirthInFuture is returned by the age flow when the birth date is after today.
	ErrBirthInFuture = fmt.Errorf("%w: %s", ErrInvalid, config.ErrBirthInFuture)

	// ErrEndBeforeStart is the cross-field error of the duration flow.
	ErrEndBeforeStart = errors.New(config.ErrEndBeforeStart)
)

// StateOf maps a pipeline error to its wire name. It returns an empty string for nil.
func StateOf(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrIncomplete):
		return config.StateIncomplete
	case errors.Is(err, ErrEndBeforeStart):
		return config.StateEndBeforeStart
	default:
		return config.StateInvalid
	}
}

func invalidf(reason string, value any) error {
	return fmt.Errorf("%w: %s: %q", ErrInvalid, reason, fmt.Sprint(value))
}
