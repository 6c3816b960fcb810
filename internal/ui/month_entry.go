package ui

import (
	"fyne.io/fyne/v2/widget"

	"github.com/tartampluch/go-agecategory/internal/engine"
)

// MonthEntry is a free-text month field whose drop-down offers the months
// matching what has been typed so far.
type MonthEntry struct {
	widget.SelectEntry

	// OnEdited is called after every text change, once suggestions are updated.
	OnEdited func(string)

	// OnFocusLost is called after the entry loses keyboard focus.
	OnFocusLost func()

	suggestions []string
}

// NewMonthEntry creates an empty MonthEntry.
func NewMonthEntry() *MonthEntry {
	e := &MonthEntry{}
	e.ExtendBaseWidget(e)
	e.SetOptions(nil)
	e.OnChanged = e.textChanged
	return e
}

func (e *MonthEntry) textChanged(text string) {
	e.suggestions = engine.CanonicalStrings(engine.SuggestMonths(text))
	e.SetOptions(e.suggestions)
	if e.OnEdited != nil {
		e.OnEdited(text)
	}
}

// Suggestions returns the options currently offered in the drop-down.
func (e *MonthEntry) Suggestions() []string {
	return e.suggestions
}

// FocusLost confirms the field when the user moves away from it.
func (e *MonthEntry) FocusLost() {
	e.SelectEntry.FocusLost()
	if e.OnFocusLost != nil {
		e.OnFocusLost()
	}
}
