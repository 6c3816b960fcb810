package ui

import (
	"fyne.io/fyne/v2/driver/mobile"
	"fyne.io/fyne/v2/widget"
)

// NumericalEntry is an Entry that only accepts digits, optionally capped
// at MaxDigits characters.
type NumericalEntry struct {
	widget.Entry

	// MaxDigits limits typed input; 0 means unlimited.
	MaxDigits int

	// OnFocusLost is called after the entry loses keyboard focus.
	OnFocusLost func()
}

// NewNumericalEntry creates a NumericalEntry accepting up to maxDigits digits.
func NewNumericalEntry(maxDigits int) *NumericalEntry {
	entry := &NumericalEntry{MaxDigits: maxDigits}
	entry.ExtendBaseWidget(entry)
	return entry
}

// TypedRune drops anything but 0-9 and stops at MaxDigits unless a
// selection is about to be replaced. Pasted text bypasses this filter and
// is rejected later when the field is confirmed.
func (e *NumericalEntry) TypedRune(r rune) {
	if r < '0' || r > '9' {
		return
	}
	if e.MaxDigits > 0 && len(e.Text) >= e.MaxDigits && e.SelectedText() == "" {
		return
	}
	e.Entry.TypedRune(r)
}

// FocusLost confirms the field when the user moves away from it.
func (e *NumericalEntry) FocusLost() {
	e.Entry.FocusLost()
	if e.OnFocusLost != nil {
		e.OnFocusLost()
	}
}

// Keyboard requests the numeric keypad on mobile devices.
func (e *NumericalEntry) Keyboard() mobile.KeyboardType {
	return mobile.NumberKeyboard
}
