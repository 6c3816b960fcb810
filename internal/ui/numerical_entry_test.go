package ui_test

import (
	"testing"

	"fyne.io/fyne/v2/driver/mobile"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"

	"github.com/tartampluch/go-agecategory/internal/ui"
)

func TestNumericalEntry_TypedRune(t *testing.T) {
	entry := ui.NewNumericalEntry(0)
	window := test.NewWindow(entry)
	defer window.Close()

	tests := []struct {
		name     string
		input    rune
		accepted bool
	}{
		{"Digit_Zero", '0', true},
		{"Digit_Nine", '9', true},
		{"Digit_Five", '5', true},
		{"Letter_a", 'a', false},
		{"Letter_Z", 'Z', false},
		{"Symbol_Dash", '-', false},
		{"Symbol_Space", ' ', false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry.SetText("")

			test.Type(entry, string(tt.input))

			if tt.accepted {
				assert.Equal(t, string(tt.input), entry.Text)
			} else {
				assert.Empty(t, entry.Text)
			}
		})
	}
}

func TestNumericalEntry_MaxDigits(t *testing.T) {
	entry := ui.NewNumericalEntry(2)
	window := test.NewWindow(entry)
	defer window.Close()

	test.Type(entry, "1234")
	assert.Equal(t, "12", entry.Text)

	year := ui.NewNumericalEntry(4)
	yearWindow := test.NewWindow(year)
	defer yearWindow.Close()
	test.Type(year, "20a25x9")
	assert.Equal(t, "2025", year.Text)
}

func TestNumericalEntry_Keyboard(t *testing.T) {
	entry := ui.NewNumericalEntry(0)
	assert.Equal(t, mobile.NumberKeyboard, entry.Keyboard())
}

// Direct setting bypasses TypedRune; the field is validated when confirmed.
func TestNumericalEntry_DirectSetText(t *testing.T) {
	entry := ui.NewNumericalEntry(2)

	entry.SetText("abc")
	assert.Equal(t, "abc", entry.Text)
}

func TestNumericalEntry_FocusLost(t *testing.T) {
	entry := ui.NewNumericalEntry(2)
	window := test.NewWindow(entry)
	defer window.Close()

	called := 0
	entry.OnFocusLost = func() { called++ }

	entry.FocusGained()
	entry.FocusLost()
	assert.Equal(t, 1, called)
}

func TestMonthEntry_FocusLost(t *testing.T) {
	entry := ui.NewMonthEntry()
	window := test.NewWindow(entry)
	defer window.Close()

	called := false
	entry.OnFocusLost = func() { called = true }
	entry.FocusLost()
	assert.True(t, called)
}
