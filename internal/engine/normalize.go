package engine

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

// Field is one normalized text fragment typed into a year, month or day input.
type Field struct {
	// Text is the trimmed input, original casing preserved for display.
	Text string
	// Key is the case-folded form of Text, used only for comparisons.
	Key string
}

// Normalize trims raw and derives its comparison key.
func Normalize(raw string) Field {
	text := strings.TrimSpace(raw)
	return Field{Text: text, Key: fold(text)}
}

// Absent reports whether nothing but whitespace was typed.
// Absent is distinct from invalid.
func (f Field) Absent() bool {
	return f.Text == ""
}

// Numeric reports whether the field holds only decimal digits.
func (f Field) Numeric() bool {
	if f.Absent() {
		return false
	}
	for _, r := range f.Text {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// HasLetters reports whether at least one letter was typed.
func (f Field) HasLetters() bool {
	return strings.IndexFunc(f.Text, unicode.IsLetter) >= 0
}

func fold(s string) string {
	return cases.Fold().String(s)
}
