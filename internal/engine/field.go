package engine

// FieldState is the outcome of confirming a single field.
type FieldState int

const (
	// FieldEmpty means nothing was typed; the field stays empty.
	FieldEmpty FieldState = iota
	// FieldValid means the field resolved; Display holds its normalized text.
	FieldValid
	// FieldCleared means the text could not be resolved and the field is reset.
	FieldCleared
)

func (s FieldState) String() string {
	switch s {
	case FieldValid:
		return "valid"
	case FieldCleared:
		return "cleared"
	default:
		return "empty"
	}
}

// FieldResult is the normalized display value of a confirmed field.
type FieldResult struct {
	Display string
	State   FieldState
}

// Changed reports whether applying the result alters the current text.
func (r FieldResult) Changed(current string) bool {
	return r.Display != current
}
