package engine

// ChildEntry is one roster child with its derived age data, ready for the
// roster table, the JSON API and the eligibility calendar.
type ChildEntry struct {
	// UID is a name-based UUID, stable across reloads of the same roster.
	UID string

	// Name is the display name (Formatted Name or Structured Name for vCards).
	Name string

	// Age carries the birth date, month count, category and JK eligibility
	// as of the load.
	Age AgeResult
}

// Born is the child's birth date.
func (c ChildEntry) Born() ResolvedDate {
	return c.Age.Birth
}
