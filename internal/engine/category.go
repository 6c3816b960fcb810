package engine

import "github.com/tartampluch/go-agecategory/internal/config"

// Category is the childcare/school age band.
type Category int

const (
	Infant Category = iota
	Toddler
	Preschool
	JK
	SK
	AgedOut
)

// Categories lists every band in ascending age order.
var Categories = []Category{Infant, Toddler, Preschool, JK, SK, AgedOut}

// Classify maps a month count to its band. Bounds are inclusive:
// 0-17 Infant, 18-30 Toddler, 31-43 Preschool, 44-55 JK, 56-71 SK, 72+ Aged Out.
func Classify(totalMonths int) Category {
	switch {
	case totalMonths <= config.InfantMaxMonths:
		return Infant
	case totalMonths <= config.ToddlerMaxMonths:
		return Toddler
	case totalMonths <= config.PreschoolMaxMonths:
		return Preschool
	case totalMonths <= config.JKMaxMonths:
		return JK
	case totalMonths <= config.SKMaxMonths:
		return SK
	default:
		return AgedOut
	}
}

func (c Category) String() string {
	switch c {
	case Infant:
		return config.LabelInfant
	case Toddler:
		return config.LabelToddler
	case Preschool:
		return config.LabelPreschool
	case JK:
		return config.LabelJK
	case SK:
		return config.LabelSK
	default:
		return config.LabelAgedOut
	}
}

// MarshalText renders the English label.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}
