package engine_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tartampluch/go-agecategory/internal/config"
	"github.com/tartampluch/go-agecategory/internal/engine"
)

func TestNormalize(t *testing.T) {
	f := engine.Normalize("  FeB \t")
	assert.Equal(t, "FeB", f.Text)
	assert.Equal(t, "feb", f.Key)
	assert.False(t, f.Absent())
	assert.True(t, f.HasLetters())
	assert.False(t, f.Numeric())

	assert.True(t, engine.Normalize(" \n ").Absent())
	assert.True(t, engine.Normalize("007").Numeric())
	assert.False(t, engine.Normalize("7a").Numeric())
}

// -----------------------------------------------------------------------------
// Month resolution
// -----------------------------------------------------------------------------

func TestResolveMonth(t *testing.T) {
	tests := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{"2", 2, true},
		{"02", 2, true},
		{"feb", 2, true},
		{"FEB", 2, true},
		{" Feb ", 2, true},
		{"february", 2, true},
		{"Feb - (02)", 2, true},
		{"feb - (02)", 2, true},
		{"12", 12, true},
		{"ja", 1, true},
		{"ma", 3, true},
		{"sept", 9, true},
		{"13", 0, false},
		{"0", 0, false},
		{"00", 0, false},
		{"zz", 0, false},
		{"Feb - (05)", 0, false},
		{"Feb - (13)", 0, false},
		{"-1", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			tok, ok := engine.ResolveMonth(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, tok.Number)
		})
	}
}

func TestResolveMonth_ConfirmIsFirstSuggestion(t *testing.T) {
	for _, in := range []string{"j", "ju", "m", "a", "n", "dec"} {
		offered := engine.SuggestMonths(in)
		require.NotEmpty(t, offered, in)

		tok, ok := engine.ResolveMonth(in)
		require.True(t, ok, in)
		assert.Equal(t, offered[0], tok, in)
	}
}

func TestSuggestMonths(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"0", []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep"}},
		{"1", []string{"Jan", "Oct", "Nov", "Dec"}},
		{"7", []string{"Jul"}},
		{"11", []string{"Nov"}},
		{"ju", []string{"Jun", "Jul"}},
		{"M", []string{"Mar", "May"}},
		{"Feb - (02)", []string{"Feb"}},
		{"13", nil},
		{"x", nil},
		{"", nil},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var got []string
			for _, tok := range engine.SuggestMonths(tt.in) {
				got = append(got, tok.Name)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMonthToken_Canonical(t *testing.T) {
	tok, ok := engine.MonthOf(2)
	require.True(t, ok)
	assert.Equal(t, "Feb - (02)", tok.Canonical())
	assert.Equal(t, time.February, tok.Month())

	assert.Equal(t, []string{"Oct - (10)"}, engine.CanonicalStrings(engine.SuggestMonths("oct")))
	assert.True(t, engine.IsCanonicalMonth("Oct - (10)"))
	assert.False(t, engine.IsCanonicalMonth("Oct - (11)"))
	assert.False(t, engine.IsCanonicalMonth("oct"))
}

func TestConfirmMonth(t *testing.T) {
	assert.Equal(t, engine.FieldResult{Display: "Sep - (09)", State: engine.FieldValid}, engine.ConfirmMonth("9"))
	assert.Equal(t, engine.FieldResult{State: engine.FieldCleared}, engine.ConfirmMonth("zz"))
	assert.Equal(t, engine.FieldResult{State: engine.FieldEmpty}, engine.ConfirmMonth(""))
}

// -----------------------------------------------------------------------------
// Year resolution
// -----------------------------------------------------------------------------

func TestResolveYear(t *testing.T) {
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	w := engine.DefaultYearWindow

	tests := []struct {
		in      string
		want    int
		wantErr error
	}{
		{"30", 1930, nil},
		{"20", 2020, nil},
		{"26", 2026, nil},
		{"27", 1927, nil},
		{"00", 2000, nil},
		{"99", 1999, nil},
		{"2025", 2025, nil},
		{" 1875 ", 1875, nil},
		{"2125", 2125, nil},
		{"1874", 0, engine.ErrInvalid},
		{"2126", 0, engine.ErrInvalid},
		{"0020", 0, engine.ErrInvalid},
		{"5", 0, engine.ErrInvalid},
		{"20a4", 0, engine.ErrInvalid},
		{"", 0, engine.ErrIncomplete},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := engine.ResolveYear(tt.in, now, w)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestYearWindow_Bounds(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	lowest, highest := engine.YearWindow{Past: 10, Future: 2}.Bounds(now)
	assert.Equal(t, 2015, lowest)
	assert.Equal(t, 2027, highest)
}

// -----------------------------------------------------------------------------
// Day validation and assembly
// -----------------------------------------------------------------------------

func TestDaysInMonth(t *testing.T) {
	assert.Equal(t, 29, engine.DaysInMonth(2024, 2))
	assert.Equal(t, 28, engine.DaysInMonth(2023, 2))
	assert.Equal(t, 28, engine.DaysInMonth(1900, 2))
	assert.Equal(t, 29, engine.DaysInMonth(2000, 2))
	assert.Equal(t, 30, engine.DaysInMonth(2023, 4))
	assert.Equal(t, 31, engine.DaysInMonth(2023, 12))
	assert.Equal(t, 0, engine.DaysInMonth(2023, 13))

	opts := engine.DayOptions(2024, 2)
	require.Len(t, opts, 29)
	assert.Equal(t, "01", opts[0])
	assert.Equal(t, "29", opts[28])
}

func TestConfirmDay(t *testing.T) {
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	w := engine.DefaultYearWindow

	tests := []struct {
		name string
		in   engine.DateInput
		want engine.FieldResult
	}{
		{"Padded", engine.DateInput{Year: "2024", Month: "Feb", Day: "5"}, engine.FieldResult{Display: "05", State: engine.FieldValid}},
		{"Leap day", engine.DateInput{Year: "2024", Month: "2", Day: "29"}, engine.FieldResult{Display: "29", State: engine.FieldValid}},
		{"Not a leap year", engine.DateInput{Year: "2023", Month: "2", Day: "29"}, engine.FieldResult{State: engine.FieldCleared}},
		{"Zero", engine.DateInput{Year: "2024", Month: "2", Day: "0"}, engine.FieldResult{State: engine.FieldCleared}},
		{"Month missing", engine.DateInput{Year: "2024", Day: "10"}, engine.FieldResult{State: engine.FieldCleared}},
		{"Letters", engine.DateInput{Year: "2024", Month: "2", Day: "x"}, engine.FieldResult{State: engine.FieldCleared}},
		{"Empty", engine.DateInput{Year: "2024", Month: "2"}, engine.FieldResult{State: engine.FieldEmpty}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, engine.ConfirmDay(tt.in, now, w))
		})
	}
}

func TestAssemble(t *testing.T) {
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	w := engine.DefaultYearWindow

	tests := []struct {
		name    string
		in      engine.DateInput
		want    string
		wantErr error
	}{
		{"Leap day", engine.DateInput{Year: "2024", Month: "2", Day: "29"}, "2024-02-29", nil},
		{"Canonical month", engine.DateInput{Year: "99", Month: "Dec - (12)", Day: "31"}, "1999-12-31", nil},
		{"Non leap year", engine.DateInput{Year: "2023", Month: "2", Day: "29"}, "", engine.ErrInvalid},
		{"Partial day", engine.DateInput{Year: "2024", Month: "Feb", Day: "2"}, "", engine.ErrPartialDay},
		{"Partial accented day", engine.DateInput{Year: "2024", Month: "Feb", Day: "é"}, "", engine.ErrPartialDay},
		{"Partial full-width day", engine.DateInput{Year: "2024", Month: "Feb", Day: "２"}, "", engine.ErrPartialDay},
		{"Missing year", engine.DateInput{Month: "Feb", Day: "12"}, "", engine.ErrMissingField},
		{"Blank month", engine.DateInput{Year: "2024", Month: "  ", Day: "12"}, "", engine.ErrMissingField},
		{"Unknown month", engine.DateInput{Year: "2024", Month: "zz", Day: "12"}, "", engine.ErrInvalid},
		{"Letters in day", engine.DateInput{Year: "2024", Month: "Feb", Day: "ab"}, "", engine.ErrInvalid},
		{"Day zero", engine.DateInput{Year: "2024", Month: "Feb", Day: "00"}, "", engine.ErrInvalid},
		{"Day out of range", engine.DateInput{Year: "2024", Month: "Apr", Day: "31"}, "", engine.ErrInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := engine.Assemble(tt.in, now, w)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.True(t, got.IsZero())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
			assert.Equal(t, time.UTC, got.Time().Location())
		})
	}
}

func TestNewResolvedDate(t *testing.T) {
	d, err := engine.NewResolvedDate(2024, 2, 29)
	require.NoError(t, err)
	assert.Equal(t, 2024, d.CalendarDate().Year())
	assert.Equal(t, 29, d.CalendarDate().Day())

	text, err := d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", string(text))

	_, err = engine.NewResolvedDate(2023, 2, 29)
	assert.ErrorIs(t, err, engine.ErrInvalid)
	_, err = engine.NewResolvedDate(2023, 0, 1)
	assert.ErrorIs(t, err, engine.ErrInvalid)
}

func TestStateOf(t *testing.T) {
	assert.Equal(t, "", engine.StateOf(nil))
	assert.Equal(t, config.StateIncomplete, engine.StateOf(engine.ErrPartialDay))
	assert.Equal(t, config.StateInvalid, engine.StateOf(engine.ErrBirthInFuture))
	assert.Equal(t, config.StateEndBeforeStart, engine.StateOf(engine.ErrEndBeforeStart))
}

// -----------------------------------------------------------------------------
// Month counting, categories, eligibility, formatting
// -----------------------------------------------------------------------------

func mustDate(t *testing.T, y, m, d int) engine.ResolvedDate {
	t.Helper()
	date, err := engine.NewResolvedDate(y, m, d)
	require.NoError(t, err)
	return date
}

func TestMonthsBetween(t *testing.T) {
	tests := []struct {
		name       string
		start, end engine.ResolvedDate
		want       int
	}{
		{"Jan 31 to Feb 28", mustDate(t, 2023, 1, 31), mustDate(t, 2023, 2, 28), 0},
		{"Jan 31 to Mar 1", mustDate(t, 2023, 1, 31), mustDate(t, 2023, 3, 1), 1},
		{"Same day", mustDate(t, 2023, 5, 5), mustDate(t, 2023, 5, 5), 0},
		{"Day before anniversary", mustDate(t, 2020, 2, 29), mustDate(t, 2021, 2, 28), 11},
		{"Anniversary", mustDate(t, 2020, 2, 29), mustDate(t, 2024, 2, 29), 48},
		{"Across years", mustDate(t, 2019, 11, 15), mustDate(t, 2021, 1, 15), 14},
		{"Reversed dates", mustDate(t, 2020, 3, 1), mustDate(t, 2020, 1, 31), 0},
		{"Reversed by years", mustDate(t, 2024, 6, 15), mustDate(t, 2021, 6, 15), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, engine.MonthsBetween(tt.start, tt.end))
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		months int
		want   engine.Category
	}{
		{0, engine.Infant}, {17, engine.Infant},
		{18, engine.Toddler}, {30, engine.Toddler},
		{31, engine.Preschool}, {43, engine.Preschool},
		{44, engine.JK}, {55, engine.JK},
		{56, engine.SK}, {71, engine.SK},
		{72, engine.AgedOut}, {500, engine.AgedOut},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, engine.Classify(tt.months), "months=%d", tt.months)
	}

	assert.Equal(t, "Aged Out (6+)", engine.AgedOut.String())
	assert.Equal(t, "JK", engine.JK.String())
	assert.Len(t, engine.Categories, 6)
}

func TestEligibilityFor(t *testing.T) {
	today := mustDate(t, 2025, 6, 15)

	tests := []struct {
		born       engine.ResolvedDate
		wantYear   int
		wantStatus engine.EligibilityStatus
		wantNote   string
	}{
		{mustDate(t, 2021, 12, 31), 2025, engine.EligibleThisYear, config.NoteEligibleThisYear},
		{mustDate(t, 2022, 1, 1), 2026, engine.EligibleNextYear, config.NoteEligibleNextYear},
		{mustDate(t, 2020, 9, 1), 2024, engine.EligibilityPassed, config.NoteEligiblePassed},
		{mustDate(t, 2023, 3, 3), 2027, engine.EligibleLater, ""},
	}

	for _, tt := range tests {
		e := engine.EligibilityFor(tt.born, today)
		assert.Equal(t, tt.wantYear, e.Year)
		assert.Equal(t, tt.wantStatus, e.Status)
		assert.Equal(t, tt.wantNote, e.Note())
		assert.Equal(t, time.Date(tt.wantYear, time.September, 1, 0, 0, 0, 0, time.UTC), e.Starts())
	}

	e := engine.EligibilityFor(mustDate(t, 2021, 12, 31), today)
	assert.Equal(t, "Eligible Sept 2025 "+config.NoteEligibleThisYear, e.String())
	assert.Equal(t, "Eligible Sept 2027", engine.EligibilityFor(mustDate(t, 2023, 3, 3), today).String())
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "1 year, 0 months", engine.FormatAge(1, 0))
	assert.Equal(t, "0 years, 1 month", engine.FormatAge(0, 1))
	assert.Equal(t, "5 years, 11 months", engine.FormatAge(5, 11))
	assert.Equal(t, "(1 Month total)", engine.FormatTotalMonths(1))
	assert.Equal(t, "(0 Months total)", engine.FormatTotalMonths(0))
	assert.Equal(t, "(67 Months total)", engine.SpanOf(67).Total())
	assert.Equal(t, "5 years, 7 months", engine.SpanOf(67).String())
}
