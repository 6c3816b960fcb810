package ui

import (
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"

	"github.com/tartampluch/go-agecategory/internal/config"
	"github.com/tartampluch/go-agecategory/internal/engine"
)

// maxDaysHint is shown while the month length is not yet known.
const maxDaysHint = 31

// dateForm is one year/month/day trio. Typing calls onEdit; confirming a
// field (Enter, focus change on year and month, drop-down pick) normalizes it
// and calls onCommit.
type dateForm struct {
	app *AgeCategoryApp

	year  *NumericalEntry
	month *MonthEntry
	day   *NumericalEntry

	onEdit   func()
	onCommit func()
}

func (app *AgeCategoryApp) newDateForm(onEdit, onCommit func()) *dateForm {
	f := &dateForm{
		app:      app,
		year:     NewNumericalEntry(config.YearMaxDigits),
		month:    NewMonthEntry(),
		day:      NewNumericalEntry(config.DayMaxDigits),
		onEdit:   onEdit,
		onCommit: onCommit,
	}

	f.year.SetPlaceHolder(app.GetMsg(config.TKeyHintYear))
	f.month.SetPlaceHolder(app.GetMsg(config.TKeyHintMonth))
	f.refreshDayHint()

	f.year.OnChanged = func(string) { f.edited() }
	f.year.OnSubmitted = func(string) {
		f.ConfirmYear()
		f.focus(f.month)
	}
	f.year.OnFocusLost = f.ConfirmYear

	f.month.OnEdited = func(text string) {
		// A drop-down pick sets the canonical text, which counts as a confirmation.
		if engine.IsCanonicalMonth(text) {
			f.ConfirmMonth()
			return
		}
		f.edited()
	}
	f.month.OnSubmitted = func(string) {
		f.ConfirmMonth()
		f.focus(f.day)
	}
	f.month.OnFocusLost = f.ConfirmMonth

	f.day.OnChanged = func(string) { f.edited() }
	// The day confirms on Enter only: leaving a one-digit day must not pad
	// it into a date the user never typed.
	f.day.OnSubmitted = func(string) { f.ConfirmDay() }

	return f
}

// Input returns the raw trio as currently displayed.
func (f *dateForm) Input() engine.DateInput {
	return engine.DateInput{Year: f.year.Text, Month: f.month.Text, Day: f.day.Text}
}

// ConfirmYear normalizes the year field, expanding two-digit years.
func (f *dateForm) ConfirmYear() {
	f.apply(config.ParamYear, f.year, f.year.Text, f.app.Calculator.ConfirmYear(f.year.Text))
}

// ConfirmMonth normalizes the month field to its canonical form.
func (f *dateForm) ConfirmMonth() {
	f.apply(config.ParamMonth, f.month, f.month.Text, f.app.Calculator.ConfirmMonth(f.month.Text))
}

// ConfirmDay zero-pads the day, clearing it when the month has no such day.
func (f *dateForm) ConfirmDay() {
	f.apply(config.ParamDay, f.day, f.day.Text, f.app.Calculator.ConfirmDay(f.Input()))
}

// Clear empties the three fields.
func (f *dateForm) Clear() {
	f.year.SetText("")
	f.month.SetText("")
	f.day.SetText("")
	f.refreshDayHint()
}

func (f *dateForm) apply(field string, entry interface{ SetText(string) }, current string, res engine.FieldResult) {
	if res.Changed(current) {
		entry.SetText(res.Display)
	}

	msg := config.MsgFieldConfirmed
	if res.State == engine.FieldCleared {
		msg = config.MsgFieldCleared
	}
	slog.Debug(msg,
		config.LogKeyComponent, config.CompUI,
		config.LogKeyField, field,
		config.LogKeyState, res.State,
	)

	f.refreshDayHint()
	if f.onCommit != nil {
		f.onCommit()
	}
}

func (f *dateForm) edited() {
	if f.onEdit != nil {
		f.onEdit()
	}
}

// refreshDayHint shows the valid day range once year and month resolve.
func (f *dateForm) refreshDayHint() {
	last := maxDaysHint
	if days := f.app.Calculator.DayOptions(f.Input()); len(days) > 0 {
		last = len(days)
	}
	f.day.SetPlaceHolder(f.app.GetMsgData(config.TKeyHintDay, map[string]any{"Max": last}, config.ResultPlaceholder))
}

func (f *dateForm) focus(next fyne.Focusable) {
	if f.app.Window == nil {
		return
	}
	f.app.Window.Canvas().Focus(next)
}

// Widget lays out the trio as a labelled form.
func (f *dateForm) Widget() *widget.Form {
	return widget.NewForm(
		widget.NewFormItem(f.app.GetMsg(config.TKeyLblYear), f.year),
		widget.NewFormItem(f.app.GetMsg(config.TKeyLblMonth), f.month),
		widget.NewFormItem(f.app.GetMsg(config.TKeyLblDay), f.day),
	)
}
