package ui

import (
	"errors"
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/tartampluch/go-agecategory/internal/config"
	"github.com/tartampluch/go-agecategory/internal/engine"
)

// ShowCalculator opens the age / time-between window, or raises it when hidden.
func (app *AgeCategoryApp) ShowCalculator() {
	if app.Window != nil {
		app.Window.Show()
		app.Window.RequestFocus()
		return
	}

	slog.Info("Opening calculator window", config.LogKeyComponent, config.CompUI)
	w := app.App.NewWindow(app.GetMsg(config.TKeyWinTitle))
	app.Window = w

	app.ageTab = app.newAgeTab()
	app.betweenTab = app.newBetweenTab()

	tabs := container.NewAppTabs(
		container.NewTabItem(app.GetMsg(config.TKeyTabAge), app.ageTab.content()),
		container.NewTabItem(app.GetMsg(config.TKeyTabBetween), app.betweenTab.content()),
	)

	w.SetContent(container.NewPadded(tabs))
	w.Resize(fyne.NewSize(config.MainWindowWidth, config.MainWindowHeight))

	// With a tray the app keeps serving the calendar after the window closes.
	if app.Tray != nil {
		w.SetCloseIntercept(w.Hide)
	} else {
		w.SetMaster()
	}
	w.Show()
}

// -----------------------------------------------------------------------------
// Age tab
// -----------------------------------------------------------------------------

type ageTab struct {
	app      *AgeCategoryApp
	form     *dateForm
	debounce *engine.Debouncer

	age         *widget.Label
	category    *widget.Label
	eligibility *widget.Label
}

func (app *AgeCategoryApp) newAgeTab() *ageTab {
	t := &ageTab{
		app:         app,
		debounce:    engine.NewDebouncer(config.DebounceDelay),
		age:         widget.NewLabel(config.ResultPlaceholder),
		category:    widget.NewLabel(config.ResultPlaceholder),
		eligibility: widget.NewLabel(config.ResultPlaceholder),
	}
	t.age.Wrapping = fyne.TextWrapWord
	t.eligibility.Wrapping = fyne.TextWrapWord
	t.form = app.newDateForm(t.schedule, t.commit)
	return t
}

func (t *ageTab) content() fyne.CanvasObject {
	results := widget.NewForm(
		widget.NewFormItem(t.app.GetMsg(config.TKeyLblAge), t.age),
		widget.NewFormItem(t.app.GetMsg(config.TKeyLblCategory), t.category),
		widget.NewFormItem(t.app.GetMsg(config.TKeyLblEligibility), t.eligibility),
	)
	btnClear := widget.NewButtonWithIcon(t.app.GetMsg(config.TKeyBtnClear), theme.ContentClearIcon(), func() {
		t.form.Clear()
		t.commit()
	})
	return container.NewVBox(t.form.Widget(), widget.NewSeparator(), results, btnClear)
}

func (t *ageTab) schedule() {
	t.debounce.Trigger(func() { fyne.Do(t.recalc) })
}

func (t *ageTab) commit() {
	t.debounce.Flush(t.recalc)
}

// recalc keeps the previous result while the day is half typed and
// clears it for any other failure.
func (t *ageTab) recalc() {
	res, err := t.app.Calculator.Age(t.form.Input())
	switch {
	case err == nil:
		t.age.SetText(t.app.ageText(res.Span))
		t.category.SetText(t.app.categoryText(res.Category))
		t.eligibility.SetText(t.app.eligibilityText(res.Eligibility))
	case errors.Is(err, engine.ErrPartialDay):
	default:
		t.reset()
	}
}

func (t *ageTab) reset() {
	t.age.SetText(config.ResultPlaceholder)
	t.category.SetText(config.ResultPlaceholder)
	t.eligibility.SetText(config.ResultPlaceholder)
}

// -----------------------------------------------------------------------------
// Time-between tab
// -----------------------------------------------------------------------------

type betweenTab struct {
	app      *AgeCategoryApp
	start    *dateForm
	end      *dateForm
	debounce *engine.Debouncer

	duration *widget.Label
}

func (app *AgeCategoryApp) newBetweenTab() *betweenTab {
	t := &betweenTab{
		app:      app,
		debounce: engine.NewDebouncer(config.DebounceDelay),
		duration: widget.NewLabel(config.ResultPlaceholder),
	}
	t.duration.Wrapping = fyne.TextWrapWord
	t.start = app.newDateForm(t.schedule, t.commit)
	t.end = app.newDateForm(t.schedule, t.commit)
	return t
}

func (t *betweenTab) content() fyne.CanvasObject {
	forms := container.NewGridWithColumns(config.LayoutColumnsDouble,
		widget.NewCard(t.app.GetMsg(config.TKeyLblStart), "", t.start.Widget()),
		widget.NewCard(t.app.GetMsg(config.TKeyLblEnd), "", t.end.Widget()),
	)
	results := widget.NewForm(widget.NewFormItem(t.app.GetMsg(config.TKeyLblDuration), t.duration))
	btnClear := widget.NewButtonWithIcon(t.app.GetMsg(config.TKeyBtnClear), theme.ContentClearIcon(), func() {
		t.start.Clear()
		t.end.Clear()
		t.commit()
	})
	return container.NewVBox(forms, widget.NewSeparator(), results, btnClear)
}

func (t *betweenTab) schedule() {
	t.debounce.Trigger(func() { fyne.Do(t.recalc) })
}

func (t *betweenTab) commit() {
	t.debounce.Flush(t.recalc)
}

func (t *betweenTab) recalc() {
	res, err := t.app.Calculator.Between(t.start.Input(), t.end.Input())
	switch {
	case err == nil:
		t.duration.SetText(t.app.ageText(res.Span))
	case errors.Is(err, engine.ErrEndBeforeStart):
		t.duration.SetText(t.app.GetMsg(config.TKeyEndBeforeStart))
	case errors.Is(err, engine.ErrPartialDay):
	default:
		t.duration.SetText(config.ResultPlaceholder)
	}
}

// -----------------------------------------------------------------------------
// Localized renderers
// -----------------------------------------------------------------------------

// spanText renders "Y years, M months".
func (app *AgeCategoryApp) spanText(s engine.Span) string {
	years := app.GetPlural(config.TKeyAgeYears, s.Years, "")
	months := app.GetPlural(config.TKeyAgeMonths, s.Months, "")
	if years == "" || months == "" {
		return s.String()
	}
	return years + config.AgeSeparator + months
}

// totalText renders "(N Months total)".
func (app *AgeCategoryApp) totalText(s engine.Span) string {
	return app.GetPlural(config.TKeyTotalMonths, s.TotalMonths, s.Total())
}

// ageText is the two-line result shown in both tabs.
func (app *AgeCategoryApp) ageText(s engine.Span) string {
	return app.spanText(s) + "\n" + app.totalText(s)
}

var categoryKeys = map[engine.Category]string{
	engine.Infant:    config.TKeyCatInfant,
	engine.Toddler:   config.TKeyCatToddler,
	engine.Preschool: config.TKeyCatPreschool,
	engine.JK:        config.TKeyCatJK,
	engine.SK:        config.TKeyCatSK,
	engine.AgedOut:   config.TKeyCatAgedOut,
}

func (app *AgeCategoryApp) categoryText(c engine.Category) string {
	key, ok := categoryKeys[c]
	if !ok {
		return c.String()
	}
	if msg := app.GetMsg(key); msg != key {
		return msg
	}
	return c.String()
}

var eligibilityNoteKeys = map[engine.EligibilityStatus]string{
	engine.EligibleThisYear:  config.TKeyEligThisYear,
	engine.EligibleNextYear:  config.TKeyEligNextYear,
	engine.EligibilityPassed: config.TKeyEligPassed,
}

// eligibilityText renders "Eligible Sept YYYY" plus a note for the
// current, next and past years.
func (app *AgeCategoryApp) eligibilityText(e engine.Eligibility) string {
	text := app.GetMsgData(config.TKeyEligible, map[string]any{"Year": e.Year}, "")
	if text == "" {
		return e.String()
	}
	key, ok := eligibilityNoteKeys[e.Status]
	if !ok {
		return text
	}
	note := app.GetMsg(key)
	if note == key {
		note = e.Note()
	}
	return text + " " + note
}
