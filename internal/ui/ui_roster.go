package ui

import (
	"cmp"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/tartampluch/go-agecategory/internal/config"
	"github.com/tartampluch/go-agecategory/internal/engine"
)

// rosterView is the sortable table shown in the roster window.
type rosterView struct {
	rows    []engine.ChildEntry
	sortCol int
	sortAsc bool
	table   *widget.Table
}

// sortChildren orders rows in place by the given column. Ties fall back to
// the name so the order is stable across reloads.
func sortChildren(rows []engine.ChildEntry, col int, asc bool) {
	slices.SortStableFunc(rows, func(a, b engine.ChildEntry) int {
		var c int
		switch col {
		case config.ColIDName:
			c = strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		case config.ColIDAge:
			c = cmp.Compare(a.Age.TotalMonths, b.Age.TotalMonths)
		case config.ColIDCategory:
			c = cmp.Compare(a.Age.Category, b.Age.Category)
		case config.ColIDJK:
			c = cmp.Compare(a.Age.Eligibility.Year, b.Age.Eligibility.Year)
		default: // config.ColIDBorn
			c = a.Born().Time().Compare(b.Born().Time())
		}
		if c == 0 {
			c = strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		}
		if !asc {
			return -c
		}
		return c
	})

	slog.Debug(config.LogMsgSorted,
		config.LogKeyComponent, config.CompUI,
		config.LogKeySortCol, col,
		config.LogKeySortAsc, asc)
}

// snapshotChildren copies the loaded roster so the table never races a reload.
func (app *AgeCategoryApp) snapshotChildren() []engine.ChildEntry {
	app.RosterMut.RLock()
	defer app.RosterMut.RUnlock()
	return slices.Clone(app.Children)
}

// refreshRosterView reloads the open roster window, if any. Must run on the UI thread.
func (app *AgeCategoryApp) refreshRosterView() {
	v := app.rosterView
	if v == nil {
		return
	}
	v.rows = app.snapshotChildren()
	sortChildren(v.rows, v.sortCol, v.sortAsc)
	v.table.Refresh()
}

// cellText renders one roster cell.
func (app *AgeCategoryApp) cellText(c engine.ChildEntry, col int) string {
	switch col {
	case config.ColIDName:
		return c.Name
	case config.ColIDBorn:
		return c.Born().Time().Format(config.DateFormatDisplay)
	case config.ColIDAge:
		return app.spanText(c.Age.Span)
	case config.ColIDCategory:
		return app.categoryText(c.Age.Category)
	case config.ColIDJK:
		return strconv.Itoa(c.Age.Eligibility.Year)
	}
	return ""
}

var columnKeys = map[int]string{
	config.ColIDName:     config.TKeyColName,
	config.ColIDBorn:     config.TKeyColBorn,
	config.ColIDAge:      config.TKeyColAge,
	config.ColIDCategory: config.TKeyColCategory,
	config.ColIDJK:       config.TKeyColJK,
}

// ShowRosterWindow displays the loaded children with their age, category
// and JK year. Clicking a header sorts by that column; clicking it again
// reverses the order.
func (app *AgeCategoryApp) ShowRosterWindow() {
	if app.rosterWindow != nil {
		app.rosterWindow.RequestFocus()
		return
	}

	w := app.App.NewWindow(app.GetMsg(config.TKeyWinRoster))
	w.Resize(fyne.NewSize(config.RosterWinWidth, config.RosterWinHeight))
	app.rosterWindow = w

	v := &rosterView{
		rows:    app.snapshotChildren(),
		sortCol: config.ColIDBorn,
		sortAsc: true,
	}
	app.rosterView = v

	slog.Info(config.LogMsgOpenWin,
		config.LogKeyComponent, config.CompUI,
		config.LogKeyCount, len(v.rows))

	sortChildren(v.rows, v.sortCol, v.sortAsc)

	v.table = widget.NewTable(
		func() (int, int) {
			return len(v.rows), config.ColCount
		},
		func() fyne.CanvasObject {
			return widget.NewLabel(config.TablePlaceholder)
		},
		func(id widget.TableCellID, o fyne.CanvasObject) {
			label := o.(*widget.Label)
			if id.Row >= len(v.rows) {
				return
			}
			label.SetText(app.cellText(v.rows[id.Row], id.Col))
		},
	)

	v.table.ShowHeaderRow = true
	v.table.CreateHeader = func() fyne.CanvasObject {
		return widget.NewButton(config.TablePlaceholder, func() {})
	}
	v.table.UpdateHeader = func(id widget.TableCellID, o fyne.CanvasObject) {
		btn := o.(*widget.Button)

		text := app.GetMsg(columnKeys[id.Col])
		if id.Col == v.sortCol {
			if v.sortAsc {
				text += config.SortIconAsc
			} else {
				text += config.SortIconDesc
			}
		}
		btn.SetText(text)

		btn.OnTapped = func() {
			if v.sortCol == id.Col {
				v.sortAsc = !v.sortAsc
			} else {
				v.sortCol = id.Col
				v.sortAsc = true
			}
			sortChildren(v.rows, v.sortCol, v.sortAsc)
			v.table.Refresh()
		}
	}

	v.table.SetColumnWidth(config.ColIDName, config.ColWidthName)
	v.table.SetColumnWidth(config.ColIDBorn, config.ColWidthBorn)
	v.table.SetColumnWidth(config.ColIDAge, config.ColWidthAge)
	v.table.SetColumnWidth(config.ColIDCategory, config.ColWidthCategory)
	v.table.SetColumnWidth(config.ColIDJK, config.ColWidthJK)

	w.SetContent(container.NewBorder(nil, nil, nil, nil, v.table))
	w.SetOnClosed(func() {
		app.rosterWindow = nil
		app.rosterView = nil
	})
	w.Show()
}
