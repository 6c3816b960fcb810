package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/zalando/go-keyring"

	"github.com/tartampluch/go-agecategory/internal/config"
	"github.com/tartampluch/go-agecategory/internal/engine"
	"github.com/tartampluch/go-agecategory/internal/server"
)

// AgeCategoryApp encapsulates the UI state, preferences, and background logic.
type AgeCategoryApp struct {
	App         fyne.App
	Window      fyne.Window // Calculator window, kept alive when hidden to the tray.
	Preferences fyne.Preferences
	I18nBundle  *i18n.Bundle
	Localizer   *i18n.Localizer
	Ctx         context.Context

	Server     *server.Server
	Fetcher    engine.RosterFetcher
	Calculator *engine.Calculator

	Tray desktop.App
	Menu *fyne.Menu

	TrayCalcItem     *fyne.MenuItem
	TrayRosterItem   *fyne.MenuItem
	TrayRefreshItem  *fyne.MenuItem
	TraySettingsItem *fyne.MenuItem

	SupportedLanguages []string
	configChan         chan string

	settingsWindow fyne.Window

	// Roster State
	RosterMut    sync.RWMutex
	Children     []engine.ChildEntry
	rosterWindow fyne.Window
	rosterView   *rosterView

	ageTab     *ageTab
	betweenTab *betweenTab
}

// NewAgeCategoryApp constructs the application and wires dependencies.
func NewAgeCategoryApp(a fyne.App, ctx context.Context, srv *server.Server, fetcher engine.RosterFetcher) *AgeCategoryApp {
	if a.Icon() == nil {
		a.SetIcon(theme.CalendarIcon())
	}

	calc := engine.NewCalculator(engine.RealClock{})
	if srv != nil && srv.Calculator != nil {
		calc = srv.Calculator
	}

	return &AgeCategoryApp{
		App:                a,
		Preferences:        a.Preferences(),
		Ctx:                ctx,
		Server:             srv,
		Fetcher:            fetcher,
		Calculator:         calc,
		SupportedLanguages: config.SupportedLanguages,
		configChan:         make(chan string, config.ChannelBufferSize),
		Children:           make([]engine.ChildEntry, 0),
	}
}

// Run launches the application services and the main UI loop.
func (app *AgeCategoryApp) Run() {
	app.SetupI18n()
	app.watchPreferences()

	go func() {
		slog.Info(config.MsgServerListen,
			config.LogKeyPort, app.Server.Port,
			config.LogKeyComponent, config.CompUI)

		if err := app.Server.Start(app.Ctx); err != nil {
			slog.Error(config.ErrServerStartup,
				config.LogKeyError, err,
				config.LogKeyComponent, config.CompUI)

			app.App.SendNotification(fyne.NewNotification(
				config.TitleStartupError,
				fmt.Sprintf(config.MsgPortBusy, app.Server.Port)))
		}
	}()

	if desk, ok := app.App.(desktop.App); ok {
		app.Tray = desk
		app.Tray.SetSystemTrayIcon(app.App.Icon())
		app.setupTrayMenu()
	} else {
		slog.Warn(config.ErrTrayNotSupported,
			config.LogKeyComponent, config.CompUI)
	}

	app.ShowCalculator()

	go app.backgroundWorker()
	app.App.Run()
}

// watchPreferences monitors changes to settings to trigger immediate updates.
func (app *AgeCategoryApp) watchPreferences() {
	app.Preferences.AddChangeListener(func() {
		select {
		case app.configChan <- config.PrefInterval:
		default:
		}
	})
}

// setupTrayMenu constructs the system tray menu.
func (app *AgeCategoryApp) setupTrayMenu() {
	app.TrayCalcItem = fyne.NewMenuItem(app.GetMsg(config.TKeyMenuCalculator), func() {
		app.ShowCalculator()
	})
	app.TrayRosterItem = fyne.NewMenuItem(app.GetMsg(config.TKeyMenuRoster), func() {
		app.ShowRosterWindow()
	})
	app.TrayRefreshItem = fyne.NewMenuItem(app.GetMsg(config.TKeyMenuRefresh), func() {
		go app.performSync(true)
	})
	app.TraySettingsItem = fyne.NewMenuItem(app.GetMsg(config.TKeyMenuSettings), func() {
		app.ShowSettingsWindow()
	})

	app.Menu = fyne.NewMenu(config.AppName,
		app.TrayCalcItem,
		app.TrayRosterItem,
		fyne.NewMenuItemSeparator(),
		app.TrayRefreshItem,
		app.TraySettingsItem,
	)

	if app.Tray != nil {
		app.Tray.SetSystemTrayMenu(app.Menu)
	}
}

// RefreshTrayMenu updates localized labels in the tray menu.
func (app *AgeCategoryApp) RefreshTrayMenu() {
	if app.Menu == nil {
		return
	}
	app.TrayCalcItem.Label = app.GetMsg(config.TKeyMenuCalculator)
	app.TrayRosterItem.Label = app.GetMsg(config.TKeyMenuRoster)
	app.TrayRefreshItem.Label = app.GetMsg(config.TKeyMenuRefresh)
	app.TraySettingsItem.Label = app.GetMsg(config.TKeyMenuSettings)
	app.Menu.Refresh()
}

// refreshInterval reads the configured period; zero disables periodic reloads.
func (app *AgeCategoryApp) refreshInterval() time.Duration {
	val := app.Preferences.IntWithFallback(config.PrefInterval, config.DefaultRefreshMin)
	if val < 0 {
		val = config.DefaultRefreshMin
	}
	return time.Duration(val) * time.Minute
}

// backgroundWorker manages the periodic roster reload schedule.
func (app *AgeCategoryApp) backgroundWorker() {
	log := slog.With(config.LogKeyComponent, config.CompWorker)

	app.performSync(false)

	currentDuration := app.refreshInterval()
	ticker := time.NewTicker(config.DefaultRefreshMin * time.Minute)
	defer ticker.Stop()
	resetTicker(ticker, currentDuration)

	log.Info(config.MsgWorkerStart, config.LogKeyInterval, currentDuration)

	for {
		select {
		case <-app.Ctx.Done():
			log.Info(config.MsgWorkerStop)
			return

		case <-app.configChan:
			newDuration := app.refreshInterval()
			if newDuration != currentDuration {
				log.Info(config.MsgUpdateSync, config.LogKeyOld, currentDuration, config.LogKeyNew, newDuration)
				currentDuration = newDuration
				resetTicker(ticker, currentDuration)
			}

		case <-ticker.C:
			app.performSync(false)
		}
	}
}

// resetTicker re-arms t for d, or stops it when d is zero.
func resetTicker(t *time.Ticker, d time.Duration) {
	if d <= 0 {
		t.Stop()
		return
	}
	t.Reset(d)
}

// performSync loads the roster, publishes the calendar and refreshes the roster window.
func (app *AgeCategoryApp) performSync(manual bool) {
	slog.Info(config.MsgSyncReq,
		config.LogKeyComponent, config.CompUI,
		config.LogKeyManual, manual)

	if manual {
		app.App.SendNotification(fyne.NewNotification(config.AppName, app.GetMsg(config.TKeyNotifStart)))
	}

	roster := &engine.Roster{
		Calculator: app.Calculator,
		Fetcher:    app.Fetcher,
	}

	icsData, children, err := roster.Load(app.Ctx, app.loadSourceConfig())
	switch {
	case errors.Is(err, engine.ErrNoSource):
		slog.Debug(config.MsgSyncSkipped, config.LogKeyComponent, config.CompUI)
		icsData = []byte(config.StubVCalendar)
		children = nil
	case err != nil:
		slog.Error(config.MsgSyncFailed, config.LogKeyError, err, config.LogKeyComponent, config.CompUI)
		if manual {
			app.App.SendNotification(fyne.NewNotification(config.TitleSyncError, app.GetMsg(config.TKeyNotifError)))
		}
		return
	}

	app.RosterMut.Lock()
	app.Children = children
	app.RosterMut.Unlock()

	if app.Server != nil {
		app.Server.Update(icsData, children)
	}
	fyne.Do(app.refreshRosterView)

	if manual {
		app.App.SendNotification(fyne.NewNotification(config.AppName,
			app.GetMsgData(config.TKeyNotifSuccess, map[string]any{"Count": len(children)}, config.MsgRosterLoaded)))
	}
}

// loadSourceConfig assembles the roster source from UI preferences and Keyring.
func (app *AgeCategoryApp) loadSourceConfig() engine.SourceConfig {
	cfg := engine.SourceConfig{
		Mode:      app.Preferences.String(config.PrefSourceMode),
		LocalPath: app.Preferences.String(config.PrefLocalPath),
		WebURL:    app.Preferences.String(config.PrefCardDAVURL),
		WebUser:   app.Preferences.String(config.PrefUsername),
	}

	if cfg.WebUser != "" {
		if p, err := keyring.Get(config.KeyringService, cfg.WebUser); err == nil {
			cfg.WebPass = p
		} else {
			slog.Debug(config.MsgPassFail,
				config.LogKeyUser, cfg.WebUser,
				config.LogKeyError, err,
				config.LogKeyComponent, config.CompUI)
		}
	}

	return cfg
}
