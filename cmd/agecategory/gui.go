package main

import (
	"context"
	"log/slog"

	"fyne.io/fyne/v2/app"

	"github.com/tartampluch/go-agecategory/internal/config"
	"github.com/tartampluch/go-agecategory/internal/engine"
	"github.com/tartampluch/go-agecategory/internal/server"
	"github.com/tartampluch/go-agecategory/internal/ui"
)

// runGUI initializes the Fyne application, wires dependencies, and starts the UI loop.
func runGUI(ctx context.Context) error {
	a := app.NewWithID(config.AppID)

	// Record the version for potential migration logic in future updates.
	a.Preferences().SetString(config.PrefLastRun, config.Version)

	port := a.Preferences().StringWithFallback(config.PrefServerPort, config.DefaultPort)
	srv := server.NewServer(port, engine.NewCalculator(engine.RealClock{}))

	gui := ui.NewAgeCategoryApp(a, ctx, srv, engine.NewHTTPFetcher())

	// Quit the UI when the context is cancelled by a signal.
	go func() {
		<-ctx.Done()
		slog.Info(config.MsgCtxCancel, config.LogKeyComponent, config.CompMain)
		a.Quit()
	}()

	// Blocks until the app quits.
	gui.Run()
	return nil
}
