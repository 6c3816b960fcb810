package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tartampluch/go-agecategory/internal/config"
	"github.com/tartampluch/go-agecategory/internal/engine"
)

// annotationStdoutLogs marks long-running commands whose logs go to stdout.
// One-shot commands keep stdout for their output and log to stderr.
const annotationStdoutLogs = "stdout-logs"

// main is the application entry point.
// It delegates execution to runMain so that deferred closers (like the log
// file) run before the process terminates; os.Exit() skips defers.
func main() {
	os.Exit(runMain())
}

// runMain manages the application lifecycle, argument parsing, and exit codes.
func runMain() int {
	// Create a root context that cancels on SIGINT (Ctrl+C) or SIGTERM.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cli := &cli{clock: engine.RealClock{}}
	defer cli.close()

	if err := cli.newRootCmd().ExecuteContext(ctx); err != nil {
		slog.Debug(config.ErrAppFailed,
			config.LogKeyComponent, config.CompMain,
			config.LogKeyError, err,
		)
		return config.ExitCodeError
	}

	slog.Debug(config.MsgAppStop, config.LogKeyComponent, config.CompMain)
	return config.ExitCodeSuccess
}

// cli holds the state shared by every command.
type cli struct {
	debug     bool
	asOf      string
	clock     engine.Clock
	logCloser io.Closer
}

func (c *cli) close() {
	if c.logCloser != nil {
		_ = c.logCloser.Close() // Best effort close
	}
}

func (c *cli) calculator() *engine.Calculator {
	return engine.NewCalculator(c.clock)
}

// newRootCmd builds the command tree. Without a subcommand it opens the
// desktop calculator.
func (c *cli) newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           config.BinaryName,
		Short:         config.CmdShortRoot,
		Long:          config.CmdLongRoot,
		Version:       config.Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		Annotations:   map[string]string{annotationStdoutLogs: ""},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGUI(cmd.Context())
		},
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			out := cmd.ErrOrStderr()
			if _, ok := cmd.Annotations[annotationStdoutLogs]; ok {
				out = cmd.OutOrStdout()
			}
			c.logCloser = setupLogging(out, c.debug)
			logStartupInfo(cmd.Name())
		},
	}
	root.SetVersionTemplate(fmt.Sprintf(config.MsgVersionOutput,
		config.AppName,
		config.Version,
		runtime.GOOS,
		runtime.GOARCH,
	))
	root.Flags().Bool(config.FlagVersion, false, config.FlagDescVersion)
	root.PersistentFlags().BoolVar(&c.debug, config.FlagDebug, false, config.FlagDescDebug)

	root.AddCommand(
		c.newAgeCmd(),
		c.newBetweenCmd(),
		c.newMonthsCmd(),
		c.newRosterCmd(),
		c.newServeCmd(),
	)
	return root
}

// logStartupInfo logs environment details useful for debugging.
func logStartupInfo(command string) {
	slog.Info(config.MsgAppStarting,
		config.LogKeyComponent, config.CompMain,
		slog.Group(config.LogKeyBuild,
			slog.String(config.LogKeyApp, config.AppName),
			slog.String(config.LogKeyVersion, config.Version),
			slog.String(config.LogKeyGoVer, runtime.Version()),
		),
		slog.Group(config.LogKeyEnv,
			slog.String(config.LogKeyOS, runtime.GOOS),
			slog.String(config.LogKeyArch, runtime.GOARCH),
			slog.Int(config.LogKeyPID, os.Getpid()),
		),
		config.LogKeyMode, command,
	)
}

// setupLogging configures the default slog logger to write JSON to out and
// to the log file in the user's cache directory.
func setupLogging(out io.Writer, debugMode bool) io.Closer {
	writers := []io.Writer{out}
	var logFile *os.File

	if logPath, err := getLogFilePath(); err == nil {
		// O_TRUNC resets logs on restart to prevent indefinite growth.
		f, err := os.OpenFile(logPath, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, config.FilePermUserRW)
		if err == nil {
			writers = append(writers, f)
			logFile = f
		} else {
			fmt.Fprintf(os.Stderr, config.MsgLogWarning, config.ErrLogFile, logPath, err)
		}
	}

	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: debugMode,
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(io.MultiWriter(writers...), opts)))

	if logFile == nil {
		return nil
	}
	return logFile
}

// getLogFilePath determines the platform-specific cache directory for logs.
func getLogFilePath() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCacheDir, err)
	}

	appDir := filepath.Join(cacheDir, config.AppID)
	if err := os.MkdirAll(appDir, config.DirPermUserRWX); err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCreateDir, err)
	}

	return filepath.Join(appDir, config.LogFileName), nil
}
