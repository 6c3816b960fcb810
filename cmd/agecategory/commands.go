package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/zalando/go-keyring"
	"golang.org/x/sync/errgroup"

	"github.com/tartampluch/go-agecategory/internal/config"
	"github.com/tartampluch/go-agecategory/internal/engine"
	"github.com/tartampluch/go-agecategory/internal/server"
)

// sourceFlags selects a roster from the command line.
type sourceFlags struct {
	file string
	url  string
	user string
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.file, config.FlagFile, "", config.FlagDescFile)
	cmd.Flags().StringVar(&f.url, config.FlagURL, "", config.FlagDescURL)
	cmd.Flags().StringVar(&f.user, config.FlagUser, "", config.FlagDescUser)
	cmd.MarkFlagsMutuallyExclusive(config.FlagFile, config.FlagURL)
}

// source resolves the flags into a roster source, reading the password
// from the system keyring.
func (f *sourceFlags) source() engine.SourceConfig {
	switch {
	case f.file != "":
		return engine.SourceConfig{Mode: config.SourceModeLocal, LocalPath: f.file}
	case f.url != "":
		cfg := engine.SourceConfig{Mode: config.SourceModeWeb, WebURL: f.url, WebUser: f.user}
		if f.user != "" {
			if p, err := keyring.Get(config.KeyringService, f.user); err == nil {
				cfg.WebPass = p
			} else {
				slog.Debug(config.MsgPassFail,
					config.LogKeyUser, f.user,
					config.LogKeyError, err,
					config.LogKeyComponent, config.CompCLI)
			}
		}
		return cfg
	default:
		return engine.SourceConfig{Mode: config.SourceModeNone}
	}
}

// registerAsOf adds --as-of to a command that derives ages. A set date
// replaces the clock before the command runs.
func (c *cli) registerAsOf(cmd *cobra.Command) {
	cmd.Flags().StringVar(&c.asOf, config.FlagAsOf, "", config.FlagDescAsOf)
	cmd.PreRunE = func(*cobra.Command, []string) error {
		if c.asOf == "" {
			return nil
		}
		t, err := time.ParseInLocation(config.DateFormatFullDash, c.asOf, time.UTC)
		if err != nil {
			return fmt.Errorf("%s: %w", config.ErrDateParse, err)
		}
		c.clock = engine.FixedClock(t)
		return nil
	}
}

// dateArgs requires exactly n positional date fields.
func dateArgs(n int) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) != n {
			return fmt.Errorf("%s: want %d, got %d", config.ErrArgCount, n, len(args))
		}
		return nil
	}
}

// -----------------------------------------------------------------------------
// age / between / months
// -----------------------------------------------------------------------------

func (c *cli) newAgeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   config.CmdUseAge,
		Short: config.CmdShortAge,
		Args:  dateArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.calculator().Age(engine.DateInput{Year: args[0], Month: args[1], Day: args[2]})
			if err != nil {
				return err
			}
			return printAge(cmd.OutOrStdout(), res)
		},
	}
	c.registerAsOf(cmd)
	return cmd
}

func printAge(out io.Writer, res engine.AgeResult) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Birth:\t%s\n", res.Birth)
	fmt.Fprintf(tw, "Today:\t%s\n", res.Today)
	fmt.Fprintf(tw, "Age:\t%s %s\n", res.Span, res.Total())
	fmt.Fprintf(tw, "Category:\t%s\n", res.Category)
	fmt.Fprintf(tw, "JK:\t%s\n", res.Eligibility)
	return tw.Flush()
}

func (c *cli) newBetweenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   config.CmdUseBetween,
		Short: config.CmdShortBetween,
		Args:  dateArgs(6),
		RunE: func(cmd *cobra.Command, args []string) error {
			start := engine.DateInput{Year: args[0], Month: args[1], Day: args[2]}
			end := engine.DateInput{Year: args[3], Month: args[4], Day: args[5]}
			res, err := c.calculator().Between(start, end)
			if errors.Is(err, engine.ErrEndBeforeStart) {
				return errors.New(config.MsgEndBeforeStart)
			}
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", res.Span, res.Total())
			return err
		},
	}
	c.registerAsOf(cmd)
	return cmd
}

func (c *cli) newMonthsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   config.CmdUseMonths,
		Short: config.CmdShortMonths,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			suggestions := engine.SuggestMonths(args[0])
			if len(suggestions) == 0 {
				return fmt.Errorf("%s: %q", config.ErrMonthUnresolved, args[0])
			}
			for _, s := range engine.CanonicalStrings(suggestions) {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), s); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

// -----------------------------------------------------------------------------
// roster
// -----------------------------------------------------------------------------

func (c *cli) newRosterCmd() *cobra.Command {
	var src sourceFlags
	var icsPath string

	cmd := &cobra.Command{
		Use:   config.CmdUseRoster,
		Short: config.CmdShortRoster,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			roster := &engine.Roster{Calculator: c.calculator(), Fetcher: engine.NewHTTPFetcher()}
			ics, children, err := roster.Load(cmd.Context(), src.source())
			if err != nil {
				return err
			}
			if err := printRoster(cmd.OutOrStdout(), children); err != nil {
				return err
			}
			if icsPath == "" {
				return nil
			}
			if err := os.WriteFile(icsPath, ics, config.FilePermUserRW); err != nil {
				return fmt.Errorf("%s: %w", config.ErrWriteICS, err)
			}
			return nil
		},
	}
	src.register(cmd)
	c.registerAsOf(cmd)
	cmd.Flags().StringVar(&icsPath, config.FlagICS, "", config.FlagDescICS)
	cmd.MarkFlagsOneRequired(config.FlagFile, config.FlagURL)
	return cmd
}

func printRoster(out io.Writer, children []engine.ChildEntry) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tBORN\tAGE\tCATEGORY\tJK")
	for _, ch := range children {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n",
			ch.Name, ch.Born(), ch.Age.Span, ch.Age.Category, ch.Age.Eligibility.Year)
	}
	return tw.Flush()
}

// -----------------------------------------------------------------------------
// serve
// -----------------------------------------------------------------------------

func (c *cli) newServeCmd() *cobra.Command {
	var src sourceFlags
	var port string
	var interval int

	cmd := &cobra.Command{
		Use:         config.CmdUseServe,
		Short:       config.CmdShortServe,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationStdoutLogs: ""},
		RunE: func(cmd *cobra.Command, _ []string) error {
			calc := c.calculator()
			srv := server.NewServer(port, calc)
			roster := &engine.Roster{Calculator: calc, Fetcher: engine.NewHTTPFetcher()}
			every := time.Duration(interval) * time.Minute

			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error {
				return srv.Start(ctx)
			})
			g.Go(func() error {
				refreshLoop(ctx, srv, roster, src.source(), every)
				return nil
			})
			return g.Wait()
		},
	}
	src.register(cmd)
	cmd.Flags().StringVar(&port, config.FlagPort, config.DefaultPort, config.FlagDescPort)
	cmd.Flags().IntVar(&interval, config.FlagInterval, config.DefaultRefreshMin, config.FlagDescInterval)
	return cmd
}

// refreshLoop loads the roster into srv now and then every period until ctx
// ends. A zero period loads once. Load failures keep the previous calendar.
func refreshLoop(ctx context.Context, srv *server.Server, roster *engine.Roster, src engine.SourceConfig, every time.Duration) {
	log := slog.With(config.LogKeyComponent, config.CompWorker)

	load := func() {
		ics, children, err := roster.Load(ctx, src)
		switch {
		case errors.Is(err, engine.ErrNoSource):
			log.Debug(config.MsgSyncSkipped)
			srv.Update([]byte(config.StubVCalendar), nil)
		case err != nil:
			log.Error(config.MsgSyncFailed, config.LogKeyError, err)
		default:
			srv.Update(ics, children)
		}
	}

	load()
	if every <= 0 {
		<-ctx.Done()
		return
	}

	ticker := time.NewTicker(every)
	defer ticker.Stop()
	log.Info(config.MsgWorkerStart, config.LogKeyInterval, every)

	for {
		select {
		case <-ctx.Done():
			log.Info(config.MsgWorkerStop)
			return
		case <-ticker.C:
			load()
		}
	}
}
