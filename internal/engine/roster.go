package engine

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/emersion/go-vcard"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/tartampluch/go-agecategory/internal/config"
)

// ErrNoSource is returned by Roster.Load when no roster source is configured.
var ErrNoSource = errors.New(config.ErrNoSource)

// SourceConfig describes where the roster is read from.
type SourceConfig struct {
	Mode      string // config.SourceModeNone, SourceModeLocal or SourceModeWeb
	LocalPath string // .vcf, .vcard, .yaml or .yml file
	WebURL    string // CardDAV or WebDAV address book URL
	WebUser   string // HTTP Basic Auth Username
	WebPass   string // HTTP Basic Auth Password
}

type rosterFormat int

const (
	formatVCard rosterFormat = iota
	formatYAML
)

// rosterRecord is a name and raw birth date as found in the source.
type rosterRecord struct {
	Name string
	Born string
}

// Roster loads children from a vCard or YAML source and computes their ages.
type Roster struct {
	Calculator *Calculator
	Fetcher    RosterFetcher // Interface for network abstraction.
}

// Load reads the configured source and returns the eligibility calendar
// and the children sorted oldest first. Records without a usable birth
// date are skipped and logged.
func (r *Roster) Load(ctx context.Context, cfg SourceConfig) ([]byte, []ChildEntry, error) {
	if cfg.Mode == config.SourceModeNone {
		return nil, nil, ErrNoSource
	}

	start := time.Now()
	log := slog.With(
		config.LogKeyComponent, config.CompRoster,
		config.LogKeyMode, cfg.Mode,
	)
	log.InfoContext(ctx, config.MsgSyncStarted)

	reader, format, err := r.acquireStream(ctx, cfg)
	if err != nil {
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}
		return nil, nil, fmt.Errorf("%s: %w", config.ErrRosterParse, err)
	}
	defer func() { _ = reader.Close() }()

	var records []rosterRecord
	switch format {
	case formatYAML:
		records, err = decodeYAML(reader)
	default:
		records, err = decodeVCards(ctx, reader)
	}
	if err != nil {
		return nil, nil, err
	}

	children := r.buildEntries(records)
	log.Info(config.MsgRosterLoaded,
		slog.Group(config.LogKeyStats,
			slog.Int(config.LogKeyTotal, len(records)),
			slog.Int(config.LogKeyFound, len(children)),
		),
	)

	ics, _, err := BuildCalendar(children, r.clock().Now())
	if err != nil {
		return nil, nil, err
	}

	log.Debug("Roster load finished", config.LogKeyDuration, time.Since(start).Milliseconds())
	return ics, children, nil
}

func (r *Roster) calculator() *Calculator {
	if r.Calculator == nil {
		return NewCalculator(RealClock{})
	}
	return r.Calculator
}

func (r *Roster) clock() Clock {
	if c := r.calculator().Clock; c != nil {
		return c
	}
	return RealClock{}
}

// acquireStream opens the appropriate data source based on configuration.
func (r *Roster) acquireStream(ctx context.Context, cfg SourceConfig) (io.ReadCloser, rosterFormat, error) {
	switch cfg.Mode {
	case config.SourceModeLocal:
		if cfg.LocalPath == "" {
			return nil, formatVCard, errors.New(config.ErrLocalPathEmpty)
		}
		f, err := os.Open(cfg.LocalPath)
		if err != nil {
			return nil, formatVCard, err
		}
		return f, formatForPath(cfg.LocalPath), nil
	case config.SourceModeWeb:
		if cfg.WebURL == "" {
			return nil, formatVCard, errors.New(config.ErrWebURLEmpty)
		}
		if r.Fetcher == nil {
			return nil, formatVCard, errors.New(config.ErrFetcherMissing)
		}
		rc, err := r.Fetcher.Fetch(ctx, cfg.WebURL, cfg.WebUser, cfg.WebPass)
		return rc, formatVCard, err
	default:
		return nil, formatVCard, fmt.Errorf("%s: %q", config.ErrModeUnsupport, cfg.Mode)
	}
}

func formatForPath(path string) rosterFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case config.ExtYAML, config.ExtYML:
		return formatYAML
	default:
		return formatVCard
	}
}

// decodeVCards reads every card, keeping those with a BDAY.
func decodeVCards(ctx context.Context, r io.Reader) ([]rosterRecord, error) {
	decoder := vcard.NewDecoder(r)
	var records []rosterRecord

	for {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		card, err := decoder.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// Keep going: one bad card must not hide the rest of the roster.
			slog.Warn(config.MsgSkippedCard,
				config.LogKeyComponent, config.CompRoster,
				config.LogKeyError, err)
			continue
		}

		bday := card.Get(config.VCardBDAY)
		if bday == nil || bday.Value == "" {
			continue
		}

		// Name Strategy: FN (Formatted) > N (Structured) > Fallback
		name := config.FallbackName
		if fn := card.Get(config.VCardFN); fn != nil && fn.Value != "" {
			name = fn.Value
		} else if n := card.Get(config.VCardN); n != nil && n.Value != "" {
			name = n.Value
		}
		records = append(records, rosterRecord{Name: name, Born: bday.Value})
	}
	return records, nil
}

type yamlRoster struct {
	Children []yamlChild `yaml:"children"`
}

type yamlChild struct {
	Name string    `yaml:"name"`
	Born rawScalar `yaml:"born"`
}

// rawScalar keeps the literal text of a scalar so that unquoted dates are
// not reinterpreted as timestamps.
type rawScalar string

func (s *rawScalar) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("%s: line %d: expected a date", config.ErrYAMLParse, node.Line)
	}
	*s = rawScalar(node.Value)
	return nil
}

func decodeYAML(r io.Reader) ([]rosterRecord, error) {
	var doc yamlRoster
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", config.ErrYAMLParse, err)
	}

	records := make([]rosterRecord, 0, len(doc.Children))
	for _, c := range doc.Children {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			name = config.FallbackName
		}
		records = append(records, rosterRecord{Name: name, Born: string(c.Born)})
	}
	return records, nil
}

func (r *Roster) buildEntries(records []rosterRecord) []ChildEntry {
	calc := r.calculator()
	children := make([]ChildEntry, 0, len(records))

	for _, rec := range records {
		born, yearKnown, err := parseBirthDate(rec.Born)
		if err != nil {
			slog.Debug(config.MsgSkippedDate,
				config.LogKeyComponent, config.CompRoster,
				config.LogKeyValue, rec.Born)
			continue
		}
		if !yearKnown {
			slog.Debug(config.MsgSkippedNoYear,
				config.LogKeyComponent, config.CompRoster,
				config.LogKeyName, rec.Name)
			continue
		}

		age, err := calc.AgeOf(born)
		if err != nil {
			slog.Debug(config.MsgSkippedFuture,
				config.LogKeyComponent, config.CompRoster,
				config.LogKeyName, rec.Name,
				config.LogKeyDOB, born.String())
			continue
		}

		children = append(children, ChildEntry{
			UID:  childUID(rec.Name, born),
			Name: rec.Name,
			Age:  age,
		})
	}

	slices.SortStableFunc(children, func(a, b ChildEntry) int {
		if c := a.Born().Time().Compare(b.Born().Time()); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return children
}

// childUID derives a stable identifier from name and birth date.
func childUID(name string, born ResolvedDate) string {
	input := fmt.Sprintf(config.FormatHashInput, name, born.String(), config.UIDSalt)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(input)).String()
}

// parseBirthDate handles the vCard and YAML date layouts. Dates without a
// year ("--MM-DD") are recognised but reported with yearKnown false.
func parseBirthDate(value string) (ResolvedDate, bool, error) {
	value = strings.TrimSpace(value)

	formatsWithYear := []string{
		config.DateFormatFullDash,
		config.DateFormatFullBasic,
		config.DateFormatRFC3339,
		config.DateFormatFullT,
	}
	for _, f := range formatsWithYear {
		if t, err := time.Parse(f, value); err == nil {
			d, err := NewResolvedDate(t.Year(), int(t.Month()), t.Day())
			return d, err == nil, err
		}
	}

	formatsWithoutYear := []string{config.DateFormatNoYearD, config.DateFormatNoYearB}
	for _, f := range formatsWithoutYear {
		if _, err := time.Parse(f, value); err == nil {
			return ResolvedDate{}, false, nil
		}
	}

	return ResolvedDate{}, false, errors.New(config.ErrDateParse)
}
