// Package server exposes the eligibility calendar and the date pipeline
// over HTTP on the loopback interface.
package server

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/tartampluch/go-agecategory/internal/config"
	"github.com/tartampluch/go-agecategory/internal/engine"
)

// rosterItem stores the rendered calendar, the roster JSON and the HTTP
// caching metadata of the calendar.
type rosterItem struct {
	ics          []byte
	roster       []byte
	etag         string
	lastModified string // RFC1123 format required by HTTP headers

	children []engine.ChildEntry
	asOf     engine.ResolvedDate // day the ages were derived on
}

// Server serves the calendar feed and the JSON API.
type Server struct {
	// cache is read on every request and written only when the roster
	// reloads, so readers never take a lock.
	cache atomic.Pointer[rosterItem]

	Port       string
	Calculator *engine.Calculator
}

// NewServer creates a server bound to 127.0.0.1:port.
func NewServer(port string, calc *engine.Calculator) *Server {
	return &Server{
		Port:       port,
		Calculator: calc,
	}
}

// Handler builds the router with all the routes and middleware.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		AllowedHeaders: []string{config.HeaderIfNoneMatch, config.HeaderIfModifiedSince},
		ExposedHeaders: []string{config.HeaderETag, config.HeaderLastModified},
		MaxAge:         config.CORSMaxAge,
	}).Handler)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get(config.RouteCalendar, s.handleCalendar)
	r.Head(config.RouteCalendar, s.handleCalendar)

	r.Get(config.RouteAPIAge, s.handleAge)
	r.Get(config.RouteAPIBetween, s.handleBetween)
	r.Get(config.RouteAPIMonths, s.handleMonths)
	r.Get(config.RouteAPIDays, s.handleDays)
	r.Get(config.RouteAPIRoster, s.handleRoster)
	return r
}

// Start runs the HTTP server and blocks until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	if s.Port == "" {
		return errors.New(config.ErrPortRequired)
	}
	port, err := strconv.Atoi(s.Port)
	if err != nil {
		return fmt.Errorf("%s: %q", config.ErrPortNumber, s.Port)
	}
	if port < config.MinPort || port > config.MaxPort {
		return fmt.Errorf("%s: %d", config.ErrPortRange, port)
	}

	srv := &http.Server{
		Addr:         config.LocalhostBindAddr + config.AddrSeparator + s.Port,
		Handler:      s.Handler(),
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	serverError := make(chan error, config.ChannelBufferSize)

	go func() {
		slog.Info(config.MsgServerListen,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyPort, s.Port,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverError <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info(config.MsgServerStop, config.LogKeyComponent, config.CompServer)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: %w", config.ErrServerShutdown, err)
		}
		return nil

	case err := <-serverError:
		return fmt.Errorf("%s: %w", config.ErrServerStartup, err)
	}
}

// Update atomically replaces the served calendar and roster.
func (s *Server) Update(ics []byte, children []engine.ChildEntry) {
	item := s.newItem(ics, children, s.calculator().Today())
	s.cache.Store(item)

	slog.Debug(config.MsgCacheUpdated,
		config.LogKeyComponent, config.CompServer,
		config.LogKeySizeBytes, len(ics),
		config.LogKeyCount, len(children),
		config.LogKeyETag, item.etag,
	)
}

func (s *Server) newItem(ics []byte, children []engine.ChildEntry, asOf engine.ResolvedDate) *rosterItem {
	hash := sha256.Sum256(ics)
	etag := fmt.Sprintf(config.FormatETag, hex.EncodeToString(hash[:]))

	rows := make([]childResponse, 0, len(children))
	for _, c := range children {
		rows = append(rows, newChildResponse(c))
	}
	roster, err := json.Marshal(rows)
	if err != nil {
		slog.Error(config.ErrWriteResp,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyError, err,
		)
		roster = []byte("[]")
	}

	return &rosterItem{
		ics:          ics,
		roster:       roster,
		etag:         etag,
		lastModified: time.Now().UTC().Format(http.TimeFormat),
		children:     children,
		asOf:         asOf,
	}
}

// current returns the cached roster. When the calculator's day has moved
// past the day the roster was derived on, ages, categories, eligibility and
// the calendar are derived again so a roster that is never reloaded does
// not go stale.
func (s *Server) current() *rosterItem {
	item := s.cache.Load()
	if item == nil {
		return nil
	}
	calc := s.calculator()
	today := calc.Today()
	if today.Equal(item.asOf) {
		return item
	}

	children := make([]engine.ChildEntry, 0, len(item.children))
	for _, c := range item.children {
		age, err := calc.AgeOf(c.Born())
		if err != nil {
			continue
		}
		c.Age = age
		children = append(children, c)
	}

	ics, _, err := engine.BuildCalendar(children, today.Time())
	if err != nil {
		slog.Error(config.MsgRenewFailed,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyError, err,
		)
		return item
	}

	next := s.newItem(ics, children, today)
	if !s.cache.CompareAndSwap(item, next) {
		// A concurrent reload or rollover won.
		return s.cache.Load()
	}
	slog.Info(config.MsgRosterRenewed,
		config.LogKeyComponent, config.CompServer,
		config.LogKeyCount, len(children),
	)
	return next
}

func (s *Server) calculator() *engine.Calculator {
	if s.Calculator == nil {
		return engine.NewCalculator(engine.RealClock{})
	}
	return s.Calculator
}

// handleCalendar serves the ICS content with HTTP caching support.
func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	item := s.current()
	if item == nil {
		w.Header().Set(config.HeaderRetryAfter, config.RetryAfterSeconds)
		http.Error(w, config.HTTPMsgInitializing, http.StatusServiceUnavailable)
		return
	}

	w.Header().Set(config.HeaderContentType, config.MimeTextCalendar)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	w.Header().Set(config.HeaderCacheControl, config.CacheControlPrivate)
	w.Header().Set(config.HeaderETag, item.etag)
	w.Header().Set(config.HeaderLastModified, item.lastModified)

	if match := r.Header.Get(config.HeaderIfNoneMatch); match == item.etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	if since := r.Header.Get(config.HeaderIfModifiedSince); since != "" {
		if clientTime, err := time.Parse(http.TimeFormat, since); err == nil {
			if serverTime, err := time.Parse(http.TimeFormat, item.lastModified); err == nil {
				if !serverTime.After(clientTime) {
					w.WriteHeader(http.StatusNotModified)
					return
				}
			}
		}
	}

	if r.Method == http.MethodGet {
		if _, err := io.Copy(w, bytes.NewReader(item.ics)); err != nil {
			slog.Error(config.ErrWriteResp,
				config.LogKeyComponent, config.CompServer,
				config.LogKeyError, err,
			)
		}
	}
}

func (s *Server) handleAge(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res, err := s.calculator().Age(engine.DateInput{
		Year:  q.Get(config.ParamYear),
		Month: q.Get(config.ParamMonth),
		Day:   q.Get(config.ParamDay),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newAgeResponse(res))
}

func (s *Server) handleBetween(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res, err := s.calculator().Between(
		engine.DateInput{
			Year:  q.Get(config.ParamStartYear),
			Month: q.Get(config.ParamStartMonth),
			Day:   q.Get(config.ParamStartDay),
		},
		engine.DateInput{
			Year:  q.Get(config.ParamEndYear),
			Month: q.Get(config.ParamEndMonth),
			Day:   q.Get(config.ParamEndDay),
		},
	)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, durationResponse{
		Start:       res.Start.String(),
		End:         res.End.String(),
		Years:       res.Years,
		Months:      res.Months,
		TotalMonths: res.TotalMonths,
		Duration:    res.Span.String(),
		Total:       res.Total(),
	})
}

func (s *Server) handleMonths(w http.ResponseWriter, r *http.Request) {
	text := r.URL.Query().Get(config.ParamQuery)

	resp := monthsResponse{
		Query:       text,
		Suggestions: []monthResponse{},
	}
	for _, tok := range engine.SuggestMonths(text) {
		resp.Suggestions = append(resp.Suggestions, newMonthResponse(tok))
	}
	if tok, ok := engine.ResolveMonth(text); ok {
		m := newMonthResponse(tok)
		resp.Resolved = &m
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDays(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	days, err := s.calculator().Days(q.Get(config.ParamYear), q.Get(config.ParamMonth))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, daysResponse{Days: days})
}

func (s *Server) handleRoster(w http.ResponseWriter, r *http.Request) {
	item := s.current()
	if item == nil {
		w.Header().Set(config.HeaderRetryAfter, config.RetryAfterSeconds)
		http.Error(w, config.HTTPMsgInitializing, http.StatusServiceUnavailable)
		return
	}
	w.Header().Set(config.HeaderContentType, config.MimeJSON)
	w.Header().Set(config.HeaderCacheControl, config.CacheControlPrivate)
	if _, err := w.Write(item.roster); err != nil {
		slog.Error(config.ErrWriteResp,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyError, err,
		)
	}
}

// statusFor maps pipeline errors to HTTP statuses: 422 while input is
// incomplete or dates are out of order, 400 when a field is invalid.
func statusFor(err error) int {
	switch {
	case errors.Is(err, engine.ErrIncomplete), errors.Is(err, engine.ErrEndBeforeStart):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	state := engine.StateOf(err)
	slog.Debug(config.MsgAPIRequest,
		config.LogKeyComponent, config.CompServer,
		config.LogKeyRoute, r.URL.Path,
		config.LogKeyState, state,
		config.LogKeyError, err,
	)
	writeJSON(w, statusFor(err), errorResponse{State: state, Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set(config.HeaderContentType, config.MimeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error(config.ErrWriteResp,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyError, err,
		)
	}
}

// requestLogger logs every request at debug level with its status.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		slog.Debug("HTTP request",
			config.LogKeyComponent, config.CompServer,
			config.LogKeyRoute, r.URL.Path,
			config.LogKeyStatus, ww.Status(),
			config.LogKeyDuration, time.Since(start).Milliseconds(),
		)
	})
}
