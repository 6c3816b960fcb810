package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tartampluch/go-agecategory/internal/config"
	"github.com/tartampluch/go-agecategory/internal/engine"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func newTestServer() *Server {
	clock := fixedClock{t: time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)}
	return NewServer("0", engine.NewCalculator(clock)) // Port irrelevant for handler tests
}

func do(t *testing.T, h http.Handler, method, target string, header map[string]string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	resp := w.Result()
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	require.Equal(t, config.MimeJSON, resp.Header.Get(config.HeaderContentType))
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

// -----------------------------------------------------------------------------
// Calendar feed
// -----------------------------------------------------------------------------

func TestCalendar_ServingContent(t *testing.T) {
	srv := newTestServer()
	expectedICS := []byte("BEGIN:VCALENDAR\r\nVERSION:2.0\r\nEND:VCALENDAR")
	srv.Update(expectedICS, nil)

	resp := do(t, srv.Handler(), http.MethodGet, config.RouteCalendar, nil)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, config.MimeTextCalendar, resp.Header.Get(config.HeaderContentType))
	assert.Equal(t, config.MimeNoSniff, resp.Header.Get(config.HeaderXContentType))
	assert.Contains(t, resp.Header.Get(config.HeaderCacheControl), "no-cache")
	assert.NotEmpty(t, resp.Header.Get(config.HeaderETag))

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, expectedICS, body)
}

func TestCalendar_Head(t *testing.T) {
	srv := newTestServer()
	srv.Update([]byte("BEGIN:VCALENDAR"), nil)

	resp := do(t, srv.Handler(), http.MethodHead, config.RouteCalendar, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Empty(t, body)
}

// TestCalendar_Caching verifies If-None-Match and If-Modified-Since yield 304.
func TestCalendar_Caching(t *testing.T) {
	srv := newTestServer()
	srv.Update([]byte("DATA_VERSION_1"), nil)
	h := srv.Handler()

	first := do(t, h, http.MethodGet, config.RouteCalendar, nil)
	etag := first.Header.Get(config.HeaderETag)
	require.NotEmpty(t, etag)

	resp := do(t, h, http.MethodGet, config.RouteCalendar, map[string]string{config.HeaderIfNoneMatch: etag})
	assert.Equal(t, http.StatusNotModified, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Empty(t, body, "Body must be empty on 304 Not Modified")

	later := time.Now().Add(time.Hour).UTC().Format(http.TimeFormat)
	resp = do(t, h, http.MethodGet, config.RouteCalendar, map[string]string{config.HeaderIfModifiedSince: later})
	assert.Equal(t, http.StatusNotModified, resp.StatusCode)
}

func TestCalendar_MethodNotAllowed(t *testing.T) {
	srv := newTestServer()
	resp := do(t, srv.Handler(), http.MethodPost, config.RouteCalendar, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

// TestCalendar_Initializing verifies the 503 behavior when data is not yet ready.
func TestCalendar_Initializing(t *testing.T) {
	srv := newTestServer()

	for _, route := range []string{config.RouteCalendar, config.RouteAPIRoster} {
		resp := do(t, srv.Handler(), http.MethodGet, route, nil)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode, route)
		assert.Equal(t, config.RetryAfterSeconds, resp.Header.Get(config.HeaderRetryAfter), route)
	}
}

func TestCORS(t *testing.T) {
	srv := newTestServer()
	h := srv.Handler()

	resp := do(t, h, http.MethodGet, config.RouteAPIMonths+"?q=1", map[string]string{"Origin": "http://example.com"})
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	resp = do(t, h, http.MethodOptions, config.RouteAPIAge, map[string]string{
		"Origin":                        "http://example.com",
		"Access-Control-Request-Method": http.MethodGet,
	})
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

// -----------------------------------------------------------------------------
// JSON API
// -----------------------------------------------------------------------------

func TestAPI_Age(t *testing.T) {
	srv := newTestServer()
	resp := do(t, srv.Handler(), http.MethodGet, config.RouteAPIAge+"?year=21&month=sep&day=01", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got ageResponse
	decode(t, resp, &got)
	assert.Equal(t, "2021-09-01", got.Birth)
	assert.Equal(t, "2025-06-15", got.Today)
	assert.Equal(t, 45, got.TotalMonths)
	assert.Equal(t, 3, got.Years)
	assert.Equal(t, 9, got.Months)
	assert.Equal(t, "3 years, 9 months", got.Age)
	assert.Equal(t, "(45 Months total)", got.Total)
	assert.Equal(t, config.LabelJK, got.Category)
	assert.Equal(t, 2025, got.Eligibility.Year)
	assert.Equal(t, "this_year", got.Eligibility.Status)
}

func TestAPI_Errors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		status int
		state  string
	}{
		{"Partial day", config.RouteAPIAge + "?year=2024&month=Feb&day=2", http.StatusUnprocessableEntity, config.StateIncomplete},
		{"Missing year", config.RouteAPIAge + "?month=Feb&day=12", http.StatusUnprocessableEntity, config.StateIncomplete},
		{"Not a leap year", config.RouteAPIAge + "?year=2023&month=2&day=29", http.StatusBadRequest, config.StateInvalid},
		{"Future birth", config.RouteAPIAge + "?year=2030&month=1&day=01", http.StatusBadRequest, config.StateInvalid},
		{
			"End before start",
			config.RouteAPIBetween + "?start_year=2024&start_month=3&start_day=01&end_year=2024&end_month=2&end_day=28",
			http.StatusUnprocessableEntity, config.StateEndBeforeStart,
		},
		{"Days without month", config.RouteAPIDays + "?year=2024", http.StatusUnprocessableEntity, config.StateIncomplete},
		{"Days with bad month", config.RouteAPIDays + "?year=2024&month=zz", http.StatusBadRequest, config.StateInvalid},
	}

	srv := newTestServer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, srv.Handler(), http.MethodGet, tt.target, nil)
			assert.Equal(t, tt.status, resp.StatusCode)

			var got errorResponse
			decode(t, resp, &got)
			assert.Equal(t, tt.state, got.State)
			assert.NotEmpty(t, got.Error)
		})
	}
}

func TestAPI_Between(t *testing.T) {
	srv := newTestServer()
	target := config.RouteAPIBetween + "?start_year=2024&start_month=Jan&start_day=31&end_year=2024&end_month=Mar&end_day=01"
	resp := do(t, srv.Handler(), http.MethodGet, target, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got durationResponse
	decode(t, resp, &got)
	assert.Equal(t, 1, got.TotalMonths)
	assert.Equal(t, "0 years, 1 month", got.Duration)
	assert.Equal(t, "(1 Month total)", got.Total)
}

func TestAPI_Months(t *testing.T) {
	srv := newTestServer()

	resp := do(t, srv.Handler(), http.MethodGet, config.RouteAPIMonths+"?q=ju", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got monthsResponse
	decode(t, resp, &got)
	require.Len(t, got.Suggestions, 2)
	assert.Equal(t, "Jun - (06)", got.Suggestions[0].Canonical)
	require.NotNil(t, got.Resolved)
	assert.Equal(t, 6, got.Resolved.Number)

	resp = do(t, srv.Handler(), http.MethodGet, config.RouteAPIMonths+"?q=13", nil)
	var none monthsResponse
	decode(t, resp, &none)
	assert.Empty(t, none.Suggestions)
	assert.Nil(t, none.Resolved)
}

func TestAPI_Days(t *testing.T) {
	srv := newTestServer()
	resp := do(t, srv.Handler(), http.MethodGet, config.RouteAPIDays+"?year=24&month=Feb", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got daysResponse
	decode(t, resp, &got)
	require.Len(t, got.Days, 29)
	assert.Equal(t, "29", got.Days[28])
}

func TestAPI_Roster(t *testing.T) {
	srv := newTestServer()
	born, err := engine.NewResolvedDate(2021, 9, 1)
	require.NoError(t, err)
	age, err := srv.Calculator.AgeOf(born)
	require.NoError(t, err)

	srv.Update([]byte(config.StubVCalendar), []engine.ChildEntry{{UID: "uid-1", Name: "Ada", Age: age}})

	resp := do(t, srv.Handler(), http.MethodGet, config.RouteAPIRoster, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got []childResponse
	decode(t, resp, &got)
	require.Len(t, got, 1)
	assert.Equal(t, "uid-1", got[0].UID)
	assert.Equal(t, "2021-09-01", got[0].Born)
	assert.Equal(t, config.LabelJK, got[0].Age.Category)
}

// steppingClock is a clock the test can move forward.
type steppingClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *steppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *steppingClock) set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

func TestServer_RosterRederivedOnNewDay(t *testing.T) {
	clock := &steppingClock{t: time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)}
	srv := NewServer("0", engine.NewCalculator(clock))
	h := srv.Handler()

	born, err := engine.NewResolvedDate(2021, 9, 1)
	require.NoError(t, err)
	age, err := srv.Calculator.AgeOf(born)
	require.NoError(t, err)
	children := []engine.ChildEntry{{UID: "uid-1", Name: "Ada", Age: age}}
	ics, events, err := engine.BuildCalendar(children, clock.Now())
	require.NoError(t, err)
	require.Equal(t, 1, events)
	srv.Update(ics, children)

	var got []childResponse
	decode(t, do(t, h, http.MethodGet, config.RouteAPIRoster, nil), &got)
	require.Len(t, got, 1)
	assert.Equal(t, "this_year", got[0].Age.Eligibility.Status)

	first := do(t, h, http.MethodGet, config.RouteCalendar, nil)
	body, _ := io.ReadAll(first.Body)
	assert.Contains(t, string(body), "Ada")

	// No reload happens; only the day changes.
	clock.set(time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC))

	got = nil
	decode(t, do(t, h, http.MethodGet, config.RouteAPIRoster, nil), &got)
	require.Len(t, got, 1)
	assert.Equal(t, "passed", got[0].Age.Eligibility.Status)
	assert.Equal(t, 52, got[0].Age.TotalMonths)
	assert.Equal(t, "2026-01-02", got[0].Age.Today)

	second := do(t, h, http.MethodGet, config.RouteCalendar, nil)
	body, _ = io.ReadAll(second.Body)
	assert.Equal(t, config.StubVCalendar, string(body), "A passed eligibility has no event")
	assert.NotEqual(t, first.Header.Get(config.HeaderETag), second.Header.Get(config.HeaderETag))
}

// -----------------------------------------------------------------------------
// Concurrency Tests (Race Detection)
// -----------------------------------------------------------------------------

// TestServer_RaceCondition validates the thread-safety of atomic.Pointer usage.
// Run this with `go test -race`.
func TestServer_RaceCondition(t *testing.T) {
	srv := newTestServer()
	h := srv.Handler()
	var wg sync.WaitGroup
	end := time.Now().Add(500 * time.Millisecond)

	for w := 0; w < 5; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := 0; time.Now().Before(end); i++ {
				srv.Update([]byte(fmt.Sprintf("VERSION:%d-%d", id, i)), nil)
				time.Sleep(time.Microsecond)
			}
		}(w)
	}

	for r := 0; r < 20; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(end) {
				req := httptest.NewRequest(http.MethodGet, config.RouteCalendar, nil)
				w := httptest.NewRecorder()
				h.ServeHTTP(w, req)

				if w.Code != http.StatusOK && w.Code != http.StatusServiceUnavailable {
					t.Errorf("Unexpected status code during race test: %d", w.Code)
				}
			}
		}()
	}

	wg.Wait()
}

// -----------------------------------------------------------------------------
// Integration Tests (Real TCP Lifecycle)
// -----------------------------------------------------------------------------

// TestServer_Lifecycle binds the real listener and checks graceful shutdown.
func TestServer_Lifecycle(t *testing.T) {
	const port = "18099"

	srv := NewServer(port, nil)
	ctx, cancel := context.WithCancel(context.Background())
	errChan := make(chan error, 1)

	go func() {
		errChan <- srv.Start(ctx)
	}()

	url := "http://127.0.0.1:" + port + config.RouteCalendar

	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return true
	}, 2*time.Second, 50*time.Millisecond, "Server failed to bind/listen in time")

	resp, err := http.Get(url)
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	_ = resp.Body.Close()

	srv.Update([]byte("BEGIN:VCALENDAR\nEND:VCALENDAR"), nil)

	resp, err = http.Get(url)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	assert.NoError(t, err)
	assert.Contains(t, string(body), "BEGIN:VCALENDAR")

	cancel()

	select {
	case err := <-errChan:
		assert.NoError(t, err, "Server should shutdown gracefully without error")
	case <-time.After(5 * time.Second):
		t.Fatal("Server shutdown timed out")
	}
}

func TestServer_Start_RequiresPort(t *testing.T) {
	err := NewServer("", nil).Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrPortRequired)
}

func TestServer_Start_RejectsBadPort(t *testing.T) {
	err := NewServer("http", nil).Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrPortNumber)

	err = NewServer("70000", nil).Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrPortRange)
}
