package ui

import (
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/tartampluch/go-agecategory/internal/config"
	"github.com/tartampluch/go-agecategory/internal/engine"
)

// TestApp_LoadSourceConfig tests the conversion of UI preferences and the
// keyring into a roster source.
func TestApp_LoadSourceConfig(t *testing.T) {
	keyring.MockInit()
	a := test.NewApp()
	app := &AgeCategoryApp{
		App:         a,
		Preferences: a.Preferences(),
	}

	require.NoError(t, keyring.Set(config.KeyringService, "admin", "s3cret"))

	tests := []struct {
		name string
		mode string
		url  string
		user string
		path string
		want engine.SourceConfig
	}{
		{
			name: "No source",
			mode: config.SourceModeNone,
			want: engine.SourceConfig{Mode: config.SourceModeNone},
		},
		{
			name: "Web with stored password",
			mode: config.SourceModeWeb,
			url:  "https://secure.example.com/kids.vcf",
			user: "admin",
			want: engine.SourceConfig{
				Mode:    config.SourceModeWeb,
				WebURL:  "https://secure.example.com/kids.vcf",
				WebUser: "admin",
				WebPass: "s3cret",
			},
		},
		{
			name: "Web user without password",
			mode: config.SourceModeWeb,
			url:  "https://example.com",
			user: "guest",
			want: engine.SourceConfig{
				Mode:    config.SourceModeWeb,
				WebURL:  "https://example.com",
				WebUser: "guest",
			},
		},
		{
			name: "Local file",
			mode: config.SourceModeLocal,
			path: "/tmp/roster.yaml",
			want: engine.SourceConfig{Mode: config.SourceModeLocal, LocalPath: "/tmp/roster.yaml"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app.Preferences.SetString(config.PrefSourceMode, tt.mode)
			app.Preferences.SetString(config.PrefCardDAVURL, tt.url)
			app.Preferences.SetString(config.PrefUsername, tt.user)
			app.Preferences.SetString(config.PrefLocalPath, tt.path)

			assert.Equal(t, tt.want, app.loadSourceConfig())
		})
	}
}

// -----------------------------------------------------------------------------
// Roster Sorting Tests
// -----------------------------------------------------------------------------

func entry(t *testing.T, name string, y, m, d int) engine.ChildEntry {
	t.Helper()
	born, err := engine.NewResolvedDate(y, m, d)
	require.NoError(t, err)
	calc := engine.NewCalculator(MockClock{CurrentTime: june15})
	age, err := calc.AgeOf(born)
	require.NoError(t, err)
	return engine.ChildEntry{UID: name, Name: name, Age: age}
}

func names(rows []engine.ChildEntry) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Name
	}
	return out
}

func TestSortChildren(t *testing.T) {
	base := func() []engine.ChildEntry {
		return []engine.ChildEntry{
			entry(t, "charlie", 2024, 1, 5), // Infant
			entry(t, "Alice", 2021, 3, 1),   // JK
			entry(t, "bob", 2019, 12, 31),   // SK
			entry(t, "Dana", 2021, 3, 1),    // JK, same day as Alice
		}
	}

	tests := []struct {
		name string
		col  int
		asc  bool
		want []string
	}{
		{"Born ascending is oldest first", config.ColIDBorn, true, []string{"bob", "Alice", "Dana", "charlie"}},
		{"Born descending", config.ColIDBorn, false, []string{"charlie", "Dana", "Alice", "bob"}},
		{"Name is case-insensitive", config.ColIDName, true, []string{"Alice", "bob", "charlie", "Dana"}},
		{"Age ascending is youngest first", config.ColIDAge, true, []string{"charlie", "Alice", "Dana", "bob"}},
		{"Category descending", config.ColIDCategory, false, []string{"bob", "Dana", "Alice", "charlie"}},
		{"JK year ascending", config.ColIDJK, true, []string{"bob", "Alice", "Dana", "charlie"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := base()
			sortChildren(rows, tt.col, tt.asc)
			assert.Equal(t, tt.want, names(rows))
		})
	}
}

func TestCellText(t *testing.T) {
	app, _, _ := setupTestApp(t)
	c := entry(t, "Alice", 2021, 9, 1)

	assert.Equal(t, "Alice", app.cellText(c, config.ColIDName))
	assert.Equal(t, "2021-09-01", app.cellText(c, config.ColIDBorn))
	assert.Equal(t, "3 years, 9 months", app.cellText(c, config.ColIDAge))
	assert.Equal(t, "JK", app.cellText(c, config.ColIDCategory))
	assert.Equal(t, "2025", app.cellText(c, config.ColIDJK))
	assert.Empty(t, app.cellText(c, config.ColCount))
}
