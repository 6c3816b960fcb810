package ui

import (
	"embed"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"

	"github.com/tartampluch/go-agecategory/internal/config"
)

//go:embed locales/*.json
var localeFS embed.FS

// SetupI18n initializes the translation bundle and detects available languages.
func (app *AgeCategoryApp) SetupI18n() {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		slog.Error(config.ErrLocalesAccess,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyError, err,
		)
		return
	}

	var detectedLangs []string
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "active.") || !strings.HasSuffix(name, ".json") {
			slog.Debug(config.MsgLocaleSkip,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		langCode := strings.TrimSuffix(strings.TrimPrefix(name, "active."), ".json")
		if langCode == "" {
			slog.Warn(config.MsgLocaleBadName,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		if _, err := bundle.LoadMessageFileFS(localeFS, "locales/"+name); err != nil {
			slog.Error(config.ErrLocaleLoad,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
				config.LogKeyError, err,
			)
			continue
		}
		detectedLangs = append(detectedLangs, langCode)
		slog.Debug(config.MsgLocaleLoaded,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyLang, langCode,
		)
	}

	app.SupportedLanguages = detectedLangs
	app.I18nBundle = bundle
	app.UpdateLocalizer()
}

// UpdateLocalizer refreshes the translator based on the user's language preference.
func (app *AgeCategoryApp) UpdateLocalizer() {
	if app.I18nBundle == nil {
		return
	}
	lang := app.Preferences.StringWithFallback(config.PrefLanguage, config.DefaultLanguage)
	app.Localizer = i18n.NewLocalizer(app.I18nBundle, lang)
}

// GetMsg translates a key, returning the key itself when it is missing.
func (app *AgeCategoryApp) GetMsg(key string) string {
	msg, ok := app.localize(&i18n.LocalizeConfig{MessageID: key})
	if !ok {
		return key
	}
	return msg
}

// GetMsgData translates a templated key, returning fallback when it is missing.
func (app *AgeCategoryApp) GetMsgData(key string, data map[string]any, fallback string) string {
	msg, ok := app.localize(&i18n.LocalizeConfig{MessageID: key, TemplateData: data})
	if !ok {
		return fallback
	}
	return msg
}

// GetPlural translates a key with plural forms selected by count.
func (app *AgeCategoryApp) GetPlural(key string, count int, fallback string) string {
	msg, ok := app.localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: map[string]any{"Count": count},
		PluralCount:  count,
	})
	if !ok {
		return fallback
	}
	return msg
}

func (app *AgeCategoryApp) localize(lc *i18n.LocalizeConfig) (string, bool) {
	if app.Localizer == nil {
		return "", false
	}
	msg, err := app.Localizer.Localize(lc)
	if err != nil || msg == "" {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyKey, lc.MessageID,
			config.LogKeyError, err,
		)
		return "", false
	}
	return msg, true
}
