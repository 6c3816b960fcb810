package config

import (
	"io/fs"
	"time"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Build variables are injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent identifies the HTTP client used for roster downloads.
var UserAgent = "Go-AgeCategory/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName           = "Age Category Calculator"
	AppID             = "com.github.tartampluch.go-agecategory"
	BinaryName        = "agecategory"
	KeyringService    = "com.github.tartampluch.go-agecategory"
	LocalhostBindAddr = "127.0.0.1"
	LogFileName       = "app.log"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW represents -rw------- (Read/Write for owner only).
	// Used for logs and exported calendars.
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// CLI Commands, Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	FlagVersion  = "version"
	FlagDebug    = "debug"
	FlagFile     = "file"
	FlagURL      = "url"
	FlagUser     = "user"
	FlagICS      = "ics"
	FlagPort     = "port"
	FlagInterval = "interval"
	FlagAsOf     = "as-of"

	FlagDescVersion  = "Show application version and exit"
	FlagDescDebug    = "Enable debug logging to stdout"
	FlagDescFile     = "Roster file (.vcf, .vcard, .yaml, .yml)"
	FlagDescURL      = "Roster vCard URL (CardDAV/WebDAV)"
	FlagDescUser     = "Username for the roster URL (password is read from the keyring)"
	FlagDescICS      = "Write the JK eligibility calendar to this file"
	FlagDescPort     = "HTTP server port"
	FlagDescInterval = "Roster refresh interval (0 disables refresh)"
	FlagDescAsOf     = "Evaluate ages as of this date (YYYY-MM-DD) instead of today"

	CmdShortRoot    = "Age, age category and JK eligibility calculator"
	CmdLongRoot     = "Converts year/month/day input into an age in years and months, an age category and a Junior Kindergarten eligibility year.\n\nRun without a command to open the desktop calculator."
	CmdUseAge       = "age YEAR MONTH DAY"
	CmdShortAge     = "Compute the age of a birth date as of today"
	CmdUseBetween   = "between START_YEAR START_MONTH START_DAY END_YEAR END_MONTH END_DAY"
	CmdShortBetween = "Compute the whole months between two dates"
	CmdUseMonths    = "months PREFIX"
	CmdShortMonths  = "List the month suggestions offered for a partial input"
	CmdUseRoster    = "roster"
	CmdShortRoster  = "Print ages and categories for every child of a roster"
	CmdUseServe     = "serve"
	CmdShortServe   = "Run the HTTP API and eligibility calendar without the desktop UI"

	MsgVersionOutput = "%s version %s (%s/%s)\n"
)

// -----------------------------------------------------------------------------
// Date Resolution Rules
// -----------------------------------------------------------------------------

const (
	// A 2-digit year resolves to CenturyCurrent+n unless that lands beyond
	// currentYear+TwoDigitPivotOffset, in which case CenturyPrevious+n is used.
	TwoDigitYearLen     = 2
	CenturyCurrent      = 2000
	CenturyPrevious     = 1900
	TwoDigitPivotOffset = 1

	// Uniform year validity window, relative to the current year.
	DefaultYearsPast   = 150
	DefaultYearsFuture = 100

	// A day typed with fewer characters is still being typed.
	MinDayDigits = 2

	MonthsPerYear = 12

	CanonicalMonthFormat = "%s - (%02d)"
	DayOptionFormat      = "%02d"
	YearDisplayFormat    = "%04d"
)

// Category thresholds, inclusive upper bounds in whole months.
const (
	InfantMaxMonths    = 17
	ToddlerMaxMonths   = 30
	PreschoolMaxMonths = 43
	JKMaxMonths        = 55
	SKMaxMonths        = 71
)

// Junior Kindergarten entry: September of the year the child turns 4.
const (
	JKEntryAge   = 4
	JKStartMonth = time.September
	JKStartDay   = 1
)

// DebounceDelay is the quiescence window applied to recalculation while typing.
const DebounceDelay = 300 * time.Millisecond

// -----------------------------------------------------------------------------
// Display Strings (English renderers, also used as i18n fallbacks)
// -----------------------------------------------------------------------------

const (
	FormatYearSingular   = "%d year"
	FormatYearPlural     = "%d years"
	FormatMonthSingular  = "%d month"
	FormatMonthPlural    = "%d months"
	AgeSeparator         = ", "
	FormatTotalSingular  = "(%d Month total)"
	FormatTotalPlural    = "(%d Months total)"
	FormatEligible       = "Eligible Sept %d"
	NoteEligibleThisYear = "(Eligible this calendar year)"
	NoteEligibleNextYear = "(Eligible next calendar year)"
	NoteEligiblePassed   = "(Eligibility year has passed)"
	MsgEndBeforeStart    = "Error: End date must be on or after start date"
	ResultPlaceholder    = "--"

	LabelInfant    = "Infant"
	LabelToddler   = "Toddler"
	LabelPreschool = "Preschool"
	LabelJK        = "JK"
	LabelSK        = "SK"
	LabelAgedOut   = "Aged Out (6+)"
)

// -----------------------------------------------------------------------------
// UI Constants & Preferences
// -----------------------------------------------------------------------------

const (
	MainWindowWidth     = 520
	MainWindowHeight    = 420
	SettingsWindowWidth = 600

	// Preference Keys
	PrefCardDAVURL = "carddav_url"
	PrefUsername   = "username"
	PrefLanguage   = "language"
	PrefInterval   = "refresh_interval_min"
	PrefServerPort = "server_port"
	PrefSourceMode = "source_mode"
	PrefLocalPath  = "local_path"
	PrefLastRun    = "last_run_version"

	// Field widths
	YearMaxDigits = 4
	DayMaxDigits  = 2
)

// SupportedLanguages defines the list of available UI languages (ISO 639-1).
var SupportedLanguages = []string{"en", "fr"}

// -----------------------------------------------------------------------------
// UI Roster Window Constants
// -----------------------------------------------------------------------------

const (
	RosterWinWidth  = 720
	RosterWinHeight = 420

	// Table Column IDs
	ColIDName     = 0
	ColIDBorn     = 1
	ColIDAge      = 2
	ColIDCategory = 3
	ColIDJK       = 4
	ColCount      = 5

	// Table Layout
	ColWidthName     = 220
	ColWidthBorn     = 110
	ColWidthAge      = 150
	ColWidthCategory = 110
	ColWidthJK       = 90

	DateFormatDisplay = "2006-01-02"
	TablePlaceholder  = "Cell Content"
	LogMsgOpenWin     = "Opening roster window"
	LogMsgSorted      = "Roster sorted"

	// Sorting Indicators
	SortIconAsc  = " ▲"
	SortIconDesc = " ▼"
)

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyWinTitle       = "win_title"
	TKeyWinSettings    = "win_settings_title"
	TKeyWinRoster      = "win_roster_title"
	TKeyTabAge         = "tab_age"
	TKeyTabBetween     = "tab_between"
	TKeyLblYear        = "lbl_year"
	TKeyLblMonth       = "lbl_month"
	TKeyLblDay         = "lbl_day"
	TKeyLblStart       = "lbl_start_date"
	TKeyLblEnd         = "lbl_end_date"
	TKeyLblAge         = "lbl_age"
	TKeyLblDuration    = "lbl_duration"
	TKeyLblCategory    = "lbl_category"
	TKeyLblEligibility = "lbl_jk_eligibility"
	TKeyHintYear       = "hint_year"
	TKeyHintMonth      = "hint_month"
	TKeyHintDay        = "hint_day_range" // Requires Max
	TKeyBtnClear       = "btn_clear"
	TKeyMenuCalculator = "menu_calculator"
	TKeyMenuRoster     = "menu_roster"
	TKeyMenuRefresh    = "menu_refresh"
	TKeyMenuSettings   = "menu_settings"
	TKeyNotifStart     = "notif_sync_start"
	TKeyNotifSuccess   = "notif_sync_success" // Requires Count
	TKeyNotifError     = "notif_err_sync"
	TKeyModeNone       = "mode_none"
	TKeyModeCardDAV    = "mode_carddav"
	TKeyModeLocal      = "mode_local"
	TKeyLblLanguage    = "lbl_language"
	TKeyHelpLanguage   = "help_language"
	TKeyLblMinutes     = "lbl_minutes_suffix"
	TKeyLblRefresh     = "lbl_refresh_interval"
	TKeyHelpInterval   = "help_interval"
	TKeyLblPort        = "lbl_server_port"
	TKeyHelpPort       = "help_port"
	TKeyLblGeneral     = "lbl_general"
	TKeyBtnSave        = "btn_save"
	TKeyBtnCancel      = "btn_cancel"
	TKeyLblFooter      = "lbl_footer"
	TKeyBtnBrowse      = "btn_browse"
	TKeyLblURL         = "lbl_url"
	TKeyHelpURL        = "help_carddav_url"
	TKeyLblUser        = "lbl_user"
	TKeyLblPass        = "lbl_pass"
	TKeyLblSource      = "lbl_source"

	// Results (pluralized through go-i18n)
	TKeyAgeYears       = "age_years"        // Requires Count
	TKeyAgeMonths      = "age_months"       // Requires Count
	TKeyTotalMonths    = "total_months"     // Requires Count
	TKeyEligible       = "eligible_sept"    // Requires Year
	TKeyEligThisYear   = "elig_this_year"   // Note suffix
	TKeyEligNextYear   = "elig_next_year"   // Note suffix
	TKeyEligPassed     = "elig_passed"      // Note suffix
	TKeyEndBeforeStart = "end_before_start" // Cross-field error

	// Category labels
	TKeyCatInfant    = "cat_infant"
	TKeyCatToddler   = "cat_toddler"
	TKeyCatPreschool = "cat_preschool"
	TKeyCatJK        = "cat_jk"
	TKeyCatSK        = "cat_sk"
	TKeyCatAgedOut   = "cat_aged_out"

	// Column Headers
	TKeyColName     = "col_name"
	TKeyColBorn     = "col_born"
	TKeyColAge      = "col_age"
	TKeyColCategory = "col_category"
	TKeyColJK       = "col_jk"

	// Validation Errors (UI)
	TKeyErrPortReq   = "err_port_required"
	TKeyErrPortNum   = "err_port_number"
	TKeyErrPortRange = "err_port_range"
)

// -----------------------------------------------------------------------------
// Default Values & Roster Sources
// -----------------------------------------------------------------------------

const (
	SourceModeNone    = ""
	SourceModeWeb     = "web"
	SourceModeLocal   = "local"
	DefaultPort       = "18080"
	DefaultRefreshMin = 60
	DefaultLanguage   = "en"
	UIDSalt           = "go-agecategory-v1-" // Salt for deterministic UID generation
	DisabledInterval  = 0
)

// -----------------------------------------------------------------------------
// Standards: iCalendar & vCard
// -----------------------------------------------------------------------------

const (
	// iCal Properties
	ICalVersion = "2.0"
	ICalProdid  = "-//Go AgeCategory//Eligibility//EN"
	ICalCalName = "JK Eligibility"
	ICalMethod  = "PUBLISH"
	ICalScale   = "GREGORIAN"
	ICalDomain  = "agecategory"

	// iCal/vCard Fields
	PropUID         = "UID"
	PropSummary     = "SUMMARY"
	PropDescription = "DESCRIPTION"
	PropDTStart     = "DTSTART"
	PropDTStamp     = "DTSTAMP"
	PropRefresh     = "REFRESH-INTERVAL"
	PropVersion     = "VERSION"
	PropProdid      = "PRODID"
	PropXWRCalName  = "X-WR-CALNAME"
	PropCalScale    = "CALSCALE"
	PropMethod      = "METHOD"

	VCardBDAY = "BDAY"
	VCardFN   = "FN"
	VCardN    = "N"

	DefaultICalRefresh = 1 * time.Hour

	FormatEventSummary     = "JK eligibility: %s"
	FormatEventDescription = "%s (born %s) can start Junior Kindergarten in September %d."
	FormatUID              = "%s@%s"
)

// -----------------------------------------------------------------------------
// Data Formats, Limits & File Extensions
// -----------------------------------------------------------------------------

const (
	// Date layouts used for parsing roster birth dates
	DateFormatFullDash  = "2006-01-02"
	DateFormatFullBasic = "20060102"
	DateFormatRFC3339   = time.RFC3339
	DateFormatFullT     = "2006-01-02T15:04:05Z"
	DateFormatNoYearD   = "--01-02"
	DateFormatNoYearB   = "--0102"

	// Limits
	MinPort = 1
	MaxPort = 65535

	// UID Generation
	FormatHashInput = "%s|%s|%s"

	// File Extensions
	ExtVCF   = ".vcf"
	ExtVCard = ".vcard"
	ExtYAML  = ".yaml"
	ExtYML   = ".yml"
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	HTTPTimeout         = 30 * time.Second
	ShutdownTimeout     = 5 * time.Second
	ServerReadTimeout   = 10 * time.Second
	ServerWriteTimeout  = 30 * time.Second
	ServerIdleTimeout   = 60 * time.Second
	RetryAfterSeconds   = "10"
	MaxHTTPResponseSize = 64 * 1024 * 1024 // 64MB
	CORSMaxAge          = 300
	SchemeHTTP          = "http"
	SchemeHTTPS         = "https"
	AddrSeparator       = ":"

	RouteCalendar   = "/calendar.ics"
	RouteAPIAge     = "/api/age"
	RouteAPIBetween = "/api/between"
	RouteAPIMonths  = "/api/months"
	RouteAPIDays    = "/api/days"
	RouteAPIRoster  = "/api/roster"

	ParamYear       = "year"
	ParamMonth      = "month"
	ParamDay        = "day"
	ParamStartYear  = "start_year"
	ParamStartMonth = "start_month"
	ParamStartDay   = "start_day"
	ParamEndYear    = "end_year"
	ParamEndMonth   = "end_month"
	ParamEndDay     = "end_day"
	ParamQuery      = "q"

	StateIncomplete     = "incomplete"
	StateInvalid        = "invalid"
	StateEndBeforeStart = "end_before_start"
)

// -----------------------------------------------------------------------------
// HTTP Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	HeaderContentType     = "Content-Type"
	HeaderCacheControl    = "Cache-Control"
	HeaderETag            = "ETag"
	HeaderLastModified    = "Last-Modified"
	HeaderRetryAfter      = "Retry-After"
	HeaderXContentType    = "X-Content-Type-Options"
	HeaderUserAgent       = "User-Agent"
	HeaderIfNoneMatch     = "If-None-Match"
	HeaderIfModifiedSince = "If-Modified-Since"

	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeJSON            = "application/json; charset=utf-8"
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrIncomplete       = "input incomplete"
	ErrMissingField     = "date field missing"
	ErrPartialDay       = "day not fully typed"
	ErrInvalid          = "input invalid"
	ErrYearNotNumeric   = "year is not numeric"
	ErrYearRange        = "year outside the accepted window"
	ErrMonthUnresolved  = "month could not be resolved"
	ErrDayNotNumeric    = "day is not numeric"
	ErrDayRange         = "day outside the month"
	ErrRoundTrip        = "date did not survive round-trip construction"
	ErrBirthInFuture    = "birth date is after today"
	ErrEndBeforeStart   = "end date is before start date"
	ErrArgCount         = "wrong number of date arguments"
	ErrLocalPathEmpty   = "configuration error: local path is empty"
	ErrWebURLEmpty      = "configuration error: web URL is empty"
	ErrFetcherMissing   = "internal error: network fetcher is not initialized"
	ErrModeUnsupport    = "configuration error: unsupported source mode"
	ErrNoSource         = "no roster source configured"
	ErrServerStartup    = "server startup failed"
	ErrServerShutdown   = "server shutdown failed"
	ErrPortRequired     = "server port is required"
	ErrPortNumber       = "server port must be a number"
	ErrPortRange        = "server port must be between 1 and 65535"
	ErrInvalidURL       = "invalid URL structure"
	ErrProtocol         = "unsupported protocol scheme (http/https only)"
	ErrRosterParse      = "failed to parse roster"
	ErrYAMLParse        = "failed to decode YAML roster"
	ErrICalEncode       = "failed to encode iCalendar data"
	ErrDateParse        = "unable to parse date"
	ErrLogFile          = "failed to open log file"
	ErrCacheDir         = "could not determine user cache dir"
	ErrCreateDir        = "could not create app cache dir"
	ErrAppFailed        = "application failed unexpectedly"
	ErrWriteResp        = "failed to write response body"
	ErrWriteICS         = "failed to write calendar file"
	ErrLocalesAccess    = "failed to access embedded locales"
	ErrLocaleLoad       = "failed to load locale file"
	ErrTrayNotSupported = "system tray not supported on this platform/driver"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgInitializing = "Roster initializing, please try again shortly."
)

// -----------------------------------------------------------------------------
// Fallbacks & Log Messages
// -----------------------------------------------------------------------------

const (
	// StubVCalendar is the minimal valid iCalendar object used when no child is eligible.
	StubVCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + ICalProdid + "\r\nEND:VCALENDAR\r\n"

	FallbackName = "Unknown"

	TitleStartupError = "Startup Error"
	TitleSyncError    = "Roster Error"

	MsgPortBusy       = "Port %s is busy or unavailable."
	MsgSyncStarted    = "Roster load started"
	MsgSyncFailed     = "Roster load failed. Check logs."
	MsgSyncReq        = "Roster load requested"
	MsgSyncSkipped    = "Roster load skipped, no source configured"
	MsgWorkerStart    = "Background worker started"
	MsgWorkerStop     = "Worker stopping due to context cancellation"
	MsgUpdateSync     = "Updating roster refresh interval"
	MsgAppStop        = "Application stopped gracefully"
	MsgCtxCancel      = "Context cancelled, shutting down UI"
	MsgSkippedCard    = "Skipping malformed vCard"
	MsgSkippedDate    = "Skipping invalid birth date"
	MsgSkippedNoYear  = "Skipping birth date without a year"
	MsgSkippedFuture  = "Skipping birth date in the future"
	MsgRosterLoaded   = "Roster loaded"
	MsgCalendarBuilt  = "Eligibility calendar generated"
	MsgAppStarting    = "Starting application"
	MsgServerListen   = "HTTP server listening"
	MsgServerStop     = "Shutting down HTTP server..."
	MsgCacheUpdated   = "Roster cache updated"
	MsgRosterRenewed  = "Roster ages derived again for a new day"
	MsgRenewFailed    = "Failed to derive roster for the new day"
	MsgLocaleSkip     = "Skipping non-locale file"
	MsgLocaleBadName  = "Skipping malformed locale filename"
	MsgLocaleLoaded   = "Locale loaded successfully"
	MsgTransMissing   = "Missing translation key"
	MsgPassFail       = "Password retrieval failed (might be empty)"
	MsgLogWarning     = "Warning: %s at %s: %v\n"
	MsgFieldConfirmed = "Field confirmed"
	MsgFieldCleared   = "Field cleared"
	MsgRecalculated   = "Result recalculated"
	MsgAPIRequest     = "API request rejected"

	PlaceholderURL = "https://..."
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyURL       = "url"
	LogKeyStatus    = "status_code"
	LogKeyFile      = "file"
	LogKeyLang      = "lang"
	LogKeyKey       = "key"
	LogKeyPort      = "port"
	LogKeyMode      = "mode"
	LogKeyInterval  = "interval"
	LogKeyOld       = "old"
	LogKeyNew       = "new"
	LogKeyUser      = "user"
	LogKeyTotal     = "total_records"
	LogKeyFound     = "children_found"
	LogKeyEligible  = "eligible_events"
	LogKeySizeBytes = "size_bytes"
	LogKeyETag      = "etag"
	LogKeyManual    = "manual"
	LogKeyValue     = "value"
	LogKeyStats     = "stats"
	LogKeySortCol   = "sort_column"
	LogKeySortAsc   = "sort_asc"
	LogKeyCount     = "count"
	LogKeyName      = "name"
	LogKeyDOB       = "date_of_birth"
	LogKeyDuration  = "duration_ms"
	LogKeyField     = "field"
	LogKeyState     = "state"
	LogKeyMonths    = "total_months"
	LogKeyRoute     = "route"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyGoVer   = "go_version"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompUI      = "ui"
	CompUISet   = "ui_settings"
	CompEngine  = "engine"
	CompRoster  = "roster"
	CompServer  = "server"
	CompFetcher = "fetcher"
	CompWorker  = "worker"
	CompMain    = "main"
	CompCLI     = "cli"
	CompI18n    = "i18n"
)

// -----------------------------------------------------------------------------
// UI Layout Constants
// -----------------------------------------------------------------------------

const (
	LayoutColumnsDouble = 2
)
