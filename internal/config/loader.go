// Package config loads the service configuration from an optional TOML file
// and the process environment. Environment variables override file values.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Backend selects the persistence implementation.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Config captures the configuration values for the agenda service.
type Config struct {
	HTTPPort      int    `toml:"http_port"`
	Backend       string `toml:"backend"`
	DataFile      string `toml:"data_file"`
	SyncStateFile string `toml:"sync_state_file"`
	SQLiteDSN     string `toml:"sqlite_dsn"`
	StaticDir     string `toml:"static_dir"`

	CalendarID         string `toml:"calendar_id"`
	Timezone           string `toml:"timezone"`
	GoogleClientID     string `toml:"google_client_id"`
	GoogleClientSecret string `toml:"google_client_secret"`
	OAuthRedirectURL   string `toml:"oauth_redirect_url"`

	SyncWindow    time.Duration `toml:"-"`
	OAuthStateTTL time.Duration `toml:"-"`

	// Raw duration strings from the TOML file; parsed into the fields above.
	SyncWindowRaw    string `toml:"sync_window"`
	OAuthStateTTLRaw string `toml:"oauth_state_ttl"`
}

// Load builds the configuration from AGENDA_CONFIG_FILE (when set) and the
// environment, applying defaults for everything optional.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:      8080,
		Backend:       BackendJSON,
		DataFile:      "dados.json",
		SyncStateFile: "sync_state.json",
		SQLiteDSN:     "file:agenda.db?_foreign_keys=on",
		CalendarID:    "primary",
		Timezone:      "America/Sao_Paulo",
		SyncWindow:    30 * 24 * time.Hour,
		OAuthStateTTL: 10 * time.Minute,
	}

	if path := strings.TrimSpace(os.Getenv("AGENDA_CONFIG_FILE")); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
		if cfg.SyncWindowRaw != "" {
			window, err := time.ParseDuration(cfg.SyncWindowRaw)
			if err != nil || window <= 0 {
				return Config{}, fmt.Errorf("config: invalid sync_window %q", cfg.SyncWindowRaw)
			}
			cfg.SyncWindow = window
		}
		if cfg.OAuthStateTTLRaw != "" {
			ttl, err := time.ParseDuration(cfg.OAuthStateTTLRaw)
			if err != nil || ttl <= 0 {
				return Config{}, fmt.Errorf("config: invalid oauth_state_ttl %q", cfg.OAuthStateTTLRaw)
			}
			cfg.OAuthStateTTL = ttl
		}
	}

	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("AGENDA_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "AGENDA_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if backend := strings.TrimSpace(os.Getenv("AGENDA_BACKEND")); backend != "" {
		cfg.Backend = strings.ToLower(backend)
	}
	if cfg.Backend != BackendJSON && cfg.Backend != BackendSQLite {
		invalid = append(invalid, "AGENDA_BACKEND")
	}

	if dataFile := strings.TrimSpace(os.Getenv("AGENDA_DATA_FILE")); dataFile != "" {
		cfg.DataFile = dataFile
	}
	if syncStateFile := strings.TrimSpace(os.Getenv("AGENDA_SYNC_STATE_FILE")); syncStateFile != "" {
		cfg.SyncStateFile = syncStateFile
	}
	if dsn := strings.TrimSpace(os.Getenv("AGENDA_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}
	if staticDir := strings.TrimSpace(os.Getenv("AGENDA_STATIC_DIR")); staticDir != "" {
		cfg.StaticDir = staticDir
	}

	if calendarID := strings.TrimSpace(os.Getenv("AGENDA_CALENDAR_ID")); calendarID != "" {
		cfg.CalendarID = calendarID
	}
	if timezone := strings.TrimSpace(os.Getenv("AGENDA_TIMEZONE")); timezone != "" {
		cfg.Timezone = timezone
	}
	if clientID := strings.TrimSpace(os.Getenv("AGENDA_GOOGLE_CLIENT_ID")); clientID != "" {
		cfg.GoogleClientID = clientID
	}
	if clientSecret := strings.TrimSpace(os.Getenv("AGENDA_GOOGLE_CLIENT_SECRET")); clientSecret != "" {
		cfg.GoogleClientSecret = clientSecret
	}
	if redirectURL := strings.TrimSpace(os.Getenv("AGENDA_OAUTH_REDIRECT_URL")); redirectURL != "" {
		cfg.OAuthRedirectURL = redirectURL
	}
	if cfg.OAuthRedirectURL == "" {
		cfg.OAuthRedirectURL = fmt.Sprintf("http://localhost:%d/api/calendar/callback", cfg.HTTPPort)
	}

	if windowValue := strings.TrimSpace(os.Getenv("AGENDA_SYNC_WINDOW")); windowValue != "" {
		window, err := time.ParseDuration(windowValue)
		if err != nil || window <= 0 {
			invalid = append(invalid, "AGENDA_SYNC_WINDOW")
		} else {
			cfg.SyncWindow = window
		}
	}
	if ttlValue := strings.TrimSpace(os.Getenv("AGENDA_OAUTH_STATE_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "AGENDA_OAUTH_STATE_TTL")
		} else {
			cfg.OAuthStateTTL = ttl
		}
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("config: invalid environment values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
