// Package config loads server configuration from YAML with environment
// variable overrides for operational knobs.
package config

import (
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ServerConfig holds server-wide configuration settings.
type ServerConfig struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Password PasswordConfig `yaml:"password"`
	Game     GameSettings   `yaml:"game"`
}

// HTTPConfig holds the listener settings.
type HTTPConfig struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string `yaml:"addr"`

	// SessionTTLHours is how long an auth session cookie stays valid.
	SessionTTLHours int `yaml:"session_ttl_hours"`

	// AllowedOrigins lists origins allowed to open the event WebSocket.
	// Empty enforces same-origin; "*" allows all.
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// IsOriginAllowed reports whether origin may open the event WebSocket. An
// empty allow-list enforces same-origin; "*" allows everything.
func (c *HTTPConfig) IsOriginAllowed(origin, requestHost string) bool {
	if len(c.AllowedOrigins) == 0 {
		return isSameOrigin(origin, requestHost)
	}
	for _, allowed := range c.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

func isSameOrigin(origin, requestHost string) bool {
	// no Origin header means a non-browser client
	if origin == "" {
		return true
	}
	originHost := origin
	if idx := strings.Index(origin, "://"); idx != -1 {
		originHost = origin[idx+3:]
	}
	originHost = strings.TrimSuffix(originHost, "/")
	return originHost == requestHost
}

// DatabaseConfig selects the persistence backend.
type DatabaseConfig struct {
	// Driver is "sqlite" or "postgres".
	Driver string `yaml:"driver"`

	// Path is the SQLite database file path (sqlite driver only).
	Path string `yaml:"path"`

	// DSN is the PostgreSQL connection string (postgres driver only).
	DSN string `yaml:"dsn"`
}

// PasswordConfig holds password validation settings.
type PasswordConfig struct {
	MinLength int `yaml:"min_length"`
	MaxLength int `yaml:"max_length"`
}

// GameSettings holds the tunables the game core consults at generation time.
// The settings endpoints mutate AutoSellThreshold and InventorySort per player
// preference; the rest are server-wide.
type GameSettings struct {
	// AutoSellThreshold routes generated items whose combined odds fall below
	// it straight to the sell queue.
	AutoSellThreshold float64 `yaml:"auto_sell_threshold"`

	// SellDelaySeconds is how long a queued item waits before converting to
	// currency and experience.
	SellDelaySeconds int `yaml:"sell_delay_seconds"`

	// SpawnIntervalSeconds is the enemy spawn cadence in the player's current
	// area.
	SpawnIntervalSeconds int `yaml:"spawn_interval_seconds"`

	// AutosaveIntervalSeconds is how often dirty sessions are flushed to the
	// database.
	AutosaveIntervalSeconds int `yaml:"autosave_interval_seconds"`

	// InventorySort orders inventory views: "newest", "price", or "odds".
	InventorySort string `yaml:"inventory_sort"`

	// StartingCurrency seeds fresh game states.
	StartingCurrency float64 `yaml:"starting_currency"`

	// DefaultArea is where fresh game states hunt.
	DefaultArea string `yaml:"default_area"`
}

// DefaultConfig returns a ServerConfig with workable defaults.
func DefaultConfig() *ServerConfig {
	return &ServerConfig{
		HTTP: HTTPConfig{
			Addr:            ":8080",
			SessionTTLHours: 168, // one week
			AllowedOrigins:  []string{},
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			Path:   "data/grindstone.db",
		},
		Password: PasswordConfig{
			MinLength: 8,
			MaxLength: 128,
		},
		Game: GameSettings{
			AutoSellThreshold:       150,
			SellDelaySeconds:        30,
			SpawnIntervalSeconds:    10,
			AutosaveIntervalSeconds: 60,
			InventorySort:           "newest",
			StartingCurrency:        50,
			DefaultArea:             "Meadow",
		},
	}
}

// LoadConfig loads server configuration from a YAML file, merging over
// defaults. A missing file is not an error; defaults apply. Environment
// variables override the operational fields afterwards.
func LoadConfig(path string) (*ServerConfig, error) {
	config := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return config, err
			}
		} else if err := yaml.Unmarshal(data, config); err != nil {
			return DefaultConfig(), err
		}
	}

	applyEnvOverrides(config)
	return config, nil
}

func applyEnvOverrides(config *ServerConfig) {
	if addr := os.Getenv("GRINDSTONE_ADDR"); addr != "" {
		config.HTTP.Addr = addr
	}
	if driver := os.Getenv("GRINDSTONE_DB_DRIVER"); driver != "" {
		config.Database.Driver = driver
	}
	if path := os.Getenv("GRINDSTONE_DB_PATH"); path != "" {
		config.Database.Path = path
	}
	if dsn := os.Getenv("GRINDSTONE_DB_DSN"); dsn != "" {
		config.Database.DSN = dsn
	}
	if ttl := os.Getenv("GRINDSTONE_SESSION_TTL_HOURS"); ttl != "" {
		if hours, err := strconv.Atoi(ttl); err == nil && hours > 0 {
			config.HTTP.SessionTTLHours = hours
		}
	}
}
