package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials   CredentialsConfig   `toml:"credentials"`
	Database      DatabaseConfig      `toml:"database"`
	Server        ServerConfig        `toml:"server"`
	Notifications NotificationsConfig `toml:"notifications"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Perenual PerenualConfig `toml:"perenual"`
	Jamendo  JamendoConfig  `toml:"jamendo"`
	Google   GoogleConfig   `toml:"google"`
}

// PerenualConfig contains plant catalog API settings.
type PerenualConfig struct {
	APIKey    string  `toml:"api_key"`
	BaseURL   string  `toml:"base_url"`
	RateLimit float64 `toml:"rate_limit"`
}

// JamendoConfig contains audio catalog API settings.
type JamendoConfig struct {
	ClientID    string `toml:"client_id"`
	BaseURL     string `toml:"base_url"`
	Tags        string `toml:"tags"`
	Limit       int    `toml:"limit"`
	AudioFormat string `toml:"audio_format"`
}

// GoogleConfig contains OAuth2 client credentials for federated sign-in.
type GoogleConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURI  string `toml:"redirect_uri"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	SessionSecret string `toml:"session_secret"`
	SessionTTL    string `toml:"session_ttl"`
}

// NotificationsConfig controls the toast slot.
type NotificationsConfig struct {
	TTL string `toml:"ttl"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SessionDuration parses SessionTTL, falling back to 7 days.
func (s ServerConfig) SessionDuration() time.Duration {
	return parseDuration(s.SessionTTL, 7*24*time.Hour)
}

// Duration parses TTL, falling back to 3 seconds.
func (n NotificationsConfig) Duration() time.Duration {
	return parseDuration(n.TTL, 3*time.Second)
}

// GoogleEnabled reports whether federated sign-in can be offered.
func (c *Config) GoogleEnabled() bool {
	g := c.Credentials.Google
	return g.ClientID != "" && g.ClientSecret != "" && g.ClientID != "your_google_client_id"
}

// PlaceholderSecret is the session_secret shipped in the config template.
const PlaceholderSecret = "change-me"

// UsesPlaceholderSecret reports whether session tokens would be signed with the template secret.
func (c *Config) UsesPlaceholderSecret() bool {
	return c.Server.SessionSecret == PlaceholderSecret
}

// Validate checks the settings every front end needs.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("%w: database.path is empty", ErrInvalidConfig)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server.port %d out of range", ErrInvalidConfig, c.Server.Port)
	}
	if c.Server.SessionSecret == "" {
		return fmt.Errorf("%w: server.session_secret is empty", ErrMissingCredentials)
	}
	return nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadEnv loads variables from the given .env files (default ".env") without overriding the process environment.
//
// A missing file is not an error.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, f, err)
		}
	}
	return nil
}

// ApplyEnv overrides config values from BLOOMLY_* variables.
//
// The VITE_* names used by the original browser build are accepted for the catalog keys.
func (c *Config) ApplyEnv() {
	if v := firstEnv("BLOOMLY_PERENUAL_KEY", "VITE_PERENUAL_KEY"); v != "" {
		c.Credentials.Perenual.APIKey = v
	}
	if v := firstEnv("BLOOMLY_JAMENDO_KEY", "VITE_JAMENDO_KEY"); v != "" {
		c.Credentials.Jamendo.ClientID = v
	}
	if v := os.Getenv("BLOOMLY_GOOGLE_CLIENT_ID"); v != "" {
		c.Credentials.Google.ClientID = v
	}
	if v := os.Getenv("BLOOMLY_GOOGLE_CLIENT_SECRET"); v != "" {
		c.Credentials.Google.ClientSecret = v
	}
	if v := os.Getenv("BLOOMLY_SESSION_SECRET"); v != "" {
		c.Server.SessionSecret = v
	}
	if v := os.Getenv("BLOOMLY_DATABASE_PATH"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("BLOOMLY_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
