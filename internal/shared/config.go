package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// DefaultSearchLimit caps the number of candidates requested from the directory search.
const DefaultSearchLimit = 10

// Environment variables that override the credentials in the config file.
const (
	EnvAPIID   = "FLOODJOIN_API_ID"
	EnvAPIHash = "FLOODJOIN_API_HASH"
	EnvSession = "FLOODJOIN_SESSION"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Telegram TelegramConfig `toml:"telegram"`
	Database DatabaseConfig `toml:"database"`
	Join     JoinConfig     `toml:"join"`
}

// TelegramConfig contains the MTProto application credentials and session source.
type TelegramConfig struct {
	APIID       int    `toml:"api_id"`
	APIHash     string `toml:"api_hash"`
	Session     string `toml:"session"`
	SessionFile string `toml:"session_file"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// JoinConfig controls channel search and pacing between joins of a batch.
type JoinConfig struct {
	SearchLimit int      `toml:"search_limit"`
	Interval    Duration `toml:"interval"`
	Burst       int      `toml:"burst"`
}

// Duration wraps [time.Duration] so it can be written as "2s" in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("%w: bad duration %q: %v", ErrInvalidConfig, text, err)
	}
	d.Duration = v
	return nil
}

// MarshalText implements [encoding.TextMarshaler].
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Limit returns the configured search limit, or [DefaultSearchLimit] when unset.
func (j JoinConfig) Limit() int {
	if j.SearchLimit < 1 {
		return DefaultSearchLimit
	}
	return j.SearchLimit
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
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

	// 0600 since the file ends up holding api_hash and possibly a session string
	if err := os.WriteFile(path, exampleConf, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv overrides Telegram credentials with FLOODJOIN_* environment variables when they are set.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	if v, ok := lookup(EnvAPIID); ok && v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s must be numeric", ErrInvalidConfig, EnvAPIID)
		}
		c.Telegram.APIID = id
	}
	if v, ok := lookup(EnvAPIHash); ok && v != "" {
		c.Telegram.APIHash = v
	}
	if v, ok := lookup(EnvSession); ok && v != "" {
		c.Telegram.Session = v
	}

	return nil
}

// Validate checks that the credentials needed to open a Telegram session are present.
func (c *Config) Validate() error {
	if c.Telegram.APIID <= 0 {
		return fmt.Errorf("%w: telegram.api_id", ErrMissingCredentials)
	}
	if c.Telegram.APIHash == "" {
		return fmt.Errorf("%w: telegram.api_hash", ErrMissingCredentials)
	}
	if c.Telegram.Session == "" && c.Telegram.SessionFile == "" {
		return fmt.Errorf("%w: telegram.session or telegram.session_file", ErrMissingCredentials)
	}
	if c.Join.Burst < 0 {
		return fmt.Errorf("%w: join.burst must not be negative", ErrInvalidConfig)
	}
	return nil
}
