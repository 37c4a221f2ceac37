package shared

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

const youtubeReadonlyScope = "https://www.googleapis.com/auth/youtube.readonly"

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	YouTube  YouTubeConfig  `toml:"youtube"`
	Captions CaptionsConfig `toml:"captions"`
	Database DatabaseConfig `toml:"database"`
	Storage  StorageConfig  `toml:"storage"`
	Log      LogConfig      `toml:"log"`
}

// YouTubeConfig contains YouTube Data API settings.
type YouTubeConfig struct {
	APIKey         string `toml:"api_key"`
	AccessToken    string `toml:"access_token"`
	RefreshToken   string `toml:"refresh_token"`
	ClientID       string `toml:"client_id"`
	ClientSecret   string `toml:"client_secret"`
	RedirectURI    string `toml:"redirect_uri"`
	BaseURL        string `toml:"base_url"`
	PageIntervalMS int    `toml:"page_interval_ms"`
}

// OAuthConfig returns the authorization code flow settings for the Data API (read-only scope).
func (c YouTubeConfig) OAuthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		RedirectURL:  c.RedirectURI,
		Endpoint:     endpoints.Google,
		Scopes:       []string{youtubeReadonlyScope},
	}
}

// Token returns the stored OAuth2 token, or nil when none was saved.
func (c YouTubeConfig) Token() *oauth2.Token {
	if c.AccessToken == "" && c.RefreshToken == "" {
		return nil
	}
	return &oauth2.Token{AccessToken: c.AccessToken, RefreshToken: c.RefreshToken, TokenType: "Bearer"}
}

// SetToken stores token's credentials. A token without a refresh token keeps the previous one.
func (c *YouTubeConfig) SetToken(token *oauth2.Token) error {
	if token == nil {
		return fmt.Errorf("%w: token cannot be nil", ErrInvalidArgument)
	}
	c.AccessToken = token.AccessToken
	if token.RefreshToken != "" {
		c.RefreshToken = token.RefreshToken
	}
	return nil
}

// PageInterval is the pause between playlist item pages.
func (c YouTubeConfig) PageInterval() time.Duration {
	if c.PageIntervalMS < 0 {
		return 0
	}
	return time.Duration(c.PageIntervalMS) * time.Millisecond
}

// CaptionsConfig points at the local caption proxy.
type CaptionsConfig struct {
	ProxyURL string `toml:"proxy_url"`
}

// DatabaseConfig contains database connection settings.
//
// Driver is "sqlite3" (Path is a file or ":memory:") or "pgx" (DSN is a Postgres URL).
type DatabaseConfig struct {
	Driver       string `toml:"driver"`
	Path         string `toml:"path"`
	DSN          string `toml:"dsn"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// StorageConfig configures the object store for uploaded videos.
type StorageConfig struct {
	Root          string `toml:"root"`
	PublicBaseURL string `toml:"public_base_url"`
}

// LogConfig sets the log level.
type LogConfig struct {
	Level string `toml:"level"`
}

// Environment variables that override values from the config file.
const (
	EnvYouTubeAPIKey      = "YOUTUBE_API_KEY"
	EnvYouTubeAccessToken = "YOUTUBE_ACCESS_TOKEN"
	EnvYouTubeClientID    = "YOUTUBE_CLIENT_ID"
	EnvYouTubeSecret      = "YOUTUBE_CLIENT_SECRET"
	EnvDatabaseDriver     = "DATABASE_DRIVER"
	EnvDatabaseURL        = "DATABASE_URL"
	EnvCaptionProxyURL    = "CAPTION_PROXY_URL"
	EnvPageIntervalMS     = "YOUTUBE_PAGE_INTERVAL_MS"
	EnvLogLevel           = "LOG_LEVEL"
)

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep their defaults.
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

// SaveConfig writes config to path as TOML, replacing the file.
func SaveConfig(path string, config *Config) error {
	if config == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidArgument)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// LoadEnv loads variables from the given dotenv files (missing files are ignored)
// and applies them on top of c.
func (c *Config) LoadEnv(files ...string) error {
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return c.ApplyEnv(os.LookupEnv)
}

// ApplyEnv overrides config fields from lookup, which usually is [os.LookupEnv].
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvYouTubeAPIKey); ok && v != "" {
		c.YouTube.APIKey = v
	}
	if v, ok := lookup(EnvYouTubeAccessToken); ok && v != "" {
		c.YouTube.AccessToken = v
	}
	if v, ok := lookup(EnvYouTubeClientID); ok && v != "" {
		c.YouTube.ClientID = v
	}
	if v, ok := lookup(EnvYouTubeSecret); ok && v != "" {
		c.YouTube.ClientSecret = v
	}
	if v, ok := lookup(EnvDatabaseDriver); ok && v != "" {
		c.Database.Driver = v
	}
	if v, ok := lookup(EnvDatabaseURL); ok && v != "" {
		if c.Database.Driver == DriverPostgres {
			c.Database.DSN = v
		} else {
			c.Database.Path = v
		}
	}
	if v, ok := lookup(EnvCaptionProxyURL); ok && v != "" {
		c.Captions.ProxyURL = v
	}
	if v, ok := lookup(EnvPageIntervalMS); ok && v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalidConfig, EnvPageIntervalMS, v)
		}
		c.YouTube.PageIntervalMS = ms
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = v
	}
	return nil
}

// Validate reports settings that would prevent the ingestion pipeline from running.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("%w: database.path is required for sqlite3", ErrInvalidConfig)
		}
	case DriverPostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("%w: database.dsn is required for pgx", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown database driver %q", ErrInvalidConfig, c.Database.Driver)
	}
	return nil
}
