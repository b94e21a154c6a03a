package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Logging   LoggingConfig   `toml:"logging"`
	Storage   StorageConfig   `toml:"storage"`
	OAuth     OAuthConfig     `toml:"oauth"`
	Tracker   TrackerConfig   `toml:"tracker"`
	Extractor ExtractorConfig `toml:"extractor"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Format string   `toml:"format"` // "json" or "text"
	Output []string `toml:"output"` // "stdout", "file"
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

// OAuthConfig contains the tracker OAuth application settings.
// The redirect URI is fixed per install: http://<callback_host>:<callback_port>/callback
type OAuthConfig struct {
	ClientID     string `toml:"client_id"`
	AuthorizeURL string `toml:"authorize_url"`
	TokenURL     string `toml:"token_url"`
	Scopes       string `toml:"scopes"`
	CallbackHost string `toml:"callback_host"`
	CallbackPort int    `toml:"callback_port"`
}

// RedirectURL returns the fixed loopback redirect URI registered with the
// OAuth application.
func (c OAuthConfig) RedirectURL() string {
	return fmt.Sprintf("http://%s:%d/callback", c.CallbackHost, c.CallbackPort)
}

// CallbackAddr returns the listen address for the one-shot redirect listener.
func (c OAuthConfig) CallbackAddr() string {
	return fmt.Sprintf("%s:%d", c.CallbackHost, c.CallbackPort)
}

// TrackerConfig contains the issue tracker API settings
type TrackerConfig struct {
	GraphQLURL string `toml:"graphql_url"`
}

// ExtractorConfig contains page content extraction configuration
type ExtractorConfig struct {
	UserAgent          string        `toml:"user_agent"`           // User agent for page fetches
	RequestTimeout     time.Duration `toml:"request_timeout"`      // HTTP request timeout
	MaxBodySize        int           `toml:"max_body_size"`        // Maximum response body size in bytes
	EnableJavaScript   bool          `toml:"enable_javascript"`    // Render pages with chromedp before extraction
	JavaScriptWaitTime time.Duration `toml:"javascript_wait_time"` // Time to wait for JavaScript to render
}

// NewDefaultConfig creates a configuration with default values.
// Technical parameters are hardcoded here for production stability.
// Only user-facing settings should be exposed in clipper.toml.
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: 8090,
			Host: "localhost",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: []string{"stdout", "file"},
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data",
			},
		},
		OAuth: OAuthConfig{
			ClientID:     "", // User must provide the OAuth app client id in config
			AuthorizeURL: "https://linear.app/oauth/authorize",
			TokenURL:     "https://api.linear.app/oauth/token",
			Scopes:       "read,write",
			CallbackHost: "127.0.0.1",
			CallbackPort: 8976,
		},
		Tracker: TrackerConfig{
			GraphQLURL: "https://api.linear.app/graphql",
		},
		Extractor: ExtractorConfig{
			UserAgent:          "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			RequestTimeout:     30 * time.Second,
			MaxBodySize:        10 * 1024 * 1024, // 10MB
			EnableJavaScript:   false,
			JavaScriptWaitTime: 3 * time.Second,
		},
	}
}

// LoadFromFile loads configuration with priority: default -> file -> env -> CLI
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files with priority:
// default -> file1 -> file2 -> ... -> env -> CLI. Later files override
// earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	// Server configuration
	if port := os.Getenv("CLIPPER_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("CLIPPER_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	// Logging configuration
	if level := os.Getenv("CLIPPER_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if format := os.Getenv("CLIPPER_LOG_FORMAT"); format != "" {
		config.Logging.Format = format
	}
	if output := os.Getenv("CLIPPER_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	// Storage configuration
	if badgerPath := os.Getenv("CLIPPER_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	// OAuth configuration
	if clientID := os.Getenv("CLIPPER_OAUTH_CLIENT_ID"); clientID != "" {
		config.OAuth.ClientID = clientID
	}
	if authorizeURL := os.Getenv("CLIPPER_OAUTH_AUTHORIZE_URL"); authorizeURL != "" {
		config.OAuth.AuthorizeURL = authorizeURL
	}
	if tokenURL := os.Getenv("CLIPPER_OAUTH_TOKEN_URL"); tokenURL != "" {
		config.OAuth.TokenURL = tokenURL
	}
	if scopes := os.Getenv("CLIPPER_OAUTH_SCOPES"); scopes != "" {
		config.OAuth.Scopes = scopes
	}
	if callbackPort := os.Getenv("CLIPPER_OAUTH_CALLBACK_PORT"); callbackPort != "" {
		if p, err := strconv.Atoi(callbackPort); err == nil {
			config.OAuth.CallbackPort = p
		}
	}

	// Tracker configuration
	if graphqlURL := os.Getenv("CLIPPER_TRACKER_GRAPHQL_URL"); graphqlURL != "" {
		config.Tracker.GraphQLURL = graphqlURL
	}

	// Extractor configuration
	if userAgent := os.Getenv("CLIPPER_EXTRACTOR_USER_AGENT"); userAgent != "" {
		config.Extractor.UserAgent = userAgent
	}
	if requestTimeout := os.Getenv("CLIPPER_EXTRACTOR_REQUEST_TIMEOUT"); requestTimeout != "" {
		if rt, err := time.ParseDuration(requestTimeout); err == nil {
			config.Extractor.RequestTimeout = rt
		}
	}
	if maxBodySize := os.Getenv("CLIPPER_EXTRACTOR_MAX_BODY_SIZE"); maxBodySize != "" {
		if mbs, err := strconv.Atoi(maxBodySize); err == nil {
			config.Extractor.MaxBodySize = mbs
		}
	}
	if enableJavaScript := os.Getenv("CLIPPER_EXTRACTOR_ENABLE_JAVASCRIPT"); enableJavaScript != "" {
		if ej, err := strconv.ParseBool(enableJavaScript); err == nil {
			config.Extractor.EnableJavaScript = ej
		}
	}
	if waitTime := os.Getenv("CLIPPER_EXTRACTOR_JAVASCRIPT_WAIT_TIME"); waitTime != "" {
		if wt, err := time.ParseDuration(waitTime); err == nil {
			config.Extractor.JavaScriptWaitTime = wt
		}
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config
func ApplyFlagOverrides(config *Config, port int, host string) {
	// Command-line flags have highest priority
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// Validate checks that the configuration is usable before startup.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.OAuth.ClientID == "" {
		return fmt.Errorf("oauth client_id is required (set [oauth] client_id or CLIPPER_OAUTH_CLIENT_ID)")
	}
	if c.OAuth.AuthorizeURL == "" || c.OAuth.TokenURL == "" {
		return fmt.Errorf("oauth authorize_url and token_url are required")
	}
	if c.Tracker.GraphQLURL == "" {
		return fmt.Errorf("tracker graphql_url is required")
	}
	return nil
}
