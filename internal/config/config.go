package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration for vscobot.
type Config struct {
	Telegram TelegramConfig `json:"telegram" yaml:"telegram"`
	Resolver ResolverConfig `json:"resolver" yaml:"resolver"`
	General  GeneralConfig  `json:"general" yaml:"general"`
	Logging  LoggingConfig  `json:"logging" yaml:"logging"`
	Metrics  MetricsConfig  `json:"metrics" yaml:"metrics"`
}

type TelegramConfig struct {
	Token              string         `json:"token" yaml:"token"`
	AllowFrom          FlexStringList `json:"allowFrom" yaml:"allowFrom"`
	PollTimeoutSeconds int            `json:"pollTimeoutSeconds" yaml:"pollTimeoutSeconds"`
	Debug              bool           `json:"debug" yaml:"debug"`
}

// FlexStringList is a []string that can unmarshal from JSON arrays containing
// both strings and numbers (e.g. ["123", 456] both become "123", "456").
type FlexStringList []string

func (f *FlexStringList) UnmarshalJSON(data []byte) error {
	var ss []string
	if err := json.Unmarshal(data, &ss); err == nil {
		*f = ss
		return nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	result := make([]string, 0, len(raw))
	for _, item := range raw {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			result = append(result, s)
			continue
		}
		var n float64
		if err := json.Unmarshal(item, &n); err == nil {
			result = append(result, strconv.FormatInt(int64(n), 10))
			continue
		}
		result = append(result, string(item))
	}
	*f = result
	return nil
}

type ResolverConfig struct {
	Endpoint       string `json:"endpoint" yaml:"endpoint"`
	TimeoutSeconds int    `json:"timeoutSeconds" yaml:"timeoutSeconds"` // 0 = HTTP client default
}

type GeneralConfig struct {
	StatusDeleteDelayMs   int `json:"statusDeleteDelayMs" yaml:"statusDeleteDelayMs"`
	MaxConcurrentMessages int `json:"maxConcurrentMessages" yaml:"maxConcurrentMessages"`
}

type LoggingConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"` // "text" | "json"
	File   string `json:"file,omitempty" yaml:"file,omitempty"`
}

// MetricsConfig configures the /health and /metrics HTTP server.
type MetricsConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Bind    string `json:"bind" yaml:"bind"`
	Path    string `json:"path" yaml:"path"`
}

// StatusDelay is how long the "Downloading" message is kept.
func (c *Config) StatusDelay() time.Duration {
	return time.Duration(c.General.StatusDeleteDelayMs) * time.Millisecond
}

// ResolverTimeout is the per-request timeout for the resolver service.
func (c *Config) ResolverTimeout() time.Duration {
	return time.Duration(c.Resolver.TimeoutSeconds) * time.Second
}

// DefaultConfigDir returns the default config directory (~/.vscobot).
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".vscobot"
	}
	return filepath.Join(home, ".vscobot")
}

func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.json")
}

// Load reads and validates the config at path. See Read.
func Load(path string) (*Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// Read parses the config at path without validating it. A .env file next to
// the config and one in the working directory are loaded first; variables
// already set in the environment win. A missing file yields Defaults(), so an
// exported BOT_TOKEN is enough to run.
func Read(path string) (*Config, error) {
	path = ExpandPath(path)
	if err := loadDotEnv(filepath.Join(filepath.Dir(path), ".env"), ".env"); err != nil {
		return nil, err
	}
	return read(path, true)
}

// ReadRaw parses the config at path keeping ${VAR} placeholders as written,
// for edits that are saved back to disk.
func ReadRaw(path string) (*Config, error) {
	return read(ExpandPath(path), false)
}

func read(path string, expand bool) (*Config, error) {
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// Round-trip the defaults so their ${VAR} placeholders are expanded too.
		if data, err = json.Marshal(Defaults()); err != nil {
			return nil, fmt.Errorf("cannot marshal defaults: %w", err)
		}
		path = "defaults.json"
	case err != nil:
		return nil, fmt.Errorf("cannot read config file %s: %w", path, err)
	}

	// Substitute environment variables: ${VAR} and ${VAR:-default}
	if expand {
		data = []byte(ExpandEnvVars(string(data)))
	}

	cfg := Defaults()
	if isYAML(path) {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot parse config file %s: %w", path, err)
	}

	if expand {
		cfg.Logging.File = ExpandPath(cfg.Logging.File)
	}
	return cfg, nil
}

func loadDotEnv(paths ...string) error {
	seen := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil || seen[abs] {
			continue
		}
		seen[abs] = true
		if err := godotenv.Load(abs); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("cannot load %s: %w", abs, err)
		}
	}
	return nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns in config strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-(.*?))?\}`)

// ExpandEnvVars replaces ${VAR} with the environment variable value.
// Supports default values: ${VAR:-default} uses "default" when VAR is unset or empty.
func ExpandEnvVars(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		varName := groups[1]
		defaultVal := ""
		hasDefault := len(groups) >= 3 && groups[2] != ""
		if hasDefault {
			defaultVal = groups[2]
		}

		val, exists := os.LookupEnv(varName)
		if !exists || val == "" {
			if hasDefault {
				return defaultVal
			}
			return match // Keep original if no env var and no default
		}
		return val
	})
}

// Save writes cfg as YAML when path ends in .yaml/.yml and as indented JSON otherwise.
func Save(path string, cfg *Config) error {
	path = ExpandPath(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cannot create config directory: %w", err)
	}

	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(cfg)
	} else {
		data, err = json.MarshalIndent(cfg, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}

	// The file may hold the bot token.
	return os.WriteFile(path, data, 0o600)
}

// Validate checks that the config has valid values.
func Validate(cfg *Config) error {
	var errs []string

	if cfg.Telegram.Token == "" || envVarPattern.MatchString(cfg.Telegram.Token) {
		errs = append(errs, "telegram.token is required (set it in the config or export BOT_TOKEN)")
	}
	if cfg.Telegram.PollTimeoutSeconds < 0 {
		errs = append(errs, "telegram.pollTimeoutSeconds must be >= 0")
	}

	if u, err := url.Parse(cfg.Resolver.Endpoint); err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		errs = append(errs, "resolver.endpoint must be an absolute http(s) URL")
	}
	if cfg.Resolver.TimeoutSeconds < 0 {
		errs = append(errs, "resolver.timeoutSeconds must be >= 0")
	}

	if cfg.General.StatusDeleteDelayMs < 0 {
		errs = append(errs, "general.statusDeleteDelayMs must be >= 0")
	}
	if cfg.General.MaxConcurrentMessages < 1 || cfg.General.MaxConcurrentMessages > 100 {
		errs = append(errs, "general.maxConcurrentMessages must be between 1 and 100")
	}

	switch strings.ToLower(cfg.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
		// valid
	default:
		errs = append(errs, "logging.level must be one of: debug, info, warn, error")
	}
	switch cfg.Logging.Format {
	case "text", "json":
		// valid
	default:
		errs = append(errs, "logging.format must be one of: text, json")
	}

	if cfg.Metrics.Enabled {
		if cfg.Metrics.Bind == "" {
			errs = append(errs, "metrics.bind is required when metrics are enabled")
		}
		if !strings.HasPrefix(cfg.Metrics.Path, "/") {
			errs = append(errs, "metrics.path must start with /")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// ExpandPath resolves ~/ to the user's home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
