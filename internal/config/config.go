// Package config provides configuration for the reminder chat client.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/xiaot623/gogo/remindchat/internal/protocol"
)

// Banner hide policies
const (
	BannerPolicyKeep  = "keep"
	BannerPolicyReset = "reset"
)

// Default values for optional configuration fields.
const (
	DefaultServerURL          = "http://localhost:5000"
	DefaultRequestTimeout     = 30 * time.Second
	DefaultBannerDuration     = 5000 * time.Millisecond
	DefaultBannerPolicy       = BannerPolicyKeep
	DefaultPollInterval       = 1 * time.Second
	DefaultReconnectBaseDelay = 1 * time.Second
	DefaultReconnectMaxDelay  = 30 * time.Second
	DefaultLogLevel           = "info"
	DefaultLogFile            = "remindchat.log"
)

// Config holds the chat client configuration.
type Config struct {
	// Backend settings
	ServerURL      string        `yaml:"server_url"`
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// Push settings
	PushURL            string        `yaml:"push_url"`
	Transports         []string      `yaml:"transports"`
	PollInterval       time.Duration `yaml:"poll_interval"`
	ReconnectBaseDelay time.Duration `yaml:"reconnect_base_delay"`
	ReconnectMaxDelay  time.Duration `yaml:"reconnect_max_delay"`

	// Banner settings
	BannerDuration time.Duration `yaml:"banner_duration"`
	BannerPolicy   string        `yaml:"banner_policy"`

	// UI
	Plain bool `yaml:"plain"`

	// Logging
	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`
}

// Default returns a configuration holding every default value.
func Default() *Config {
	return &Config{
		ServerURL:          DefaultServerURL,
		RequestTimeout:     DefaultRequestTimeout,
		Transports:         append([]string(nil), protocol.DefaultTransports...),
		PollInterval:       DefaultPollInterval,
		ReconnectBaseDelay: DefaultReconnectBaseDelay,
		ReconnectMaxDelay:  DefaultReconnectMaxDelay,
		BannerDuration:     DefaultBannerDuration,
		BannerPolicy:       DefaultBannerPolicy,
		LogLevel:           DefaultLogLevel,
		LogFile:            DefaultLogFile,
	}
}

// Load builds the configuration. Defaults are overlaid by the optional YAML
// file, which is overlaid by environment variables (a .env file in the
// working directory included). An empty path falls back to REMINDCHAT_CONFIG.
func Load(path string) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := Default()
	if path == "" {
		path = os.Getenv("REMINDCHAT_CONFIG")
	}
	if path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)
	cfg.ServerURL = strings.TrimSuffix(cfg.ServerURL, "/")
	return cfg, nil
}

// loadFile reads a YAML config file and expands ${VAR} references.
func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return fmt.Errorf("parse config yaml: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.ServerURL = getEnv("SERVER_URL", cfg.ServerURL)
	cfg.PushURL = getEnv("PUSH_URL", cfg.PushURL)
	if val := os.Getenv("PUSH_TRANSPORTS"); val != "" {
		cfg.Transports = splitList(val)
	}
	cfg.RequestTimeout = getEnvMillis("REQUEST_TIMEOUT_MS", cfg.RequestTimeout)
	cfg.BannerDuration = getEnvMillis("BANNER_DURATION_MS", cfg.BannerDuration)
	cfg.BannerPolicy = getEnv("BANNER_POLICY", cfg.BannerPolicy)
	cfg.PollInterval = getEnvMillis("POLL_INTERVAL_MS", cfg.PollInterval)
	cfg.ReconnectBaseDelay = getEnvMillis("RECONNECT_BASE_MS", cfg.ReconnectBaseDelay)
	cfg.ReconnectMaxDelay = getEnvMillis("RECONNECT_MAX_MS", cfg.ReconnectMaxDelay)
	cfg.Plain = getEnvBool("PLAIN", cfg.Plain)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFile = getEnv("LOG_FILE", cfg.LogFile)
}

// PushEndpoint returns the websocket URL for the push transport.
// When PushURL is unset it is derived from ServerURL as ws(s)://host/push.
func (c *Config) PushEndpoint() (string, error) {
	if c.PushURL != "" {
		return c.PushURL, nil
	}
	u, err := url.Parse(c.ServerURL)
	if err != nil {
		return "", fmt.Errorf("parse server_url: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/push"
	return u.String(), nil
}

// PollEndpoint returns the URL of the long-polling push endpoint.
func (c *Config) PollEndpoint() string {
	return c.ServerURL + "/push/poll"
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvMillis(key string, defaultVal time.Duration) time.Duration {
	ms := getEnvInt(key, -1)
	if ms < 0 {
		return defaultVal
	}
	return time.Duration(ms) * time.Millisecond
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func splitList(val string) []string {
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
