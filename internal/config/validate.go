package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/xiaot623/gogo/remindchat/internal/protocol"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	u, err := url.Parse(c.ServerURL)
	if err != nil {
		return fmt.Errorf("server_url is invalid: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("server_url must use http or https, got %q", c.ServerURL)
	}
	if u.Host == "" {
		return errors.New("server_url must include a host")
	}

	if c.RequestTimeout < 0 {
		return errors.New("request_timeout must be >= 0")
	}

	if len(c.Transports) == 0 {
		return errors.New("transports must list at least one transport")
	}
	for _, name := range c.Transports {
		switch name {
		case protocol.TransportWebSocket, protocol.TransportPolling, protocol.TransportFlashSocket:
		default:
			return fmt.Errorf("unknown transport %q", name)
		}
	}
	if c.PollInterval <= 0 {
		return errors.New("poll_interval must be > 0")
	}
	if c.ReconnectBaseDelay <= 0 {
		return errors.New("reconnect_base_delay must be > 0")
	}
	if c.ReconnectMaxDelay < c.ReconnectBaseDelay {
		return fmt.Errorf("reconnect_max_delay (%s) cannot be less than reconnect_base_delay (%s)",
			c.ReconnectMaxDelay, c.ReconnectBaseDelay)
	}

	if c.BannerDuration <= 0 {
		return errors.New("banner_duration must be > 0")
	}
	if c.BannerPolicy != BannerPolicyKeep && c.BannerPolicy != BannerPolicyReset {
		return fmt.Errorf("banner_policy must be %q or %q, got %q", BannerPolicyKeep, BannerPolicyReset, c.BannerPolicy)
	}

	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseLogLevel maps a LOG_LEVEL value to a slog level.
func ParseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log_level %q", level)
	}
}
