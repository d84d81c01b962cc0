package config

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	envVarListenAddr      = "REELCHAT_LISTEN_ADDR"
	envVarAllowedOrigins  = "REELCHAT_ALLOWED_ORIGINS"
	envVarLogFormat       = "REELCHAT_LOG_FORMAT"
	envVarLogLevel        = "REELCHAT_LOG_LEVEL"
	envVarShutdownTimeout = "REELCHAT_SHUTDOWN_TIMEOUT"

	// WebSocket intake hardening.
	envVarMaxEventBytes      = "REELCHAT_MAX_EVENT_BYTES"
	envVarMaxEventsPerSecond = "REELCHAT_MAX_EVENTS_PER_SECOND"
	envVarWSIdleTimeout      = "REELCHAT_WS_IDLE_TIMEOUT"
	envVarWSPingInterval     = "REELCHAT_WS_PING_INTERVAL"
	envVarWSWriteTimeout     = "REELCHAT_WS_WRITE_TIMEOUT"

	// Conversation store bounds. Zero means unlimited.
	envVarMaxMessageTextBytes = "REELCHAT_MAX_MESSAGE_TEXT_BYTES"
)

const (
	DefaultListenAddr      = "127.0.0.1:8080"
	DefaultShutdownTimeout = 15 * time.Second

	DefaultMaxEventBytes      = int64(64 * 1024)
	DefaultMaxEventsPerSecond = 50
	DefaultWSIdleTimeout      = 60 * time.Second
	DefaultWSPingInterval     = 20 * time.Second
	DefaultWSWriteTimeout     = 1 * time.Second

	DefaultMaxMessageTextBytes = 4096
)

type LogFormat string

const (
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
)

// Config holds the process-wide runtime configuration.
//
// Values come from environment variables with flag overrides for the ones
// that are commonly changed in development.
type Config struct {
	ListenAddr      string
	AllowedOrigins  []string
	LogFormat       LogFormat
	LogLevel        slog.Level
	ShutdownTimeout time.Duration

	MaxEventBytes      int64
	MaxEventsPerSecond int
	WSIdleTimeout      time.Duration
	WSPingInterval     time.Duration
	WSWriteTimeout     time.Duration

	MaxMessageTextBytes int
}

func Load(args []string) (Config, error) {
	return load(os.LookupEnv, args)
}

func load(lookup func(string) (string, bool), args []string) (Config, error) {
	listenAddr := envOrDefault(lookup, envVarListenAddr, DefaultListenAddr)
	allowedOriginsStr := envOrDefault(lookup, envVarAllowedOrigins, "")
	logFormatStr := envOrDefault(lookup, envVarLogFormat, string(LogFormatText))
	logLevelStr := envOrDefault(lookup, envVarLogLevel, "info")

	shutdownTimeout, err := envDurationOrDefault(lookup, envVarShutdownTimeout, DefaultShutdownTimeout)
	if err != nil {
		return Config{}, err
	}

	maxEventBytes, err := envInt64OrDefault(lookup, envVarMaxEventBytes, DefaultMaxEventBytes)
	if err != nil {
		return Config{}, err
	}
	maxEventsPerSecond, err := envIntOrDefault(lookup, envVarMaxEventsPerSecond, DefaultMaxEventsPerSecond)
	if err != nil {
		return Config{}, err
	}
	wsIdleTimeout, err := envDurationOrDefault(lookup, envVarWSIdleTimeout, DefaultWSIdleTimeout)
	if err != nil {
		return Config{}, err
	}
	wsPingInterval, err := envDurationOrDefault(lookup, envVarWSPingInterval, DefaultWSPingInterval)
	if err != nil {
		return Config{}, err
	}
	wsWriteTimeout, err := envDurationOrDefault(lookup, envVarWSWriteTimeout, DefaultWSWriteTimeout)
	if err != nil {
		return Config{}, err
	}
	maxMessageTextBytes, err := envIntOrDefault(lookup, envVarMaxMessageTextBytes, DefaultMaxMessageTextBytes)
	if err != nil {
		return Config{}, err
	}

	fs := flag.NewFlagSet("reelchat", flag.ContinueOnError)
	fs.StringVar(&listenAddr, "listen-addr", listenAddr, "TCP listen address")
	fs.StringVar(&logFormatStr, "log-format", logFormatStr, "log format: text or json")
	fs.StringVar(&logLevelStr, "log-level", logLevelStr, "log level: debug, info, warn or error")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	logFormat, err := parseLogFormat(logFormatStr)
	if err != nil {
		return Config{}, err
	}
	logLevel, err := parseLogLevel(logLevelStr)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		ListenAddr:      listenAddr,
		AllowedOrigins:  splitList(allowedOriginsStr),
		LogFormat:       logFormat,
		LogLevel:        logLevel,
		ShutdownTimeout: shutdownTimeout,

		MaxEventBytes:      maxEventBytes,
		MaxEventsPerSecond: maxEventsPerSecond,
		WSIdleTimeout:      wsIdleTimeout,
		WSPingInterval:     wsPingInterval,
		WSWriteTimeout:     wsWriteTimeout,

		MaxMessageTextBytes: maxMessageTextBytes,
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("listen address must not be empty")
	}
	if c.MaxEventBytes <= 0 {
		return fmt.Errorf("%s must be positive", envVarMaxEventBytes)
	}
	if c.MaxEventsPerSecond <= 0 {
		return fmt.Errorf("%s must be positive", envVarMaxEventsPerSecond)
	}
	if c.WSPingInterval > 0 && c.WSIdleTimeout > 0 && c.WSPingInterval >= c.WSIdleTimeout {
		return fmt.Errorf("%s must be shorter than %s", envVarWSPingInterval, envVarWSIdleTimeout)
	}
	if c.MaxMessageTextBytes < 0 {
		return fmt.Errorf("%s must not be negative", envVarMaxMessageTextBytes)
	}
	return nil
}

// NewLogger builds the process logger from the configured format and level.
func NewLogger(cfg Config) (*slog.Logger, error) {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	switch cfg.LogFormat {
	case LogFormatText:
		handler = slog.NewTextHandler(os.Stdout, opts)
	case LogFormatJSON:
		handler = slog.NewJSONHandler(os.Stdout, opts)
	default:
		return nil, fmt.Errorf("unsupported log format %q", cfg.LogFormat)
	}

	return slog.New(handler), nil
}

func parseLogFormat(raw string) (LogFormat, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "text":
		return LogFormatText, nil
	case "json":
		return LogFormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported log format %q", raw)
	}
}

func parseLogLevel(raw string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unsupported log level %q", raw)
	}
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func envOrDefault(lookup func(string) (string, bool), key, fallback string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return fallback
}

func envIntOrDefault(lookup func(string) (string, bool), key string, fallback int) (int, error) {
	raw, ok := lookup(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return n, nil
}

func envInt64OrDefault(lookup func(string) (string, bool), key string, fallback int64) (int64, error) {
	raw, ok := lookup(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return n, nil
}

func envDurationOrDefault(lookup func(string) (string, bool), key string, fallback time.Duration) (time.Duration, error) {
	raw, ok := lookup(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return d, nil
}
