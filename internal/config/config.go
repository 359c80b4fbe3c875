// Package config loads runtime configuration from defaults, a .env file and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

const (
	defaultEnvFile         = ".env"
	defaultAddress         = ":8080"
	defaultReadTimeout     = 15 * time.Second
	defaultWriteTimeout    = 30 * time.Second
	defaultIdleTimeout     = 120 * time.Second
	defaultShutdownTimeout = 10 * time.Second
	defaultReloadSchedule  = "@every 15m"
	defaultSweepSchedule   = "@every 1m"
	defaultPageTTL         = 30 * time.Minute
	defaultMaxPages        = 10000
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server ServerConfig
	Data   DataConfig
	Pages  PageConfig
	Log    LogConfig
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Address         string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// DataConfig points at the dataset and glossary files. Empty paths select the
// bundled sample dataset and glossary.
type DataConfig struct {
	DatasetPath    string
	GlossaryPath   string
	ReloadSchedule string
}

// PageConfig controls page-session lifetime. MaxSessions caps the number of
// live sessions; the least recently used one is evicted to make room.
type PageConfig struct {
	TTL           time.Duration
	SweepSchedule string
	MaxSessions   int
}

// LogConfig controls logger construction.
type LogConfig struct {
	Level string
}

// ValidationError is returned when configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env file path used for local overrides.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects an explicit key/value map for environment lookups. Values
// in the map take precedence over system environment variables.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from the process environment.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// Load assembles the configuration. Precedence is explicit map, then system
// environment, then the .env file, then defaults.
func Load(opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	var invalid []string
	lookup := func(key string) (string, bool) {
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				return value, true
			}
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		if value, ok := dotEnvValues[key]; ok {
			return value, true
		}
		return "", false
	}
	duration := func(key, field string, fallback time.Duration) time.Duration {
		d, ok := durationWithDefault(lookup, key, fallback)
		if !ok {
			invalid = append(invalid, field)
		}
		return d
	}
	positiveInt := func(key, field string, fallback int) int {
		n, ok := positiveIntWithDefault(lookup, key, fallback)
		if !ok {
			invalid = append(invalid, field)
		}
		return n
	}

	cfg := Config{
		Server: ServerConfig{
			Address:         stringWithDefault(lookup, "STATECARDS_ADDR", defaultAddress),
			ReadTimeout:     duration("STATECARDS_READ_TIMEOUT", "Server.ReadTimeout", defaultReadTimeout),
			WriteTimeout:    duration("STATECARDS_WRITE_TIMEOUT", "Server.WriteTimeout", defaultWriteTimeout),
			IdleTimeout:     duration("STATECARDS_IDLE_TIMEOUT", "Server.IdleTimeout", defaultIdleTimeout),
			ShutdownTimeout: duration("STATECARDS_SHUTDOWN_TIMEOUT", "Server.ShutdownTimeout", defaultShutdownTimeout),
		},
		Data: DataConfig{
			DatasetPath:    stringWithDefault(lookup, "STATECARDS_DATASET", ""),
			GlossaryPath:   stringWithDefault(lookup, "STATECARDS_GLOSSARY", ""),
			ReloadSchedule: scheduleWithDefault(lookup, "STATECARDS_RELOAD_SCHEDULE", defaultReloadSchedule),
		},
		Pages: PageConfig{
			TTL:           duration("STATECARDS_PAGE_TTL", "Pages.TTL", defaultPageTTL),
			SweepSchedule: scheduleWithDefault(lookup, "STATECARDS_SWEEP_SCHEDULE", defaultSweepSchedule),
			MaxSessions:   positiveInt("STATECARDS_MAX_PAGES", "Pages.MaxSessions", defaultMaxPages),
		},
		Log: LogConfig{
			Level: stringWithDefault(lookup, "LOG_LEVEL", ""),
		},
	}

	if err := validateConfig(cfg, invalid); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validateConfig(cfg Config, invalid []string) error {
	missing := append([]string(nil), invalid...)

	if strings.TrimSpace(cfg.Server.Address) == "" {
		missing = append(missing, "Server.Address")
	}
	if cfg.Pages.TTL <= 0 && !slices.Contains(missing, "Pages.TTL") {
		missing = append(missing, "Pages.TTL")
	}
	if !validSchedule(cfg.Data.ReloadSchedule) {
		missing = append(missing, "Data.ReloadSchedule")
	}
	if !validSchedule(cfg.Pages.SweepSchedule) {
		missing = append(missing, "Pages.SweepSchedule")
	}

	if len(missing) > 0 {
		return &ValidationError{fields: missing}
	}
	return nil
}

// validSchedule accepts an empty schedule (job disabled) or a standard cron spec.
func validSchedule(spec string) bool {
	if spec == "" {
		return true
	}
	_, err := cron.ParseStandard(spec)
	return err == nil
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	values, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", path, err)
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

// scheduleWithDefault treats "off" as an explicitly disabled job.
func scheduleWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	value := stringWithDefault(lookup, key, fallback)
	if strings.EqualFold(value, "off") {
		return ""
	}
	return value
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) (time.Duration, bool) {
	value, ok := lookup(key)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback, true
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil || d < 0 {
		return fallback, false
	}
	return d, true
}

func positiveIntWithDefault(lookup func(string) (string, bool), key string, fallback int) (int, bool) {
	value, ok := lookup(key)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback, true
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n <= 0 {
		return fallback, false
	}
	return n, true
}
