package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/example/facility-booking/booking"
)

// Config captures the configuration values for a facility booking deployment.
type Config struct {
	Open         booking.TimeOfDay
	Close        booking.TimeOfDay
	BlockMinutes int
	Durations    []booking.Duration
	SQLiteDSN    string
	CacheSize    int
	LogLevel     string
}

type fileDuration struct {
	Minutes int    `yaml:"minutes"`
	Label   string `yaml:"label"`
}

type fileConfig struct {
	Open         string         `yaml:"open"`
	Close        string         `yaml:"close"`
	BlockMinutes int            `yaml:"block_minutes"`
	Durations    []fileDuration `yaml:"durations"`
	SQLiteDSN    string         `yaml:"sqlite_dsn"`
	CacheSize    int            `yaml:"cache_size"`
	LogLevel     string         `yaml:"log_level"`
}

// Load assembles configuration from an optional YAML file named by
// BOOKING_CONFIG_FILE, with individual BOOKING_* environment variables
// overriding file values. Defaults fill whatever remains unset, and every
// invalid entry is reported rather than silently coerced.
func Load() (Config, error) {
	cfg := Config{
		Open:         booking.NewTimeOfDay(8, 0),
		Close:        booking.NewTimeOfDay(22, 0),
		BlockMinutes: 30,
		SQLiteDSN:    "file:bookings.db?_foreign_keys=on",
		CacheSize:    128,
		LogLevel:     "info",
	}

	invalid := make([]string, 0, 2)

	if path := strings.TrimSpace(os.Getenv("BOOKING_CONFIG_FILE")); path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}

	if value := strings.TrimSpace(os.Getenv("BOOKING_OPEN")); value != "" {
		open, err := booking.ParseTimeOfDay(value)
		if err != nil {
			invalid = append(invalid, "BOOKING_OPEN")
		} else {
			cfg.Open = open
		}
	}

	if value := strings.TrimSpace(os.Getenv("BOOKING_CLOSE")); value != "" {
		closeAt, err := booking.ParseTimeOfDay(value)
		if err != nil {
			invalid = append(invalid, "BOOKING_CLOSE")
		} else {
			cfg.Close = closeAt
		}
	}

	if value := strings.TrimSpace(os.Getenv("BOOKING_BLOCK_MINUTES")); value != "" {
		minutes, err := strconv.Atoi(value)
		if err != nil || minutes <= 0 {
			invalid = append(invalid, "BOOKING_BLOCK_MINUTES")
		} else {
			cfg.BlockMinutes = minutes
		}
	}

	if value := strings.TrimSpace(os.Getenv("BOOKING_SQLITE_DSN")); value != "" {
		cfg.SQLiteDSN = value
	}

	if value := strings.TrimSpace(os.Getenv("BOOKING_CACHE_SIZE")); value != "" {
		size, err := strconv.Atoi(value)
		if err != nil || size <= 0 {
			invalid = append(invalid, "BOOKING_CACHE_SIZE")
		} else {
			cfg.CacheSize = size
		}
	}

	if value := strings.TrimSpace(os.Getenv("BOOKING_LOG_LEVEL")); value != "" {
		cfg.LogLevel = value
	}

	if cfg.Close < cfg.Open {
		invalid = append(invalid, "BOOKING_CLOSE")
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("config: invalid values for: %s", strings.Join(invalid, ", "))
	}

	if len(cfg.Durations) == 0 {
		cfg.Durations = defaultDurations()
	}

	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	var file fileConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	if file.Open != "" {
		open, err := booking.ParseTimeOfDay(file.Open)
		if err != nil {
			return fmt.Errorf("config: %s: %w", path, err)
		}
		cfg.Open = open
	}
	if file.Close != "" {
		closeAt, err := booking.ParseTimeOfDay(file.Close)
		if err != nil {
			return fmt.Errorf("config: %s: %w", path, err)
		}
		cfg.Close = closeAt
	}
	if file.BlockMinutes > 0 {
		cfg.BlockMinutes = file.BlockMinutes
	}
	if file.SQLiteDSN != "" {
		cfg.SQLiteDSN = file.SQLiteDSN
	}
	if file.CacheSize > 0 {
		cfg.CacheSize = file.CacheSize
	}
	if file.LogLevel != "" {
		cfg.LogLevel = file.LogLevel
	}

	for _, d := range file.Durations {
		duration, err := booking.NewDuration(d.Minutes, d.Label)
		if err != nil {
			return fmt.Errorf("config: %s: duration %q: %w", path, d.Label, err)
		}
		cfg.Durations = append(cfg.Durations, duration)
	}

	return nil
}

func defaultDurations() []booking.Duration {
	return []booking.Duration{
		{Minutes: 60, Label: "1h"},
		{Minutes: 90, Label: "1h30"},
		{Minutes: 120, Label: "2h"},
	}
}
