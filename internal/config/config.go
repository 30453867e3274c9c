package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"styllobarbe/internal/slots"
)

type Config struct {
	Server struct {
		Port            int `yaml:"port"`
		HealthCheckPort int `yaml:"health_check_port"`
	} `yaml:"server"`

	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	Redis struct {
		Address         string `yaml:"address"`
		Password        string `yaml:"password"`
		DB              int    `yaml:"db"`
		CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`
	} `yaml:"redis"`

	Monitoring struct {
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`

	Schedule struct {
		GranularityMinutes int    `yaml:"granularity_minutes"`
		OpenTime           string `yaml:"open_time"`
		CloseTime          string `yaml:"close_time"`
		BreakStart         string `yaml:"break_start"`
		BreakEnd           string `yaml:"break_end"`
	} `yaml:"schedule"`

	Booking struct {
		MinAdvanceMinutes     int     `yaml:"min_advance_minutes"`
		MaxAdvanceDays        int     `yaml:"max_advance_days"`
		SessionTimeoutMinutes int     `yaml:"session_timeout_minutes"`
		ConfirmRatePerSec     float64 `yaml:"confirm_rate_per_sec"`
		ConfirmBurst          int     `yaml:"confirm_burst"`
	} `yaml:"booking"`

	Stats struct {
		RefreshSeconds int    `yaml:"refresh_seconds"`
		BarbershopID   string `yaml:"barbershop_id"`
	} `yaml:"stats"`
}

func Load(path string) (*Config, error) {
	if path == "" {
		path = "configs/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Support ${ENV_VAR} placeholders in YAML config.
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if cfg.Database.Path == "" {
		cfg.Database.Path = "data/styllobarbe.db"
	}

	if err = os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Grid builds the slot grid from the schedule section, falling back to the
// system defaults (30m grid, 08:00-18:00, break 12:00-13:00).
func (c *Config) Grid() (slots.Grid, error) {
	grid := slots.DefaultGrid()

	if c.Schedule.GranularityMinutes > 0 {
		grid.Granularity = time.Duration(c.Schedule.GranularityMinutes) * time.Minute
	}
	fields := []struct {
		value string
		dst   *int
	}{
		{c.Schedule.OpenTime, &grid.OpenMin},
		{c.Schedule.CloseTime, &grid.CloseMin},
		{c.Schedule.BreakStart, &grid.BreakStartMin},
		{c.Schedule.BreakEnd, &grid.BreakEndMin},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		minutes, err := parseClock(f.value)
		if err != nil {
			return slots.Grid{}, err
		}
		*f.dst = minutes
	}
	if grid.CloseMin <= grid.OpenMin {
		return slots.Grid{}, fmt.Errorf("close_time %q must be after open_time %q", c.Schedule.CloseTime, c.Schedule.OpenTime)
	}
	return grid, nil
}

// parseClock converts "08:00" to minutes from midnight.
func parseClock(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time format: %s", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid hour: %w", err)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid minute: %w", err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("time out of range: %s", s)
	}
	return hour*60 + minute, nil
}

func (c *Config) BookingMinAdvance() time.Duration {
	if c.Booking.MinAdvanceMinutes <= 0 {
		return 60 * time.Minute
	}
	return time.Duration(c.Booking.MinAdvanceMinutes) * time.Minute
}

func (c *Config) BookingMaxAdvance() time.Duration {
	if c.Booking.MaxAdvanceDays <= 0 {
		return 30 * 24 * time.Hour
	}
	return time.Duration(c.Booking.MaxAdvanceDays) * 24 * time.Hour
}

// ConfirmRate throttles confirm submissions across sessions.
func (c *Config) ConfirmRate() float64 {
	if c.Booking.ConfirmRatePerSec <= 0 {
		return 5
	}
	return c.Booking.ConfirmRatePerSec
}

func (c *Config) ConfirmBurst() int {
	if c.Booking.ConfirmBurst <= 0 {
		return 10
	}
	return c.Booking.ConfirmBurst
}

func (c *Config) SessionTimeout() time.Duration {
	if c.Booking.SessionTimeoutMinutes <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(c.Booking.SessionTimeoutMinutes) * time.Minute
}

func (c *Config) StatsRefresh() time.Duration {
	if c.Stats.RefreshSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Stats.RefreshSeconds) * time.Second
}

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Redis.CacheTTLSeconds) * time.Second
}
