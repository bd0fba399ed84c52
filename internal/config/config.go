// Package config loads application configuration from an optional YAML file
// with environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Database holds PostgreSQL connection settings.
type Database struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN builds a libpq-compatible connection string.
func (d Database) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address, e.g. ":8080".
	Listen string `yaml:"listen"`

	// Password is the shared application secret every login is checked
	// against. Empty means authentication fails closed: no password is
	// accepted at all.
	Password string `yaml:"password"`

	// Timezone is the IANA zone used for calendar-day arithmetic.
	Timezone string `yaml:"timezone"`

	// WeekStart is the first rendered weekday of the calendar grid,
	// "sunday" (default) or "monday".
	WeekStart string `yaml:"week_start"`

	// WebDir is the directory the static UI is served from.
	WebDir string `yaml:"web_dir"`

	Database Database `yaml:"database"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Listen:    ":8080",
		Timezone:  "Local",
		WeekStart: "sunday",
		WebDir:    "./web",
		Database: Database{
			Host:    "localhost",
			Port:    "5432",
			User:    "postgres",
			Name:    "personalcal",
			SSLMode: "disable",
		},
	}
}

// Load builds the configuration: defaults, then the YAML file at path (if
// path is non-empty), then environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.applyEnv()

	if _, err := cfg.Location(); err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("LISTEN"); v != "" {
		c.Listen = v
	} else if v := os.Getenv("PORT"); v != "" {
		c.Listen = ":" + v
	}
	if v := os.Getenv("APP_PASSWORD"); v != "" {
		c.Password = v
	}
	if v := os.Getenv("TIMEZONE"); v != "" {
		c.Timezone = v
	}
	if v := os.Getenv("WEEK_START"); v != "" {
		c.WeekStart = v
	}
	if v := os.Getenv("WEB_DIR"); v != "" {
		c.WebDir = v
	}

	c.Database.Host = getEnv("DB_HOST", c.Database.Host)
	c.Database.Port = getEnv("DB_PORT", c.Database.Port)
	c.Database.User = getEnv("DB_USER", c.Database.User)
	c.Database.Password = getEnv("DB_PASSWORD", c.Database.Password)
	c.Database.Name = getEnv("DB_NAME", c.Database.Name)
	c.Database.SSLMode = getEnv("DB_SSLMODE", c.Database.SSLMode)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// WeekStartDay maps the configured week start onto a time.Weekday.
// Unrecognised values fall back to Sunday.
func (c *Config) WeekStartDay() time.Weekday {
	if c.WeekStart == "monday" {
		return time.Monday
	}
	return time.Sunday
}
