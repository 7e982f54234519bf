package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	ListenAddr string `env:"APP_LISTEN_ADDR" envDefault:":8080"`
	BaseURL    string `env:"APP_BASE_URL" envDefault:"http://localhost:8080"`
	Version    string `env:"APP_VERSION" envDefault:"dev"`

	DB struct {
		DSN string `env:"APP_DB_DSN"`
	}

	Session struct {
		Secret string `env:"APP_SESSION_SECRET"`
	}

	// Pre-filled login form values; users may override them on the login pages.
	ChurchToolsDomain string `env:"APP_CT_DOMAIN"`
	CommuniServer     string `env:"APP_COMMUNI_SERVER"`

	// Timezone all upstream timestamps are rendered in.
	Timezone string `env:"APP_TIMEZONE" envDefault:"Europe/Berlin"`

	PrometheusEnabled bool     `env:"APP_PROMETHEUS_ENDPOINT_ENABLED" envDefault:"false"`
	TrustedProxies    []string `env:"APP_TRUSTED_PROXIES" envSeparator:","`

	// Optional YAML file overriding the embedded report defaults.
	ReportDefaultsPath string `env:"APP_REPORT_DEFAULTS"`

	Report   ReportDefaults `env:"-"`
	location *time.Location
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if cfg.DB.DSN == "" {
		return nil, errors.New("APP_DB_DSN is required")
	}
	if cfg.Session.Secret == "" {
		return nil, errors.New("APP_SESSION_SECRET is required")
	}
	if len(cfg.Session.Secret) < 32 {
		return nil, fmt.Errorf("APP_SESSION_SECRET must be at least 32 characters long (got %d)", len(cfg.Session.Secret))
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}
	cfg.location = loc

	report, err := LoadReportDefaults(cfg.ReportDefaultsPath)
	if err != nil {
		return nil, err
	}
	cfg.Report = *report

	return cfg, nil
}

// Location returns the configured report timezone.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.Local
	}
	return c.location
}
