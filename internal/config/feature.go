package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// FeatureConfig holds operator-facing integration settings.
// These are non-sensitive and can change without redeployment.
// Source: TOML configuration file
type FeatureConfig struct {
	Calendar CalendarConfig `toml:"calendar"`
	Payment  PaymentConfig  `toml:"payment"`
	Metrics  MetricsConfig  `toml:"metrics"`
}

// CalendarConfig configures the per-driver external calendars.
type CalendarConfig struct {
	Enabled            bool   `toml:"enabled"`
	ServiceAccountPath string `toml:"service_account_path"`
	// Impersonate is the workspace user the service account acts as (domain-wide delegation).
	Impersonate          string   `toml:"impersonate"`
	ProjectID            string   `toml:"project_id"`
	Timezone             string   `toml:"timezone"`
	CalendarPrefix       string   `toml:"calendar_prefix"`
	ReminderPopupMinutes int64    `toml:"reminder_popup_minutes"`
	ReminderEmailMinutes int64    `toml:"reminder_email_minutes"`
	EventColorID         string   `toml:"event_color_id"`
	MaxAttempts          int      `toml:"max_attempts"`
	BackoffStep          Duration `toml:"backoff_step"`
}

// PaymentConfig describes the payment notifications that confirm express bookings.
type PaymentConfig struct {
	// NotificationURL is the public webhook URL; it is part of the signed payload.
	NotificationURL  string   `toml:"notification_url"`
	ExpectedAmount   int64    `toml:"expected_amount"`
	ExpectedCurrency string   `toml:"expected_currency"`
	MatchWindow      Duration `toml:"match_window"`
}

type MetricsConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Duration decodes TOML strings such as "1s" or "5m".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// DefaultFeatureConfig returns the settings used when no file or key is present.
func DefaultFeatureConfig() FeatureConfig {
	return FeatureConfig{
		Calendar: CalendarConfig{
			Timezone:             "America/Edmonton",
			CalendarPrefix:       "Party Bus - ",
			ReminderPopupMinutes: 30,
			ReminderEmailMinutes: 60,
			EventColorID:         "2",
			MaxAttempts:          3,
			BackoffStep:          Duration{time.Second},
		},
		Payment: PaymentConfig{
			ExpectedAmount:   30000,
			ExpectedCurrency: "CAD",
			MatchWindow:      Duration{5 * time.Minute},
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// LoadFeatureConfig loads feature configuration from a TOML file on top of the defaults.
// A missing file yields the defaults.
func LoadFeatureConfig(path string) (*FeatureConfig, error) {
	cfg := DefaultFeatureConfig()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("failed to load feature config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings that would otherwise fail at first use.
func (c *FeatureConfig) Validate() error {
	if c.Calendar.Enabled {
		if c.Calendar.ServiceAccountPath == "" {
			return fmt.Errorf("calendar.service_account_path is required when calendar is enabled")
		}
		if _, err := time.LoadLocation(c.Calendar.Timezone); err != nil {
			return fmt.Errorf("calendar.timezone: %w", err)
		}
	}
	if c.Calendar.MaxAttempts < 1 {
		return fmt.Errorf("calendar.max_attempts must be at least 1")
	}
	if c.Payment.ExpectedAmount <= 0 {
		return fmt.Errorf("payment.expected_amount must be positive")
	}
	return nil
}

// LoadServiceAccountKey reads the service account JSON from the configured path.
func (c *CalendarConfig) LoadServiceAccountKey() ([]byte, error) {
	if c.ServiceAccountPath == "" {
		return nil, fmt.Errorf("service_account_path is not configured")
	}
	data, err := os.ReadFile(c.ServiceAccountPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read service account file: %w", err)
	}
	return data, nil
}
