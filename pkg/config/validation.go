package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var structValidator = validator.New()

// Validate checks structural constraints (required fields, ranges, oneof
// enums) via struct tags, then a handful of cross-field rules the tag
// syntax can't express.
func Validate(cfg *Config) error {
	if err := structValidator.Struct(cfg); err != nil {
		return err
	}

	if cfg.Telemetry.Enabled && cfg.Telemetry.Endpoint == "" {
		return fmt.Errorf("telemetry.endpoint is required when telemetry is enabled")
	}

	if cfg.Notifier.Enabled && cfg.Notifier.AdminEmail == "" && cfg.Notifier.SMTP.Host != "" {
		return fmt.Errorf("notifier.admin_email is required when notifier.smtp.host is set")
	}

	if err := cfg.Database.Validate(); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	return nil
}
