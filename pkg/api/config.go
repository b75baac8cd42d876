// Package api exposes the HTTP control surface: request submission and
// validation, task inspection, and notification management, secured by a
// JWT bearer scheme.
package api

import "time"

// JWTConfig configures bearer-token issuance and verification.
type JWTConfig struct {
	Secret string        `mapstructure:"secret" validate:"required,min=32" yaml:"secret"`
	TTL    time.Duration `mapstructure:"ttl" yaml:"ttl"`
}

// Config configures the HTTP API server.
type Config struct {
	Port         int           `mapstructure:"port" validate:"required,min=1,max=65535" yaml:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`
	JWT          JWTConfig     `mapstructure:"jwt" yaml:"jwt"`
}
