package config

import (
	"strings"
	"time"

	"github.com/permflow/engine/pkg/api"
	"github.com/permflow/engine/pkg/catalogue/store"
)

// ApplyDefaults sets default values for any unspecified configuration
// fields. Zero values are replaced with defaults; explicit values are
// preserved.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyTelemetryDefaults(&cfg.Telemetry)
	applyDatabaseDefaults(&cfg.Database)
	applyMetricsDefaults(&cfg.Metrics)
	applyControlPlaneDefaults(&cfg.ControlPlane)
	applyAdminDefaults(&cfg.Admin)
	applyCSVDefaults(&cfg.CSV)
	applyWorkflowDefaults(&cfg.Workflow)
	applyDirectoryDefaults(&cfg.Directory)
	applyNotifierDefaults(&cfg.Notifier)
	applyOrchestratorDefaults(&cfg.Orchestrator)
	applySyncDefaults(&cfg.Sync)

	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
}

func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

func applyTelemetryDefaults(cfg *TelemetryConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "localhost:4317"
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 1.0
	}
	applyProfilingDefaults(&cfg.Profiling)
}

func applyProfilingDefaults(cfg *ProfilingConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "http://localhost:4040"
	}
	if len(cfg.ProfileTypes) == 0 {
		cfg.ProfileTypes = []string{"cpu", "alloc_objects", "alloc_space", "inuse_objects", "inuse_space", "goroutines"}
	}
}

func applyDatabaseDefaults(cfg *store.Config) {
	cfg.ApplyDefaults()
}

func applyMetricsDefaults(cfg *MetricsConfig) {
	if cfg.Enabled && cfg.Port == 0 {
		cfg.Port = 9090
	}
}

func applyControlPlaneDefaults(cfg *api.Config) {
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 10 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = 60 * time.Second
	}
	if cfg.JWT.TTL == 0 {
		cfg.JWT.TTL = 8 * time.Hour
	}
}

func applyAdminDefaults(cfg *AdminConfig) {
	if cfg.Username == "" {
		cfg.Username = "admin"
	}
}

func applyCSVDefaults(cfg *CSVConfig) {
	if cfg.OutputDir == "" {
		cfg.OutputDir = "/var/lib/accessreq/csv"
	}
	if cfg.RetentionDays == 0 {
		cfg.RetentionDays = 30
	}
}

func applyWorkflowDefaults(cfg *WorkflowConfig) {
	if cfg.Style == "" {
		cfg.Style = "auto"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.DAGID == "" {
		cfg.DAGID = "permission_change"
	}
}

func applyDirectoryDefaults(cfg *DirectoryConfig) {
	if cfg.Port == 0 {
		if cfg.UseTLS {
			cfg.Port = 636
		} else {
			cfg.Port = 389
		}
	}
	if cfg.UserFilter == "" {
		cfg.UserFilter = "(&(objectClass=user)(sAMAccountName=%s))"
	}
	if cfg.GroupFilter == "" {
		cfg.GroupFilter = "(&(objectClass=group)(cn=%s))"
	}
	if cfg.MemberFilter == "" {
		cfg.MemberFilter = "(&(objectClass=user)(memberOf=%s))"
	}
	if cfg.UserListFilter == "" {
		cfg.UserListFilter = "(objectClass=user)"
	}
	if cfg.GroupListFilter == "" {
		cfg.GroupListFilter = "(objectClass=group)"
	}
	if cfg.AttrUsername == "" {
		cfg.AttrUsername = "sAMAccountName"
	}
	if cfg.AttrMail == "" {
		cfg.AttrMail = "mail"
	}
	if cfg.AttrDN == "" {
		cfg.AttrDN = "distinguishedName"
	}
}

func applyNotifierDefaults(cfg *NotifierConfig) {
	if cfg.Cooldown == 0 {
		cfg.Cooldown = 24 * time.Hour
	}
	if cfg.RetainDays == 0 {
		cfg.RetainDays = 90
	}
	if cfg.SMTP.Port == 0 {
		cfg.SMTP.Port = 587
	}
}

func applyOrchestratorDefaults(cfg *OrchestratorConfig) {
	if cfg.ProcessingInterval == 0 {
		cfg.ProcessingInterval = 300 * time.Second
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 10
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = 30 * time.Second
	}
	if cfg.ImmediateTimeout == 0 {
		cfg.ImmediateTimeout = 300 * time.Second
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = 10 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.PurgeAfterDays == 0 {
		cfg.PurgeAfterDays = 90
	}
}

func applySyncDefaults(cfg *SyncConfig) {
	if cfg.UserInterval == 0 {
		cfg.UserInterval = time.Hour
	}
	if cfg.GroupInterval == 0 {
		cfg.GroupInterval = time.Hour
	}
	if cfg.UserPermissionInterval == 0 {
		cfg.UserPermissionInterval = 6 * time.Hour
	}
	if cfg.ActiveMembershipInterval == 0 {
		cfg.ActiveMembershipInterval = 15 * time.Minute
	}
}

// GetDefaultConfig returns a Config struct with all default values
// applied. Useful for generating sample configuration files and tests.
func GetDefaultConfig() *Config {
	cfg := &Config{
		Directory: DirectoryConfig{
			Host:   "localhost",
			BaseDN: "dc=example,dc=com",
		},
		Workflow: WorkflowConfig{
			BaseURL: "http://localhost:8081",
		},
		ControlPlane: api.Config{
			JWT: api.JWTConfig{
				Secret: "change-me-to-a-random-32-byte-secret-value",
			},
		},
	}
	ApplyDefaults(cfg)
	return cfg
}
