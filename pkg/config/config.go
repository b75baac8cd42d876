package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"github.com/permflow/engine/pkg/api"
	"github.com/permflow/engine/pkg/catalogue/store"
)

// Config is the static configuration for the access-request engine: the
// persistence backend, the HTTP API, the external systems C1-C4 talk to
// (CSV output, the workflow executor, the directory, admin notifications),
// the C6/C9 periodic drivers, and the ambient logging/telemetry/metrics
// stack.
//
// Configuration sources, in order of precedence:
//  1. Environment variables (ACCESSREQ_*)
//  2. Configuration file (YAML or TOML)
//  3. Default values
type Config struct {
	Logging   LoggingConfig   `mapstructure:"logging" yaml:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0" yaml:"shutdown_timeout"`

	// Database configures the catalogue/request/task persistence backend.
	Database store.Config `mapstructure:"database" yaml:"database"`

	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`

	// ControlPlane configures the HTTP API server.
	ControlPlane api.Config `mapstructure:"controlplane" yaml:"controlplane"`

	// Admin contains initial admin user configuration for bootstrap.
	Admin AdminConfig `mapstructure:"admin" yaml:"admin"`

	// CSV configures §4.1's artefact writer.
	CSV CSVConfig `mapstructure:"csv" yaml:"csv"`

	// Workflow configures the C2 workflow-executor client.
	Workflow WorkflowConfig `mapstructure:"workflow" yaml:"workflow"`

	// Directory configures the C3 LDAP/Active Directory adapter.
	Directory DirectoryConfig `mapstructure:"directory" yaml:"directory"`

	// Notifier configures C4 admin notification delivery.
	Notifier NotifierConfig `mapstructure:"notifier" yaml:"notifier"`

	// Orchestrator configures the C6 task-processing loop.
	Orchestrator OrchestratorConfig `mapstructure:"orchestrator" yaml:"orchestrator"`

	// Sync configures the C9 catalogue sync cadences.
	Sync SyncConfig `mapstructure:"sync" yaml:"sync"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output.
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive, normalized to uppercase).
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`

	// Format specifies the log output format: text or json.
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`

	// Output specifies where logs are written: stdout, stderr, or a file path.
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// TelemetryConfig controls OpenTelemetry distributed tracing.
type TelemetryConfig struct {
	Enabled    bool    `mapstructure:"enabled" yaml:"enabled"`
	Endpoint   string  `mapstructure:"endpoint" yaml:"endpoint"`
	Insecure   bool    `mapstructure:"insecure" yaml:"insecure"`
	SampleRate float64 `mapstructure:"sample_rate" validate:"omitempty,gte=0,lte=1" yaml:"sample_rate"`

	Profiling ProfilingConfig `mapstructure:"profiling" yaml:"profiling"`
}

// ProfilingConfig controls Pyroscope continuous profiling.
type ProfilingConfig struct {
	Enabled      bool     `mapstructure:"enabled" yaml:"enabled"`
	Endpoint     string   `mapstructure:"endpoint" yaml:"endpoint"`
	ProfileTypes []string `mapstructure:"profile_types" yaml:"profile_types"`
}

// MetricsConfig configures the Prometheus metrics HTTP server.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	Port    int  `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`
}

// AdminConfig contains initial admin user configuration for bootstrap,
// used by 'init' to pre-configure the first admin account able to approve
// requests.
type AdminConfig struct {
	Username     string `mapstructure:"username" yaml:"username"`
	Email        string `mapstructure:"email" yaml:"email,omitempty"`
	PasswordHash string `mapstructure:"password_hash" yaml:"password_hash,omitempty"`
}

// CSVConfig configures §4.1's artefact writer.
type CSVConfig struct {
	// OutputDir is the directory CSV artefacts are written to before a
	// workflow task picks them up.
	OutputDir string `mapstructure:"output_dir" validate:"required" yaml:"output_dir"`

	// DomainPrefix is prepended to the group name in every artefact row,
	// e.g. "DOM\\".
	DomainPrefix string `mapstructure:"domain_prefix" yaml:"domain_prefix,omitempty"`

	// ArchiveBucket, if set, archives cleaned-up artefacts to S3 before
	// local deletion. Empty disables archival.
	ArchiveBucket string `mapstructure:"archive_bucket" yaml:"archive_bucket,omitempty"`
	ArchivePrefix string `mapstructure:"archive_prefix" yaml:"archive_prefix,omitempty"`

	// RetentionDays controls CleanupOlderThan's purge window.
	RetentionDays int `mapstructure:"retention_days" yaml:"retention_days,omitempty"`
}

// WorkflowConfig configures the C2 workflow-executor client.
type WorkflowConfig struct {
	BaseURL  string `mapstructure:"base_url" validate:"required" yaml:"base_url"`
	Username string `mapstructure:"username" yaml:"username"`
	Password string `mapstructure:"password" yaml:"password"`

	// Style forces a protocol variant ("basic", "bearer"); empty auto-detects.
	Style string `mapstructure:"style" validate:"omitempty,oneof=basic bearer auto" yaml:"style,omitempty"`

	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`

	// DAGID identifies the permission-change workflow definition to submit
	// runs against.
	DAGID string `mapstructure:"dag_id" yaml:"dag_id"`
}

// DirectoryConfig configures the C3 LDAP/Active Directory adapter.
type DirectoryConfig struct {
	Host         string   `mapstructure:"host" validate:"required" yaml:"host"`
	Port         int      `mapstructure:"port" yaml:"port"`
	UseTLS       bool     `mapstructure:"use_tls" yaml:"use_tls"`
	InsecureTLS  bool     `mapstructure:"insecure_tls" yaml:"insecure_tls,omitempty"`
	BindDN       string   `mapstructure:"bind_dn" yaml:"bind_dn"`
	BindPassword string   `mapstructure:"bind_password" yaml:"bind_password"`
	BaseDN       string   `mapstructure:"base_dn" validate:"required" yaml:"base_dn"`
	SearchDNs    []string `mapstructure:"search_dns" yaml:"search_dns,omitempty"`

	UserFilter      string `mapstructure:"user_filter" yaml:"user_filter,omitempty"`
	GroupFilter     string `mapstructure:"group_filter" yaml:"group_filter,omitempty"`
	MemberFilter    string `mapstructure:"member_filter" yaml:"member_filter,omitempty"`
	UserListFilter  string `mapstructure:"user_list_filter" yaml:"user_list_filter,omitempty"`
	GroupListFilter string `mapstructure:"group_list_filter" yaml:"group_list_filter,omitempty"`

	AttrUsername string `mapstructure:"attr_username" yaml:"attr_username,omitempty"`
	AttrMail     string `mapstructure:"attr_mail" yaml:"attr_mail,omitempty"`
	AttrDN       string `mapstructure:"attr_dn" yaml:"attr_dn,omitempty"`
}

// NotifierConfig configures C4 admin notification delivery.
type NotifierConfig struct {
	Enabled    bool          `mapstructure:"enabled" yaml:"enabled"`
	AdminEmail string        `mapstructure:"admin_email" yaml:"admin_email,omitempty"`
	Cooldown   time.Duration `mapstructure:"cooldown" yaml:"cooldown,omitempty"`
	RetainDays int           `mapstructure:"retain_days" yaml:"retain_days,omitempty"`

	SMTP SMTPConfig `mapstructure:"smtp" yaml:"smtp"`
}

// SMTPConfig configures the email delivery channel. Leaving Host empty
// disables SMTP delivery; the always-on log channel still records alerts.
type SMTPConfig struct {
	Host     string   `mapstructure:"host" yaml:"host,omitempty"`
	Port     int      `mapstructure:"port" yaml:"port,omitempty"`
	Username string   `mapstructure:"username" yaml:"username,omitempty"`
	Password string   `mapstructure:"password" yaml:"password,omitempty"`
	From     string   `mapstructure:"from" yaml:"from,omitempty"`
	To       []string `mapstructure:"to" yaml:"to,omitempty"`
}

// OrchestratorConfig configures the C6 task-processing loop.
type OrchestratorConfig struct {
	ProcessingInterval time.Duration `mapstructure:"processing_interval" yaml:"processing_interval,omitempty"`
	BatchSize          int           `mapstructure:"batch_size" yaml:"batch_size,omitempty"`
	RetryDelay         time.Duration `mapstructure:"retry_delay" yaml:"retry_delay,omitempty"`
	ImmediateTimeout   time.Duration `mapstructure:"immediate_timeout" yaml:"immediate_timeout,omitempty"`
	PollInterval       time.Duration `mapstructure:"poll_interval" yaml:"poll_interval,omitempty"`
	MaxRetries         int           `mapstructure:"max_retries" yaml:"max_retries,omitempty"`
	PurgeAfterDays     int           `mapstructure:"purge_after_days" yaml:"purge_after_days,omitempty"`
}

// SyncConfig configures the C9 catalogue sync cadences.
type SyncConfig struct {
	UserInterval             time.Duration `mapstructure:"user_interval" yaml:"user_interval,omitempty"`
	GroupInterval            time.Duration `mapstructure:"group_interval" yaml:"group_interval,omitempty"`
	UserPermissionInterval   time.Duration `mapstructure:"user_permission_interval" yaml:"user_permission_interval,omitempty"`
	ActiveMembershipInterval time.Duration `mapstructure:"active_membership_interval" yaml:"active_membership_interval,omitempty"`
}

// Load loads configuration from file, environment, and defaults.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	configFileFound, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}

	if !configFileFound {
		return GetDefaultConfig(), nil
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration with helpful error messages when no config
// file is present at the requested location.
func MustLoad(configPath string) (*Config, error) {
	if configPath == "" {
		if !DefaultConfigExists() {
			return nil, fmt.Errorf("no configuration file found at default location: %s\n\n"+
				"Please initialize a configuration file first:\n"+
				"  accessreqd init\n\n"+
				"Or specify a custom config file:\n"+
				"  accessreqd <command> --config /path/to/config.yaml",
				GetDefaultConfigPath())
		}
		configPath = GetDefaultConfigPath()
	} else if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s\n\n"+
			"Please create the configuration file:\n"+
			"  accessreqd init --config %s",
			configPath, configPath)
	}

	cfg, err := Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// SaveConfig saves the configuration to the specified file path in YAML
// format, preceded by a header comment identifying the file.
func SaveConfig(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := "# Access Request Engine Configuration File\n" +
		"# Generated by 'accessreqd init'. Edit in place or override with ACCESSREQ_* env vars.\n"

	// 0600: config files may carry LDAP bind passwords and SMTP credentials.
	if err := os.WriteFile(path, append([]byte(header), data...), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// InitConfig writes a default configuration file to the default location
// (or overwrites it when force is true) and returns the path written.
func InitConfig(force bool) (string, error) {
	path := GetDefaultConfigPath()
	if err := InitConfigToPath(path, force); err != nil {
		return "", err
	}
	return path, nil
}

// InitConfigToPath writes a default configuration file to an explicit path.
func InitConfigToPath(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("configuration file already exists at %s (use --force to overwrite)", path)
		}
	}

	cfg := GetDefaultConfig()
	cfg.ControlPlane.JWT.Secret = generateJWTSecret()

	password := generateAdminPassword()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	cfg.Admin.PasswordHash = string(hash)

	if err := SaveConfig(cfg, path); err != nil {
		return err
	}

	fmt.Printf("\nBootstrap admin account created: %s\n", cfg.Admin.Username)
	fmt.Printf("Password: %s\n", password)
	fmt.Println("This password is not stored in plaintext and will not be shown again.")
	return nil
}

// generateAdminPassword produces a random 20-character hex password for the
// bootstrap admin account created by 'accessreqd init'.
func generateAdminPassword() string {
	b := make([]byte, 10)
	if _, err := rand.Read(b); err != nil {
		return "change-me-on-first-login"
	}
	return hex.EncodeToString(b)
}

// generateJWTSecret produces a random 48-byte hex secret for a freshly
// initialized config so 'init' never ships the same placeholder twice.
func generateJWTSecret() string {
	b := make([]byte, 48)
	if _, err := rand.Read(b); err != nil {
		return "change-me-to-a-random-32-byte-secret-value"
	}
	return hex.EncodeToString(b)
}

func setupViper(v *viper.Viper, configPath string) {
	// Environment variables use the ACCESSREQ_ prefix, e.g.
	// ACCESSREQ_LOGGING_LEVEL=DEBUG.
	v.SetEnvPrefix("ACCESSREQ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		configDir := getConfigDir()
		v.AddConfigPath(configDir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}
	return true, nil
}

// configDecodeHooks returns the combined mapstructure decode hook for
// custom types in this config (currently just time.Duration).
func configDecodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		durationDecodeHook(),
	)
}

// durationDecodeHook converts strings like "30s", "5m", "1h" to
// time.Duration.
func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			return time.ParseDuration(v)
		case int:
			return time.Duration(v), nil
		case int64:
			return time.Duration(v), nil
		case float64:
			return time.Duration(v), nil
		default:
			return data, nil
		}
	}
}

// getConfigDir returns the configuration directory path: $XDG_CONFIG_HOME,
// ~/.config, or "." as a last resort.
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "accessreq")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "accessreq")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// DefaultConfigExists checks if a config file exists at the default location.
func DefaultConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}

// GetConfigDir returns the configuration directory path (exposed for the
// init command).
func GetConfigDir() string {
	return getConfigDir()
}
