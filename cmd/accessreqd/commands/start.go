package commands

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/permflow/engine/internal/logger"
	"github.com/permflow/engine/internal/telemetry"
	"github.com/permflow/engine/pkg/api"
	"github.com/permflow/engine/pkg/api/handlers"
	"github.com/permflow/engine/pkg/artifact"
	"github.com/permflow/engine/pkg/catalogsync"
	"github.com/permflow/engine/pkg/catalogue/store"
	"github.com/permflow/engine/pkg/config"
	"github.com/permflow/engine/pkg/directory"
	"github.com/permflow/engine/pkg/metrics"
	"github.com/permflow/engine/pkg/notifier"
	"github.com/permflow/engine/pkg/orchestrator"
	"github.com/permflow/engine/pkg/requests"
	"github.com/permflow/engine/pkg/workflowclient"
)

var (
	startForeground bool
	startPidFile    string
	startLogFile    string
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the access-request engine",
	Long: `Start runs the HTTP API, the C6 task orchestrator, and the C9
catalogue sync drivers. By default it daemonizes into the background;
pass --foreground to run attached to the current terminal.`,
	RunE: runStart,
}

func init() {
	startCmd.Flags().BoolVar(&startForeground, "foreground", false, "run in the foreground instead of daemonizing")
	startCmd.Flags().StringVar(&startPidFile, "pid-file", "", "PID file path (daemon mode; default: "+GetDefaultPidFile()+")")
	startCmd.Flags().StringVar(&startLogFile, "log-file", "", "log file path when daemonized (default: "+GetDefaultLogFile()+")")
}

func runStart(cmd *cobra.Command, args []string) error {
	if !startForeground {
		return startDaemon()
	}
	return runForeground()
}

func runForeground() error {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}

	if err := InitLogger(cfg); err != nil {
		return err
	}
	logger.Info("starting accessreqd", "config", getConfigSource(GetConfigFile()), "version", Version)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	telemetryCfg := cfg.Telemetry
	telemetryShutdown, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        telemetryCfg.Enabled,
		ServiceName:    "accessreqd",
		ServiceVersion: Version,
		Endpoint:       telemetryCfg.Endpoint,
		Insecure:       telemetryCfg.Insecure,
		SampleRate:     telemetryCfg.SampleRate,
	})
	if err != nil {
		return fmt.Errorf("initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := telemetryShutdown(shutdownCtx); err != nil {
			logger.Warn("telemetry shutdown failed", "error", err)
		}
	}()
	if telemetry.IsEnabled() {
		logger.Info("telemetry enabled", "endpoint", telemetryCfg.Endpoint)
	}

	profilingShutdown, err := telemetry.InitProfiling(telemetry.ProfilingConfig{
		Enabled:        telemetryCfg.Profiling.Enabled,
		ServiceName:    "accessreqd",
		ServiceVersion: Version,
		Endpoint:       telemetryCfg.Profiling.Endpoint,
		ProfileTypes:   telemetryCfg.Profiling.ProfileTypes,
	})
	if err != nil {
		return fmt.Errorf("initialize profiling: %w", err)
	}
	defer func() {
		if err := profilingShutdown(); err != nil {
			logger.Warn("profiling shutdown failed", "error", err)
		}
	}()
	if telemetry.IsProfilingEnabled() {
		logger.Info("continuous profiling enabled", "endpoint", telemetryCfg.Profiling.Endpoint)
	}

	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		logger.Info("metrics enabled", "path", "/metrics")
	}

	cpStore, err := store.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("open catalogue store: %w", err)
	}
	defer func() {
		if err := cpStore.Close(); err != nil {
			logger.Warn("error closing catalogue store", "error", err)
		}
	}()
	logger.Info("catalogue store ready", "backend", cfg.Database.Type)

	wfClient := workflowclient.New(workflowclient.Config{
		BaseURL:  cfg.Workflow.BaseURL,
		Username: cfg.Workflow.Username,
		Password: cfg.Workflow.Password,
		Style:    workflowclient.AuthStyle(cfg.Workflow.Style),
		Timeout:  cfg.Workflow.Timeout,
	})

	dirAdapter := directory.New(directory.Config{
		Host:            cfg.Directory.Host,
		Port:            cfg.Directory.Port,
		UseTLS:          cfg.Directory.UseTLS,
		InsecureTLS:     cfg.Directory.InsecureTLS,
		BindDN:          cfg.Directory.BindDN,
		BindPassword:    cfg.Directory.BindPassword,
		BaseDN:          cfg.Directory.BaseDN,
		SearchDNs:       cfg.Directory.SearchDNs,
		UserFilter:      cfg.Directory.UserFilter,
		GroupFilter:     cfg.Directory.GroupFilter,
		MemberFilter:    cfg.Directory.MemberFilter,
		UserListFilter:  cfg.Directory.UserListFilter,
		GroupListFilter: cfg.Directory.GroupListFilter,
		AttrUsername:    cfg.Directory.AttrUsername,
		AttrMail:        cfg.Directory.AttrMail,
		AttrDN:          cfg.Directory.AttrDN,
	})
	logger.Info("directory adapter ready", "host", cfg.Directory.Host)

	var archiver artifact.Archiver
	if cfg.CSV.ArchiveBucket != "" {
		archiver, err = artifact.NewS3Archiver(ctx, cfg.CSV.ArchiveBucket, cfg.CSV.ArchivePrefix)
		if err != nil {
			return fmt.Errorf("configure csv archiver: %w", err)
		}
		logger.Info("csv archival enabled", "bucket", cfg.CSV.ArchiveBucket)
	}
	artefacts, err := artifact.New(artifact.Config{
		OutputDir:    cfg.CSV.OutputDir,
		DomainPrefix: cfg.CSV.DomainPrefix,
	}, archiver)
	if err != nil {
		return fmt.Errorf("configure csv writer: %w", err)
	}

	channels := []notifier.Channel{notifier.LogChannel{}}
	if cfg.Notifier.SMTP.Host != "" {
		channels = append(channels, notifier.NewSMTPChannel(notifier.SMTPConfig{
			Host:     cfg.Notifier.SMTP.Host,
			Port:     cfg.Notifier.SMTP.Port,
			Username: cfg.Notifier.SMTP.Username,
			Password: cfg.Notifier.SMTP.Password,
			From:     cfg.Notifier.SMTP.From,
			To:       cfg.Notifier.SMTP.To,
		}))
		logger.Info("smtp notification channel enabled", "host", cfg.Notifier.SMTP.Host)
	}
	notif := notifier.New(cpStore, cfg.Notifier.Cooldown, channels...)

	orch := orchestrator.New(orchestrator.Config{
		ProcessingInterval: cfg.Orchestrator.ProcessingInterval,
		BatchSize:          cfg.Orchestrator.BatchSize,
		RetryDelay:         cfg.Orchestrator.RetryDelay,
		ImmediateTimeout:   cfg.Orchestrator.ImmediateTimeout,
		PollInterval:       cfg.Orchestrator.PollInterval,
		WorkflowDAGID:      cfg.Workflow.DAGID,
	}, cpStore, wfClient, dirAdapter, artefacts, notif)

	syncer := catalogsync.New(catalogsync.Config{
		UserInterval:             cfg.Sync.UserInterval,
		GroupInterval:            cfg.Sync.GroupInterval,
		UserPermissionInterval:   cfg.Sync.UserPermissionInterval,
		ActiveMembershipInterval: cfg.Sync.ActiveMembershipInterval,
	}, dirAdapter, cpStore)

	engine := requests.New(cpStore, artefacts, orch)

	admin := handlers.AdminCredentials{
		Username:     cfg.Admin.Username,
		PasswordHash: cfg.Admin.PasswordHash,
	}
	apiServer, err := api.NewServer(cfg.ControlPlane, cpStore, engine, admin)
	if err != nil {
		return fmt.Errorf("build api server: %w", err)
	}

	if startPidFile != "" {
		if err := writePidFile(startPidFile); err != nil {
			logger.Warn("failed to write pid file", "error", err, "path", startPidFile)
		} else {
			defer os.Remove(startPidFile)
		}
	}

	purgeDone := make(chan struct{})
	go runPurgeLoop(ctx, orch, notif, cfg.Orchestrator.PurgeAfterDays, cfg.Notifier.RetainDays, purgeDone)

	go orch.Run(ctx)
	go syncer.Run(ctx)

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- apiServer.Start(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("received shutdown signal", "signal", sig.String())
		cancel()
		<-purgeDone
		select {
		case err := <-serverDone:
			if err != nil {
				logger.Warn("api server exited with error during shutdown", "error", err)
			}
		case <-time.After(cfg.ShutdownTimeout):
			logger.Warn("shutdown timed out waiting for api server")
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("api server failed: %w", err)
		}
	}

	logger.Info("accessreqd stopped")
	return nil
}

// runPurgeLoop runs the C6/C4 retention purges once a day until ctx is
// cancelled, then closes done.
func runPurgeLoop(ctx context.Context, orch *orchestrator.Orchestrator, notif *notifier.Notifier, taskRetainDays, notificationRetainDays int, done chan struct{}) {
	defer close(done)
	if taskRetainDays <= 0 && notificationRetainDays <= 0 {
		return
	}
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if taskRetainDays > 0 {
				if n, err := orch.Purge(ctx, taskRetainDays); err != nil {
					logger.Warn("task purge failed", "error", err)
				} else if n > 0 {
					logger.Info("purged completed tasks", "count", n, "retain_days", taskRetainDays)
				}
			}
			if notificationRetainDays > 0 {
				if n, err := notif.PurgeResolvedOlderThan(ctx, notificationRetainDays); err != nil {
					logger.Warn("notification purge failed", "error", err)
				} else if n > 0 {
					logger.Info("purged resolved notifications", "count", n, "retain_days", notificationRetainDays)
				}
			}
		}
	}
}

func writePidFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0644)
}

// startDaemon re-executes the current binary with --foreground, detached
// from the controlling terminal, and returns once the child has started.
func startDaemon() error {
	pidFile := startPidFile
	if pidFile == "" {
		pidFile = GetDefaultPidFile()
	}
	if pid, err := readPidFile(pidFile); err == nil && processAlive(pid) {
		return fmt.Errorf("accessreqd already running with pid %d (pid file %s)", pid, pidFile)
	}

	logFile := startLogFile
	if logFile == "" {
		logFile = GetDefaultLogFile()
	}
	if err := os.MkdirAll(filepath.Dir(logFile), 0755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}
	out, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer out.Close()

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable path: %w", err)
	}

	childArgs := []string{"start", "--foreground", "--pid-file", pidFile}
	if GetConfigFile() != "" {
		childArgs = append(childArgs, "--config", GetConfigFile())
	}

	child := exec.Command(exe, childArgs...)
	child.Stdout = out
	child.Stderr = out
	child.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := child.Start(); err != nil {
		return fmt.Errorf("start daemon process: %w", err)
	}

	fmt.Printf("accessreqd started (pid %d), logging to %s\n", child.Process.Pid, logFile)
	return child.Process.Release()
}

func readPidFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(string(data))
}

func processAlive(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}
