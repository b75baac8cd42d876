package commands

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/permflow/engine/internal/cli/output"
)

var (
	statusOutput  string
	statusPidFile string
	statusAPIPort int
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show engine status",
	Long: `Display whether the engine process is running and whether its API
server is answering health checks.`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusPidFile, "pid-file", "", "path to PID file (default: "+GetDefaultPidFile()+")")
	statusCmd.Flags().IntVar(&statusAPIPort, "api-port", 8080, "API server port")
	statusCmd.Flags().StringVarP(&statusOutput, "output", "o", "table", "output format (table|json|yaml)")
}

// EngineStatus is the rendered state of a running or stopped engine process.
type EngineStatus struct {
	Running bool   `json:"running" yaml:"running"`
	PID     int    `json:"pid,omitempty" yaml:"pid,omitempty"`
	Message string `json:"message" yaml:"message"`
	Healthy bool   `json:"healthy" yaml:"healthy"`
}

type healthResponse struct {
	Status string `json:"status"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(statusOutput)
	if err != nil {
		return err
	}

	status := EngineStatus{Message: "engine is not running"}

	pidPath := statusPidFile
	if pidPath == "" {
		pidPath = GetDefaultPidFile()
	}
	if pidData, err := os.ReadFile(pidPath); err == nil {
		if pid, err := strconv.Atoi(strings.TrimSpace(string(pidData))); err == nil {
			if process, err := os.FindProcess(pid); err == nil && process.Signal(syscall.Signal(0)) == nil {
				status.Running = true
				status.PID = pid
			}
		}
	}

	healthURL := fmt.Sprintf("http://localhost:%d/health", statusAPIPort)
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(healthURL)
	if err == nil {
		defer resp.Body.Close()
		var h healthResponse
		if err := json.NewDecoder(resp.Body).Decode(&h); err == nil {
			status.Running = true
			status.Healthy = h.Status == "ok"
			if status.Healthy {
				status.Message = "engine is running and healthy"
			} else {
				status.Message = "engine is running but reported an unhealthy status"
			}
		}
	} else if status.Running {
		status.Message = "engine process exists but the health check failed"
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(os.Stdout, status)
	case output.FormatYAML:
		return output.PrintYAML(os.Stdout, status)
	default:
		printStatusTable(status)
	}
	return nil
}

func printStatusTable(status EngineStatus) {
	fmt.Println()
	fmt.Println("Access Request Engine Status")
	fmt.Println("=============================")
	fmt.Println()

	if status.Running {
		if status.Healthy {
			fmt.Printf("  Status:  \033[32m● Running\033[0m\n")
		} else {
			fmt.Printf("  Status:  \033[33m● Running (unhealthy)\033[0m\n")
		}
		fmt.Printf("  PID:     %d\n", status.PID)
	} else {
		fmt.Printf("  Status:  \033[31m○ Stopped\033[0m\n")
	}

	fmt.Println()
	fmt.Printf("  %s\n", status.Message)
	fmt.Println()
}
