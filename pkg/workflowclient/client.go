// Package workflowclient talks to the external workflow engine that C6
// dispatches tasks to (C2). Two protocol generations of the same engine are
// supported behind one interface: an older basic-auth variant and a newer
// bearer-token variant, auto-detected from the configured base URL unless a
// variant is forced.
package workflowclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/permflow/engine/internal/logger"
	"github.com/permflow/engine/pkg/metrics"
	"github.com/permflow/engine/pkg/xerrors"
)

// AuthStyle selects the protocol variant.
type AuthStyle string

const (
	AuthStyleBasic  AuthStyle = "basic"
	AuthStyleBearer AuthStyle = "bearer"
	// AuthStyleAuto defers to runtime detection (§4.2).
	AuthStyleAuto AuthStyle = "auto"
)

// RunState is a terminal or non-terminal state reported by the engine.
type RunState string

const (
	StateSuccess   RunState = "success"
	StateFailed    RunState = "failed"
	StateCancelled RunState = "cancelled"
	StateSkipped   RunState = "skipped"
	StateRunning   RunState = "running"
	StateQueued    RunState = "queued"
)

// IsTerminal reports whether state admits no further polling.
func (s RunState) IsTerminal() bool {
	switch s {
	case StateSuccess, StateFailed, StateCancelled, StateSkipped:
		return true
	default:
		return false
	}
}

const tokenTTL = 1 * time.Hour
const tokenSafetyMargin = 5 * time.Minute

// Config configures a Client.
type Config struct {
	BaseURL  string
	Username string
	Password string
	Style    AuthStyle
	Timeout  time.Duration
}

// Client submits and polls runs against the external workflow engine.
type Client struct {
	baseURL    string
	username   string
	password   string
	style      AuthStyle
	httpClient *http.Client

	mu          sync.Mutex
	token       string
	tokenIssued time.Time

	metrics metrics.WorkflowClientMetrics
}

// New constructs a Client. If cfg.Style is AuthStyleAuto, the variant is
// resolved lazily on first use via detectStyle.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		username:   cfg.Username,
		password:   cfg.Password,
		style:      cfg.Style,
		httpClient: &http.Client{Timeout: timeout},
		metrics:    metrics.NewWorkflowClientMetrics(),
	}
}

// RunConfig is the caller-supplied description of a run to submit.
type RunConfig struct {
	DAGID    string
	RunID    string
	Conf     map[string]any
}

// resolvedStyle returns the auth style to use, detecting it once if the
// client was constructed with AuthStyleAuto (§4.2).
func (c *Client) resolvedStyle(ctx context.Context) (AuthStyle, error) {
	if c.style != AuthStyleAuto {
		return c.style, nil
	}
	style := c.detectStyle(ctx)
	c.style = style
	return style, nil
}

// detectStyle implements the auto-detection order: a base URL containing
// /api/v1 is always the basic-auth variant; otherwise a GET to
// /api/v2/version is attempted, and a 3.x prefix in the response selects
// the bearer variant; any other outcome falls back to basic-auth.
func (c *Client) detectStyle(ctx context.Context) AuthStyle {
	if strings.Contains(c.baseURL, "/api/v1") {
		return AuthStyleBasic
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v2/version", nil)
	if err != nil {
		return AuthStyleBasic
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Warn("version detection request failed, defaulting to basic auth", "error", err)
		return AuthStyleBasic
	}
	defer func() { _ = resp.Body.Close() }()

	var payload struct {
		Version string `json:"version"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return AuthStyleBasic
	}
	if strings.HasPrefix(payload.Version, "3.") {
		return AuthStyleBearer
	}
	return AuthStyleBasic
}

// getToken returns a cached bearer token, fetching a fresh one if absent or
// within the safety margin of expiry (§4.2).
func (c *Client) getToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Since(c.tokenIssued) < tokenTTL-tokenSafetyMargin {
		return c.token, nil
	}
	return c.fetchTokenLocked(ctx)
}

func (c *Client) invalidateToken() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
}

func (c *Client) fetchTokenLocked(ctx context.Context) (string, error) {
	body, _ := json.Marshal(map[string]string{
		"username": c.username,
		"password": c.password,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/token", bytes.NewReader(body))
	if err != nil {
		return "", xerrors.New(xerrors.KindExternalFailed, "workflowclient.fetchToken", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", xerrors.New(xerrors.KindTransient, "workflowclient.fetchToken", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", xerrors.New(xerrors.KindExternalFailed, "workflowclient.fetchToken",
			fmt.Errorf("token endpoint returned %d", resp.StatusCode))
	}

	var payload struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", xerrors.New(xerrors.KindExternalFailed, "workflowclient.fetchToken", err)
	}

	c.token = payload.AccessToken
	c.tokenIssued = time.Now().UTC()
	return c.token, nil
}

// authenticate attaches credentials to req according to the resolved style.
func (c *Client) authenticate(ctx context.Context, req *http.Request) error {
	style, err := c.resolvedStyle(ctx)
	if err != nil {
		return err
	}
	switch style {
	case AuthStyleBasic:
		req.SetBasicAuth(c.username, c.password)
	case AuthStyleBearer:
		tok, err := c.getToken(ctx)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	return nil
}

// doWithRetry performs req, and on a 401 from the bearer variant,
// invalidates the cached token and retries exactly once before bubbling up
// the failure (§4.2, scenario 5).
func (c *Client) doWithRetry(ctx context.Context, build func(ctx context.Context) (*http.Request, error)) (*http.Response, error) {
	req, err := build(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.authenticate(ctx, req); err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, xerrors.New(xerrors.KindTransient, "workflowclient.do", err)
	}

	style, _ := c.resolvedStyle(ctx)
	if resp.StatusCode == http.StatusUnauthorized && style == AuthStyleBearer {
		_ = resp.Body.Close()
		c.invalidateToken()

		req2, err := build(ctx)
		if err != nil {
			return nil, err
		}
		if err := c.authenticate(ctx, req2); err != nil {
			return nil, err
		}
		resp2, err := c.httpClient.Do(req2)
		if err != nil {
			return nil, xerrors.New(xerrors.KindTransient, "workflowclient.do", err)
		}
		if resp2.StatusCode == http.StatusUnauthorized {
			_ = resp2.Body.Close()
			return nil, xerrors.New(xerrors.KindTransient, "workflowclient.do",
				fmt.Errorf("unauthorized after token refresh"))
		}
		return resp2, nil
	}
	return resp, nil
}

// SubmitRun submits a run and returns the run ID the engine assigned (which
// is the caller-supplied dag_run_id echoed back, per §4.2).
func (c *Client) SubmitRun(ctx context.Context, rc RunConfig) (_ string, err error) {
	start := time.Now()
	defer func() {
		if c.metrics != nil {
			c.metrics.ObserveCall("submit_run", time.Since(start), err)
		}
	}()

	resp, err := c.doWithRetry(ctx, func(ctx context.Context) (*http.Request, error) {
		style, _ := c.resolvedStyle(ctx)
		payload := map[string]any{
			"dag_run_id": rc.RunID,
			"conf":       rc.Conf,
		}
		if style == AuthStyleBearer {
			payload["logical_date"] = time.Now().UTC().Format(time.RFC3339)
		}
		body, _ := json.Marshal(payload)
		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			fmt.Sprintf("%s/dags/%s/dagRuns", c.baseURL, rc.DAGID), bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return "", classifyHTTPError(resp)
	}

	var out struct {
		DagRunID string `json:"dag_run_id"`
	}
	raw, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(raw, &out); err != nil || out.DagRunID == "" {
		return rc.RunID, nil
	}
	return out.DagRunID, nil
}

// GetRun returns the current state of a previously submitted run.
func (c *Client) GetRun(ctx context.Context, dagID, runID string) (_ RunState, err error) {
	start := time.Now()
	defer func() {
		if c.metrics != nil {
			c.metrics.ObserveCall("get_run", time.Since(start), err)
		}
	}()

	resp, err := c.doWithRetry(ctx, func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet,
			fmt.Sprintf("%s/dags/%s/dagRuns/%s", c.baseURL, dagID, runID), nil)
	})
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return "", classifyHTTPError(resp)
	}

	var out struct {
		State string `json:"state"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", xerrors.New(xerrors.KindExternalFailed, "workflowclient.GetRun", err)
	}

	state := RunState(out.State)
	switch state {
	case StateSuccess, StateFailed, StateCancelled, StateSkipped, StateRunning, StateQueued:
		return state, nil
	default:
		logger.Warn("unrecognised run state treated as non-terminal", "state", out.State, "run_id", runID)
		return StateRunning, nil
	}
}

func classifyHTTPError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	err := fmt.Errorf("workflow engine returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return xerrors.New(xerrors.KindNotFound, "workflowclient", err)
	case resp.StatusCode == http.StatusTooManyRequests, resp.StatusCode >= 500:
		return xerrors.New(xerrors.KindTransient, "workflowclient", err)
	default:
		return xerrors.New(xerrors.KindExternalFailed, "workflowclient", err)
	}
}
