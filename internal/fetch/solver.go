package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// DefaultSolverURL is where a locally run rendering solver listens.
const DefaultSolverURL = "http://localhost:8191/v1"

// solverMaxTimeoutMs is the page-load budget granted to the solver's
// embedded browser, distinct from the HTTP round-trip timeout.
const solverMaxTimeoutMs = 60000

// SolverClient talks to the browser-rendering fallback service
// (FlareSolverr protocol): one POST per page, a JSON envelope in and out.
type SolverClient struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// SolverConfig controls the rendering tier.
type SolverConfig struct {
	BaseURL string
	Timeout time.Duration
}

// NewSolverClient builds a client for the configured solver endpoint.
func NewSolverClient(cfg SolverConfig, logger *zap.Logger) *SolverClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultSolverURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SolverClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type solverRequest struct {
	Cmd        string `json:"cmd"`
	URL        string `json:"url"`
	MaxTimeout int    `json:"maxTimeout"`
}

type solverResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Solution struct {
		Status   int    `json:"status"`
		Response string `json:"response"`
	} `json:"solution"`
}

// Render asks the solver to load the URL in its browser and returns the
// rendered page text. Transport failures are terminal for the whole fetch
// (the direct tier is never retried afterwards).
func (c *SolverClient) Render(ctx context.Context, rawURL string) (string, error) {
	payload, err := json.Marshal(solverRequest{
		Cmd:        "request.get",
		URL:        rawURL,
		MaxTimeout: solverMaxTimeoutMs,
	})
	if err != nil {
		return "", fmt.Errorf("encode solver request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build solver request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return "", &SolverUnavailableError{URL: c.baseURL, Err: err}
	}
	defer resp.Body.Close()

	c.logger.Debug("solver responded",
		zap.String("url", rawURL),
		zap.Int("status", resp.StatusCode),
		zap.Duration("dur", time.Since(start)),
	)

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 300))
		return "", &SolverError{Message: fmt.Sprintf("solver returned %d: %s", resp.StatusCode, snippet)}
	}

	var envelope solverResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return "", &SolverError{Message: fmt.Sprintf("decode solver response: %v", err)}
	}
	if envelope.Status != "ok" {
		message := envelope.Message
		if message == "" {
			message = "unknown error"
		}
		return "", &SolverError{Message: message}
	}
	if envelope.Solution.Status >= 400 {
		return "", &SolverError{Status: envelope.Solution.Status}
	}
	return envelope.Solution.Response, nil
}
