// Package allegro composes the tiered fetcher, the extraction pipeline,
// and the edge REST API into the client the CLI commands call.
package allegro

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/pkonowrocki/allegro-cli/internal/config"
	"github.com/pkonowrocki/allegro-cli/internal/fetch"
	"github.com/pkonowrocki/allegro-cli/internal/progress"
)

const baseURL = "https://allegro.pl"

// ErrNotLoggedIn means no session cookies are configured; scraping and
// cart operations both require them.
var ErrNotLoggedIn = errors.New("no cookies configured")

// Client is the marketplace client. It is safe for concurrent use as long
// as the underlying transports are.
type Client struct {
	fetcher     fetch.Fetcher
	direct      *fetch.Direct
	edge        *EdgeClient
	emitter     progress.Emitter
	logger      *zap.Logger
	lazyTimeout time.Duration
	hasCookies  bool
}

// NewClient wires a Client from configuration. A nil emitter disables
// progress diagnostics.
func NewClient(cfg config.Config, logger *zap.Logger, emitter progress.Emitter) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if emitter == nil {
		emitter = progress.Nop{}
	}

	direct := fetch.NewDirect(fetch.DirectConfig{
		Cookies:   cfg.Cookies,
		UserAgent: cfg.UserAgent,
		Timeout:   time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second,
		HostQPS:   cfg.HTTP.HostQPS,
	}, logger.Named("direct"))

	solver := fetch.NewSolverClient(fetch.SolverConfig{
		BaseURL: cfg.SolverURL,
		Timeout: time.Duration(cfg.HTTP.SolverTimeoutSeconds) * time.Second,
	}, logger.Named("solver"))

	edge := NewEdgeClient(EdgeConfig{
		BaseURL:   cfg.EdgeBaseURL,
		Cookies:   cfg.Cookies,
		UserAgent: cfg.UserAgent,
		Timeout:   time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second,
	}, logger.Named("edge"))

	return &Client{
		fetcher:     fetch.NewTiered(direct, solver, emitter, logger.Named("fetch")),
		direct:      direct,
		edge:        edge,
		emitter:     emitter,
		logger:      logger,
		lazyTimeout: time.Duration(cfg.HTTP.LazyTimeoutSeconds) * time.Second,
		hasCookies:  cfg.Cookies != "",
	}
}

func (c *Client) requireSession() error {
	if !c.hasCookies {
		return ErrNotLoggedIn
	}
	return nil
}
