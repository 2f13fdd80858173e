package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pkonowrocki/allegro-cli/internal/progress"
)

// Fetcher produces page text for a URL or fails with a classified error.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (string, error)
}

// Tiered escalates through fetch tiers in strict order: the direct tier
// first, the rendering solver only when the direct tier reports the
// anti-bot challenge. Escalation is one-directional and single-shot per
// tier; the anti-bot layer is adversarial, not transient, so no tier is
// retried internally.
type Tiered struct {
	direct  *Direct
	solver  *SolverClient
	emitter progress.Emitter
	logger  *zap.Logger
}

// NewTiered wires the two tiers together. A nil emitter disables progress
// diagnostics.
func NewTiered(direct *Direct, solver *SolverClient, emitter progress.Emitter, logger *zap.Logger) *Tiered {
	if emitter == nil {
		emitter = progress.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tiered{direct: direct, solver: solver, emitter: emitter, logger: logger}
}

// Fetch implements Fetcher.
func (t *Tiered) Fetch(ctx context.Context, rawURL string) (string, error) {
	body, err := t.fetchDirect(ctx, rawURL)
	if err == nil {
		return body, nil
	}
	if !errors.Is(err, errChallenged) {
		t.emit(progress.StageFetchFailed, rawURL, 0, err.Error())
		return "", err
	}

	t.emit(progress.StageFetchEscalated, rawURL, http.StatusForbidden, "direct tier challenged")
	start := time.Now()
	rendered, err := t.solver.Render(ctx, rawURL)
	if err != nil {
		t.emit(progress.StageFetchFailed, rawURL, 0, err.Error())
		return "", err
	}
	t.emitter.Emit(progress.Event{
		TS:    time.Now().UTC(),
		Stage: progress.StageFetchRendered,
		URL:   rawURL,
		Dur:   time.Since(start),
	})
	return rendered, nil
}

// fetchDirect runs the direct tier and classifies the outcome. The
// errChallenged sentinel is the only path into the rendering tier.
func (t *Tiered) fetchDirect(ctx context.Context, rawURL string) (string, error) {
	t.emit(progress.StageFetchDirect, rawURL, 0, "")
	res, err := t.direct.Do(ctx, rawURL, nil, 0)
	if err != nil {
		return "", &FetchFailedError{Err: err}
	}

	switch {
	case res.StatusCode == http.StatusOK:
		return string(res.Body), nil
	case res.StatusCode == http.StatusUnauthorized:
		return "", ErrSessionExpired
	case res.StatusCode == http.StatusForbidden:
		t.logger.Debug("direct fetch challenged, escalating to solver", zap.String("url", rawURL))
		return "", errChallenged
	default:
		return "", &FetchFailedError{Status: res.StatusCode, Snippet: snippet(res.Body)}
	}
}

func (t *Tiered) emit(stage progress.Stage, rawURL string, status int, note string) {
	t.emitter.Emit(progress.Event{
		TS:     time.Now().UTC(),
		Stage:  stage,
		URL:    rawURL,
		Status: status,
		Note:   note,
	})
}

func snippet(body []byte) string {
	const maxSnippet = 300
	text := strings.TrimSpace(string(body))
	if len(text) > maxSnippet {
		return text[:maxSnippet]
	}
	return text
}

func hostOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return strings.ToLower(parsed.Host)
}
