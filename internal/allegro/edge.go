package allegro

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/pkonowrocki/allegro-cli/internal/fetch"
)

// Versioned media types of the edge REST API.
const (
	acceptInternalV1 = "application/vnd.allegro.internal.v1+json"
	acceptInternalV6 = "application/vnd.allegro.internal.v6+json"
	acceptPublicV5   = "application/vnd.allegro.public.v5+json"
)

// APIError reports a non-auth edge API failure.
type APIError struct {
	Status  int
	Snippet string
}

func (e *APIError) Error() string {
	if e.Status == http.StatusForbidden {
		return "edge API access denied (403); session cookies may have expired"
	}
	return fmt.Sprintf("edge API returned %d: %s", e.Status, e.Snippet)
}

// EdgeConfig controls the edge REST client.
type EdgeConfig struct {
	BaseURL   string
	Cookies   string
	UserAgent string
	Timeout   time.Duration
}

// EdgeClient calls the stable, versioned REST API behind the marketplace
// web app (cart and package operations) using the session cookies.
type EdgeClient struct {
	cfg    EdgeConfig
	client *http.Client
	logger *zap.Logger
}

// NewEdgeClient builds a client for the configured edge endpoint.
func NewEdgeClient(cfg EdgeConfig, logger *zap.Logger) *EdgeClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EdgeClient{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// Cart returns the current shopping cart document.
func (c *Client) Cart(ctx context.Context) (map[string]any, error) {
	if err := c.requireSession(); err != nil {
		return nil, err
	}
	return c.edge.getJSON(ctx, "/carts", acceptInternalV6)
}

// CartChange describes one quantity delta applied to a cart item.
type CartChange struct {
	ItemID        string
	Delta         int
	SellerID      string
	NavCategoryID string
}

type cartChangeItem struct {
	ItemID        string `json:"itemId"`
	Delta         int    `json:"delta"`
	SellerID      string `json:"sellerId"`
	NavCategoryID string `json:"navCategoryId,omitempty"`
	NavTree       string `json:"navTree"`
}

// ChangeCartQuantity applies the delta through the cart command endpoint.
func (c *Client) ChangeCartQuantity(ctx context.Context, change CartChange) error {
	if err := c.requireSession(); err != nil {
		return err
	}
	body := map[string][]cartChangeItem{
		"items": {{
			ItemID:        change.ItemID,
			Delta:         change.Delta,
			SellerID:      change.SellerID,
			NavCategoryID: change.NavCategoryID,
			NavTree:       "navigation-pl",
		}},
	}
	_, err := c.edge.do(ctx, http.MethodPost, "/carts/changeQuantityCommand", acceptPublicV5, acceptPublicV5, body)
	return err
}

// PackagesSummary returns the delivery/packages summary document.
func (c *Client) PackagesSummary(ctx context.Context) (map[string]any, error) {
	if err := c.requireSession(); err != nil {
		return nil, err
	}
	return c.edge.getJSON(ctx, "/packages/summary", acceptInternalV1)
}

func (e *EdgeClient) getJSON(ctx context.Context, path, accept string) (map[string]any, error) {
	data, err := e.do(ctx, http.MethodGet, path, accept, "", nil)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", path, err)
	}
	return doc, nil
}

// do performs one edge request and maps the auth statuses onto the error
// taxonomy before anything tries to decode the body.
func (e *EdgeClient) do(ctx context.Context, method, path, accept, contentType string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s request: %w", path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, e.cfg.BaseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Accept", accept)
	req.Header.Set("User-Agent", e.cfg.UserAgent)
	req.Header.Set("Origin", "https://allegro.pl")
	req.Header.Set("Referer", "https://allegro.pl/")
	if e.cfg.Cookies != "" {
		req.Header.Set("Cookie", e.cfg.Cookies)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("edge %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", path, err)
	}

	e.logger.Debug("edge request finished",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
	)

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, fetch.ErrSessionExpired
	case resp.StatusCode >= 400 && resp.StatusCode != http.StatusNoContent:
		snippet := string(data)
		if len(snippet) > 300 {
			snippet = snippet[:300]
		}
		return nil, &APIError{Status: resp.StatusCode, Snippet: snippet}
	}
	return data, nil
}
