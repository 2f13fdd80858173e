package allegro

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pkonowrocki/allegro-cli/internal/model"
	"github.com/pkonowrocki/allegro-cli/internal/progress"
	"github.com/pkonowrocki/allegro-cli/internal/scrape"
)

const (
	// lazyParamThreshold is the parameter count below which deferred
	// content is worth chasing; detail pages with a full attribute table
	// carry well over this many entries inline.
	lazyParamThreshold = 15
	// maxLazyRequests bounds the supplemental fetches per offer.
	maxLazyRequests = 3

	lazyContextParam = "lazyContext"
	subtreeAccept    = "application/vnd.opbox-web.subtree+json"
)

// Offer fetches a detail page by offer id and returns the extracted
// record, enriched from deferred content when the initial page carried
// few parameters.
func (c *Client) Offer(ctx context.Context, offerID string) (model.Offer, error) {
	if err := c.requireSession(); err != nil {
		return model.Offer{}, err
	}

	offerURL := baseURL + "/oferta/-" + offerID
	pageText, err := c.fetcher.Fetch(ctx, offerURL)
	if err != nil {
		return model.Offer{}, err
	}

	offer := scrape.ParseOffer(pageText, offerID)
	if len(offer.Parameters) < lazyParamThreshold {
		contexts := scrape.ExtractLazyContexts(pageText)
		if len(contexts) > 0 {
			offer.Parameters.Merge(c.fetchLazyParameters(ctx, offerURL, contexts))
		}
	}
	return offer, nil
}

// fetchLazyParameters pulls deferred parameter blocks, at most
// maxLazyRequests of them, in the order the contexts were ranked.
// Individual failures are skipped: a missing block only costs the
// parameters it would have carried, never the whole offer.
func (c *Client) fetchLazyParameters(ctx context.Context, offerURL string, contexts []scrape.LazyContext) model.Parameters {
	acc := model.Parameters{}
	headers := http.Header{"Accept": []string{subtreeAccept}}

	for i, lc := range contexts {
		if i >= maxLazyRequests {
			break
		}
		lazyURL := offerURL + "?" + lazyContextParam + "=" + url.QueryEscape(lc.Value)

		start := time.Now()
		res, err := c.direct.Do(ctx, lazyURL, headers, c.lazyTimeout)
		c.emitter.Emit(progress.Event{
			TS:     time.Now().UTC(),
			Stage:  progress.StageLazyFetch,
			URL:    lazyURL,
			Status: res.StatusCode,
			Dur:    time.Since(start),
		})
		if err != nil || res.StatusCode != http.StatusOK {
			c.logger.Debug("lazy parameter fetch skipped",
				zap.String("box", lc.BoxID),
				zap.Int("status", res.StatusCode),
				zap.Error(err),
			)
			continue
		}

		var data any
		dec := json.NewDecoder(strings.NewReader(string(res.Body)))
		dec.UseNumber()
		if err := dec.Decode(&data); err != nil {
			continue
		}
		acc.Merge(scrape.ParseOpboxParameters(data))
		if len(acc) > lazyParamThreshold {
			break
		}
	}
	return acc
}
