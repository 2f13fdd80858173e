// Package fetch produces page text for marketplace URLs, escalating
// through fetch tiers when the anti-bot layer blocks the direct request.
package fetch

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// browserHeaders mimic the request profile of a real browser session.
// The anti-bot layer scores header consistency, so these stay fixed.
var browserHeaders = map[string]string{
	"origin":             "https://allegro.pl",
	"referer":            "https://allegro.pl/",
	"sec-ch-ua-mobile":   "?0",
	"sec-ch-ua-platform": `"Windows"`,
	"sec-fetch-dest":     "empty",
	"sec-fetch-mode":     "cors",
	"sec-fetch-site":     "same-site",
	"accept-language":    "pl-PL",
}

// DirectConfig controls the direct fetch tier.
type DirectConfig struct {
	Cookies   string
	UserAgent string
	Timeout   time.Duration
	HostQPS   float64
}

// Result is the raw outcome of one direct-tier request.
type Result struct {
	StatusCode int
	Body       []byte
}

// Direct issues requests through a Colly collector bound to the session
// cookie string. It reports every response verbatim; interpreting status
// codes is the tiered fetcher's job.
type Direct struct {
	base         *colly.Collector
	cookies      string
	timeout      time.Duration
	hostQPS      float64
	hostLimiters sync.Map
	logger       *zap.Logger
}

// NewDirect constructs the configured direct tier.
func NewDirect(cfg DirectConfig, logger *zap.Logger) *Direct {
	base := colly.NewCollector(
		colly.UserAgent(cfg.UserAgent),
		colly.ParseHTTPErrorResponse(),
		colly.AllowURLRevisit(),
	)
	base.WithTransport(&http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          32,
		MaxIdleConnsPerHost:   8,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: cfg.Timeout,
		ForceAttemptHTTP2:     true,
	})
	base.SetRequestTimeout(cfg.Timeout)
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Direct{
		base:    base,
		cookies: cfg.Cookies,
		timeout: cfg.Timeout,
		hostQPS: cfg.HostQPS,
		logger:  logger,
	}
}

// Do performs a single GET. Extra headers override the browser profile;
// a zero timeout keeps the collector default. Transport failures come
// back as errors, HTTP errors as Result with the status code set.
func (d *Direct) Do(ctx context.Context, rawURL string, extra http.Header, timeout time.Duration) (Result, error) {
	if err := d.waitHostBudget(ctx, rawURL); err != nil {
		return Result{}, err
	}

	collector := d.base.Clone()
	if timeout > 0 {
		collector.SetRequestTimeout(timeout)
	}

	collector.OnRequest(func(r *colly.Request) {
		for name, value := range browserHeaders {
			r.Headers.Set(name, value)
		}
		if d.cookies != "" {
			r.Headers.Set("Cookie", d.cookies)
		}
		for name, values := range extra {
			for _, value := range values {
				r.Headers.Set(name, value)
			}
		}
	})

	resultCh := make(chan directResult, 1)
	var once sync.Once
	send := func(res directResult) {
		once.Do(func() { resultCh <- res })
	}

	collector.OnResponse(func(r *colly.Response) {
		send(directResult{result: Result{
			StatusCode: r.StatusCode,
			Body:       append([]byte{}, r.Body...),
		}})
	})
	collector.OnError(func(r *colly.Response, err error) {
		// With error-response parsing enabled only transport failures
		// land here; a nil error should not happen but is guarded.
		if err == nil {
			err = errors.New("unknown transport error")
		}
		send(directResult{err: err})
	})

	start := time.Now()
	if err := collector.Visit(rawURL); err != nil {
		return Result{}, err
	}
	collector.Wait()

	select {
	case res := <-resultCh:
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		d.logger.Debug("direct fetch finished",
			zap.String("url", rawURL),
			zap.Int("status", res.result.StatusCode),
			zap.Duration("dur", time.Since(start)),
			zap.Error(res.err),
		)
		return res.result, res.err
	default:
		return Result{}, errors.New("direct fetch produced no result")
	}
}

type directResult struct {
	result Result
	err    error
}

func (d *Direct) waitHostBudget(ctx context.Context, rawURL string) error {
	if d.hostQPS <= 0 {
		return nil
	}
	host := hostOf(rawURL)
	val, _ := d.hostLimiters.LoadOrStore(host, rate.NewLimiter(rate.Limit(d.hostQPS), 1))
	limiter, ok := val.(*rate.Limiter)
	if !ok {
		return errors.New("unexpected limiter type")
	}
	return limiter.Wait(ctx)
}
