package allegro

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pkonowrocki/allegro-cli/internal/fetch"
	"github.com/pkonowrocki/allegro-cli/internal/model"
	"github.com/pkonowrocki/allegro-cli/internal/progress"
	"github.com/pkonowrocki/allegro-cli/internal/scrape"
)

// stubFetcher serves canned page text and records the requested URLs.
type stubFetcher struct {
	body string
	err  error
	urls []string
}

func (s *stubFetcher) Fetch(_ context.Context, rawURL string) (string, error) {
	s.urls = append(s.urls, rawURL)
	if s.err != nil {
		return "", s.err
	}
	return s.body, nil
}

func TestOfferParsesDetailPage(t *testing.T) {
	fetcher := &stubFetcher{body: `<html><head>
  <meta property="product:price:amount" content="4399.00" />
</head><body>
  <h1>Apple Mac Studio</h1>
  <script type="application/json" data-serialize-box-id="abc">
  {"groups": [{"singleValueParams": [{"name": "Marka", "value": {"name": "Apple"}}], "multiValueParams": []}]}
  </script>
</body></html>`}

	client := &Client{fetcher: fetcher, hasCookies: true, logger: zap.NewNop()}
	offer, err := client.Offer(context.Background(), "12345678")
	require.NoError(t, err)

	assert.Equal(t, "12345678", offer.ID)
	assert.Equal(t, "Apple Mac Studio", offer.Name)
	assert.Equal(t, "4399.00", offer.SellingMode.Price.Amount)
	assert.Equal(t, "Apple", offer.Parameters["Marka"])

	require.Len(t, fetcher.urls, 1)
	assert.Equal(t, "https://allegro.pl/oferta/-12345678", fetcher.urls[0])
}

func TestOfferRequiresSession(t *testing.T) {
	client := &Client{fetcher: &stubFetcher{}, logger: zap.NewNop()}
	_, err := client.Offer(context.Background(), "12345678")
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestSearchRequiresSession(t *testing.T) {
	client := &Client{fetcher: &stubFetcher{}, logger: zap.NewNop()}
	_, err := client.Search(context.Background(), SearchQuery{Phrase: "laptop"})
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

// detailPageWithParams builds a detail page whose serialized block carries
// n inline parameters plus one deferred-content marker.
func detailPageWithParams(n int) string {
	var entries []string
	for i := 0; i < n; i++ {
		entries = append(entries, fmt.Sprintf(
			`{"name": "Inline%d", "value": {"name": "v%d"}}`, i, i))
	}
	return `<html><body>
  <h1>Laptop Dell 15</h1>
  <script type="application/json" data-serialize-box-id="box-params">
  {"groups": [{"singleValueParams": [` + strings.Join(entries, ",") + `], "multiValueParams": []}]}
  </script>
  <script type="application/json" data-serialize-box-id="box-lazy">
  {"contextUrlParamName": "lazyContext", "contextUrlParamValue": "token", "cardinal": 0, "corellationId": "tab content"}
  </script>
</body></html>`
}

func opboxResponse(pairs ...string) string {
	var entries []string
	for i := 0; i+1 < len(pairs); i += 2 {
		entries = append(entries, fmt.Sprintf(
			`{"name": %q, "value": {"name": %q}}`, pairs[i], pairs[i+1]))
	}
	return `{"groups": [{"singleValueParams": [` + strings.Join(entries, ",") + `], "multiValueParams": []}]}`
}

func lazyTestClient(t *testing.T) *Client {
	t.Helper()
	direct := fetch.NewDirect(fetch.DirectConfig{
		Cookies:   "session=abc",
		UserAgent: "test-agent",
		Timeout:   5 * time.Second,
		HostQPS:   1000,
	}, zap.NewNop())
	return &Client{
		direct:      direct,
		emitter:     progress.Nop{},
		logger:      zap.NewNop(),
		lazyTimeout: 5 * time.Second,
		hasCookies:  true,
	}
}

func TestOfferSkipsDeferredFetchWithFullParameters(t *testing.T) {
	fetcher := &stubFetcher{body: detailPageWithParams(15)}

	// direct is deliberately nil: any supplemental request would panic.
	client := &Client{fetcher: fetcher, hasCookies: true, logger: zap.NewNop()}
	offer, err := client.Offer(context.Background(), "12345678")
	require.NoError(t, err)

	assert.Len(t, offer.Parameters, 15)
	assert.Equal(t, "v0", offer.Parameters["Inline0"])
}

func TestFetchLazyParametersBoundedAndOrdered(t *testing.T) {
	var tokens []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/vnd.opbox-web.subtree+json", r.Header.Get("Accept"))
		token := r.URL.Query().Get("lazyContext")
		tokens = append(tokens, token)
		switch token {
		case "tab-token":
			fmt.Fprint(w, opboxResponse("Marka", "Apple", "Inline0", "lazy-overwrite"))
		default:
			fmt.Fprint(w, opboxResponse("P-"+token, "x"))
		}
	}))
	defer server.Close()

	// Four markers: the tab-content one sorts first despite the highest
	// cardinal, then ascending cardinal; the fourth is never fetched.
	page := `<html><body>
  <script type="application/json" data-serialize-box-id="b1">
  {"contextUrlParamName": "lazyContext", "contextUrlParamValue": "second-token", "cardinal": 0, "corellationId": "top"}
  </script>
  <script type="application/json" data-serialize-box-id="b2">
  {"contextUrlParamName": "lazyContext", "contextUrlParamValue": "tab-token", "cardinal": 9, "corellationId": "tab content"}
  </script>
  <script type="application/json" data-serialize-box-id="b3">
  {"contextUrlParamName": "lazyContext", "contextUrlParamValue": "third-token", "cardinal": 1, "corellationId": "other"}
  </script>
  <script type="application/json" data-serialize-box-id="b4">
  {"contextUrlParamName": "lazyContext", "contextUrlParamValue": "never-token", "cardinal": 2, "corellationId": "other"}
  </script>
</body></html>`

	contexts := scrape.ExtractLazyContexts(page)
	require.Len(t, contexts, 4)

	client := lazyTestClient(t)
	acc := client.fetchLazyParameters(context.Background(), server.URL+"/oferta/-12345678", contexts)

	assert.Equal(t, []string{"tab-token", "second-token", "third-token"}, tokens)
	assert.Equal(t, "Apple", acc["Marka"])
	assert.Contains(t, acc, "P-second-token")
	assert.Contains(t, acc, "P-third-token")

	// Deferred values never displace what the initial page carried.
	initial := model.Parameters{"Inline0": "initial"}
	initial.Merge(acc)
	assert.Equal(t, "initial", initial["Inline0"])
}

func TestFetchLazyParametersStopsWhenSaturated(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests++
		var pairs []string
		for i := 0; i < 16; i++ {
			pairs = append(pairs, fmt.Sprintf("Bulk%d", i), "v")
		}
		fmt.Fprint(w, opboxResponse(pairs...))
	}))
	defer server.Close()

	contexts := []scrape.LazyContext{
		{BoxID: "a", Value: "t1", Cardinal: 0},
		{BoxID: "b", Value: "t2", Cardinal: 1},
		{BoxID: "c", Value: "t3", Cardinal: 2},
	}

	client := lazyTestClient(t)
	acc := client.fetchLazyParameters(context.Background(), server.URL+"/oferta/-12345678", contexts)

	assert.Equal(t, 1, requests, "a saturated accumulator ends the loop")
	assert.Len(t, acc, 16)
}

func TestFetchLazyParametersSkipsFailedBlocks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("lazyContext") == "bad" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, opboxResponse("Stan", "Nowy"))
	}))
	defer server.Close()

	contexts := []scrape.LazyContext{
		{BoxID: "a", Value: "bad", Cardinal: 0},
		{BoxID: "b", Value: "good", Cardinal: 1},
	}

	client := lazyTestClient(t)
	acc := client.fetchLazyParameters(context.Background(), server.URL+"/oferta/-12345678", contexts)

	assert.Equal(t, model.Parameters{"Stan": "Nowy"}, acc)
}
