package allegro

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"

	"github.com/pkonowrocki/allegro-cli/internal/model"
	"github.com/pkonowrocki/allegro-cli/internal/scrape"
)

var trailingCategoryID = regexp.MustCompile(`(\d+)$`)

// SearchQuery describes one listing-page request.
type SearchQuery struct {
	Phrase   string
	Page     int
	Category string
	Sort     string
	PriceMin string
	PriceMax string
	Seller   string
}

// URL builds the listing URL. A seller login searches on the seller's
// page; a category id or slug searches within that category; otherwise
// the generic listing endpoint is used.
func (q SearchQuery) URL() string {
	var base string
	switch {
	case q.Seller != "":
		base = fmt.Sprintf("%s/uzytkownik/%s", baseURL, q.Seller)
	case q.Category != "":
		if m := trailingCategoryID.FindStringSubmatch(q.Category); m != nil {
			base = fmt.Sprintf("%s/kategoria/-%s", baseURL, m[1])
		} else {
			base = fmt.Sprintf("%s/kategoria/%s", baseURL, q.Category)
		}
	default:
		base = baseURL + "/listing"
	}

	params := url.Values{}
	params.Set("string", q.Phrase)
	if q.Page > 1 {
		params.Set("p", strconv.Itoa(q.Page))
	}
	if q.Sort != "" {
		params.Set("order", q.Sort)
	}
	if q.PriceMin != "" {
		params.Set("price_from", q.PriceMin)
	}
	if q.PriceMax != "" {
		params.Set("price_to", q.PriceMax)
	}
	return base + "?" + params.Encode()
}

// Search fetches and parses one listing page.
func (c *Client) Search(ctx context.Context, q SearchQuery) ([]model.Offer, error) {
	if err := c.requireSession(); err != nil {
		return nil, err
	}
	pageText, err := c.fetcher.Fetch(ctx, q.URL())
	if err != nil {
		return nil, err
	}
	return scrape.ParseListing(pageText), nil
}
