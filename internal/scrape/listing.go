// Package scrape reconstructs typed offer records from marketplace pages.
// Pages arrive in one of several shapes (embedded JSON state, plain HTML,
// lazily loaded subtree responses) with no guarantee which is present, so
// every entry point tries a fixed chain of strategies and degrades to
// empty fields instead of failing.
package scrape

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pkonowrocki/allegro-cli/internal/model"
)

// UnknownTitle marks cards whose heading could not be located.
const UnknownTitle = "Unknown Title"

const minOfferIDDigits = 8

// listingItemPaths are the known locations of the item array inside the
// embedded JSON state, tried in order. The order is reverse-engineered
// from observed page variants and drifts with marketplace releases.
var listingItemPaths = [][]string{
	{"props", "pageProps", "items"},
	{"props", "pageProps", "searchResult", "items"},
	{"props", "pageProps", "initialState", "listing", "items"},
}

// ParseListing extracts offers from a listing page. The embedded JSON
// state is preferred when present; otherwise each listing card is parsed
// heuristically. An unrecognizable page yields an empty slice, never an
// error.
func ParseListing(htmlText string) []model.Offer {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlText))
	if err != nil {
		return nil
	}
	if offers := listingFromJSON(doc); len(offers) > 0 {
		return offers
	}
	return listingFromCards(doc)
}

// ParseNextPageURL returns the pagination link of a listing page, or ""
// when this is the last page.
func ParseNextPageURL(htmlText string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlText))
	if err != nil {
		return ""
	}
	return doc.Find(`a[rel="next"]`).First().AttrOr("href", "")
}

func listingFromJSON(doc *goquery.Document) []model.Offer {
	data := nextData(doc)
	if data == nil {
		return nil
	}

	var items []any
	for _, path := range listingItemPaths {
		if items = asSlice(dig(data, path...)); len(items) > 0 {
			break
		}
	}
	if len(items) == 0 {
		return nil
	}

	offers := make([]model.Offer, 0, len(items))
	for _, raw := range items {
		item := asMap(raw)
		if item == nil {
			continue
		}
		offer, ok := offerFromItem(item)
		if !ok {
			continue
		}
		offers = append(offers, offer)
	}
	return offers
}

// offerFromItem builds an offer from a single JSON listing item. Items are
// reconstructed defensively: a missing name disqualifies the item, every
// other field degrades to its zero value.
func offerFromItem(item map[string]any) (model.Offer, bool) {
	name := stringify(item["name"])
	if name == "" {
		name = stringify(item["title"])
	}
	if name == "" {
		return model.Offer{}, false
	}

	amount := ""
	switch price := item["price"].(type) {
	case map[string]any:
		amount = stringify(dig(price, "normal", "amount"))
		if amount == "" {
			amount = stringify(price["amount"])
		}
	default:
		amount = stringify(price)
	}

	var images []model.Image
	raw := asSlice(item["images"])
	if len(raw) == 0 {
		raw = asSlice(item["photos"])
	}
	for _, entry := range raw {
		url := ""
		if m := asMap(entry); m != nil {
			url = stringify(m["url"])
		} else {
			url = stringify(entry)
		}
		if url != "" {
			images = append(images, model.Image{URL: url})
		}
	}

	var seller model.Seller
	if s := asMap(item["seller"]); s != nil {
		seller.ID = stringify(s["id"])
		seller.Name = stringify(s["login"])
		if seller.Name == "" {
			seller.Name = stringify(s["name"])
		}
	}

	return model.Offer{
		ID:     stringify(item["id"]),
		Name:   name,
		Seller: seller,
		SellingMode: model.SellingMode{
			Format: model.FormatBuyNow,
			Price:  model.NewPrice(amount),
		},
		Images: images,
	}, true
}

func listingFromCards(doc *goquery.Document) []model.Offer {
	var offers []model.Offer
	doc.Find("article").Each(func(_ int, card *goquery.Selection) {
		title := strings.TrimSpace(card.Find("h2").First().Text())
		if title == "" {
			title = UnknownTitle
		}
		href := card.Find("a[href]").First().AttrOr("href", "")
		offerID := ExtractOfferID(href)
		if !isRealOffer(title, offerID, href) {
			return
		}

		amount := cardPrice(card)
		var images []model.Image
		if url := cardImage(card); url != "" {
			images = []model.Image{{URL: url}}
		}

		offers = append(offers, model.Offer{
			ID:     offerID,
			Name:   title,
			Seller: model.Seller{},
			SellingMode: model.SellingMode{
				Format: model.FormatBuyNow,
				Price:  model.NewPrice(amount),
			},
			Images: images,
		})
	})
	return offers
}

// isRealOffer filters out category banners, ads, and decorative cards that
// share the listing-card markup but do not resolve to a product.
func isRealOffer(title, offerID, href string) bool {
	if title == UnknownTitle {
		return false
	}
	if len(offerID) < minOfferIDDigits {
		return false
	}
	if href == "" {
		return false
	}
	if strings.Contains(href, "/oferta/") || strings.Contains(href, "/listing/") {
		return true
	}
	// A long numeric id is trusted even when the link path is unfamiliar.
	return len(offerID) >= minOfferIDDigits
}

func cardPrice(card *goquery.Selection) string {
	if p := priceFromAria(card); p != "" {
		return p
	}
	if p := priceFromText(card); p != "" {
		return p
	}
	return card.Find("[data-price]").First().AttrOr("data-price", "")
}

// cardImage returns the first plausible product image, skipping icon-sized
// elements, SVG placeholders, tracking pixels, and badge icons. A deferred
// data-src wins over the eagerly loaded src.
func cardImage(card *goquery.Selection) string {
	result := ""
	card.Find("img").EachWithBreak(func(_ int, img *goquery.Selection) bool {
		if iconSized(img) {
			return true
		}
		src := img.AttrOr("data-src", "")
		if src == "" {
			src = img.AttrOr("src", "")
		}
		if src == "" || skippableImage(src) {
			return true
		}
		result = src
		return false
	})
	return result
}

func iconSized(img *goquery.Selection) bool {
	w, errW := strconv.Atoi(img.AttrOr("width", ""))
	h, errH := strconv.Atoi(img.AttrOr("height", ""))
	if errW != nil || errH != nil {
		return false
	}
	return w <= 48 || h <= 48
}

func skippableImage(src string) bool {
	if strings.Contains(src, "placeholder") || strings.HasSuffix(src, ".svg") || strings.Contains(src, "1x1") {
		return true
	}
	// Generic marketplace info/badge sprites.
	return strings.Contains(src, "action-common-information") || strings.Contains(src, "brand-subb")
}
