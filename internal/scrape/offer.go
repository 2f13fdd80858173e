package scrape

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pkonowrocki/allegro-cli/internal/model"
)

var (
	sellerIDFlat   = regexp.MustCompile(`"sellerId":"(\d+)"`)
	sellerIDNested = regexp.MustCompile(`"seller":\{"id":"(\d+)"`)
)

// ParseOffer extracts a single offer from a product detail page. It always
// returns a value; fields the page does not expose stay empty. knownID, when
// supplied by the caller, takes precedence over the canonical link.
func ParseOffer(htmlText, knownID string) model.Offer {
	offer := model.Offer{
		ID:          knownID,
		Name:        UnknownTitle,
		SellingMode: model.SellingMode{Format: model.FormatBuyNow, Price: model.NewPrice("")},
		Parameters:  model.Parameters{},
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlText))
	if err != nil {
		return offer
	}

	if title := strings.TrimSpace(doc.Find("h1").First().Text()); title != "" {
		offer.Name = title
	}

	if offer.ID == "" {
		canonical := doc.Find(`link[rel="canonical"]`).First().AttrOr("href", "")
		offer.ID = ExtractOfferID(canonical)
	}

	offer.SellingMode.Price.Amount = offerPrice(doc)

	if img := doc.Find(`meta[property="og:image"]`).First().AttrOr("content", ""); img != "" {
		offer.Images = []model.Image{{URL: img}}
	}

	if m := sellerIDFlat.FindStringSubmatch(htmlText); m != nil {
		offer.Seller.ID = m[1]
	} else if m := sellerIDNested.FindStringSubmatch(htmlText); m != nil {
		offer.Seller.ID = m[1]
	}

	offer.Parameters = offerParameters(doc)
	return offer
}

// offerPrice prefers the dedicated price meta tag, then the accessible-label
// heuristic, then a raw text scan.
func offerPrice(doc *goquery.Document) string {
	if amount := doc.Find(`meta[property="product:price:amount"]`).First().AttrOr("content", ""); amount != "" {
		return amount
	}
	if amount := priceFromAria(doc.Selection); amount != "" {
		return amount
	}
	return priceFromText(doc.Selection)
}

// offerParameters tries the three parameter sources in fixed precedence;
// the first non-empty result wins and the rest are not consulted.
func offerParameters(doc *goquery.Document) model.Parameters {
	if params := paramsFromSerializedBlocks(doc); len(params) > 0 {
		return params
	}
	if params := paramsFromNextData(doc); len(params) > 0 {
		return params
	}
	return paramsFromTables(doc)
}
