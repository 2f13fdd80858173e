// Package model defines the normalized offer records produced by the
// extraction pipeline. The field names follow the marketplace REST API
// conventions so JSON output stays stable for downstream consumers.
package model

// Price is a decimal amount with a dot separator and no currency suffix.
type Price struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

// DefaultCurrency is assumed whenever a page carries no explicit currency.
const DefaultCurrency = "PLN"

// NewPrice builds a Price in the default currency.
func NewPrice(amount string) Price {
	return Price{Amount: amount, Currency: DefaultCurrency}
}

// Seller identifies the offer's seller. Either field may be empty when the
// page does not expose it.
type Seller struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Category is the offer's navigation category.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// Image is a single product image URL.
type Image struct {
	URL string `json:"url"`
}

// SellingMode carries the sale format and price.
type SellingMode struct {
	Format     string `json:"format"`
	Price      Price  `json:"price"`
	Popularity int    `json:"popularity,omitempty"`
}

// Sale formats of the sellingMode.format field. Scraped pages expose no
// reliable format signal, so extraction always reports BUY_NOW; the other
// two values occur in the marketplace's REST payloads.
const (
	FormatBuyNow        = "BUY_NOW"
	FormatAuction       = "AUCTION"
	FormatAdvertisement = "ADVERTISEMENT"
)

// DeliveryInfo summarizes shipping options.
type DeliveryInfo struct {
	LowestPrice      *Price `json:"lowestPrice,omitempty"`
	AvailableForFree bool   `json:"availableForFree"`
}

// Stock is the available quantity.
type Stock struct {
	Unit      string `json:"unit"`
	Available int    `json:"available"`
}

// Parameters maps attribute names to values. Keys are unique; the first
// value seen for a name wins and is never replaced.
type Parameters map[string]string

// Set records a value only when the name is not already present.
func (p Parameters) Set(name, value string) {
	if name == "" {
		return
	}
	if _, ok := p[name]; !ok {
		p[name] = value
	}
}

// Merge folds src into p additively. Existing keys keep their value, so
// merging the same source twice is a no-op.
func (p Parameters) Merge(src Parameters) {
	for name, value := range src {
		p.Set(name, value)
	}
}

// Offer is a normalized product listing record. It is built once per parse
// cycle, optionally enriched in place by the lazy parameter resolver, and
// treated as immutable afterwards.
type Offer struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Seller      Seller        `json:"seller"`
	SellingMode SellingMode   `json:"sellingMode"`
	Category    Category      `json:"category"`
	Images      []Image       `json:"images"`
	Delivery    *DeliveryInfo `json:"delivery,omitempty"`
	Stock       *Stock        `json:"stock,omitempty"`
	Parameters  Parameters    `json:"parameters"`
}
