package ebay

import "github.com/miguel-so/FE-ebay-api-cron/internal/model"

// searchResponse mirrors the top-level Browse API search response.
type searchResponse struct {
	ItemSummaries []ItemSummary `json:"itemSummaries"`
	Total         int           `json:"total"`
}

// ItemSummary mirrors the raw Browse API item summary fields this
// service reads. Nested objects are pointers so an absent field stays
// distinguishable from an empty one.
type ItemSummary struct {
	Title           string           `json:"title"`
	Price           *Money           `json:"price"`
	BidCount        int              `json:"bidCount"`
	ItemEndDate     string           `json:"itemEndDate"`
	Condition       string           `json:"condition"`
	ItemWebURL      string           `json:"itemWebUrl"`
	Image           *Image           `json:"image"`
	Seller          *Seller          `json:"seller"`
	ShippingOptions []ShippingOption `json:"shippingOptions"`
}

// Money is an amount-with-currency pair as the API serialises it.
type Money struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

type Image struct {
	ImageURL string `json:"imageUrl"`
}

type Seller struct {
	Username string `json:"username"`
}

type ShippingOption struct {
	ShippingCost *Money `json:"shippingCost"`
}

// Normalize maps raw item summaries to Listings. It is total: any
// missing field becomes its documented default (price "N/A", bids 0,
// condition "Unknown", shipping "Free") and no input can make it fail.
func Normalize(items []ItemSummary) []model.Listing {
	listings := make([]model.Listing, 0, len(items))
	for _, it := range items {
		l := model.Listing{
			Title:     it.Title,
			Price:     "N/A",
			Bids:      it.BidCount,
			EndTime:   it.ItemEndDate,
			Condition: "Unknown",
			URL:       it.ItemWebURL,
			Shipping:  "Free",
		}
		if it.Price != nil && it.Price.Value != "" {
			l.Price = it.Price.Value
		}
		if it.Condition != "" {
			l.Condition = it.Condition
		}
		if it.Image != nil {
			l.Image = it.Image.ImageURL
		}
		if it.Seller != nil {
			l.Seller = it.Seller.Username
		}
		if len(it.ShippingOptions) > 0 {
			if cost := it.ShippingOptions[0].ShippingCost; cost != nil && cost.Value != "" {
				l.Shipping = cost.Value
			}
		}
		listings = append(listings, l)
	}
	return listings
}
