// Package model defines shared data structures for the listing monitor.
package model

const (
	// DefaultLimit is the number of results requested when the criteria
	// record does not name one.
	DefaultLimit = 20
	// MaxLimit is the hard per-request cap imposed by the Browse API.
	MaxLimit = 100
)

// SearchCriteria is the single persisted user search specification.
// Every field except Email is optional; pointer fields distinguish
// "absent" from a legitimate zero value (minPrice=0 is a real bound).
type SearchCriteria struct {
	Email      string   `json:"email"`
	Keyword    string   `json:"keyword,omitempty"`
	Category   string   `json:"category,omitempty"`
	Condition  string   `json:"condition,omitempty"`
	MinPrice   *float64 `json:"minPrice,omitempty"`
	MaxPrice   *float64 `json:"maxPrice,omitempty"`
	MinBids    *int     `json:"minBids,omitempty"`
	MaxResults *int     `json:"maxResults,omitempty"`
}

// Limit returns the effective result limit: MaxResults when set and
// positive, DefaultLimit otherwise, capped at MaxLimit.
func (c SearchCriteria) Limit() int {
	limit := DefaultLimit
	if c.MaxResults != nil && *c.MaxResults > 0 {
		limit = *c.MaxResults
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return limit
}

// Listing is one normalised auction item returned by a search. Values
// are built fresh per query and discarded after notification.
type Listing struct {
	Title     string `json:"title"`
	Price     string `json:"price"`
	Bids      int    `json:"bids"`
	EndTime   string `json:"endTime"`
	Condition string `json:"condition"`
	URL       string `json:"url"`
	Image     string `json:"image,omitempty"`
	Seller    string `json:"seller,omitempty"`
	Shipping  string `json:"shipping"`
}
