// Package ebay implements the Browse API client used to find auction
// listings ending soon.
package ebay

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/miguel-so/FE-ebay-api-cron/internal/model"
)

const (
	defaultBaseURL  = "https://api.ebay.com/buy/browse/v1"
	defaultTokenURL = "https://api.ebay.com/identity/v1/oauth2/token"
	oauthScope      = "https://api.ebay.com/oauth/api_scope"

	// endingSoonWindow is the fixed lookahead of a search: items whose
	// auction ends between now and now+window.
	endingSoonWindow = time.Hour

	// priceCeiling is the upper bound used when a minimum price is given
	// without a maximum.
	priceCeiling = "999999"

	httpTimeout = 15 * time.Second
)

// isoMillis matches the timestamp shape the Browse API expects in
// itemEndDate range filters.
const isoMillis = "2006-01-02T15:04:05.000Z"

// AuthError reports a failed client-credentials token exchange.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string { return fmt.Sprintf("ebay: token exchange failed: %v", e.Err) }
func (e *AuthError) Unwrap() error { return e.Err }

// SearchError reports a failed search call. When the API answered with
// a non-2xx status, Status and Body carry the upstream error payload.
type SearchError struct {
	Status int
	Body   string
	Err    error
}

func (e *SearchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("ebay: search returned %d: %s", e.Status, e.Body)
	}
	return fmt.Sprintf("ebay: search failed: %v", e.Err)
}

func (e *SearchError) Unwrap() error { return e.Err }

// Client calls the eBay Browse API with a client-credentials bearer
// token. The token is held by an oauth2 TokenSource, which tracks its
// expiry and refreshes it transparently — tokens are never cached past
// their lifetime.
type Client struct {
	// BaseURL and TokenURL default to the production eBay endpoints and
	// are overridable for tests.
	BaseURL  string
	TokenURL string

	clientID     string
	clientSecret string
	client       *http.Client

	tsOnce sync.Once
	ts     oauth2.TokenSource

	now func() time.Time
}

// New constructs a Client with a shared HTTP client. Empty credentials
// are accepted; every call will then fail with an AuthError, and
// Configured reports false so callers can fall back to mock mode.
func New(clientID, clientSecret string) *Client {
	return &Client{
		BaseURL:      defaultBaseURL,
		TokenURL:     defaultTokenURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		client:       &http.Client{Timeout: httpTimeout},
		now:          time.Now,
	}
}

// Configured reports whether marketplace credentials are present.
func (c *Client) Configured() bool {
	return c.clientID != "" && c.clientSecret != ""
}

func (c *Client) tokenSource() oauth2.TokenSource {
	c.tsOnce.Do(func() {
		cfg := &clientcredentials.Config{
			ClientID:     c.clientID,
			ClientSecret: c.clientSecret,
			TokenURL:     c.TokenURL,
			Scopes:       []string{oauthScope},
		}
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, c.client)
		c.ts = cfg.TokenSource(ctx)
	})
	return c.ts
}

// AccessToken returns a valid bearer token, exchanging or refreshing
// the cached one as needed.
func (c *Client) AccessToken() (string, error) {
	tok, err := c.tokenSource().Token()
	if err != nil {
		return "", &AuthError{Err: err}
	}
	return tok.AccessToken, nil
}

// SearchEndingSoon finds listings matching criteria whose auction ends
// within the next hour, sorted by end time ascending. A single request
// is issued with the criteria's capped result limit.
func (c *Client) SearchEndingSoon(ctx context.Context, criteria model.SearchCriteria) ([]model.Listing, error) {
	token, err := c.AccessToken()
	if err != nil {
		return nil, err
	}

	now := c.now()
	params := url.Values{}
	params.Set("q", criteria.Keyword)
	params.Set("limit", strconv.Itoa(criteria.Limit()))
	params.Set("sort", "endTime")
	params.Set("filter", buildFilter(criteria, now, now.Add(endingSoonWindow)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.BaseURL+"/item_summary/search?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &SearchError{Err: fmt.Errorf("http GET: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &SearchError{Err: fmt.Errorf("read body: %w", err)}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &SearchError{Status: resp.StatusCode, Body: string(body)}
	}

	var out searchResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, &SearchError{Err: fmt.Errorf("json unmarshal: %w", err)}
	}
	return Normalize(out.ItemSummaries), nil
}

// Item fetches the full raw detail record for a single listing ID.
func (c *Client) Item(ctx context.Context, itemID string) (json.RawMessage, error) {
	token, err := c.AccessToken()
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.BaseURL+"/item/"+url.PathEscape(itemID), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &SearchError{Err: fmt.Errorf("http GET: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &SearchError{Err: fmt.Errorf("read body: %w", err)}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &SearchError{Status: resp.StatusCode, Body: string(body)}
	}
	return json.RawMessage(body), nil
}

// buildFilter assembles the item filter expression: the mandatory end
// date window, then optional category, condition, price range and
// minimum bid count clauses. The price clause is added only when at
// least one bound is set, with floor 0 and ceiling 999999 standing in
// for the absent side.
func buildFilter(c model.SearchCriteria, start, end time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "itemEndDate:[%s..%s]",
		start.UTC().Format(isoMillis), end.UTC().Format(isoMillis))

	if c.Category != "" {
		fmt.Fprintf(&b, ",categoryId:%s", c.Category)
	}
	if c.Condition != "" {
		fmt.Fprintf(&b, ",conditionIds:{%s}", c.Condition)
	}
	if c.MinPrice != nil || c.MaxPrice != nil {
		floor, ceiling := "0", priceCeiling
		if c.MinPrice != nil {
			floor = formatPrice(*c.MinPrice)
		}
		if c.MaxPrice != nil {
			ceiling = formatPrice(*c.MaxPrice)
		}
		fmt.Fprintf(&b, ",price:[%s..%s]", floor, ceiling)
	}
	if c.MinBids != nil {
		fmt.Fprintf(&b, ",bidCount:[%d..]", *c.MinBids)
	}
	return b.String()
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
