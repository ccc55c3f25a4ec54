package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/miguel-so/FE-ebay-api-cron/internal/model"
	"github.com/miguel-so/FE-ebay-api-cron/internal/server"
	"github.com/miguel-so/FE-ebay-api-cron/internal/store"
)

// fakeMarketplace implements server.Marketplace.
type fakeMarketplace struct {
	configured bool
	listings   []model.Listing
	searchErr  error
	item       json.RawMessage
	itemErr    error
}

func (f *fakeMarketplace) Configured() bool { return f.configured }

func (f *fakeMarketplace) SearchEndingSoon(ctx context.Context, c model.SearchCriteria) ([]model.Listing, error) {
	return f.listings, f.searchErr
}

func (f *fakeMarketplace) Item(ctx context.Context, itemID string) (json.RawMessage, error) {
	return f.item, f.itemErr
}

func newMux(t *testing.T, client server.Marketplace) *http.ServeMux {
	t.Helper()
	st := store.New(filepath.Join(t.TempDir(), "criteria.json"))
	mux := http.NewServeMux()
	server.NewHandler(st, client).RegisterRoutes(mux)
	return mux
}

// ── Criteria round-trip ────────────────────────────────────────────────────

func TestSaveThenGetCriteria(t *testing.T) {
	mux := newMux(t, &fakeMarketplace{})

	body := `{"email":"a@b.com","keyword":"camera","extraField":"kept"}`
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/save-criteria", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("save-criteria status = %d, want 200 (body %s)", rec.Code, rec.Body)
	}
	var saveResp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &saveResp); err != nil {
		t.Fatalf("decoding save response: %v", err)
	}
	if !saveResp.Success || saveResp.Message == "" {
		t.Errorf("save response = %+v, want success with a message", saveResp)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/criteria", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("criteria status = %d, want 200", rec.Code)
	}
	var got map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decoding criteria response: %v", err)
	}
	if got["email"] != "a@b.com" || got["extraField"] != "kept" {
		t.Errorf("criteria round-trip = %v, want the posted record back verbatim", got)
	}
}

func TestGetCriteria_EmptyStore(t *testing.T) {
	mux := newMux(t, &fakeMarketplace{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/criteria", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != "{}" {
		t.Errorf("body = %q, want {}", body)
	}
}

func TestSaveCriteria_Rejections(t *testing.T) {
	mux := newMux(t, &fakeMarketplace{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/save-criteria", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET save-criteria status = %d, want 405", rec.Code)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/save-criteria", strings.NewReader("{broken")))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("malformed body status = %d, want 400", rec.Code)
	}
}

// ── Ad-hoc search ──────────────────────────────────────────────────────────

func TestSearch_MockFallback(t *testing.T) {
	mux := newMux(t, &fakeMarketplace{configured: false})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/search",
		strings.NewReader(`{"email":"a@b.com","keyword":"camera"}`)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Success  bool            `json:"success"`
		Listings []model.Listing `json:"listings"`
		Note     string          `json:"note"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if !resp.Success {
		t.Error("success = false, want true in mock mode")
	}
	if len(resp.Listings) != 2 {
		t.Errorf("got %d mock listings, want 2", len(resp.Listings))
	}
	if !strings.Contains(resp.Note, "mock data") {
		t.Errorf("note = %q, want it to flag mock mode", resp.Note)
	}
}

func TestSearch_Passthrough(t *testing.T) {
	want := model.Listing{Title: "Canon AE-1", Price: "125.50", Bids: 3, Condition: "Used", Shipping: "Free"}
	mux := newMux(t, &fakeMarketplace{configured: true, listings: []model.Listing{want}})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/search",
		strings.NewReader(`{"keyword":"camera"}`)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp struct {
		Success  bool            `json:"success"`
		Listings []model.Listing `json:"listings"`
		Note     string          `json:"note"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(resp.Listings) != 1 || resp.Listings[0] != want {
		t.Errorf("listings = %+v, want the marketplace result", resp.Listings)
	}
	if resp.Note != "" {
		t.Errorf("note = %q, want empty outside mock mode", resp.Note)
	}
}

func TestSearch_UpstreamFailure(t *testing.T) {
	mux := newMux(t, &fakeMarketplace{configured: true, searchErr: errors.New("upstream exploded")})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/search", strings.NewReader(`{}`)))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Success {
		t.Error("success = true on a failed search")
	}
	if !strings.Contains(resp.Error, "upstream exploded") {
		t.Errorf("error = %q, want the upstream message", resp.Error)
	}
}

// ── Item lookup ────────────────────────────────────────────────────────────

func TestItem(t *testing.T) {
	detail := json.RawMessage(`{"itemId":"v1|123|0","title":"Canon AE-1"}`)
	mux := newMux(t, &fakeMarketplace{configured: true, item: detail})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/item/v1|123|0", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if strings.TrimSpace(rec.Body.String()) != string(detail) {
		t.Errorf("body = %s, want the raw detail payload", rec.Body)
	}
}

func TestItem_Unconfigured(t *testing.T) {
	mux := newMux(t, &fakeMarketplace{configured: false})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/item/v1|123|0", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503 without credentials", rec.Code)
	}
}

// ── Health ─────────────────────────────────────────────────────────────────

func TestHealth(t *testing.T) {
	mux := newMux(t, &fakeMarketplace{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp["status"] != "OK" {
		t.Errorf("status field = %q, want OK", resp["status"])
	}
	if _, err := time.Parse(time.RFC3339, resp["timestamp"]); err != nil {
		t.Errorf("timestamp %q is not RFC3339: %v", resp["timestamp"], err)
	}
}

// ── CORS ───────────────────────────────────────────────────────────────────

func TestCORSPreflight(t *testing.T) {
	mux := newMux(t, &fakeMarketplace{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/search", nil))

	if rec.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d, want 204", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing Access-Control-Allow-Origin header")
	}
}
