// Package server implements the HTTP surface of the listing monitor.
//
// Routes:
//
//	POST /api/save-criteria → persist the posted criteria JSON verbatim
//	GET  /api/criteria      → current criteria record ({} when none)
//	POST /api/search        → ad-hoc ending-soon search (mock fallback
//	                          when marketplace credentials are absent)
//	GET  /api/item/{id}     → raw marketplace detail for one listing
//	GET  /api/health        → liveness probe
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/miguel-so/FE-ebay-api-cron/internal/ebay"
	"github.com/miguel-so/FE-ebay-api-cron/internal/model"
)

// Marketplace is the slice of the eBay client the HTTP surface needs.
type Marketplace interface {
	Configured() bool
	SearchEndingSoon(ctx context.Context, criteria model.SearchCriteria) ([]model.Listing, error)
	Item(ctx context.Context, itemID string) (json.RawMessage, error)
}

// CriteriaStore is the slice of the flat-file store the HTTP surface needs.
type CriteriaStore interface {
	Save(v any) bool
	LoadRaw() []byte
}

// Handler holds shared dependencies.
type Handler struct {
	store  CriteriaStore
	client Marketplace
	now    func() time.Time
}

// NewHandler returns a configured Handler.
func NewHandler(store CriteriaStore, client Marketplace) *Handler {
	return &Handler{store: store, client: client, now: time.Now}
}

// RegisterRoutes mounts all monitor routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/save-criteria", withCORS(h.handleSaveCriteria))
	mux.HandleFunc("/api/criteria", withCORS(h.handleGetCriteria))
	mux.HandleFunc("/api/search", withCORS(h.handleSearch))
	mux.HandleFunc("/api/item/", withCORS(h.handleItem))
	mux.HandleFunc("/api/health", withCORS(h.handleHealth))
}

// ─── Individual handlers ──────────────────────────────────────────────────────

// handleSaveCriteria stores the request body as the new criteria record.
// Any valid JSON is accepted verbatim — recognised fields are not
// enforced, matching the record's loosely-structured contract.
func (h *Handler) handleSaveCriteria(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil || !json.Valid(body) {
		jsonError(w, "body must be valid JSON", http.StatusBadRequest)
		return
	}

	if !h.store.Save(json.RawMessage(body)) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"message": "Failed to save criteria",
		})
		return
	}

	jsonOK(w, map[string]any{
		"success": true,
		"message": "Criteria saved successfully",
	})
}

// handleGetCriteria returns the stored record verbatim, or {} when none
// exists.
func (h *Handler) handleGetCriteria(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	raw := h.store.LoadRaw()
	if raw == nil {
		raw = []byte("{}")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(raw)
}

type searchResponse struct {
	Success  bool                 `json:"success"`
	Listings []model.Listing      `json:"listings"`
	Criteria model.SearchCriteria `json:"criteria"`
	Note     string               `json:"note,omitempty"`
}

// handleSearch runs an ad-hoc ending-soon search with the posted
// criteria. Without marketplace credentials it answers with two canned
// demo listings and a note saying so.
func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var criteria model.SearchCriteria
	if err := json.NewDecoder(r.Body).Decode(&criteria); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	if !h.client.Configured() {
		log.Println("[server] No eBay API credentials found, using mock data")
		jsonOK(w, searchResponse{
			Success:  true,
			Listings: mockListings(h.now()),
			Criteria: criteria,
			Note:     "Using mock data - configure eBay API credentials for real results",
		})
		return
	}

	listings, err := h.client.SearchEndingSoon(r.Context(), criteria)
	if err != nil {
		log.Printf("[server] Search error: %v", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"message": "Error searching listings",
			"error":   err.Error(),
		})
		return
	}

	jsonOK(w, searchResponse{
		Success:  true,
		Listings: listings,
		Criteria: criteria,
	})
}

// handleItem proxies a single-item detail lookup.
func (h *Handler) handleItem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	itemID := strings.TrimPrefix(r.URL.Path, "/api/item/")
	if itemID == "" || strings.Contains(itemID, "/") {
		jsonError(w, "invalid item id", http.StatusNotFound)
		return
	}

	if !h.client.Configured() {
		jsonError(w, "eBay API credentials are not configured", http.StatusServiceUnavailable)
		return
	}

	detail, err := h.client.Item(r.Context(), itemID)
	if err != nil {
		log.Printf("[server] Item lookup error: %v", err)
		var sErr *ebay.SearchError
		if errors.As(err, &sErr) && sErr.Status == http.StatusNotFound {
			jsonError(w, "item not found", http.StatusNotFound)
			return
		}
		jsonError(w, "error fetching item details", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(detail)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	jsonOK(w, map[string]string{
		"status":    "OK",
		"timestamp": h.now().UTC().Format(time.RFC3339),
	})
}

// mockListings mirrors the demo payload served when no marketplace
// credentials are configured.
func mockListings(now time.Time) []model.Listing {
	return []model.Listing{
		{
			Title:     "Vintage Camera - Canon AE-1 Program",
			Price:     "125.50",
			Bids:      3,
			EndTime:   now.Add(30 * time.Minute).UTC().Format(time.RFC3339),
			Condition: "Used",
			URL:       "https://www.ebay.com/itm/example1",
			Shipping:  "Free",
		},
		{
			Title:     "iPhone 12 Pro Max 256GB",
			Price:     "650.00",
			Bids:      7,
			EndTime:   now.Add(45 * time.Minute).UTC().Format(time.RFC3339),
			Condition: "New",
			URL:       "https://www.ebay.com/itm/example2",
			Shipping:  "Free",
		},
	}
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// withCORS answers preflight requests and attaches permissive CORS
// headers, mirroring the browser-facing behavior of the API.
func withCORS(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next(w, r)
	}
}

func jsonOK(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
