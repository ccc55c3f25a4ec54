// Package monitor implements the scheduled search-and-notify workflow:
// load criteria → query the marketplace → notify on matches → report
// failures to the admin address.
package monitor

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/miguel-so/FE-ebay-api-cron/internal/model"
)

// CriteriaLoader yields the current criteria record, nil when absent or
// unreadable.
type CriteriaLoader interface {
	Load() *model.SearchCriteria
}

// Searcher finds listings ending soon that match the given criteria.
type Searcher interface {
	SearchEndingSoon(ctx context.Context, criteria model.SearchCriteria) ([]model.Listing, error)
}

// Notifier delivers result emails and best-effort admin error alerts.
type Notifier interface {
	SendResults(to string, listings []model.Listing, criteria model.SearchCriteria) error
	SendErrorAlert(to string, runErr error)
}

// Workflow orchestrates one listing check end to end. A run that fails
// is reported and swallowed on the scheduled path; only the one-shot
// CLI path acts on the returned error.
type Workflow struct {
	store      CriteriaLoader
	searcher   Searcher
	notifier   Notifier
	adminEmail string

	mu sync.Mutex
}

// NewWorkflow constructs a Workflow. adminEmail may be empty; error
// alerts are then skipped.
func NewWorkflow(store CriteriaLoader, searcher Searcher, notifier Notifier, adminEmail string) *Workflow {
	return &Workflow{
		store:      store,
		searcher:   searcher,
		notifier:   notifier,
		adminEmail: adminEmail,
	}
}

// RunCheck executes a single load→search→notify cycle. When the
// previous run is still in flight the tick is skipped rather than
// stacked. Missing criteria and zero matches are normal outcomes, not
// errors; any search or notify failure is logged, alerted to the admin
// address when one is configured, and returned.
func (w *Workflow) RunCheck(ctx context.Context) error {
	if !w.mu.TryLock() {
		log.Println("[monitor] Previous check still running — skipping this tick")
		return nil
	}
	defer w.mu.Unlock()

	log.Printf("[monitor] Running listing check at %s", time.Now().Format(time.RFC1123))

	criteria := w.store.Load()
	if criteria == nil || criteria.Email == "" {
		log.Println("[monitor] No search criteria or notification email — nothing to do")
		return nil
	}

	log.Printf("[monitor] Checking listings for %s: keyword=%q category=%q condition=%q price=[%s..%s] minBids=%s",
		criteria.Email, criteria.Keyword, criteria.Category, criteria.Condition,
		describeFloat(criteria.MinPrice, "0"), describeFloat(criteria.MaxPrice, "∞"),
		describeInt(criteria.MinBids))

	listings, err := w.searcher.SearchEndingSoon(ctx, *criteria)
	if err != nil {
		return w.report(fmt.Errorf("search: %w", err))
	}

	if len(listings) == 0 {
		log.Println("[monitor] No listings found ending within the next hour")
		return nil
	}

	log.Printf("[monitor] Found %d listing(s) ending soon", len(listings))
	if err := w.notifier.SendResults(criteria.Email, listings, *criteria); err != nil {
		return w.report(fmt.Errorf("notify: %w", err))
	}

	for i, l := range listings {
		log.Printf("[monitor]   %d. %s - $%s (%d bids)", i+1, l.Title, l.Price, l.Bids)
	}
	return nil
}

// report logs the failure, fires the admin alert when an address is
// configured, and passes the error through for the one-shot exit path.
// A failed run never halts the schedule.
func (w *Workflow) report(err error) error {
	log.Printf("[monitor] Check failed: %v", err)
	if w.adminEmail != "" {
		w.notifier.SendErrorAlert(w.adminEmail, err)
	}
	return err
}

func describeFloat(v *float64, absent string) string {
	if v == nil {
		return absent
	}
	return fmt.Sprintf("%g", *v)
}

func describeInt(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *v)
}
