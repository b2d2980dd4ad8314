package tracking

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"time"

	log "github.com/sirupsen/logrus"

	"smart-price-tracker/internal/alert"
	"smart-price-tracker/internal/types"
)

// ValidationError reports caller-supplied input that cannot be tracked.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Validate checks the input of TrackProduct. TrackProduct itself does not call it;
// callers validate before tracking.
func Validate(productURL string, threshold float64) error {
	u, err := url.Parse(productURL)
	if productURL == "" || err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return &ValidationError{Field: "url", Reason: "must be an absolute http(s) URL"}
	}
	if math.IsNaN(threshold) || math.IsInf(threshold, 0) || threshold <= 0 {
		return &ValidationError{Field: "threshold", Reason: "must be a positive number"}
	}
	return nil
}

type ItemWriter interface {
	Upsert(ctx context.Context, item types.TrackedItem) error
	List(ctx context.Context) []types.TrackedItem
}

type Checker interface {
	CheckItem(ctx context.Context, item types.TrackedItem) alert.CheckResult
}

// Registrar announces a tracked product to the pricing backend.
type Registrar interface {
	RegisterTracking(ctx context.Context, url string, threshold float64) error
}

type HistoryReader interface {
	List(ctx context.Context, url string) ([]types.PricePoint, error)
}

// Tracker is the mutation surface for tracked products. Backend and HistoryStore are optional.
type Tracker struct {
	Store        ItemWriter
	Checker      Checker
	Backend      Registrar
	HistoryStore HistoryReader
	Now          func() time.Time
}

func NewTracker(store ItemWriter, checker Checker) *Tracker {
	return &Tracker{Store: store, Checker: checker, Now: time.Now}
}

// TrackProduct stores (or overwrites) the tracked item for productURL and runs one
// price check for it straight away. Only a storage failure is returned; check and
// backend failures are logged.
func (t *Tracker) TrackProduct(ctx context.Context, productURL string, threshold float64) (types.TrackedItem, error) {
	now := time.Now
	if t.Now != nil {
		now = t.Now
	}

	item := types.TrackedItem{
		Key:            productURL,
		ThresholdPrice: threshold,
		LastCheckedAt:  now().UTC().Truncate(time.Millisecond),
	}

	if err := t.Store.Upsert(ctx, item); err != nil {
		log.WithField("url", productURL).Errorf("❌ Failed to save tracked product: %v", err)
		return types.TrackedItem{}, err
	}
	log.WithFields(log.Fields{"url": productURL, "threshold": threshold}).Info("Tracking product")

	if t.Backend != nil {
		if err := t.Backend.RegisterTracking(ctx, productURL, threshold); err != nil {
			log.WithField("url", productURL).Warnf("Failed to register product with pricing backend: %v", err)
		}
	}

	t.Checker.CheckItem(ctx, item)
	return item, nil
}

// List returns every tracked item sorted by URL.
func (t *Tracker) List(ctx context.Context) []types.TrackedItem {
	return t.Store.List(ctx)
}

// History returns the recorded prices of productURL, oldest first.
func (t *Tracker) History(ctx context.Context, productURL string) ([]types.PricePoint, error) {
	if t.HistoryStore == nil {
		return nil, nil
	}
	return t.HistoryStore.List(ctx, productURL)
}
