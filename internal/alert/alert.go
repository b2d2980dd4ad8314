package alert

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"smart-price-tracker/internal/notify"
	"smart-price-tracker/internal/types"
	"smart-price-tracker/lib/helpers"
)

const (
	DefaultInterval = time.Hour
	DefaultWorkers  = 4
)

// ItemStore is the persisted set of tracked items the engine reads and touches.
type ItemStore interface {
	Load(ctx context.Context) map[string]types.TrackedItem
	Touch(ctx context.Context, key string, at time.Time) (bool, error)
}

// PriceSource returns the current price of a product URL.
type PriceSource interface {
	FetchCurrentPrice(ctx context.Context, url string) (float64, error)
}

// PriceRecorder keeps observed prices.
type PriceRecorder interface {
	Record(ctx context.Context, url string, price float64, at time.Time) error
}

// CheckResult is the outcome of checking one item.
type CheckResult struct {
	Key      string
	Price    float64
	Notified bool
	Err      error
}

// CycleReport summarises one polling cycle.
type CycleReport struct {
	ID       string
	Checked  int
	Failed   int
	Notified int
	Results  []CheckResult
	Duration time.Duration
}

// Engine periodically checks every tracked item against its threshold.
// History and Metrics are optional.
type Engine struct {
	Store    ItemStore
	Prices   PriceSource
	Notifier notify.Notifier
	History  PriceRecorder
	Metrics  *Metrics
	Interval time.Duration
	Workers  int
	Now      func() time.Time

	// cycleMutex ensures only one cycle runs at a time
	cycleMutex sync.Mutex
}

func NewEngine(store ItemStore, prices PriceSource, notifier notify.Notifier) *Engine {
	return &Engine{
		Store:    store,
		Prices:   prices,
		Notifier: notifier,
		Interval: DefaultInterval,
		Workers:  DefaultWorkers,
		Now:      time.Now,
	}
}

// Run performs an immediate cycle, then one cycle per Interval until ctx is cancelled.
// Every cycle re-reads the store, so items added while running are picked up.
func (e *Engine) Run(ctx context.Context) error {
	interval := e.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	log.Infof("🚀 Price monitoring started, checking every %v", interval)
	e.RunCycle(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("Price monitoring stopped")
			return ctx.Err()
		case <-ticker.C:
			e.RunCycle(ctx)
		}
	}
}

// RunCycle checks every tracked item once and returns when all checks are done.
func (e *Engine) RunCycle(ctx context.Context) CycleReport {
	e.cycleMutex.Lock()
	defer e.cycleMutex.Unlock()

	start := time.Now()
	report := CycleReport{ID: uuid.NewString()}
	logger := log.WithField("cycle", report.ID)

	items := e.Store.Load(ctx)
	if e.Metrics != nil {
		e.Metrics.TrackedItems.Set(float64(len(items)))
	}
	logger.Infof("🔄 Checking %d tracked products...", len(items))

	keys := make([]string, 0, len(items))
	for key := range items {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	workers := e.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if workers > len(keys) {
		workers = len(keys)
	}

	queue := make(chan types.TrackedItem)
	results := make(chan CheckResult, len(keys))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range queue {
				results <- e.CheckItem(ctx, item)
			}
		}()
	}

feed:
	for _, key := range keys {
		if ctx.Err() != nil {
			logger.Warn("Cycle interrupted, remaining products skipped")
			break
		}
		select {
		case <-ctx.Done():
			logger.Warn("Cycle interrupted, remaining products skipped")
			break feed
		case queue <- items[key]:
		}
	}
	close(queue)
	wg.Wait()
	close(results)

	for result := range results {
		report.Checked++
		if result.Err != nil {
			report.Failed++
		}
		if result.Notified {
			report.Notified++
		}
		report.Results = append(report.Results, result)
	}
	sort.Slice(report.Results, func(i, j int) bool { return report.Results[i].Key < report.Results[j].Key })

	report.Duration = time.Since(start)
	if e.Metrics != nil {
		e.Metrics.CycleDuration.Observe(report.Duration.Seconds())
	}

	logger.Infof("✅ Price check completed: %d checked, %d failed, %d notified in %v",
		report.Checked, report.Failed, report.Notified, report.Duration)
	return report
}

// CheckItem fetches the current price of item and raises a notification when it is
// at or below the threshold. A failed fetch leaves the stored record untouched.
// There is no already-notified state: every qualifying check alerts again.
func (e *Engine) CheckItem(ctx context.Context, item types.TrackedItem) CheckResult {
	result := CheckResult{Key: item.Key}
	logger := log.WithFields(log.Fields{
		"url":       item.Key,
		"threshold": item.ThresholdPrice,
	})

	if e.Metrics != nil {
		e.Metrics.ChecksTotal.Inc()
	}

	price, err := e.Prices.FetchCurrentPrice(ctx, item.Key)
	if err != nil {
		logger.Errorf("❌ Error checking price: %v", err)
		if e.Metrics != nil {
			e.Metrics.FetchErrors.WithLabelValues(helpers.Host(item.Key)).Inc()
		}
		result.Err = err
		return result
	}
	result.Price = price
	now := e.now()

	if e.History != nil {
		if err := e.History.Record(ctx, item.Key, price, now); err != nil {
			logger.Errorf("Failed to record price history: %v", err)
		}
	}

	logger.Debugf("🔍 Current price %.2f, last alert %s", price, humanize.Time(item.LastCheckedAt))
	if price > item.ThresholdPrice {
		return result
	}

	result.Notified = true
	if err := e.Notifier.Notify(ctx, notify.PriceDrop(item.Key, price, item.ThresholdPrice)); err != nil {
		logger.Errorf("❌ Failed to send price alert notification: %v", err)
	} else if e.Metrics != nil {
		e.Metrics.NotificationsSent.Inc()
	}

	present, err := e.Store.Touch(ctx, item.Key, now)
	if err != nil {
		logger.Errorf("❌ Failed to persist last check time: %v", err)
	} else if !present {
		logger.Debug("Product is no longer tracked, nothing to update")
	}
	return result
}

func (e *Engine) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}
