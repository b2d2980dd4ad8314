package types

import "time"

// TrackedItem is a product URL under price surveillance.
type TrackedItem struct {
	Key            string    `json:"url"`
	ThresholdPrice float64   `json:"threshold"`
	LastCheckedAt  time.Time `json:"lastChecked"`
}

// PricePoint is one observed price for a tracked URL.
type PricePoint struct {
	URL        string    `json:"url"`
	Price      float64   `json:"price"`
	RecordedAt time.Time `json:"recordedAt"`
}

// ScrapedProduct is what the page extractor hands to callers of the tracking API.
type ScrapedProduct struct {
	Name         string  `json:"name"`
	CurrentPrice float64 `json:"currentPrice"`
	URL          string  `json:"url"`
	Image        string  `json:"image,omitempty"`
}
