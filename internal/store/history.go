package store

import (
	"context"
	"time"

	"smart-price-tracker/internal/database"
	"smart-price-tracker/internal/types"
)

const historyLimit = 200

// History is the append-only log of observed prices.
type History struct{}

func (History) Record(ctx context.Context, url string, price float64, at time.Time) error {
	if err := database.InsertPricePoint(ctx, url, price, at); err != nil {
		return &StorageError{Op: "write", Err: err}
	}
	return nil
}

func (History) List(ctx context.Context, url string) ([]types.PricePoint, error) {
	points, err := database.GetPriceHistory(ctx, url, historyLimit)
	if err != nil {
		return nil, &StorageError{Op: "read", Err: err}
	}
	return points, nil
}
