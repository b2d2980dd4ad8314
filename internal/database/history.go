package database

import (
	"context"
	"fmt"
	"time"

	"smart-price-tracker/internal/types"
)

// InsertPricePoint appends an observed price to the history of url.
func InsertPricePoint(ctx context.Context, url string, price float64, at time.Time) error {
	query := rebind(`INSERT INTO price_history (url, price, recorded_at) VALUES (?, ?, ?);`)

	_, err := DB.ExecContext(ctx, query, url, price, at.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to insert price point: %w", err)
	}
	return nil
}

// GetPriceHistory returns the recorded prices of url, oldest first.
func GetPriceHistory(ctx context.Context, url string, limit int) ([]types.PricePoint, error) {
	query := rebind(`
	SELECT url, price, recorded_at
	FROM price_history
	WHERE url = ?
	ORDER BY recorded_at DESC, id DESC
	LIMIT ?;`)

	rows, err := DB.QueryContext(ctx, query, url, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query price history: %w", err)
	}
	defer rows.Close()

	var points []types.PricePoint
	for rows.Next() {
		var p types.PricePoint
		var recordedAt int64
		if err := rows.Scan(&p.URL, &p.Price, &recordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		p.RecordedAt = time.UnixMilli(recordedAt).UTC()
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read price history: %w", err)
	}

	// newest rows were selected so the limit keeps the recent tail
	for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
		points[i], points[j] = points[j], points[i]
	}
	return points, nil
}
