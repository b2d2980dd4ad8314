package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// GetSlot returns the value stored under name. found is false when the slot was never written.
func GetSlot(ctx context.Context, name string) (value string, found bool, err error) {
	query := rebind(`SELECT value FROM slots WHERE name = ?;`)

	err = DB.QueryRowContext(ctx, query, name).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	} else if err != nil {
		return "", false, fmt.Errorf("failed to read slot %s: %w", name, err)
	}
	return value, true, nil
}

// PutSlot replaces the value stored under name in a single statement.
func PutSlot(ctx context.Context, name, value string) error {
	query := rebind(`
	INSERT INTO slots (name, value, updated_at)
	VALUES (?, ?, ?)
	ON CONFLICT (name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at;`)

	_, err := DB.ExecContext(ctx, query, name, value, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to write slot %s: %w", name, err)
	}
	return nil
}
