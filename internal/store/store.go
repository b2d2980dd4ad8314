package store

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"smart-price-tracker/internal/database"
	"smart-price-tracker/internal/types"
)

// StorageError reports a failed read or write of the persisted mapping.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return "storage " + e.Op + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error { return e.Err }

// record is the persisted shape of a tracked item, lastChecked in Unix milliseconds.
type record struct {
	URL         string  `json:"url"`
	Threshold   float64 `json:"threshold"`
	LastChecked int64   `json:"lastChecked"`
}

// Store keeps every tracked item in one JSON document under a named slot.
// Nothing is cached: every call re-reads the slot, and all writes go through mu.
type Store struct {
	slot string
	mu   sync.Mutex
}

func New(slot string) *Store {
	return &Store{slot: slot}
}

// Load returns all tracked items. Read failures are logged and yield an empty map.
func (s *Store) Load(ctx context.Context) map[string]types.TrackedItem {
	items, err := s.read(ctx)
	if err != nil {
		log.WithField("slot", s.slot).Errorf("❌ Failed to load tracked products: %v", err)
		return make(map[string]types.TrackedItem)
	}
	return items
}

// List returns the tracked items sorted by key.
func (s *Store) List(ctx context.Context) []types.TrackedItem {
	items := s.Load(ctx)

	list := make([]types.TrackedItem, 0, len(items))
	for _, item := range items {
		list = append(list, item)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Key < list[j].Key })
	return list
}

// SaveAll replaces the whole persisted mapping.
func (s *Store) SaveAll(ctx context.Context, items map[string]types.TrackedItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(ctx, items)
}

// Upsert stores item, overwriting any record with the same key.
func (s *Store) Upsert(ctx context.Context, item types.TrackedItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.read(ctx)
	if err != nil {
		return err
	}
	items[item.Key] = item
	return s.write(ctx, items)
}

// Touch moves the LastCheckedAt of key forward to at. It reports false, without
// writing, when key is no longer tracked. An older at never rewinds the record.
func (s *Store) Touch(ctx context.Context, key string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.read(ctx)
	if err != nil {
		return false, err
	}

	item, ok := items[key]
	if !ok {
		return false, nil
	}
	if !at.After(item.LastCheckedAt) {
		return true, nil
	}

	item.LastCheckedAt = at
	items[key] = item
	return true, s.write(ctx, items)
}

func (s *Store) read(ctx context.Context) (map[string]types.TrackedItem, error) {
	items := make(map[string]types.TrackedItem)

	raw, found, err := database.GetSlot(ctx, s.slot)
	if err != nil {
		return nil, &StorageError{Op: "read", Err: err}
	}
	if !found || raw == "" {
		return items, nil
	}

	// a corrupt document counts as empty so the next write replaces it
	var records map[string]record
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		log.WithField("slot", s.slot).Errorf("❌ %v", errors.Wrap(err, "corrupt tracked products document, starting empty"))
		return items, nil
	}

	for key, r := range records {
		items[key] = types.TrackedItem{
			Key:            key,
			ThresholdPrice: r.Threshold,
			LastCheckedAt:  time.UnixMilli(r.LastChecked).UTC(),
		}
	}
	return items, nil
}

func (s *Store) write(ctx context.Context, items map[string]types.TrackedItem) error {
	records := make(map[string]record, len(items))
	for key, item := range items {
		records[key] = record{
			URL:         key,
			Threshold:   item.ThresholdPrice,
			LastChecked: item.LastCheckedAt.UnixMilli(),
		}
	}

	raw, err := json.Marshal(records)
	if err != nil {
		return &StorageError{Op: "write", Err: errors.Wrap(err, "encode tracked products")}
	}
	if err := database.PutSlot(ctx, s.slot, string(raw)); err != nil {
		return &StorageError{Op: "write", Err: err}
	}
	return nil
}
