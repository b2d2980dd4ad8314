package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-price-tracker/internal/types"
)

type fakeTracker struct {
	tracked  []types.TrackedItem
	history  map[string][]types.PricePoint
	trackErr error
}

func (f *fakeTracker) TrackProduct(_ context.Context, url string, threshold float64) (types.TrackedItem, error) {
	if f.trackErr != nil {
		return types.TrackedItem{}, f.trackErr
	}
	item := types.TrackedItem{Key: url, ThresholdPrice: threshold, LastCheckedAt: time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)}
	f.tracked = append(f.tracked, item)
	return item, nil
}

func (f *fakeTracker) List(context.Context) []types.TrackedItem { return f.tracked }

func (f *fakeTracker) History(_ context.Context, url string) ([]types.PricePoint, error) {
	return f.history[url], nil
}

func init() {
	gin.SetMode(gin.TestMode)
}

func do(t *testing.T, tracker Tracking, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var payload bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&payload).Encode(body))
	}

	req := httptest.NewRequest(method, target, &payload)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	Router(NewHandler(tracker)).ServeHTTP(w, req)
	return w
}

func TestTrackProduct(t *testing.T) {
	tracker := &fakeTracker{}

	w := do(t, tracker, http.MethodPost, "/api/track", gin.H{"url": "https://a.example/p1", "threshold": 999.0})

	require.Equal(t, http.StatusCreated, w.Code)
	var item types.TrackedItem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &item))
	assert.Equal(t, "https://a.example/p1", item.Key)
	assert.Equal(t, 999.0, item.ThresholdPrice)
	assert.Len(t, tracker.tracked, 1)
}

func TestTrackProductValidation(t *testing.T) {
	tests := []struct {
		name string
		body interface{}
	}{
		{name: "missing threshold", body: gin.H{"url": "https://a.example/p1"}},
		{name: "zero threshold", body: gin.H{"url": "https://a.example/p1", "threshold": 0}},
		{name: "bad url", body: gin.H{"url": "not-a-url", "threshold": 10}},
		{name: "wrong type", body: gin.H{"url": "https://a.example/p1", "threshold": "cheap"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker := &fakeTracker{}
			w := do(t, tracker, http.MethodPost, "/api/track", tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Empty(t, tracker.tracked)
		})
	}
}

func TestTrackProductStorageFailure(t *testing.T) {
	w := do(t, &fakeTracker{trackErr: errors.New("disk full")}, http.MethodPost, "/api/track", gin.H{"url": "https://a.example/p1", "threshold": 5})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestListTracked(t *testing.T) {
	tracker := &fakeTracker{}
	do(t, tracker, http.MethodPost, "/api/track", gin.H{"url": "https://a.example/p1", "threshold": 5})

	w := do(t, tracker, http.MethodGet, "/api/tracked", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"url":"https://a.example/p1","threshold":5,"lastChecked":"2024-05-01T08:00:00Z"}]`, w.Body.String())
}

func TestGetPriceHistory(t *testing.T) {
	at := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	tracker := &fakeTracker{history: map[string][]types.PricePoint{
		"https://a.example/p1": {{URL: "https://a.example/p1", Price: 950, RecordedAt: at}},
	}}

	w := do(t, tracker, http.MethodGet, "/api/history?url=https%3A%2F%2Fa.example%2Fp1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"url":"https://a.example/p1","price":950,"recordedAt":"2024-05-01T09:00:00Z"}]`, w.Body.String())

	w = do(t, tracker, http.MethodGet, "/api/history?url=https%3A%2F%2Fa.example%2Fnone", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = do(t, tracker, http.MethodGet, "/api/history", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExtractProduct(t *testing.T) {
	page := `<html><body><span id="productTitle">Kettle</span><span class="a-price-whole">899</span></body></html>`

	w := do(t, &fakeTracker{}, http.MethodPost, "/api/extract", gin.H{"url": "https://www.amazon.in/dp/K1", "html": page})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"name":"Kettle","currentPrice":899,"url":"https://www.amazon.in/dp/K1"}`, w.Body.String())

	w = do(t, &fakeTracker{}, http.MethodPost, "/api/extract", gin.H{"url": "https://shop.example/p", "html": page})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = do(t, &fakeTracker{}, http.MethodPost, "/api/extract", gin.H{"url": "https://www.amazon.in/dp/K1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
