package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// PriceFetchError is returned for any failure talking to the pricing backend.
type PriceFetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *PriceFetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("price fetch for %s failed with status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("price fetch for %s failed: %v", e.URL, e.Err)
}

func (e *PriceFetchError) Unwrap() error { return e.Err }

// Client talks to the external pricing backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient returns a client for the backend at baseURL. timeout bounds every request.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type priceResponse struct {
	Price *float64 `json:"price"`
}

type trackRequest struct {
	URL       string  `json:"url"`
	Threshold float64 `json:"threshold"`
}

// FetchCurrentPrice asks the backend for the current price of the product at productURL.
func (c *Client) FetchCurrentPrice(ctx context.Context, productURL string) (float64, error) {
	endpoint := c.baseURL + "/api/price?url=" + url.QueryEscape(productURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, &PriceFetchError{URL: productURL, Err: errors.Wrap(err, "build request")}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, &PriceFetchError{URL: productURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, &PriceFetchError{
			URL:        productURL,
			StatusCode: resp.StatusCode,
			Err:        errors.Errorf("unexpected response: %s", strings.TrimSpace(string(body))),
		}
	}

	var payload priceResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, &PriceFetchError{URL: productURL, StatusCode: resp.StatusCode, Err: errors.Wrap(err, "decode price")}
	}
	if payload.Price == nil {
		return 0, &PriceFetchError{URL: productURL, StatusCode: resp.StatusCode, Err: errors.New("response has no price")}
	}

	log.Debugf("Fetched price %.2f for %s", *payload.Price, productURL)
	return *payload.Price, nil
}

// RegisterTracking tells the backend that productURL is tracked with threshold.
// The response body is ignored.
func (c *Client) RegisterTracking(ctx context.Context, productURL string, threshold float64) error {
	body, err := json.Marshal(trackRequest{URL: productURL, Threshold: threshold})
	if err != nil {
		return errors.Wrap(err, "encode track request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/track", bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "build track request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "register %s", productURL)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.Errorf("register %s: unexpected status %d", productURL, resp.StatusCode)
	}
	return nil
}
