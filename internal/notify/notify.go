package notify

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"smart-price-tracker/lib/helpers"
	"smart-price-tracker/lib/translation"
)

// Notification is a fire-and-forget user alert about a tracked product.
type Notification struct {
	Title     string
	Message   string
	URL       string
	Price     float64
	Threshold float64
}

// Notifier delivers notifications to one channel.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// PriceDrop builds the alert raised when url is at or below threshold.
func PriceDrop(url string, price, threshold float64) Notification {
	return Notification{
		Title:     translation.Translate("Price Alert!"),
		Message:   translation.Translate("The price has dropped to $%s! Click to view the product.", helpers.FormatPriceUS(price, false)),
		URL:       url,
		Price:     price,
		Threshold: threshold,
	}
}

// Log writes notifications to the process log.
type Log struct{}

func (Log) Notify(_ context.Context, n Notification) error {
	log.WithFields(log.Fields{
		"url":       n.URL,
		"price":     n.Price,
		"threshold": n.Threshold,
	}).Warnf("🚨 %s %s", n.Title, n.Message)
	return nil
}

// Multi delivers to every notifier and reports the channels that failed.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, n Notification) error {
	var failed []string
	for _, notifier := range m {
		if err := notifier.Notify(ctx, n); err != nil {
			failed = append(failed, err.Error())
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("%d of %d notifiers failed: %s", len(failed), len(m), strings.Join(failed, "; "))
	}
	return nil
}
