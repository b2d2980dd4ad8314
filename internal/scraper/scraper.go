package scraper

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"smart-price-tracker/internal/types"
	"smart-price-tracker/lib/helpers"
)

// ExtractionError means no product could be read from the page.
type ExtractionError struct {
	URL    string
	Reason string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("cannot extract product from %s: %s", e.URL, e.Reason)
}

var nonPriceChars = regexp.MustCompile(`[^0-9.]`)

// site holds the selectors of one shop. Name selectors are tried in order.
type site struct {
	name     []string
	whole    string
	fraction string
	image    string
	imageSrc string
}

var sites = map[string]site{
	"amazon": {
		name:     []string{"#productTitle", "h1.a-size-large"},
		whole:    ".a-price-whole",
		fraction: ".a-price-fraction",
		image:    "#landingImage",
		imageSrc: "src",
	},
	"flipkart": {
		name:     []string{"h1 span"},
		whole:    "._30jeq3._16Jk6d",
		image:    "img._396cs4",
		imageSrc: "src",
	},
}

// Extract reads the product name, price and image from an Amazon or Flipkart page.
func Extract(pageURL string, page io.Reader) (types.ScrapedProduct, error) {
	s, ok := siteFor(pageURL)
	if !ok {
		return types.ScrapedProduct{}, &ExtractionError{URL: pageURL, Reason: "unsupported website"}
	}

	doc, err := goquery.NewDocumentFromReader(page)
	if err != nil {
		return types.ScrapedProduct{}, &ExtractionError{URL: pageURL, Reason: errors.Wrap(err, "parse html").Error()}
	}

	var name string
	for _, selector := range s.name {
		if name = strings.TrimSpace(doc.Find(selector).First().Text()); name != "" {
			break
		}
	}
	if name == "" {
		return types.ScrapedProduct{}, &ExtractionError{URL: pageURL, Reason: "product name not found"}
	}

	whole := doc.Find(s.whole).First().Text()
	fraction := ""
	if s.fraction != "" {
		fraction = doc.Find(s.fraction).First().Text()
	}
	price, err := parsePrice(whole, fraction)
	if err != nil {
		return types.ScrapedProduct{}, &ExtractionError{URL: pageURL, Reason: err.Error()}
	}

	image, _ := doc.Find(s.image).First().Attr(s.imageSrc)

	return types.ScrapedProduct{
		Name:         name,
		CurrentPrice: price,
		URL:          pageURL,
		Image:        image,
	}, nil
}

func siteFor(pageURL string) (site, bool) {
	host := helpers.Host(pageURL)
	for key, s := range sites {
		if strings.Contains(host, key) {
			return s, true
		}
	}
	return site{}, false
}

// parsePrice turns "₹1,299." and "00" into 1299.00. fraction may be empty.
func parsePrice(whole, fraction string) (float64, error) {
	whole = strings.TrimRight(nonPriceChars.ReplaceAllString(whole, ""), ".")
	fraction = nonPriceChars.ReplaceAllString(fraction, "")
	if whole == "" {
		return 0, errors.New("price not found")
	}

	text := whole
	if fraction != "" && !strings.Contains(whole, ".") {
		text = whole + "." + fraction
	}

	d, err := decimal.NewFromString(text)
	if err != nil {
		return 0, errors.Wrapf(err, "malformed price %q", text)
	}
	if !d.IsPositive() {
		return 0, errors.New("price is not positive")
	}

	price, _ := d.Float64()
	return price, nil
}
