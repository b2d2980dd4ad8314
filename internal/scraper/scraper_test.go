package scraper

import (
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-price-tracker/internal/types"
)

const amazonPage = `<!DOCTYPE html>
<html><body>
	<span id="productTitle">
		Noise Cancelling Headphones
	</span>
	<span class="a-price"><span class="a-price-whole">1,299.</span><span class="a-price-fraction">50</span></span>
	<img id="landingImage" src="https://m.media-amazon.com/images/I/head.jpg">
</body></html>`

const flipkartPage = `<!DOCTYPE html>
<html><body>
	<h1><span>Smart Watch</span></h1>
	<div class="_30jeq3 _16Jk6d">₹2,499</div>
	<img class="_396cs4" src="https://rukminim1.flixcart.com/watch.jpg">
</body></html>`

func TestExtractAmazon(t *testing.T) {
	p, err := Extract("https://www.amazon.in/dp/B0", strings.NewReader(amazonPage))
	require.NoError(t, err)

	assert.Equal(t, types.ScrapedProduct{
		Name:         "Noise Cancelling Headphones",
		CurrentPrice: 1299.5,
		URL:          "https://www.amazon.in/dp/B0",
		Image:        "https://m.media-amazon.com/images/I/head.jpg",
	}, p)
}

func TestExtractAmazonFallbackTitle(t *testing.T) {
	page := `<html><body><h1 class="a-size-large">Kettle</h1><span class="a-price-whole">899</span></body></html>`

	p, err := Extract("https://www.amazon.com/dp/K1", strings.NewReader(page))
	require.NoError(t, err)
	assert.Equal(t, "Kettle", p.Name)
	assert.Equal(t, 899.0, p.CurrentPrice)
	assert.Empty(t, p.Image)
}

func TestExtractFlipkart(t *testing.T) {
	p, err := Extract("https://www.flipkart.com/watch/p/itm1", strings.NewReader(flipkartPage))
	require.NoError(t, err)

	assert.Equal(t, "Smart Watch", p.Name)
	assert.Equal(t, 2499.0, p.CurrentPrice)
	assert.Equal(t, "https://rukminim1.flixcart.com/watch.jpg", p.Image)
}

func TestExtractFailures(t *testing.T) {
	tests := []struct {
		name string
		url  string
		page string
	}{
		{name: "unsupported site", url: "https://shop.example/p1", page: amazonPage},
		{name: "missing name", url: "https://www.amazon.in/dp/B0", page: `<span class="a-price-whole">10</span>`},
		{name: "missing price", url: "https://www.amazon.in/dp/B0", page: `<span id="productTitle">Thing</span>`},
		{name: "zero price", url: "https://www.flipkart.com/p", page: `<h1><span>Thing</span></h1><div class="_30jeq3 _16Jk6d">₹0</div>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Extract(tt.url, strings.NewReader(tt.page))

			var extractionErr *ExtractionError
			require.True(t, errors.As(err, &extractionErr))
			assert.Equal(t, tt.url, extractionErr.URL)
		})
	}
}
