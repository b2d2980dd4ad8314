package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatPriceUS(t *testing.T) {
	tests := []struct {
		price float64
		want  string
	}{
		{price: 950, want: "950.00"},
		{price: 1299.49, want: "1,299.49"},
		{price: 1499.5, want: "1,499.50"},
		{price: 0.5, want: "0.500000"},
		{price: 0.000001, want: "0.00000100"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatPriceUS(tt.price, false))
	}
}

func TestFormatPriceUSEscaped(t *testing.T) {
	assert.Equal(t, "950\\.00", FormatPriceUS(950, true))
}

func TestEscapeMarkdownV2(t *testing.T) {
	assert.Equal(t, "Price \\(new\\)\\!", EscapeMarkdownV2("Price (new)!"))
	assert.Equal(t, "a\\\\b", EscapeMarkdownV2("a\\b"))
}

func TestEscapeMarkdownV2URL(t *testing.T) {
	assert.Equal(t, "https://a.example/p_(1\\)", EscapeMarkdownV2URL("https://a.example/p_(1)"))
	assert.Equal(t, "https://a.example/a\\\\b", EscapeMarkdownV2URL("https://a.example/a\\b"))
}

func TestHost(t *testing.T) {
	assert.Equal(t, "www.amazon.in", Host("https://WWW.Amazon.in/dp/B0"))
	assert.Equal(t, "unknown", Host("not a url"))
}
