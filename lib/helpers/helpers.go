package helpers

import (
	"net/url"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func EscapeMarkdownV2(text string) string {
	charactersToEscape := []string{"\\", ".", "-", "_", "*", "[", "]", "(", ")", "~", "`", ">", "#", "+", "=", "|", "{", "}", "!"}

	for _, char := range charactersToEscape {
		text = strings.ReplaceAll(text, char, "\\"+char)
	}
	return text
}

// FormatPriceUS prints price with US thousand separators. Prices above 1.2 keep
// cents, tiny ones keep up to eight decimals.
func FormatPriceUS(price float64, escapeMarkdown bool) string {
	decimals := 6

	if price > 1.2 {
		decimals = 2
	} else if price < 0.00001 {
		decimals = 8
	}

	p := message.NewPrinter(language.English)
	formatted := p.Sprintf("%.*f", decimals, price)

	if escapeMarkdown {
		return EscapeMarkdownV2(formatted)
	}
	return formatted
}

// EscapeMarkdownV2URL escapes the characters that would end a MarkdownV2 inline
// link target early.
func EscapeMarkdownV2URL(rawURL string) string {
	rawURL = strings.ReplaceAll(rawURL, "\\", "\\\\")
	return strings.ReplaceAll(rawURL, ")", "\\)")
}

// Host returns the lower-cased host of rawURL, or "unknown".
func Host(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}
