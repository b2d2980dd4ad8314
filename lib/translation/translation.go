package translation

import (
	"strings"

	"github.com/leonelquinteros/gotext"
)

// Configure loads the catalogue for lang from localesDir. Missing catalogues fall back to the message ids.
func Configure(localesDir, lang string) {
	gotext.Configure(localesDir, strings.ToLower(lang), "default")
}

func GetLanguage() string {
	lang := gotext.GetLanguage()

	if lang == "und" || lang == "" {
		return "en"
	}

	return lang
}

func Translate(msgID string, vars ...interface{}) string {
	return gotext.Get(msgID, vars...)
}
