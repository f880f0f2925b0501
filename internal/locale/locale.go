// Package locale resolves the display language and holds the per-language string table.
package locale

import (
	"os"
	"strings"
)

// Locale identifies one of the fixed dashboard languages.
type Locale int

const (
	English Locale = iota
	German
	French
	Italian
	Polish
	Czech
	Norwegian
	Swedish
	Danish
	Turkish
	Dutch
	PortugueseBR
	Portuguese
	ChineseTW
	Chinese

	numLocales
)

var codes = [numLocales]string{
	English:      "en",
	German:       "de",
	French:       "fr",
	Italian:      "it",
	Polish:       "pl",
	Czech:        "cz",
	Norwegian:    "no",
	Swedish:      "sv",
	Danish:       "da",
	Turkish:      "tr",
	Dutch:        "nl",
	PortugueseBR: "pt-BR",
	Portuguese:   "pt",
	ChineseTW:    "zh-TW",
	Chinese:      "zh",
}

// String returns the locale code.
func (l Locale) String() string {
	if l < 0 || l >= numLocales {
		return codes[English]
	}
	return codes[l]
}

// IsChinese reports whether the locale uses the Chinese layout variant.
func (l Locale) IsChinese() bool {
	return l == Chinese || l == ChineseTW
}

// All returns every supported locale in resolution order, English last.
func All() []Locale {
	return []Locale{
		German, French, Italian, Polish, Czech, Norwegian, Swedish, Danish,
		Turkish, Dutch, PortugueseBR, Portuguese, ChineseTW, Chinese, English,
	}
}

// prefixes is matched in order against the first two characters of a tag.
var prefixes = []struct {
	lang   string
	locale Locale
}{
	{"de", German},
	{"fr", French},
	{"it", Italian},
	{"pl", Polish},
	{"cz", Czech},
	{"no", Norwegian},
	{"sv", Swedish},
	{"da", Danish},
	{"tr", Turkish},
	{"nl", Dutch},
}

// Resolve maps a language tag such as "de-DE", "pt_BR.UTF-8" or "zh-HK"
// to a Locale. Portuguese and Chinese are refined by the region at
// characters 3-5. Anything unmatched resolves to English.
func Resolve(tag string) Locale {
	lang := substr(tag, 0, 2)
	region := substr(tag, 3, 5)

	for _, p := range prefixes {
		if lang == p.lang {
			return p.locale
		}
	}

	switch lang {
	case "pt":
		if region == "BR" {
			return PortugueseBR
		}
		return Portuguese
	case "zh":
		if region == "TW" || region == "HK" {
			return ChineseTW
		}
		return Chinese
	}
	return English
}

// Parse returns the locale with the given code, as produced by String.
func Parse(code string) (Locale, bool) {
	for i, c := range codes {
		if strings.EqualFold(c, code) {
			return Locale(i), true
		}
	}
	return English, false
}

// FromEnvironment returns the language tag configured for the process.
// An explicit tag wins, then LC_ALL, LC_MESSAGES and LANG.
func FromEnvironment(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return "en"
}

// substr slices s by byte offsets, clamping out-of-range bounds.
func substr(s string, start, end int) string {
	if start >= len(s) {
		return ""
	}
	if end > len(s) {
		end = len(s)
	}
	return s[start:end]
}
