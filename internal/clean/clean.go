// Package clean normalizes raw scraped values (price text, availability
// text, titles) into canonical scalar types. All functions are pure and
// total: any input maps to a usable value, never an error.
package clean

import (
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// currencyLabels are stripped from price text before number extraction.
// Longer labels must come before their prefixes ("Rs." before "Rs").
var currencyLabels = []string{
	"₹", "Rs.", "Rs", "INR", "USD", "$", "€", "£", "¥",
	"Our Price", "Deal Price", "MRP", "Price",
}

var (
	numberRe        = regexp.MustCompile(`\d+\.?\d*`)
	whitespaceRe    = regexp.MustCompile(`\s+`)
	trailingSlashRe = regexp.MustCompile(`/-\s*$`)
)

// Price normalizes a raw price value into a float64.
//
// Numeric inputs pass through (NaN maps to 0). String inputs have
// currency symbols and labels stripped, a trailing "/-" marker removed,
// and grouping commas dropped regardless of 2-or-3-digit grouping
// convention; the first decimal number found is returned. Anything
// unparseable, empty or nil yields 0.
func Price(raw any) float64 {
	switch v := raw.(type) {
	case nil:
		return 0
	case float64:
		if math.IsNaN(v) {
			return 0
		}
		return v
	case float32:
		return Price(float64(v))
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		return priceFromText(v)
	default:
		return 0
	}
}

func priceFromText(raw string) float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}

	for _, label := range currencyLabels {
		s = replaceFold(s, label)
	}
	s = trailingSlashRe.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, ":", "")
	// Grouping separators: "123,999" and "12,34,999" both just drop commas.
	s = strings.ReplaceAll(s, ",", "")

	match := numberRe.FindString(s)
	if match == "" {
		return 0
	}
	price, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0
	}
	return price
}

// replaceFold removes every case-insensitive occurrence of label from s.
func replaceFold(s, label string) string {
	lower := strings.ToLower(s)
	needle := strings.ToLower(label)
	var b strings.Builder
	for {
		i := strings.Index(lower, needle)
		if i < 0 {
			b.WriteString(s)
			return b.String()
		}
		b.WriteString(s[:i])
		s = s[i+len(needle):]
		lower = lower[i+len(needle):]
	}
}

// outOfStockPhrases take priority over inStockPhrases on overlap:
// "currently unavailable" must not match "available".
var outOfStockPhrases = []string{
	"out of stock",
	"sold out",
	"currently unavailable",
	"temporarily unavailable",
	"not available",
	"unavailable",
	"coming soon",
	"notify me",
	"notify when available",
	"no longer available",
	"discontinued",
	"pre-order",
	"preorder",
	"out of print",
	"check availability",
}

var inStockPhrases = []string{
	"in stock",
	"available",
	"add to cart",
	"add to bag",
	"buy now",
	"left in stock",
	"ships from",
	"delivered by",
	"dispatch",
	"ready to ship",
}

// Availability normalizes raw stock text into a boolean. Booleans pass
// through. Empty or nil input means the scraper found nothing, so false.
// Text matching neither phrase list defaults to true: the page rendered
// some availability content, which usually means purchasable.
func Availability(raw any) bool {
	switch v := raw.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		text := strings.ToLower(strings.TrimSpace(v))
		if text == "" {
			return false
		}
		for _, phrase := range outOfStockPhrases {
			if strings.Contains(text, phrase) {
				return false
			}
		}
		for _, phrase := range inStockPhrases {
			if strings.Contains(text, phrase) {
				return true
			}
		}
		return true
	default:
		return false
	}
}

// Title collapses whitespace runs (spaces, tabs, newlines) into single
// spaces and trims. Empty input yields the placeholder "N/A".
func Title(raw string) string {
	title := strings.TrimSpace(whitespaceRe.ReplaceAllString(raw, " "))
	if title == "" {
		return "N/A"
	}
	return title
}

// Currency detects a currency code from raw price text. Defaults to INR,
// which covers "₹", "Rs" and unlabelled prices.
func Currency(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	switch {
	case strings.Contains(s, "$") || strings.Contains(s, "USD"):
		return "USD"
	case strings.Contains(s, "€") || strings.Contains(s, "EUR"):
		return "EUR"
	case strings.Contains(s, "£") || strings.Contains(s, "GBP"):
		return "GBP"
	case strings.Contains(s, "¥") || strings.Contains(s, "JPY"):
		return "JPY"
	default:
		return "INR"
	}
}

// Source extracts the hostname from a URL, stripping a leading "www.".
// Unparseable URLs yield "unknown".
func Source(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}
