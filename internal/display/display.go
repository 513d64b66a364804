// Package display formats values for API responses.
package display

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spf13/cast"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const readableLayout = "02 Jan 2006, 15:04"

var printer = message.NewPrinter(language.English)

// FormatCurrency renders amount in rupees with thousands separators.
// Values that cannot be read as a number render as ₹0.00.
func FormatCurrency(amount any) string {
	v, err := cast.ToFloat64E(amount)
	if err != nil {
		v = 0
	}
	return printer.Sprintf("₹%.2f", v)
}

// TruncateText shortens text to at most maxLen runes, appending "...".
func TruncateText(text string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = 100
	}
	if utf8.RuneCountInString(text) <= maxLen {
		return text
	}
	runes := []rune(text)
	return strings.TrimRight(string(runes[:maxLen]), " \t\n") + "..."
}

// ReadableDate formats a timestamp like "05 Mar 2025, 14:30". An empty
// value means now.
func ReadableDate(ts any) string {
	if ts == nil || ts == "" {
		return time.Now().Format(readableLayout)
	}
	t, err := cast.ToTimeE(ts)
	if err != nil {
		return "Invalid date"
	}
	return t.Format(readableLayout)
}
