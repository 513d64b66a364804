package display

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{1234.5, "₹1,234.50"},
		{"2500", "₹2,500.00"},
		{0, "₹0.00"},
		{nil, "₹0.00"},
		{"abc", "₹0.00"},
		{1234567.891, "₹1,234,567.89"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatCurrency(tt.in), "%v", tt.in)
	}
}

func TestTruncateText(t *testing.T) {
	assert.Equal(t, "", TruncateText("", 10))
	assert.Equal(t, "short", TruncateText("short", 10))
	assert.Equal(t, "hand made...", TruncateText("hand made pottery", 10))
	assert.Equal(t, "मिट्टी...", TruncateText("मिट्टी का बर्तन", 6))

	long := strings.Repeat("a", 150)
	assert.Equal(t, strings.Repeat("a", 100)+"...", TruncateText(long, 0))
}

func TestReadableDate(t *testing.T) {
	assert.Equal(t, "05 Mar 2025, 14:30", ReadableDate("2025-03-05T14:30:00Z"))
	assert.Equal(t, "05 Mar 2025, 14:30", ReadableDate(time.Date(2025, 3, 5, 14, 30, 0, 0, time.UTC)))
	assert.Equal(t, "Invalid date", ReadableDate("yesterday-ish"))
	assert.NotEmpty(t, ReadableDate(""))
}
