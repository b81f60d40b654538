package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatCurrencyIndianGrouping(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "₹0.00"},
		{950, "₹950.00"},
		{1234, "₹1,234.00"},
		{123456.5, "₹1,23,456.50"},
		{12345678.9, "₹1,23,45,678.90"},
		{-1500, "-₹1,500.00"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatCurrency(tc.in))
	}
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "31/08/2025", FormatDate("2025-08-31"))
	assert.Equal(t, "05/03/2025", FormatDate("2025-03-05T10:00:00.000Z"))
	assert.Equal(t, "05/03/2025", FormatDate("05/03/2025"))
}
