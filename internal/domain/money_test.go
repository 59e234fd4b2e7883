package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRoundMoney(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"no rounding needed", "100.25", "100.25"},
		{"rounds half up", "100.255", "100.26"},
		{"rounds down", "100.254", "100.25"},
		{"negative rounds half away", "-100.255", "-100.26"},
		{"integer untouched", "100", "100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RoundMoney(decimal.RequireFromString(tt.input))
			assert.True(t, got.Equal(decimal.RequireFromString(tt.expected)),
				"RoundMoney(%s) = %s, want %s", tt.input, got, tt.expected)
		})
	}
}

func TestRoundPercent(t *testing.T) {
	got := RoundPercent(decimal.RequireFromString("33.33335"))
	assert.True(t, got.Equal(decimal.RequireFromString("33.3334")), "got %s", got)
}

func TestPercentOf(t *testing.T) {
	tests := []struct {
		name     string
		part     string
		whole    string
		expected string
	}{
		{"simple half", "50", "100", "50"},
		{"gain over basis", "100", "1000", "10"},
		{"negative part", "-250", "1000", "-25"},
		{"rounds to 4 places", "1", "3", "33.3333"},
		{"zero whole yields zero", "100", "0", "0"},
		{"zero part", "0", "1000", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PercentOf(decimal.RequireFromString(tt.part), decimal.RequireFromString(tt.whole))
			assert.True(t, got.Equal(decimal.RequireFromString(tt.expected)),
				"PercentOf(%s, %s) = %s, want %s", tt.part, tt.whole, got, tt.expected)
		})
	}
}
