package extract

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeEnergyQuantity(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want int64
		ok   bool
	}{
		{"decimal remainder dropped", "5.920,00", 5920, true},
		{"thousands grouped", "16.774", 16774, true},
		{"broken digit group", "10 504", 10504, true},
		{"plain integer", "120", 120, true},
		{"remainder not rounded", "1.499,99", 1499, true},
		{"stray characters", "kWh 350", 350, true},
		{"empty", "", 0, false},
		{"blank", "   ", 0, false},
		{"no digits", "abc", 0, false},
		{"only remainder", ",50", 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := NormalizeEnergyQuantity(tc.raw)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNormalizeCurrencyAmount(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
		ok   bool
	}{
		{"symbol and thousands", "R$ 3.914,15", "3914.15", true},
		{"cents only", "0,60", "0.60", true},
		{"no symbol", "1.262,22", "1262.22", true},
		{"integer", "45", "45", true},
		{"empty", "", "", false},
		{"symbol only", "R$", "", false},
		{"non numeric", "abc", "", false},
		{"two commas", "1,2,3", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := NormalizeCurrencyAmount(tc.raw)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.True(t, decimal.RequireFromString(tc.want).Equal(got), "got %s", got)
			}
		})
	}
}
