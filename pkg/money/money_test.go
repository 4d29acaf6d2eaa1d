package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMinorUnits(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{name: "whole amount", input: "40", want: 4000},
		{name: "fractional amount", input: "12.5", want: 1250},
		{name: "two decimal places", input: "10.99", want: 1099},
		{name: "rounds beyond currency fraction", input: "1.005", want: 101},
		{name: "leading whitespace", input: " 3.50", want: 350},
		{name: "empty", input: "", wantErr: true},
		{name: "not a number", input: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMinorUnits(tt.input, "USD")
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAdd_SameCurrency(t *testing.T) {
	a := New(1250, "USD")
	b := New(4000, "USD")

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, int64(5250), sum.Amount())
	assert.Equal(t, "USD", sum.Currency())
}

func TestAdd_CurrencyMismatch(t *testing.T) {
	a := New(100, "USD")
	b := New(100, "EUR")

	_, err := a.Add(b)
	assert.Error(t, err)
}

func TestPercentageOf(t *testing.T) {
	part := New(2500, "USD")
	total := New(10000, "USD")

	pct := part.PercentageOf(total)
	assert.True(t, pct.Equal(decimal.NewFromInt(25)))
}

func TestPercentageOf_ZeroTotal(t *testing.T) {
	part := New(2500, "USD")
	assert.True(t, part.PercentageOf(Zero("USD")).IsZero())
}

func TestString(t *testing.T) {
	assert.Equal(t, "1234.56", New(123456, "USD").String())
	assert.Equal(t, "0.00", Zero("USD").String())
}
