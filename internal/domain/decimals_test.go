package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		from   uint8
		to     uint8
		want   string
	}{
		{name: "one ether to canonical", amount: "1000000000000000000", from: 18, to: 6, want: "1000000"},
		{name: "same precision", amount: "123456", from: 6, to: 6, want: "123456"},
		{name: "scale up", amount: "5", from: 2, to: 6, want: "50000"},
		{name: "truncates dust", amount: "999999999999", from: 18, to: 6, want: "0"},
		{name: "truncates remainder", amount: "1999999999999", from: 18, to: 6, want: "1"},
		{name: "canonical back to wei", amount: "250000", from: 6, to: 18, want: "250000000000000000"},
		{name: "canonical to two decimals", amount: "123456", from: 6, to: 2, want: "12"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(decimal.RequireFromString(tt.amount), tt.from, tt.to)
			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}

func TestNormalize_RoundTripNeverGrows(t *testing.T) {
	amounts := []string{"1", "17", "1000000000000000001", "123456789012345678901234"}
	for _, a := range amounts {
		native := decimal.RequireFromString(a)
		canonical, err := Normalize(native, 18, CanonicalDecimals)
		require.NoError(t, err)
		back, err := Normalize(canonical, CanonicalDecimals, 18)
		require.NoError(t, err)
		assert.True(t, back.LessThanOrEqual(native), "round trip of %s grew to %s", native, back)
	}
}

func TestNormalize_Overflow(t *testing.T) {
	_, err := Normalize(MaxAmount, 6, 18)
	if !errors.Is(err, ErrArithmetic) {
		t.Fatalf("expected ErrArithmetic, got %v", err)
	}

	_, err = Normalize(decimal.NewFromInt(-1), 18, 6)
	if !errors.Is(err, ErrArithmetic) {
		t.Fatalf("expected ErrArithmetic for negative input, got %v", err)
	}
}

func TestCheckedArithmetic(t *testing.T) {
	sum, err := CheckedAdd(decimal.NewFromInt(2), decimal.NewFromInt(3))
	require.NoError(t, err)
	assert.True(t, sum.Equal(decimal.NewFromInt(5)))

	_, err = CheckedAdd(MaxAmount, decimal.NewFromInt(1))
	assert.ErrorIs(t, err, ErrArithmetic)

	diff, err := CheckedSub(decimal.NewFromInt(5), decimal.NewFromInt(5))
	require.NoError(t, err)
	assert.True(t, diff.IsZero())

	_, err = CheckedSub(decimal.NewFromInt(1), decimal.NewFromInt(2))
	assert.ErrorIs(t, err, ErrArithmetic)
}

func TestUSDValue(t *testing.T) {
	price := decimal.NewFromInt(200000000000) // $2000.00000000

	usd, err := USDValue(decimal.NewFromInt(1_000_000), price)
	require.NoError(t, err)
	assert.True(t, usd.Equal(decimal.NewFromInt(2_000_000_000)), "got %s", usd)

	usd, err = USDValue(decimal.NewFromInt(250_000), price)
	require.NoError(t, err)
	assert.True(t, usd.Equal(decimal.NewFromInt(500_000_000)), "got %s", usd)

	usd, err = USDValue(decimal.NewFromInt(1), decimal.NewFromInt(99_999_999))
	require.NoError(t, err)
	assert.True(t, usd.IsZero(), "sub-unit value should truncate, got %s", usd)

	_, err = USDValue(MaxAmount, price)
	assert.ErrorIs(t, err, ErrArithmetic)
}
