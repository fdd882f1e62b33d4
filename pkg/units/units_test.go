package units

import (
	"math/big"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToTokenUnits(t *testing.T) {
	t.Parallel()

	tests := []struct {
		amount string
		units  string
	}{
		{amount: "1", units: "1000000000000000000"},
		{amount: "12.5", units: "12500000000000000000"},
		{amount: "0.001", units: "1000000000000000"},
		{amount: "0", units: "0"},
		{amount: "0.0000000000000000019", units: "1"},
	}

	for _, tc := range tests {
		t.Run(tc.amount, func(t *testing.T) {
			got := ToTokenUnits(decimal.RequireFromString(tc.amount))
			assert.Equal(t, tc.units, got.String())
		})
	}
}

func TestTokenUnitsRoundTrip(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		// up to 1e9 tokens with 18 random decimals
		whole := rng.Int63n(1_000_000_000)
		frac := rng.Int63n(1_000_000_000_000_000_000)
		amount := decimal.New(whole, 0).Add(decimal.New(frac, -18))

		back := FromTokenUnits(ToTokenUnits(amount))
		assert.Equal(t, amount.StringFixed(2), back.StringFixed(2), "amount %s", amount)
	}
}

func TestFormatToken(t *testing.T) {
	t.Parallel()

	units, ok := new(big.Int).SetString("125500000000000000000", 10)
	require.True(t, ok)
	assert.Equal(t, "125.50", FormatToken(units))
	assert.Equal(t, "0.00", FormatToken(nil))
}

func TestFormatEther(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		wei      string
		decimals int
		want     string
	}{
		{name: "zero", wei: "0", decimals: 4, want: "0.0000"},
		{name: "one ether", wei: "1000000000000000000", decimals: 4, want: "1.0000"},
		{name: "truncates", wei: "1999999999999999999", decimals: 4, want: "1.9999"},
		{name: "small fraction padded", wei: "500000000000000", decimals: 4, want: "0.0005"},
		{name: "beyond float precision", wei: "123456789012345678901234567", decimals: 4, want: "123456789.0123"},
		{name: "no decimals", wei: "2500000000000000000", decimals: 0, want: "2"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			wei, ok := new(big.Int).SetString(tc.wei, 10)
			require.True(t, ok)
			assert.Equal(t, tc.want, FormatEther(wei, tc.decimals))
		})
	}
}

func TestParseEther(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "1", want: "1000000000000000000"},
		{in: "0.001", want: "1000000000000000"},
		{in: ".5", want: "500000000000000000"},
		{in: "1.1234567890123456789", want: "1123456789012345678"},
		{in: "", wantErr: true},
		{in: "1.2.3", wantErr: true},
		{in: "-1", wantErr: true},
		{in: "1e5", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseEther(tc.in)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.String())
		})
	}
}
