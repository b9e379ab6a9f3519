package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseType(t *testing.T) {
	tests := []struct {
		value    string
		expected Type
	}{
		{"D", TypeDebit},
		{"d", TypeDebit},
		{" D ", TypeDebit},
		{"C", TypeCredit},
		{"K", TypeCredit},
		{"k", TypeCredit},
		{"UNK", TypeUnknown},
		{"Unk", TypeUnknown},
		{"unknown", TypeUnknown},
		{"X", TypeUnknown},
		{"", TypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseType(tt.value))
		})
	}
}

func TestParseCurrency(t *testing.T) {
	tests := []struct {
		value    string
		expected Currency
	}{
		{"USD", CurrencyUSD},
		{"EUR", CurrencyEUR},
		{"usd", CurrencyUSD},
		{" eur\n", CurrencyEUR},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			c, err := ParseCurrency(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, c)
		})
	}
}

func TestParseCurrency_Unknown(t *testing.T) {
	for _, value := range []string{"GBP", "", "EURO"} {
		_, err := ParseCurrency(value)
		require.ErrorIs(t, err, ErrUnknownCurrency, value)
	}
}

func TestParseCategory(t *testing.T) {
	tests := []struct {
		value    string
		expected Category
	}{
		{"Food", CategoryFood},
		{"food", CategoryFood},
		{"FOOD", CategoryFood},
		{"  transport ", CategoryTransport},
		{"unknown", CategoryUnknown},
		{"eDUCATION", CategoryEducation},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			c, err := ParseCategory(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, c)
		})
	}
}

// Only the first letter is capitalised, so multi-word labels never match a
// title-cased name and unknown labels are rejected rather than defaulted.
func TestParseCategory_MultiWordAndUnknown(t *testing.T) {
	for _, value := range []string{"fast food", "Fast Food", "FAST FOOD", "groceries", ""} {
		_, err := ParseCategory(value)
		require.ErrorIs(t, err, ErrUnknownCategory, value)
	}
}
