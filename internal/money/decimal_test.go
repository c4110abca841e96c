package money

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHundredths(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"35", 3500},
		{"35,5", 3550},
		{"35.5", 3550},
		{"12,345", 1235},
		{"12,344", 1234},
		{"0,005", 1},
		{"1.234,56", 123456},
		{"1,234.56", 123456},
		{"1.234.567", 123456700},
		{"R$ 99,90", 9990},
		{"30%", 3000},
		{",5", 50},
		{"-2,505", -251},
		{"+7", 700},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseHundredths(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseHundredthsRejects(t *testing.T) {
	for _, input := range []string{"", "   ", "abc", "12a", "12,3x", "--5", "-", "."} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseHundredths(input)
			assert.True(t, errors.Is(err, ErrInvalidDecimal), "input %q: %v", input, err)
		})
	}
}

func TestParseLocaleDecimal(t *testing.T) {
	v, err := ParseLocaleDecimal("30,015")
	require.NoError(t, err)
	assert.InDelta(t, 30.02, v, 1e-9)
}

func TestFormatter(t *testing.T) {
	f := Default()
	assert.Equal(t, "R$ 1.234,50", f.Cents(123450))
	assert.Equal(t, "12,5%", f.Percent(12.5))
}
