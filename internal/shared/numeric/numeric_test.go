package numeric

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFloat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		want   float64
		wantOK bool
	}{
		{"integer", "71000", 71000, true},
		{"thousands separators", "1,234,567", 1234567, true},
		{"negative decimal", "-12.5", -12.5, true},
		{"percent", "40.00%", 40, true},
		{"padded", "  3.25 ", 3.25, true},
		{"empty", "", 0, false},
		{"text", "N/A", 0, false},
		{"nan", "NaN", 0, false},
		{"infinity", "Inf", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := ParseFloat(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestParseFloatPtr(t *testing.T) {
	t.Parallel()

	assert.Nil(t, ParseFloatPtr("-"))
	p := ParseFloatPtr("100.0")
	require.NotNil(t, p)
	assert.Equal(t, 100.0, *p)
}
