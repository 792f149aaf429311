package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestToCompact(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"compact passthrough", "20240105", "20240105"},
		{"iso", "2024-01-05", "20240105"},
		{"slashes", "2024/01/05", "20240105"},
		{"rfc3339 utc", "2024-01-05T10:00:00Z", "20240105"},
		{"rfc3339 offset", "2024-01-05T10:00:00+09:00", "20240105"},
		{"surrounding spaces", "  20240105 ", "20240105"},
		{"empty", "", ""},
		{"garbage", "yesterday", ""},
		{"seven digits", "2024010", ""},
		{"month out of range", "20241399", ""},
		{"day out of range", "20240230", ""},
		{"iso impossible day", "2024-02-30", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ToCompact(tt.input))
		})
	}
}

func TestIsCompact(t *testing.T) {
	t.Parallel()

	assert.True(t, IsCompact("20240229"))
	assert.False(t, IsCompact("20230229"))
	assert.False(t, IsCompact("00000000"))
	assert.False(t, IsCompact("2024-02-29"))
}

func TestToISO(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "2024-01-05", ToISO("20240105"))
	assert.Equal(t, "2024-01-05", ToISO("2024/01/05"))
	assert.Equal(t, "", ToISO(""))
}

func TestToday(t *testing.T) {
	t.Parallel()

	kst := time.FixedZone("KST", 9*60*60)
	now := time.Date(2024, 3, 2, 5, 30, 0, 0, kst)

	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Today(now))
}
