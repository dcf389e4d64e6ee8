package sqlfmt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatHistogramBinsAndCounts(t *testing.T) {
	got := FormatHistogram(`{"bins": ["a", "b"], "counts": [10, 5]}`)

	lines := strings.Split(got, "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "a: 10 (100.0%) "+strings.Repeat("█", 15), lines[0])
	assert.Equal(t, "b: 5 (50.0%) "+strings.Repeat("█", 7), lines[1])
}

func TestFormatHistogramItemList(t *testing.T) {
	got := FormatHistogram(`[{"range": "0-10", "count": 3}, {"range": "10-20", "frequency": 6}, {"count": 6}]`)

	lines := strings.Split(got, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "0-10: 3 (50.0%) "+strings.Repeat("█", 7), lines[0])
	assert.Equal(t, "10-20: 6 (100.0%) "+strings.Repeat("█", 15), lines[1])
	assert.Equal(t, "Bin 3: 6 (100.0%) "+strings.Repeat("█", 15), lines[2])
}

func TestFormatHistogramFallbacks(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"absent", "", NoDistributionData},
		{"not json", "just some text", "just some text"},
		{"numeric array", "[1, 2, 3]", "[1, 2, 3]"},
		{"object without bins", `{"foo": 1}`, `{"foo": 1}`},
		{"null", "null", "null"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatHistogram(tt.in))
		})
	}
}
