package report

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortableFloat_OrdersLikeNumbers(t *testing.T) {
	values := []float64{12, -10, 0.5, -0.5, 0, -5, 3, 100.25, -100}
	want := []float64{-100, -10, -5, -0.5, 0, 0.5, 3, 12, 100.25}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.SliceStable(sorted, func(a, b int) bool {
		return sortableFloat(sorted[a]) < sortableFloat(sorted[b])
	})

	assert.Equal(t, want, sorted)
}

func TestSortableNumber(t *testing.T) {
	tests := []struct {
		name string
		a, b string
	}{
		{"non-numeric first", "N/A", "-3"},
		{"negative before positive", "-1.50", "0.25"},
		{"larger negative first", "-10", "-5"},
		{"by magnitude", "9.50", "10.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Less(t, sortableNumber(tt.a), sortableNumber(tt.b))
		})
	}
}
