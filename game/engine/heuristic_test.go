package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMonotonicity(t *testing.T) {
	tests := []struct {
		line [Size]int
		want int
	}{
		{[Size]int{0, 0, 0, 0}, 0},
		{[Size]int{2, 4, 8, 16}, 30},
		{[Size]int{16, 8, 4, 2}, 30},
		{[Size]int{4, 2, 0, 0}, 6},
		{[Size]int{2, 8, 2, 8}, 12},
		{[Size]int{2, 0, 0, 0}, 2},
		{[Size]int{4, 4, 4, 4}, 16},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, monotonicity(tt.line), "%v", tt.line)
	}
}

func TestQuality(t *testing.T) {
	assert.Equal(t, 128.0, Quality(Grid{}))

	// One tile scores once for its row and once for its column
	assert.Equal(t, 2.0+2.0+15*EmptyCellWeight, Quality(Grid{{2}}))

	sorted := Grid{
		{2, 4, 8, 16},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	}
	// Row 30, each column scores its single tile
	assert.Equal(t, 30.0+2+4+8+16+12*EmptyCellWeight, Quality(sorted))
}

func TestQualityNeverNegative(t *testing.T) {
	rng := NewRand(3)
	for i := 0; i < 1000; i++ {
		assert.GreaterOrEqual(t, Quality(randomGrid(rng)), 0.0)
	}
}
