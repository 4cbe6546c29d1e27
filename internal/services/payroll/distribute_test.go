package payroll

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllocateByWeight(t *testing.T) {
	tests := []struct {
		name    string
		total   int64
		weights []int64
		want    []int64
	}{
		{
			name:    "exact proportional split",
			total:   1000,
			weights: []int64{5400, 3240, 2160},
			want:    []int64{500, 300, 200},
		},
		{
			name:    "leftover goes to the largest remainder",
			total:   7,
			weights: []int64{2, 3, 5},
			want:    []int64{1, 2, 4},
		},
		{
			name:    "equal remainders favour the lower index",
			total:   100,
			weights: []int64{1, 1, 1},
			want:    []int64{34, 33, 33},
		},
		{
			name:    "single participant takes everything",
			total:   999,
			weights: []int64{42},
			want:    []int64{999},
		},
		{
			name:    "zero total",
			total:   0,
			weights: []int64{10, 20},
			want:    []int64{0, 0},
		},
		{
			name:    "zero weight earns nothing",
			total:   10,
			weights: []int64{0, 5},
			want:    []int64{0, 10},
		},
		{
			name:    "no weights",
			total:   100,
			weights: nil,
			want:    []int64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := allocateByWeight(tt.total, tt.weights)
			assert.Equal(t, tt.want, got)

			var sum int64
			for _, share := range got {
				sum += share
			}
			if tt.total > 0 && len(tt.weights) > 0 {
				var weightSum int64
				for _, w := range tt.weights {
					weightSum += w
				}
				if weightSum > 0 {
					assert.Equal(t, tt.total, sum, "shares must sum to the total")
				}
			}
		})
	}
}

func TestAllocateByWeightNeverExceedsFloorPlusOne(t *testing.T) {
	total := int64(12345)
	weights := []int64{7, 13, 1, 999, 50, 50}

	var weightSum int64
	for _, w := range weights {
		weightSum += w
	}

	shares := allocateByWeight(total, weights)
	for i, share := range shares {
		floor := total * weights[i] / weightSum
		assert.GreaterOrEqual(t, share, floor)
		assert.LessOrEqual(t, share, floor+1)
	}
}
