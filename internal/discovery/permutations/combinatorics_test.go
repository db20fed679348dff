package permutations

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func testMap() ConfusableMap {
	return ConfusableMap{
		"a": {"a", "α"},
		"b": {"b"},
		"e": {"e", "е", "ė"},
		"o": {"o", "ο", "о", "0"},
	}
}

func TestCountCombinations(t *testing.T) {
	tests := []struct {
		domain  string
		total   int64
		factors []int
	}{
		{domain: "ab", total: 2, factors: []int{2, 1}},
		{domain: "abe", total: 6, factors: []int{2, 1, 3}},
		{domain: "zz", total: 1, factors: []int{1, 1}},
		{domain: "", total: 1, factors: []int{}},
		{domain: "aeo.com", total: 2 * 3 * 4 * 4, factors: []int{2, 3, 4, 1, 1, 4, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.domain, func(t *testing.T) {
			total, factors := CountCombinations(tt.domain, testMap())
			require.Equal(t, big.NewInt(tt.total), total)
			require.Equal(t, tt.factors, factors)
		})
	}
}

func TestCountUsesArbitraryPrecision(t *testing.T) {
	cm := ConfusableMap{"o": make([]string, 40)}
	domain := ""
	for i := 0; i < 30; i++ {
		domain += "o"
	}

	total, factors := CountCombinations(domain, cm)
	want := new(big.Int).Exp(big.NewInt(40), big.NewInt(30), nil)
	require.Equal(t, 0, want.Cmp(total))
	require.False(t, total.IsInt64())
	require.Len(t, factors, 30)
}

func TestCountWithFrozenSuffix(t *testing.T) {
	c := NewCombinatorics(true)
	total, factors := c.Count("aeo.com", testMap())
	require.Equal(t, big.NewInt(2*3*4), total)
	require.Equal(t, []int{2, 3, 4, 1, 1, 1, 1}, factors)

	positions := c.Positions("aeo.co.uk", testMap())
	for i, p := range positions {
		require.Equal(t, i >= 3, p.Frozen, "position %d", i)
	}
}

func TestFrozenSuffixWithoutSuffix(t *testing.T) {
	total, _ := NewCombinatorics(true).Count("aeo", testMap())
	require.Equal(t, big.NewInt(2*3*4), total)
}

func TestBatchPlan(t *testing.T) {
	tests := []struct {
		name      string
		total     int64
		ratio     int
		override  int
		batchSize int
		batches   int64
	}{
		{name: "one percent", total: 1000, ratio: 100, batchSize: 10, batches: 100},
		{name: "rounds up", total: 1001, ratio: 100, batchSize: 11, batches: 91},
		{name: "small space", total: 12, ratio: 100, batchSize: 1, batches: 12},
		{name: "override", total: 12, ratio: 100, override: 5, batchSize: 5, batches: 3},
		{name: "default ratio", total: 250, ratio: 0, batchSize: 3, batches: 84},
		{name: "override larger than total", total: 4, override: 10, batchSize: 10, batches: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := BatchPlan(big.NewInt(tt.total), tt.ratio, tt.override)
			require.NoError(t, err)
			require.Equal(t, tt.batchSize, plan.BatchSize)
			require.Equal(t, big.NewInt(tt.batches), plan.Batches)
		})
	}
}

func TestBatchPlanRejectsHugeBatches(t *testing.T) {
	huge := new(big.Int).Exp(big.NewInt(10), big.NewInt(40), nil)
	_, err := BatchPlan(huge, 100, 0)
	require.ErrorIs(t, err, ErrTooLarge)

	_, err = BatchPlan(big.NewInt(0), 100, 0)
	require.Error(t, err)
}

func TestFormatFactors(t *testing.T) {
	require.Equal(t, "2, 1, 3", FormatFactors([]int{2, 1, 3}))
	require.Equal(t, "", FormatFactors(nil))
}
