package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBatchSlice(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}

	batches := BatchSlice(items, 5)
	require.Equal(t, [][]int{{1, 2, 3, 4, 5}, {6, 7, 8, 9, 10}, {11, 12}}, batches)

	require.Equal(t, [][]int{items}, BatchSlice(items, 0))
	require.Nil(t, BatchSlice([]int{}, 0))
	require.Nil(t, BatchSlice([]int{}, 3))

	// appending to a batch must not clobber its neighbour
	_ = append(batches[0], 99)
	require.Equal(t, 6, batches[1][0])
}

func TestHumanizeDuration(t *testing.T) {
	require.Equal(t, "1.50s", HumanizeDuration(1500*time.Millisecond))
	require.Equal(t, "2m 5s", HumanizeDuration(2*time.Minute+5*time.Second))
	require.Equal(t, "3h 1m", HumanizeDuration(3*time.Hour+time.Minute))
	require.Equal(t, "1d 2h", HumanizeDuration(26*time.Hour))
}

func TestResultsFileName(t *testing.T) {
	require.Equal(t, "example.com.txt", ResultsFileName("example.com"))
	require.Equal(t, "аpple.com.txt", ResultsFileName("аpple.com"))
	require.Equal(t, "a_b.txt", ResultsFileName("a/b"))
}
