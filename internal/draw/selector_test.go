package draw

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectWinnersEmptyPool(t *testing.T) {
	winners := SelectWinners(nil, 3)
	assert.Empty(t, winners)

	winners = SelectWinners([]string{}, 1)
	assert.Empty(t, winners)
}

func TestSelectWinnersZeroCount(t *testing.T) {
	winners := SelectWinners([]string{"a", "b"}, 0)
	assert.Empty(t, winners)
}

func TestSelectWinnersCountExceedsPool(t *testing.T) {
	entrants := []string{"a", "b", "c"}

	winners := SelectWinners(entrants, 10)

	require.Len(t, winners, 3)
	assert.ElementsMatch(t, entrants, winners)
}

func TestSelectWinnersDistinctSubset(t *testing.T) {
	entrants := []string{"a", "b", "c", "d", "e", "f", "g"}

	for i := 0; i < 100; i++ {
		winners := SelectWinners(entrants, 3)
		require.Len(t, winners, 3)

		seen := make(map[string]bool)
		for _, w := range winners {
			assert.Contains(t, entrants, w)
			assert.False(t, seen[w], "winner %q selected twice", w)
			seen[w] = true
		}
	}
}

func TestSelectWinnersDoesNotMutateInput(t *testing.T) {
	entrants := []string{"a", "b", "c", "d"}
	SelectWinners(entrants, 2)
	assert.Equal(t, []string{"a", "b", "c", "d"}, entrants)
}

func TestSelectWinnersFairness(t *testing.T) {
	entrants := []string{"a", "b", "c", "d", "e"}
	const trials = 2000

	counts := make(map[string]int)
	for i := 0; i < trials; i++ {
		for _, w := range SelectWinners(entrants, 2) {
			counts[w]++
		}
	}

	// Each entrant should win with probability 2/5 = 0.4. The bounds sit
	// about seven standard deviations out, so a correct sampler essentially
	// never trips them.
	for _, e := range entrants {
		freq := float64(counts[e]) / trials
		assert.InDelta(t, 0.4, freq, 0.08, "entrant %q won %d of %d trials", e, counts[e], trials)
	}
}
