// Package draw implements winner selection for giveaways.
package draw

import "math/rand"

// SelectWinners picks count distinct entrants uniformly at random without
// replacement. When count is at least the pool size every entrant wins, in a
// randomly permuted order. An empty pool yields an empty result; callers must
// treat that as "no valid winner", not an error.
func SelectWinners(entrants []string, count int) []string {
	if count <= 0 || len(entrants) == 0 {
		return []string{}
	}

	pool := make([]string, len(entrants))
	copy(pool, entrants)
	rand.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})

	if count >= len(pool) {
		return pool
	}
	return pool[:count]
}
