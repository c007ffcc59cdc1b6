package engine

import "math/rand/v2"

// RandSource is the randomness the spawn model draws from.
// *rand.Rand from math/rand/v2 satisfies it.
type RandSource interface {
	IntN(n int) int
	Float64() float64
}

// NewRand returns a seeded source. Equal seeds replay equal games.
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))
}

// CandidateCells returns every empty cell in row-major order
func CandidateCells(g Grid) []Position {
	cells := make([]Position, 0, Size*Size)
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if g[r][c] == 0 {
				cells = append(cells, Position{Row: r, Col: c})
			}
		}
	}
	return cells
}

// SpawnRandom places a 2 (or a 4 with probability DefaultFourChance) on a
// uniformly chosen empty cell. A full grid is returned unchanged.
func SpawnRandom(g Grid, rng RandSource) (Grid, Spawn, bool) {
	return SpawnWithChance(g, rng, DefaultFourChance)
}

// SpawnWithChance is SpawnRandom with a configurable chance of spawning a 4
func SpawnWithChance(g Grid, rng RandSource, fourChance float64) (Grid, Spawn, bool) {
	cells := CandidateCells(g)
	if len(cells) == 0 {
		return g, Spawn{}, false
	}

	pos := cells[rng.IntN(len(cells))]
	value := 2
	if rng.Float64() < fourChance {
		value = 4
	}
	g[pos.Row][pos.Col] = value
	return g, Spawn{Position: pos, Value: value}, true
}
