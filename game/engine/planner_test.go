package engine

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChooseMoveNoLegalMove(t *testing.T) {
	stuck := Grid{
		{2, 4, 2, 4},
		{4, 2, 4, 2},
		{2, 4, 2, 4},
		{4, 2, 4, 2},
	}

	assert.Equal(t, Left, ChooseMove(stuck, DefaultSearchDepth))

	origQ := Quality(stuck)
	results := PlanAhead(stuck, 2, origQ)
	for _, r := range results {
		assert.Nil(t, r)
	}
	assert.Equal(t, SearchResult{
		Quality:     NoQuality,
		Probability: 1,
		QualityLoss: origQ,
		Direction:   Left,
	}, ChooseBest(results, origQ))

	s := Analyze(stuck, 3)
	assert.False(t, s.Legal)
	assert.Equal(t, "left", s.Move)
}

func TestChooseMoveSingleLegalMove(t *testing.T) {
	tests := []struct {
		name string
		grid Grid
		want Direction
	}{
		{"right only", Grid{
			{2, 4, 2, 0},
			{4, 2, 4, 0},
			{2, 4, 2, 0},
			{4, 2, 4, 0},
		}, Right},
		{"down only", Grid{
			{2, 4, 2, 4},
			{4, 2, 4, 2},
			{2, 4, 2, 4},
			{0, 0, 0, 0},
		}, Down},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for depth := 1; depth <= 3; depth++ {
				assert.Equal(t, tt.want, ChooseMove(tt.grid, depth), "depth %d", depth)
			}
			results := PlanAhead(tt.grid, 1, Quality(tt.grid))
			for i, r := range results {
				if Directions[i] == tt.want {
					require.NotNil(t, r)
					assert.Equal(t, tt.want, r.Direction)
				} else {
					assert.Nil(t, r)
				}
			}
		})
	}
}

// leafReference scores one direction at depth 1 by counting outcomes directly
func leafReference(g Grid, dir Direction, origQ float64) *SearchResult {
	moved, changed := ApplyMove(g, dir)
	if !changed {
		return nil
	}
	cells := CandidateCells(moved)
	worst := 0.0
	count := 0
	loss := 0.0
	for i, pos := range cells {
		withTile := moved
		withTile[pos.Row][pos.Col] = 2
		q := Quality(withTile)
		loss += max(origQ-q, 0)
		switch {
		case i == 0 || q < worst:
			worst, count = q, 1
		case q == worst:
			count++
		}
	}
	n := float64(len(cells))
	return &SearchResult{
		Quality:     worst,
		Probability: float64(count) / n,
		QualityLoss: loss / n,
		Direction:   dir,
	}
}

func TestPlanAheadLeaves(t *testing.T) {
	rng := NewRand(11)
	for i := 0; i < 200; i++ {
		g := randomGrid(rng)
		origQ := Quality(g)
		results := PlanAhead(g, 1, origQ)
		for j, dir := range Directions {
			want := leafReference(g, dir, origQ)
			got := results[j]
			if want == nil {
				assert.Nil(t, got)
				continue
			}
			require.NotNil(t, got)
			assert.Equal(t, want.Quality, got.Quality)
			assert.InDelta(t, want.Probability, got.Probability, 1e-9)
			assert.InDelta(t, want.QualityLoss, got.QualityLoss, 1e-9)
			assert.Equal(t, dir, got.Direction)
		}
	}
}

// twoPlyReference scores one direction at depth 2 by hand. Every spawn after
// the move is answered by the best single-ply reply, measured against baseline.
func twoPlyReference(g Grid, dir Direction, baseline func(Grid) float64) *SearchResult {
	moved, changed := ApplyMove(g, dir)
	if !changed {
		return nil
	}
	cells := CandidateCells(moved)
	n := float64(len(cells))
	var acc SearchResult
	for i, pos := range cells {
		withTile := moved
		withTile[pos.Row][pos.Col] = 2
		base := baseline(withTile)
		r := ChooseBest(PlanAhead(withTile, 1, base), base)
		switch {
		case i == 0 || r.Quality < acc.Quality:
			acc.Quality = r.Quality
			acc.Probability = r.Probability / n
		case r.Quality == acc.Quality:
			acc.Probability += r.Probability / n
		}
		acc.QualityLoss += r.QualityLoss / n
	}
	acc.Direction = dir
	return &acc
}

func TestPlanAheadTwoPly(t *testing.T) {
	rng := NewRand(23)
	lossDiffers := false
	for i := 0; i < 30; i++ {
		g := randomGrid(rng)
		origQ := Quality(g)
		results := PlanAhead(g, 2, origQ)
		for j, dir := range Directions {
			want := twoPlyReference(g, dir, func(Grid) float64 { return origQ })
			got := results[j]
			if want == nil {
				assert.Nil(t, got)
				continue
			}
			require.NotNil(t, got)
			assert.Equal(t, want.Quality, got.Quality)
			assert.InDelta(t, want.Probability, got.Probability, 1e-9)
			assert.InDelta(t, want.QualityLoss, got.QualityLoss, 1e-9)
			assert.Equal(t, dir, got.Direction)

			// Losses are measured from the root position, not the spawned one
			local := twoPlyReference(g, dir, Quality)
			if diff := local.QualityLoss - got.QualityLoss; diff > 1e-9 || diff < -1e-9 {
				lossDiffers = true
			}
		}
	}
	assert.True(t, lossDiffers, "measuring from the spawned position should change some loss")
}

func TestPlanAheadResultBounds(t *testing.T) {
	rng := NewRand(5)
	for i := 0; i < 50; i++ {
		g := randomGrid(rng)
		results := PlanAhead(g, 2, Quality(g))
		for _, r := range results {
			if r == nil {
				continue
			}
			assert.Greater(t, r.Probability, 0.0)
			assert.LessOrEqual(t, r.Probability, 1.0+1e-9)
			assert.GreaterOrEqual(t, r.QualityLoss, 0.0)
		}
	}
}

func TestExpandFullGrid(t *testing.T) {
	full := Grid{
		{2, 4, 2, 4},
		{4, 2, 4, 2},
		{2, 4, 2, 4},
		{4, 2, 4, 2},
	}
	origQ := Quality(full) + 10
	r := expand(full, 1, origQ)
	assert.Equal(t, Quality(full), r.Quality)
	assert.Equal(t, 1.0, r.Probability)
	assert.Equal(t, 10.0, r.QualityLoss)
}

func TestChooseBestOrdering(t *testing.T) {
	tests := []struct {
		name    string
		results [4]*SearchResult
		want    Direction
	}{
		{
			name: "lowest loss wins",
			results: [4]*SearchResult{
				{Quality: 100, Probability: 0.1, QualityLoss: 5, Direction: Left},
				{Quality: 10, Probability: 0.9, QualityLoss: 1, Direction: Right},
				nil,
				nil,
			},
			want: Right,
		},
		{
			name: "higher quality breaks loss tie",
			results: [4]*SearchResult{
				{Quality: 50, Probability: 0.1, QualityLoss: 2, Direction: Left},
				nil,
				{Quality: 60, Probability: 0.9, QualityLoss: 2, Direction: Up},
				nil,
			},
			want: Up,
		},
		{
			name: "lower probability breaks quality tie",
			results: [4]*SearchResult{
				nil,
				{Quality: 60, Probability: 0.5, QualityLoss: 2, Direction: Right},
				{Quality: 60, Probability: 0.5, QualityLoss: 2, Direction: Up},
				{Quality: 60, Probability: 0.25, QualityLoss: 2, Direction: Down},
			},
			want: Down,
		},
		{
			name: "exact tie keeps first",
			results: [4]*SearchResult{
				nil,
				{Quality: 60, Probability: 0.5, QualityLoss: 2, Direction: Right},
				{Quality: 60, Probability: 0.5, QualityLoss: 2, Direction: Up},
				nil,
			},
			want: Right,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ChooseBest(tt.results, 100).Direction)
		})
	}
}

func TestChooseMoveIsLegal(t *testing.T) {
	rng := NewRand(17)
	for i := 0; i < 100; i++ {
		g := randomGrid(rng)
		legal := LegalMoves(g)
		if len(legal) == 0 {
			continue
		}
		dir := ChooseMove(g, 2)
		assert.Contains(t, legal, dir, g.String())
	}
}

func TestChooseMoveDeterministicAndConcurrent(t *testing.T) {
	rng := NewRand(23)
	grids := make([]Grid, 16)
	want := make([]Direction, len(grids))
	for i := range grids {
		grids[i] = randomGrid(rng)
		want[i] = ChooseMove(grids[i], 2)
	}

	var wg sync.WaitGroup
	got := make([]Direction, len(grids))
	for i := range grids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = ChooseMove(grids[i], 2)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, want, got)
}

func TestAnalyze(t *testing.T) {
	g := Grid{
		{0, 0, 0, 0},
		{0, 2, 2, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	}
	s := Analyze(g, 0)
	assert.Equal(t, 1, s.Depth, "depth is clamped to one ply")
	assert.True(t, s.Legal)
	assert.Equal(t, Quality(g), s.OriginalQuality)
	assert.Equal(t, s.Direction.String(), s.Move)
	assert.Equal(t, s.Best, ChooseBest(s.Results, s.OriginalQuality))
	for _, r := range s.Results {
		assert.NotNil(t, r, "every direction changes this grid")
	}
}

func BenchmarkChooseMove(b *testing.B) {
	g := Grid{
		{2, 4, 8, 16},
		{0, 2, 4, 8},
		{0, 0, 2, 4},
		{0, 0, 0, 2},
	}
	for i := 0; i < b.N; i++ {
		ChooseMove(g, DefaultSearchDepth)
	}
}
