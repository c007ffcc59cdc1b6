package engine

// NoQuality marks a result whose quality was never measured
const NoQuality = -1.0

// SearchResult is the planner's summary of one direction.
//
// Quality is the worst quality reachable after the move, Probability is the
// share of hypothetical spawns that reach that worst quality, and QualityLoss
// is the expected drop from the starting position's quality.
type SearchResult struct {
	Quality     float64   `json:"quality"`
	Probability float64   `json:"probability"`
	QualityLoss float64   `json:"quality_loss"`
	Direction   Direction `json:"direction"`
}

// ChooseMove returns the direction the planner prefers for g. When no move is
// legal it returns Left.
func ChooseMove(g Grid, depth int) Direction {
	return Analyze(g, depth).Direction
}

// Analyze runs the full search on g and keeps every per-direction result
func Analyze(g Grid, depth int) Suggestion {
	if depth < 1 {
		depth = 1
	}
	origQ := Quality(g)
	results := PlanAhead(g, depth, origQ)
	best := ChooseBest(results, origQ)

	legal := false
	for _, r := range results {
		if r != nil {
			legal = true
			break
		}
	}

	return Suggestion{
		Direction:       best.Direction,
		Move:            best.Direction.String(),
		Legal:           legal,
		Depth:           depth,
		OriginalQuality: origQ,
		Best:            best,
		Results:         results,
	}
}

// PlanAhead evaluates all four directions from g, searching depth plies.
// Slot i holds the result for Directions[i], or nil when that move is illegal.
// origQ is the quality of the position the top-level search started from.
func PlanAhead(g Grid, depth int, origQ float64) [4]*SearchResult {
	var results [4]*SearchResult
	for i, dir := range Directions {
		moved, changed := ApplyMove(g, dir)
		if !changed {
			continue
		}
		r := expand(moved, depth, origQ)
		r.Direction = dir
		results[i] = &r
	}
	return results
}

// expand places a hypothetical 2 on every empty cell of moved and folds the
// outcomes: worst quality with its probability mass, and mean quality loss.
func expand(moved Grid, depth int, origQ float64) SearchResult {
	cells := CandidateCells(moved)
	if len(cells) == 0 {
		// A grid with no room for a spawn is scored as is
		return branch(moved, depth, origQ)
	}

	n := float64(len(cells))
	acc := SearchResult{Quality: NoQuality, Probability: 1}
	first := true
	for _, pos := range cells {
		withTile := moved
		withTile[pos.Row][pos.Col] = 2
		r := branch(withTile, depth, origQ)

		switch {
		case first || r.Quality < acc.Quality:
			acc.Quality = r.Quality
			acc.Probability = r.Probability / n
		case r.Quality == acc.Quality:
			acc.Probability += r.Probability / n
		}
		acc.QualityLoss += r.QualityLoss / n
		first = false
	}
	return acc
}

func branch(g Grid, depth int, origQ float64) SearchResult {
	if depth > 1 {
		return ChooseBest(PlanAhead(g, depth-1, origQ), origQ)
	}
	q := Quality(g)
	return SearchResult{
		Quality:     q,
		Probability: 1,
		QualityLoss: max(origQ-q, 0),
	}
}

// ChooseBest picks the result with the smallest quality loss, then the
// highest quality, then the smallest probability. Earlier slots win exact
// ties. With no legal result it returns a Left fallback that assumes the
// whole starting quality is lost.
func ChooseBest(results [4]*SearchResult, origQ float64) SearchResult {
	var best *SearchResult
	for _, r := range results {
		if r == nil {
			continue
		}
		if best == nil || better(*r, *best) {
			best = r
		}
	}
	if best == nil {
		return SearchResult{
			Quality:     NoQuality,
			Probability: 1,
			QualityLoss: origQ,
			Direction:   Left,
		}
	}
	return *best
}

func better(a, b SearchResult) bool {
	if a.QualityLoss != b.QualityLoss {
		return a.QualityLoss < b.QualityLoss
	}
	if a.Quality != b.Quality {
		return a.Quality > b.Quality
	}
	return a.Probability < b.Probability
}
