package engine

// quarterTurns maps a direction to the clockwise rotations that turn it into a left slide
var quarterTurns = [4]int{
	Left:  0,
	Right: 2,
	Up:    3,
	Down:  1,
}

// ApplyMove slides the grid in dir and reports whether any cell changed
func ApplyMove(g Grid, dir Direction) (Grid, bool) {
	out := Move(g, dir)
	return out.Grid, out.Changed
}

// Move slides the grid in dir and also reports the merge score
func Move(g Grid, dir Direction) MoveOutcome {
	if dir < Left || dir > Down {
		return MoveOutcome{Grid: g}
	}

	n := quarterTurns[dir]
	rotated := g.Rotate(n)

	score := 0
	for r := 0; r < Size; r++ {
		var delta int
		rotated[r], delta = slideLeft(rotated[r])
		score += delta
	}

	moved := rotated.Rotate(4 - n)
	return MoveOutcome{
		Grid:       moved,
		Changed:    moved != g,
		ScoreDelta: score,
	}
}

// slideLeft compacts a row to the left and merges equal neighbours once.
// A merged tile never merges again in the same slide.
func slideLeft(row [Size]int) ([Size]int, int) {
	var out [Size]int
	score := 0
	n := 0
	for _, v := range row {
		if v == 0 {
			continue
		}
		out[n] = v
		n++
	}

	var merged [Size]int
	k := 0
	for i := 0; i < n; i++ {
		if i+1 < n && out[i] == out[i+1] {
			merged[k] = out[i] * 2
			score += merged[k]
			i++
		} else {
			merged[k] = out[i]
		}
		k++
	}
	return merged, score
}

// LegalMoves returns the directions that change the grid, in search order
func LegalMoves(g Grid) []Direction {
	var legal []Direction
	for _, dir := range Directions {
		if _, changed := ApplyMove(g, dir); changed {
			legal = append(legal, dir)
		}
	}
	return legal
}
