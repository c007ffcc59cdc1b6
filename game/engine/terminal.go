package engine

// IsTerminal reports whether no move can change the grid: no empty cell and
// no pair of equal horizontal or vertical neighbours.
func IsTerminal(g Grid) bool {
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			v := g[r][c]
			if v == 0 {
				return false
			}
			if c+1 < Size && g[r][c+1] == v {
				return false
			}
			if r+1 < Size && g[r+1][c] == v {
				return false
			}
		}
	}
	return true
}
