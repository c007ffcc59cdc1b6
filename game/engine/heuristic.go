package engine

// EmptyCellWeight is the quality bonus for each empty cell
const EmptyCellWeight = 8

// Quality scores a grid for the planner. Each column and row contributes the
// larger of its increasing and decreasing run totals, and every empty cell
// adds EmptyCellWeight. Higher is better and the result is never negative.
func Quality(g Grid) float64 {
	total := 0
	for c := 0; c < Size; c++ {
		var line [Size]int
		for r := 0; r < Size; r++ {
			line[r] = g[r][c]
		}
		total += monotonicity(line)
	}
	for r := 0; r < Size; r++ {
		total += monotonicity(g[r])
	}
	return float64(total + EmptyCellWeight*g.EmptyCount())
}

func monotonicity(line [Size]int) int {
	inc, dec := 0, 0
	prev := -1
	for _, v := range line {
		inc += v
		if prev == -1 || v <= prev {
			dec += v
			if v < prev {
				inc -= prev
			}
		}
		prev = v
	}
	return max(inc, dec)
}
