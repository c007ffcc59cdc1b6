package engine

import (
	"fmt"
	"strconv"
	"strings"
)

// NewGridFromRows builds a grid from row-major values, ignoring extras
func NewGridFromRows(rows [][]int) Grid {
	var g Grid
	for r := 0; r < Size && r < len(rows); r++ {
		for c := 0; c < Size && c < len(rows[r]); c++ {
			g[r][c] = rows[r][c]
		}
	}
	return g
}

// ParseGrid reads 16 whitespace or comma separated tile values in row-major order
func ParseGrid(s string) (Grid, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '/' || r == '|'
	})
	if len(fields) != Size*Size {
		return Grid{}, fmt.Errorf("grid needs %d values, got %d", Size*Size, len(fields))
	}

	var g Grid
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return Grid{}, fmt.Errorf("cell %d: %w", i, err)
		}
		g[i/Size][i%Size] = v
	}
	if err := g.Validate(); err != nil {
		return Grid{}, err
	}
	return g, nil
}

// Validate reports the first cell that is neither empty nor a tile: tiles
// are powers of two from 2 up.
func (g Grid) Validate() error {
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if v := g[r][c]; v != 0 && (v < 2 || v&(v-1) != 0) {
				return fmt.Errorf("cell (%d,%d): %d is not a power of two", r, c, v)
			}
		}
	}
	return nil
}

// EmptyCount returns the number of zero cells
func (g Grid) EmptyCount() int {
	n := 0
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if g[r][c] == 0 {
				n++
			}
		}
	}
	return n
}

// TileCount returns the number of occupied cells
func (g Grid) TileCount() int {
	return Size*Size - g.EmptyCount()
}

// Sum returns the total of all tile values
func (g Grid) Sum() int {
	total := 0
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			total += g[r][c]
		}
	}
	return total
}

// MaxTile returns the largest tile on the grid
func (g Grid) MaxTile() int {
	best := 0
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if g[r][c] > best {
				best = g[r][c]
			}
		}
	}
	return best
}

// Rotate returns the grid turned clockwise by n quarter turns
func (g Grid) Rotate(n int) Grid {
	n = ((n % 4) + 4) % 4
	for ; n > 0; n-- {
		var out Grid
		for r := 0; r < Size; r++ {
			for c := 0; c < Size; c++ {
				out[c][Size-1-r] = g[r][c]
			}
		}
		g = out
	}
	return g
}

// Rows returns the grid as nested slices, handy for JSON clients
func (g Grid) Rows() [][]int {
	rows := make([][]int, Size)
	for r := 0; r < Size; r++ {
		rows[r] = append([]int(nil), g[r][:]...)
	}
	return rows
}

// String renders the grid as right-aligned columns
func (g Grid) String() string {
	var sb strings.Builder
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if c > 0 {
				sb.WriteByte(' ')
			}
			if g[r][c] == 0 {
				sb.WriteString(fmt.Sprintf("%5s", "."))
			} else {
				sb.WriteString(fmt.Sprintf("%5d", g[r][c]))
			}
		}
		if r < Size-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
