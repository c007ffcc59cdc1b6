// Command analyze prints the planner's view of one or more 2048 boards.
//
// Boards are 16 tile values in row-major order, separated by spaces, commas
// or slashes, one board per line. They come from the arguments or, when
// there are none, from stdin:
//
//	analyze --depth 4 "2 2 0 0 / 0 4 0 0 / 0 0 0 0 / 0 0 0 8"
//	echo "0 0 0 2 0 0 0 2 0 0 0 4 0 0 0 8" | analyze
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/game2048/game/engine"
)

func main() {
	cmd := &cli.Command{
		Name:      "analyze",
		Usage:     "Show the lookahead planner's analysis of 2048 boards",
		ArgsUsage: "[board...]",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "depth", Aliases: []string{"d"}, Value: 3, Usage: "Search depth"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			depth := int(cmd.Int("depth"))
			if cmd.Args().Len() > 0 {
				return analyzeAll(os.Stdout, strings.NewReader(strings.Join(cmd.Args().Slice(), "\n")), depth)
			}
			return analyzeAll(os.Stdout, os.Stdin, depth)
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "analyze: %v\n", err)
		os.Exit(1)
	}
}

// analyzeAll reads one board per non-empty line and reports each. It keeps
// going after a bad line and returns an error naming how many failed.
func analyzeAll(w io.Writer, r io.Reader, depth int) error {
	scanner := bufio.NewScanner(r)
	line, failed := 0, 0

	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		g, err := engine.ParseGrid(text)
		if err != nil {
			fmt.Fprintf(w, "line %d: %v\n\n", line, err)
			failed++
			continue
		}
		analyzeBoard(w, g, depth)
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	if failed > 0 {
		return fmt.Errorf("%d board(s) could not be parsed", failed)
	}
	return nil
}

func analyzeBoard(w io.Writer, g engine.Grid, depth int) {
	s := engine.Analyze(g, depth)

	fmt.Fprintf(w, "%s\n", g)
	fmt.Fprintf(w, "Quality: %.0f  Empty: %d  Max tile: %d  Terminal: %t\n", s.OriginalQuality, g.EmptyCount(), g.MaxTile(), engine.IsTerminal(g))

	if !s.Legal {
		fmt.Fprintln(w, "⚠️  No legal move, the game is over")
		fmt.Fprintln(w)
		return
	}

	for i, d := range engine.Directions {
		r := s.Results[i]
		if r == nil {
			fmt.Fprintf(w, "  %-5s  blocked\n", d)
			continue
		}
		marker := " "
		if d == s.Direction {
			marker = "→"
		}
		fmt.Fprintf(w, "%s %-5s  loss %8.1f  worst quality %6.0f  p %.3f\n", marker, d, r.QualityLoss, r.Quality, r.Probability)
	}
	fmt.Fprintf(w, "Best move at depth %d: %s\n\n", s.Depth, s.Move)
}
