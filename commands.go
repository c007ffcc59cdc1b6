package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/pkg/profile"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/game2048/game/config"
	"github.com/wricardo/game2048/game/engine"
	"github.com/wricardo/game2048/game/service"
)

func presetFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Value: config.DefaultConfigName, Usage: "Preset to play"},
		&cli.IntFlag{Name: "depth", Usage: "Override the preset's search depth"},
		&cli.Int64Flag{Name: "seed", Usage: "Override the preset's random seed"},
		&cli.StringFlag{Name: "profile", Usage: "Write a cpu or mem profile to the current directory"},
	}
}

// loadPreset reads a preset and applies the command's overrides to a copy
func loadPreset(cmd *cli.Command) (*engine.GameConfig, error) {
	manager, err := config.NewManager(cmd.String("config-dir"))
	if err != nil {
		return nil, err
	}

	preset, err := manager.LoadConfig(cmd.String("config"))
	if err != nil {
		return nil, err
	}

	cfg := *preset
	if depth := int(cmd.Int("depth")); depth > 0 {
		cfg.SearchDepth = depth
	}
	if seed := cmd.Int64("seed"); seed != 0 {
		cfg.Seed = seed
	}
	return &cfg, engine.ValidateGameConfig(&cfg)
}

// startProfile starts pkg/profile in the requested mode. The returned stop
// function is never nil.
func startProfile(mode string) (func(), error) {
	switch mode {
	case "":
		return func() {}, nil
	case "cpu":
		return profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.Quiet).Stop, nil
	case "mem":
		return profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.Quiet).Stop, nil
	default:
		return nil, fmt.Errorf("unknown profile mode %q (want cpu or mem)", mode)
	}
}

func autoplayCommand() *cli.Command {
	return &cli.Command{
		Name:  "autoplay",
		Usage: "Let the planner play one game and print the board",
		Flags: append(presetFlags(),
			&cli.IntFlag{Name: "moves", Aliases: []string{"n"}, Value: engine.MaxAutoPlayMoves, Usage: "Stop after this many moves"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "Print the board after every move"},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadPreset(cmd)
			if err != nil {
				return err
			}

			stop, err := startProfile(cmd.String("profile"))
			if err != nil {
				return err
			}
			defer stop()

			_, err = autoplay(ctx, os.Stdout, cfg, int(cmd.Int("moves")), cmd.Bool("verbose"))
			return err
		},
	}
}

// autoplay plays up to maxMoves planner moves and prints a summary to w
func autoplay(ctx context.Context, w io.Writer, cfg *engine.GameConfig, maxMoves int, verbose bool) (*engine.GameState, error) {
	eng, err := engine.NewEngine(cfg)
	if err != nil {
		return nil, err
	}

	log.Info().Str("config", cfg.Name).Int("depth", cfg.SearchDepth).Int("max_moves", maxMoves).Msg("Auto play started")
	start := time.Now()

	for i := 0; i < maxMoves && ctx.Err() == nil; i++ {
		dir, ok := eng.AutoStep()
		if !ok {
			break
		}
		if verbose {
			state := eng.GetState()
			fmt.Fprintf(w, "move %d: %s (score %d)\n%s\n\n", state.Moves, dir, state.Score, state.Grid)
		}
	}

	state := eng.GetState()
	fmt.Fprintf(w, "%s\n\nScore: %d  Moves: %d  Max tile: %d  Won: %t  Game over: %t\n",
		state.Grid, state.Score, state.Moves, state.MaxTile, state.Won, state.GameOver)

	log.Info().Dur("elapsed", time.Since(start)).Int("score", state.Score).Msg("Auto play finished")
	return state, ctx.Err()
}

func benchCommand() *cli.Command {
	return &cli.Command{
		Name:  "bench",
		Usage: "Play many headless games in parallel and report statistics",
		Flags: append(presetFlags(),
			&cli.IntFlag{Name: "games", Aliases: []string{"g"}, Value: 10, Usage: "Number of games"},
			&cli.IntFlag{Name: "workers", Aliases: []string{"w"}, Usage: "Parallel games (default GOMAXPROCS)"},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadPreset(cmd)
			if err != nil {
				return err
			}

			stop, err := startProfile(cmd.String("profile"))
			if err != nil {
				return err
			}
			defer stop()

			result, err := service.Benchmark(ctx, cfg, int(cmd.Int("games")), int(cmd.Int("workers")))
			if err != nil {
				return err
			}
			printBenchmark(os.Stdout, result)
			return nil
		},
	}
}

func printBenchmark(w io.Writer, result *service.BenchmarkResult) {
	s := result.Stats
	fmt.Fprintf(w, "%s: %d games on %d workers in %s\n", result.ConfigName, result.Games, result.Workers, result.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "Score  mean %.1f  min %d  max %d\n", s.MeanScore, s.MinScore, s.MaxScore)
	fmt.Fprintf(w, "Moves  total %d\n", s.TotalMoves)
	fmt.Fprintf(w, "Wins   %.1f%%\n", s.WinRate*100)

	tiles := make([]int, 0, len(s.MaxTileHistogram))
	for tile := range s.MaxTileHistogram {
		tiles = append(tiles, tile)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(tiles)))

	fmt.Fprintln(w, "Max tile reached:")
	for _, tile := range tiles {
		fmt.Fprintf(w, "  %6d  %d\n", tile, s.MaxTileHistogram[tile])
	}
}
