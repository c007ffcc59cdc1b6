package service

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wricardo/game2048/game/engine"
)

// GameResult is the outcome of one headless game
type GameResult struct {
	Index   int   `json:"index"`
	Seed    int64 `json:"seed"`
	Score   int   `json:"score"`
	Moves   int   `json:"moves"`
	MaxTile int   `json:"max_tile"`
	Won     bool  `json:"won"`
}

// BenchmarkStats aggregates a batch of games
type BenchmarkStats struct {
	MeanScore        float64     `json:"mean_score"`
	MaxScore         int         `json:"max_score"`
	MinScore         int         `json:"min_score"`
	TotalMoves       int         `json:"total_moves"`
	WinRate          float64     `json:"win_rate"`
	MaxTileHistogram map[int]int `json:"max_tile_histogram"`
}

// BenchmarkResult is returned by Benchmark
type BenchmarkResult struct {
	ConfigName string         `json:"config_name"`
	Games      int            `json:"games"`
	Workers    int            `json:"workers"`
	Results    []GameResult   `json:"results"`
	Stats      BenchmarkStats `json:"stats"`
	Duration   time.Duration  `json:"duration_ns"`
}

// Benchmark plays games independent headless games with the planner, at
// most workers at a time. Seeded configs give game i the seed config.Seed+i
// so a run can be repeated exactly.
func Benchmark(ctx context.Context, config *engine.GameConfig, games, workers int) (*BenchmarkResult, error) {
	if err := engine.ValidateGameConfig(config); err != nil {
		return nil, err
	}
	if games < 1 {
		return nil, fmt.Errorf("games must be at least 1, got %d", games)
	}
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}

	base := config.Seed
	if base == 0 {
		base = time.Now().UnixNano()
	}

	started := time.Now()
	results := make([]GameResult, games)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range games {
		g.Go(func() error {
			res, err := playHeadless(gctx, config, base+int64(i))
			if err != nil {
				return err
			}
			res.Index = i
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &BenchmarkResult{
		ConfigName: config.Name,
		Games:      games,
		Workers:    workers,
		Results:    results,
		Stats:      summarize(results),
		Duration:   time.Since(started),
	}, nil
}

func playHeadless(ctx context.Context, config *engine.GameConfig, seed int64) (GameResult, error) {
	eng, err := engine.NewEngineWithRand(config, engine.NewRand(seed))
	if err != nil {
		return GameResult{}, err
	}

	for !eng.IsGameOver() {
		if err := ctx.Err(); err != nil {
			return GameResult{}, err
		}
		if _, ok := eng.AutoStep(); !ok {
			break
		}
	}

	state := eng.GetState()
	return GameResult{
		Seed:    seed,
		Score:   state.Score,
		Moves:   state.Moves,
		MaxTile: state.MaxTile,
		Won:     state.Won,
	}, nil
}

func summarize(results []GameResult) BenchmarkStats {
	stats := BenchmarkStats{MaxTileHistogram: make(map[int]int)}
	if len(results) == 0 {
		return stats
	}

	stats.MinScore = results[0].Score
	total, wins := 0, 0
	for _, r := range results {
		total += r.Score
		stats.TotalMoves += r.Moves
		stats.MaxScore = max(stats.MaxScore, r.Score)
		stats.MinScore = min(stats.MinScore, r.Score)
		stats.MaxTileHistogram[r.MaxTile]++
		if r.Won {
			wins++
		}
	}
	stats.MeanScore = float64(total) / float64(len(results))
	stats.WinRate = float64(wins) / float64(len(results))
	return stats
}
