// Command remoteplay plays 2048 against a running game server over its REST
// API, the way an external bot would. Each attempt resets the session and
// plays until the board locks, the target is reached or the move limit hits.
//
// The session ID is saved to a file so later runs continue the same session,
// which keeps it visible in browsers watching /ws?session=<id>.
package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/game2048/game/engine"
)

// playOptions controls a single attempt
type playOptions struct {
	maxMoves  int
	delay     time.Duration
	stopOnWin bool
	logEvery  int
}

// attemptResult summarizes one attempt
type attemptResult struct {
	Moves    int
	Score    int
	MaxTile  int
	Won      bool
	GameOver bool
}

func main() {
	cmd := &cli.Command{
		Name:  "remoteplay",
		Usage: "Play 2048 through a game server's REST API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "http://localhost:8080", Usage: "Game server URL"},
			&cli.StringFlag{Name: "config", Usage: "Preset for new sessions (classic, quick, deep, seeded)"},
			&cli.StringFlag{Name: "continue", Usage: "Resume playing an existing session by ID"},
			&cli.StringFlag{Name: "session-file", Value: ".session", Usage: "Where the session ID is remembered"},
			&cli.StringFlag{Name: "strategy", Value: "server", Usage: "server, local or corner"},
			&cli.IntFlag{Name: "depth", Value: engine.DefaultSearchDepth, Usage: "Search depth for the local strategy"},
			&cli.IntFlag{Name: "max-moves", Value: 3000, Usage: "Maximum moves per attempt"},
			&cli.IntFlag{Name: "max-attempts", Value: 1, Usage: "Attempts before giving up"},
			&cli.BoolFlag{Name: "keep-going", Usage: "Keep playing after the target tile is reached"},
			&cli.DurationFlag{Name: "delay", Usage: "Delay between moves, handy when watching in a browser"},
			&cli.BoolFlag{Name: "v", Usage: "Verbose output"},
		},
		Action: run,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cmd.Run(ctx, os.Args); err != nil {
		log.Fatal().Err(err).Msg("remoteplay failed")
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cmd.Bool("v") {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	client := NewClient(cmd.String("url"))
	log.Info().Msgf("Connecting to game server at %s", cmd.String("url"))

	if err := openSession(ctx, client, cmd.String("continue"), cmd.String("session-file"), cmd.String("config")); err != nil {
		return err
	}

	strategy, err := newStrategy(cmd.String("strategy"), client, int(cmd.Int("depth")))
	if err != nil {
		return err
	}

	opts := playOptions{
		maxMoves:  int(cmd.Int("max-moves")),
		delay:     cmd.Duration("delay"),
		stopOnWin: !cmd.Bool("keep-going"),
		logEvery:  100,
	}

	attempts := int(cmd.Int("max-attempts"))
	best := attemptResult{}
	for attempt := 1; attempt <= attempts; attempt++ {
		if _, err := client.Reset(ctx); err != nil {
			return err
		}
		log.Info().Msgf("=== 🎮 Attempt %d/%d ===", attempt, attempts)

		result, err := playAttempt(ctx, client, strategy, opts)
		if err != nil {
			return err
		}
		log.Info().Int("moves", result.Moves).Int("score", result.Score).Int("max_tile", result.MaxTile).
			Msgf("Attempt %d finished", attempt)

		if result.Score > best.Score {
			best = result
		}
		if result.Won {
			log.Info().Str("session", client.sessionID).Msgf("🎉 Target reached in attempt %d with %d moves!", attempt, result.Moves)
			return nil
		}
	}

	log.Info().Str("session", client.sessionID).Int("best_score", best.Score).Int("best_tile", best.MaxTile).
		Msgf("❌ Target not reached after %d attempt(s)", attempts)
	return cli.Exit("", 1)
}

// openSession resumes the explicit or remembered session, creating and
// remembering a new one when neither works
func openSession(ctx context.Context, client *Client, continueID, sessionFile, configID string) error {
	savedID := continueID
	if savedID == "" && sessionFile != "" {
		if data, err := os.ReadFile(sessionFile); err == nil {
			savedID = string(bytes.TrimSpace(data))
		}
	}

	if savedID != "" {
		client.sessionID = savedID
		_, err := client.GetState(ctx)
		if err == nil {
			log.Info().Msgf("🔄 Resuming session: %s", savedID)
			return nil
		}
		log.Warn().Err(err).Msg("Failed to resume session (may be expired), creating a new one")
	}

	if _, err := client.CreateSession(ctx, configID); err != nil {
		return err
	}
	log.Info().Msgf("✨ Session created: %s", client.sessionID)

	if sessionFile != "" {
		if err := os.WriteFile(sessionFile, []byte(client.sessionID), 0644); err != nil {
			log.Warn().Err(err).Msg("Failed to save session ID")
		}
	}
	return nil
}

// playAttempt plays from the session's current state until it ends
func playAttempt(ctx context.Context, client *Client, strategy Strategy, opts playOptions) (attemptResult, error) {
	state, err := client.GetState(ctx)
	if err != nil {
		return attemptResult{}, err
	}

	moves := 0
	for !state.GameOver && moves < opts.maxMoves {
		if opts.stopOnWin && state.Won {
			break
		}
		if err := ctx.Err(); err != nil {
			return summarizeAttempt(state, moves), err
		}

		direction, err := strategy.NextMove(ctx, state)
		if err != nil {
			return summarizeAttempt(state, moves), fmt.Errorf("choose move: %w", err)
		}
		if direction == "" {
			log.Debug().Msg("⚠️  No valid moves available")
			break
		}

		result, err := client.Move(ctx, direction)
		if err != nil {
			return summarizeAttempt(state, moves), err
		}
		state = result.GameState
		if !result.Success {
			// The strategy asked for a blocked move, nothing more to learn
			log.Warn().Str("direction", direction).Msg("Move changed nothing")
			break
		}
		moves++

		if opts.logEvery > 0 && moves%opts.logEvery == 0 {
			log.Debug().Int("moves", moves).Int("score", state.Score).Int("max_tile", state.MaxTile).Msg("progress")
		}
		if opts.delay > 0 {
			time.Sleep(opts.delay)
		}
	}

	return summarizeAttempt(state, moves), nil
}

func summarizeAttempt(state *engine.GameState, moves int) attemptResult {
	return attemptResult{
		Moves:    moves,
		Score:    state.Score,
		MaxTile:  state.MaxTile,
		Won:      state.Won,
		GameOver: state.GameOver,
	}
}
