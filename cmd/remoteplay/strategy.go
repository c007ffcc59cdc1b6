package main

import (
	"context"
	"fmt"
	"slices"

	"github.com/wricardo/game2048/game/engine"
)

// Strategy picks the next direction for a state. An empty direction means
// no move is possible.
type Strategy interface {
	NextMove(ctx context.Context, state *engine.GameState) (string, error)
}

// serverStrategy asks the server's planner at the preset's depth
type serverStrategy struct {
	client *Client
}

func (s serverStrategy) NextMove(ctx context.Context, state *engine.GameState) (string, error) {
	result, err := s.client.Suggest(ctx)
	if err != nil {
		return "", err
	}
	if !result.Suggestion.Legal {
		return "", nil
	}
	return result.Suggestion.Move, nil
}

// localStrategy runs the planner in process on the board the server sent,
// so the search depth is independent of the preset
type localStrategy struct {
	depth int
}

func (s localStrategy) NextMove(ctx context.Context, state *engine.GameState) (string, error) {
	if len(engine.LegalMoves(state.Grid)) == 0 {
		return "", nil
	}
	return engine.ChooseMove(state.Grid, s.depth).String(), nil
}

var cornerOrder = []string{"down", "left", "right", "up"}

// cornerStrategy is the classic human habit of keeping the big tile in the
// bottom left corner. Up is played only when nothing else moves.
type cornerStrategy struct{}

func (cornerStrategy) NextMove(ctx context.Context, state *engine.GameState) (string, error) {
	legal := engine.DirectionNames(engine.LegalMoves(state.Grid))
	for _, dir := range cornerOrder {
		if slices.Contains(legal, dir) {
			return dir, nil
		}
	}
	return "", nil
}

func newStrategy(name string, client *Client, depth int) (Strategy, error) {
	switch name {
	case "server", "":
		return serverStrategy{client: client}, nil
	case "local":
		if depth < engine.MinSearchDepth || depth > engine.MaxSearchDepth {
			return nil, fmt.Errorf("depth must be between %d and %d, got %d", engine.MinSearchDepth, engine.MaxSearchDepth, depth)
		}
		return localStrategy{depth: depth}, nil
	case "corner":
		return cornerStrategy{}, nil
	default:
		return nil, fmt.Errorf("unknown strategy %q (want server, local or corner)", name)
	}
}
