// Package engine provides the core logic for the 2048 sliding-tile game and
// the lookahead planner that plays it.
//
// The engine package implements:
//   - Grid transformation: sliding and merging tiles in four directions
//   - Terminal detection without simulating moves
//   - The spawn model, random for real play and enumerated for search
//   - A monotonicity and emptiness quality heuristic
//   - An expectimax-style planner that picks a direction
//   - Game state management and configuration validation
//
// Core Types:
//
// Grid is a 4x4 value array; copying it is assignment, so every simulated
// move works on a private board. ApplyMove, IsTerminal, SpawnRandom and
// ChooseMove are pure functions over Grid. GameEngine wraps them into a
// playable game with a score, a seeded random source and a GameConfig
// loaded from JSON.
//
// Usage:
//
//	gameEngine, err := engine.NewEngine(engine.DefaultGameConfig())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Ask the planner, then play its move
//	dir := engine.ChooseMove(gameEngine.GetGrid(), 3)
//	gameEngine.MoveDirection(dir)
//
// Planner:
//
// For each legal direction the planner places a hypothetical 2 on every
// empty cell and recurses to the configured depth. A direction is scored by
// the worst quality it can reach, the share of spawns that reach it and the
// mean quality lost from the starting position. The direction with the
// least expected loss wins, then the highest worst-case quality, then the
// least probable worst case. Ties go to Left, Right, Up, Down in that order.
// Real games spawn a 4 one time in ten; the planner only considers 2s.
package engine
