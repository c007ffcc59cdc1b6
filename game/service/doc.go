// Package service provides the business logic layer for the 2048 game server.
//
// The service package implements:
//   - Multi-session game management
//   - Configuration loading through a ConfigManager
//   - Move processing with per-move events
//   - Planner suggestions and auto play
//   - Parallel headless benchmarks
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages game configuration loading and validation.
//
// Architecture:
//
// The service layer sits between the transports (HTTP/WebSocket/MCP) and the
// game engine. Each session owns its own engine; every state handed out is a
// copy, so transports can encode it while the session keeps playing.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr)
//
//	info, err := gameService.CreateSession(ctx, "classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.Move(ctx, info.ID, "left", false)
//	hint, err := gameService.Suggest(ctx, info.ID)
//	run, err := gameService.AutoPlay(ctx, info.ID, 100)
//
// Events:
//
// Successful moves report move, merge and spawn events, plus won the first
// time the target tile appears and game_over when no move is left. A move
// that changes nothing reports blocked; a reset reports reset.
package service
