// Package config provides configuration management for the 2048 game server.
//
// The config package handles:
//   - Loading game presets from JSON files
//   - Validation through engine.ValidateGameConfig
//   - Default preset selection
//   - Preset discovery, listing and saving
//
// Configuration Format:
//
// Presets are JSON files in the configs directory; the file name without
// extension is the config ID used when creating sessions. Each preset sets:
//   - search_depth: plies the planner looks ahead (1-6)
//   - four_probability: chance that a spawned tile is a 4
//   - start_tiles: tiles placed on a fresh board
//   - target: tile value that counts as a win (play continues afterwards)
//   - seed: optional fixed random seed for reproducible games
//   - messages: welcome, victory, game over and blocked-move texts
//
// Available Configurations:
//   - classic: standard rules, three-ply planner
//   - quick: target 512, two-ply planner
//   - deep: target 4096, four-ply planner
//   - seeded: classic rules with a fixed seed
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameConfig, err := manager.LoadConfig("quick")
//	defaultConfig := manager.GetDefault()
//	presets, err := manager.ListConfigs()
//
// When classic.json is missing the first valid preset becomes the default;
// with no valid preset at all the built-in engine.DefaultGameConfig is used.
package config
