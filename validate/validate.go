// Command validate checks the 2048 preset JSON files in the ../configs
// directory (or the directories given as arguments). It checks:
//   - JSON structure, unknown keys and required fields
//   - Search depth, start tiles and spawn probability ranges
//   - Target is a reachable power of two
//   - Required messages and their %d placeholders
//   - Playability: the engine accepts the preset and the planner can move
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/game2048/game/engine"
)

// maxReachableTile is the largest tile a 4x4 board can hold when 4s spawn
const maxReachableTile = 131072

// smokeMoves is how many planner moves the playability check makes
const smokeMoves = 10

// smokeDepth caps the search depth of the playability check
const smokeDepth = 2

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...any) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// validateConfig loads and validates a single preset file. Every problem
// found is reported, not only the first.
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	var config engine.GameConfig
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&config); err != nil {
		result.fail("Invalid JSON: %v", err)
		return result
	}

	if config.Name == "" {
		result.fail("name is required")
	}
	if config.Description == "" {
		result.fail("description is required")
	}

	if config.SearchDepth < engine.MinSearchDepth || config.SearchDepth > engine.MaxSearchDepth {
		result.fail("search_depth must be between %d and %d, got %d", engine.MinSearchDepth, engine.MaxSearchDepth, config.SearchDepth)
	}
	if config.StartTiles < engine.MinStartTiles || config.StartTiles > engine.MaxStartTiles {
		result.fail("start_tiles must be between %d and %d, got %d", engine.MinStartTiles, engine.MaxStartTiles, config.StartTiles)
	}
	if config.FourProbability < 0 || config.FourProbability > 1 {
		result.fail("four_probability must be between 0 and 1, got %g", config.FourProbability)
	}

	if config.Target < 8 || config.Target&(config.Target-1) != 0 {
		result.fail("target must be a power of two of at least 8, got %d", config.Target)
	} else if config.Target > maxReachableTile {
		result.fail("target %d can never be reached on a 4x4 board (max %d)", config.Target, maxReachableTile)
	}

	validateMessages(&result, config.Messages.Welcome, config.Messages.Victory, config.Messages.GameOver, config.Messages.CantMove)

	// Only play presets that passed the static checks
	if result.Valid {
		playResult := validatePlayable(&config)
		if !playResult.Valid {
			result.Valid = false
		}
		result.Errors = append(result.Errors, playResult.Errors...)
	}

	if result.Valid {
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Name: %s", config.Name))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Target: %d", config.Target))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Search depth: %d", config.SearchDepth))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Start tiles: %d, four chance %.0f%%", config.StartTiles, config.FourProbability*100))
		if config.Seed != 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("✓ Fixed seed: %d", config.Seed))
		}
		if config.SearchDepth >= 5 {
			result.Errors = append(result.Errors, fmt.Sprintf("⚠ Search depth %d is slow for auto play", config.SearchDepth))
		}
	}

	return result
}

// validateMessages checks the four messages. Victory and game over are
// formatted with one integer, the others are shown verbatim.
func validateMessages(result *ValidationResult, welcome, victory, gameOver, cantMove string) {
	required := []struct {
		key, text string
	}{
		{"welcome", welcome},
		{"victory", victory},
		{"game_over", gameOver},
		{"cant_move", cantMove},
	}
	for _, m := range required {
		if m.text == "" {
			result.fail("Missing required message: %s", m.key)
		}
	}

	formatted := map[string]string{"victory": victory, "game_over": gameOver}
	for _, key := range []string{"victory", "game_over"} {
		text := formatted[key]
		if text == "" {
			continue
		}
		if n := countVerbs(text); n != 1 || !strings.Contains(text, "%d") {
			result.fail("messages.%s must contain exactly one %%d, got %q", key, text)
		}
	}

	for key, text := range map[string]string{"welcome": welcome, "cant_move": cantMove} {
		if countVerbs(text) > 0 {
			result.fail("messages.%s is shown as is and must not contain format verbs, got %q", key, text)
		}
	}
}

// countVerbs counts printf verbs, ignoring %% escapes
func countVerbs(s string) int {
	n := 0
	for i := 0; i < len(s)-1; i++ {
		if s[i] != '%' {
			continue
		}
		if s[i+1] == '%' {
			i++
			continue
		}
		n++
	}
	return n
}

// validatePlayable starts a game with the preset and lets the planner make a
// few moves. A preset without a seed is played with seed 1 so the check is
// repeatable.
func validatePlayable(config *engine.GameConfig) ValidationResult {
	result := ValidationResult{Valid: true, Errors: []string{}}

	cfg := *config
	if cfg.Seed == 0 {
		cfg.Seed = 1
	}
	// Deep searches cost seconds per move on an open board
	cfg.SearchDepth = min(cfg.SearchDepth, smokeDepth)

	eng, err := engine.NewEngine(&cfg)
	if err != nil {
		result.fail("Engine rejected preset: %v", err)
		return result
	}

	state := eng.GetState()
	if tiles := state.Grid.TileCount(); tiles != cfg.StartTiles {
		result.fail("Expected %d starting tiles, board has %d", cfg.StartTiles, tiles)
		return result
	}

	played := 0
	for ; played < smokeMoves; played++ {
		if _, ok := eng.AutoStep(); !ok {
			break
		}
	}

	// A full starting board can legitimately be locked
	if played == 0 && cfg.StartTiles < engine.MaxStartTiles {
		result.fail("Planner could not make a single move from the starting board")
		return result
	}

	result.Errors = append(result.Errors, fmt.Sprintf("✓ Smoke game: %d planner moves, score %d", played, eng.GetScore()))
	return result
}

// main validates every *.json file in the given directories (default
// ../configs), printing a concise report and exiting with non-zero status if
// any are invalid.
func main() {
	dirs := os.Args[1:]
	if len(dirs) == 0 {
		dirs = []string{"../configs"}
	}

	var files []string
	for _, dir := range dirs {
		matches, err := filepath.Glob(filepath.Join(dir, "*.json"))
		if err != nil {
			fmt.Printf("Error finding config files: %v\n", err)
			os.Exit(1)
		}
		files = append(files, matches...)
	}

	if len(files) == 0 {
		fmt.Printf("No presets found in %s\n", strings.Join(dirs, ", "))
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateConfig(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All presets are valid!")
	} else {
		fmt.Println("❌ Some presets have errors")
		os.Exit(1)
	}
}
