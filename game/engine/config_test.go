package engine

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateGameConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *GameConfig)
		wantErr string
	}{
		{"valid", func(c *GameConfig) {}, ""},
		{"missing name", func(c *GameConfig) { c.Name = "" }, "name is required"},
		{"missing description", func(c *GameConfig) { c.Description = "" }, "description is required"},
		{"depth too low", func(c *GameConfig) { c.SearchDepth = 0 }, "search_depth"},
		{"depth too high", func(c *GameConfig) { c.SearchDepth = MaxSearchDepth + 1 }, "search_depth"},
		{"negative four chance", func(c *GameConfig) { c.FourProbability = -0.1 }, "four_probability"},
		{"four chance above one", func(c *GameConfig) { c.FourProbability = 1.5 }, "four_probability"},
		{"no start tiles", func(c *GameConfig) { c.StartTiles = 0 }, "start_tiles"},
		{"too many start tiles", func(c *GameConfig) { c.StartTiles = 17 }, "start_tiles"},
		{"target not power of two", func(c *GameConfig) { c.Target = 2000 }, "target"},
		{"target too small", func(c *GameConfig) { c.Target = 4 }, "target"},
		{"missing welcome", func(c *GameConfig) { c.Messages.Welcome = "" }, "messages.welcome"},
		{"missing game over", func(c *GameConfig) { c.Messages.GameOver = "" }, "messages.game_over"},
		{"victory without verb", func(c *GameConfig) { c.Messages.Victory = "You won" }, "messages.victory must contain"},
		{"game over without verb", func(c *GameConfig) { c.Messages.GameOver = "Done" }, "messages.game_over must contain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultGameConfig()
			tt.mutate(config)
			err := ValidateGameConfig(config)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	assert.Error(t, ValidateGameConfig(nil))
}

func TestInitGameStateFromConfig(t *testing.T) {
	state := InitGameStateFromConfig(nil, NewRand(1))
	assert.Equal(t, "classic", state.ConfigName)
	assert.Equal(t, DefaultStartTiles, state.Grid.TileCount())
	assert.False(t, state.GameOver)
	assert.NotNil(t, state.LastSpawn)
	assert.Equal(t, state.Grid.MaxTile(), state.MaxTile)

	config := DefaultGameConfig()
	config.StartTiles = MaxStartTiles
	config.FourProbability = 0
	state = InitGameStateFromConfig(config, NewRand(1))
	assert.Equal(t, 16, state.Grid.TileCount())
	// A board of sixteen 2s still has merges
	assert.False(t, state.GameOver)
	assert.Equal(t, 32, state.Grid.Sum())
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		in   string
		want Direction
	}{
		{"left", Left}, {"LEFT", Left}, {"a", Left}, {"l", Left},
		{"right", Right}, {"d", Right}, {"r", Right},
		{"up", Up}, {"w", Up}, {" Up ", Up},
		{"down", Down}, {"s", Down},
	}
	for _, tt := range tests {
		got, err := ParseDirection(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseDirection("north")
	assert.ErrorIs(t, err, ErrInvalidDirection)

	var d Direction
	require.NoError(t, json.Unmarshal([]byte(`"down"`), &d))
	assert.Equal(t, Down, d)
	out, err := json.Marshal(Up)
	require.NoError(t, err)
	assert.Equal(t, `"up"`, string(out))
}
