package engine

// Board geometry and game limits
const (
	Size = 4

	// Validation constants
	MinSearchDepth      = 1
	MaxSearchDepth      = 6
	DefaultSearchDepth  = 3
	MinStartTiles       = 1
	MaxStartTiles       = Size * Size
	DefaultStartTiles   = 2
	DefaultTarget       = 2048
	DefaultFourChance   = 0.1
	MaxBulkMoves        = 50
	MaxAutoPlayMoves    = 5000
	WebSocketBufferSize = 256
)

// Grid is a 4x4 board. Zero marks an empty cell, every other cell holds a
// power of two. Grid is a value type so assignment always yields a copy.
type Grid [Size][Size]int

// Direction is one of the four slide directions
type Direction int

const (
	Left Direction = iota
	Right
	Up
	Down
)

// Directions lists every direction in search and tie-break order
var Directions = [4]Direction{Left, Right, Up, Down}

// Position represents row,col coordinates on the grid
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Spawn describes a tile placed after a move
type Spawn struct {
	Position Position `json:"position"`
	Value    int      `json:"value"`
}

// MoveOutcome is the result of sliding a grid in one direction
type MoveOutcome struct {
	Grid       Grid `json:"grid"`
	Changed    bool `json:"changed"`
	ScoreDelta int  `json:"score_delta"`
}

// GameConfig represents the game configuration from JSON
type GameConfig struct {
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	SearchDepth     int     `json:"search_depth"`
	FourProbability float64 `json:"four_probability"`
	StartTiles      int     `json:"start_tiles"`
	Target          int     `json:"target"`
	Seed            int64   `json:"seed,omitempty"`
	Messages        struct {
		Welcome  string `json:"welcome"`
		Victory  string `json:"victory"`
		GameOver string `json:"game_over"`
		CantMove string `json:"cant_move"`
	} `json:"messages"`
}

// GameState represents the complete game state
type GameState struct {
	Grid          Grid     `json:"grid"`
	Score         int      `json:"score"`
	Moves         int      `json:"moves"`
	MaxTile       int      `json:"max_tile"`
	GameOver      bool     `json:"game_over"`
	Won           bool     `json:"won"`
	Message       string   `json:"message"`
	ConfigName    string   `json:"config_name"`
	LastSpawn     *Spawn   `json:"last_spawn,omitempty"`
	PossibleMoves []string `json:"possible_moves,omitempty"`
}

// Suggestion is the planner's view of a position: the chosen direction plus
// the per-direction results it was picked from. Illegal directions are nil.
type Suggestion struct {
	Direction       Direction        `json:"-"`
	Move            string           `json:"move"`
	Legal           bool             `json:"legal"`
	Depth           int              `json:"depth"`
	OriginalQuality float64          `json:"original_quality"`
	Best            SearchResult     `json:"best"`
	Results         [4]*SearchResult `json:"results"`
}
