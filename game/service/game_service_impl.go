package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wricardo/game2048/game/engine"
)

// ErrNoSuchConfig is returned when a session asks for a preset that does not exist
var ErrNoSuchConfig = errors.New("config not found")

// gameServiceImpl implements the GameService interface. It holds no lock of
// its own: every operation on a session runs under that session's lock, so
// different sessions never wait on each other.
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
}

// getConfigID returns the config_id for a given display name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "default"
	}
	return configName
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	var config *engine.GameConfig
	var err error
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			availableConfigs, listErr := s.configs.ListConfigs()
			if listErr == nil && len(availableConfigs) > 0 {
				configIDs := make([]string, 0, len(availableConfigs))
				for _, cfg := range availableConfigs {
					configIDs = append(configIDs, cfg.ConfigID)
				}
				return nil, fmt.Errorf("%w: '%s' (available: %v): %v", ErrNoSuchConfig, configName, configIDs, err)
			}
			return nil, fmt.Errorf("%w: '%s': %v", ErrNoSuchConfig, configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	// Session manager generates the ID
	sess, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	configID := configName
	if configID == "" {
		configID = s.getConfigID(config.Name)
	}

	log.Info().Str("session", sess.ID).Str("config", configID).Msg("session created")

	sess.Lock()
	defer sess.Unlock()
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     configID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      snapshot(sess.Engine.GetState()),
		GameConfig:     sess.Config,
	}, nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	sess, err := s.acquire(sessionID)
	if err != nil {
		return nil, err
	}
	defer sess.Unlock()

	return s.sessionInfo(sess), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		sess.Lock()
		result = append(result, s.sessionInfo(sess))
		sess.Unlock()
	}

	slices.SortFunc(result, func(a, b *SessionInfo) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	return s.sessions.Delete(sessionID)
}

// Move executes a single move for a session
func (s *gameServiceImpl) Move(ctx context.Context, sessionID, direction string, reset bool) (*MoveResult, error) {
	dir, err := engine.ParseDirection(direction)
	if err != nil {
		return nil, err
	}

	sess, err := s.acquire(sessionID)
	if err != nil {
		return nil, err
	}
	defer sess.Unlock()

	events := []GameEvent{}
	if reset {
		sess.Engine.Reset()
		events = append(events, resetEvent())
	}

	step, stepEvents := play(sess.Engine, dir, 1)
	events = append(events, stepEvents...)
	state := sess.Engine.GetState()

	s.persist(sessionID, "move")

	return &MoveResult{
		Success:    step.Success,
		GameState:  snapshot(state),
		Message:    state.Message,
		Events:     events,
		Step:       &step,
		ScoreDelta: step.ScoreDelta,
	}, nil
}

// BulkMove executes multiple moves in sequence
func (s *gameServiceImpl) BulkMove(ctx context.Context, sessionID string, moves []string, reset bool) (*BulkMoveResult, error) {
	sess, err := s.acquire(sessionID)
	if err != nil {
		return nil, err
	}
	defer sess.Unlock()

	result := &BulkMoveResult{
		RequestedMoves: len(moves),
		Events:         make([]GameEvent, 0),
		Success:        true,
	}

	if reset {
		sess.Engine.Reset()
		result.Events = append(result.Events, resetEvent())
	}
	result.StartScore = sess.Engine.GetScore()

	// Limit moves to prevent abuse
	if len(moves) > engine.MaxBulkMoves {
		result.Truncated = true
		result.Limit = engine.MaxBulkMoves
		moves = moves[:engine.MaxBulkMoves]
	}

	for i, move := range moves {
		if sess.Engine.IsGameOver() {
			result.StopReasonCode = StopGameOver
			result.StoppedReason = "game over"
			result.StoppedOnMove = i + 1
			break
		}

		dir, err := engine.ParseDirection(move)
		if err != nil {
			result.Success = false
			result.StopReasonCode = StopInvalid
			result.StoppedReason = fmt.Sprintf("move %d: unknown direction %q", i+1, move)
			result.StoppedOnMove = i + 1
			break
		}

		step, events := play(sess.Engine, dir, i+1)
		result.Events = append(result.Events, events...)
		if !step.Success {
			result.Success = false
			result.StopReasonCode = StopBlocked
			result.StoppedReason = fmt.Sprintf("move %d blocked: %s", i+1, move)
			result.StoppedOnMove = i + 1
			break
		}

		result.MovesExecuted++
		result.Steps = append(result.Steps, step)
	}

	state := sess.Engine.GetState()
	result.GameState = snapshot(state)
	result.EndScore = state.Score
	result.ScoreDelta = state.Score - result.StartScore
	result.GameOver = state.GameOver
	result.Message = state.Message
	result.PossibleMoves = sess.Engine.GetPossibleMoves()

	if result.GameOver && result.StopReasonCode == "" {
		result.StopReasonCode = StopGameOver
	}

	s.persist(sessionID, "bulk move")

	return result, nil
}

// Reset resets a game session to initial state
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	sess, err := s.acquire(sessionID)
	if err != nil {
		return nil, err
	}
	defer sess.Unlock()

	state := sess.Engine.Reset()
	s.persist(sessionID, "reset")

	return snapshot(state), nil
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	sess, err := s.acquire(sessionID)
	if err != nil {
		return nil, err
	}
	defer sess.Unlock()

	return snapshot(sess.Engine.GetState()), nil
}

// Suggest runs the planner on the session's board without changing it
func (s *gameServiceImpl) Suggest(ctx context.Context, sessionID string) (*SuggestResult, error) {
	sess, err := s.acquire(sessionID)
	if err != nil {
		return nil, err
	}
	defer sess.Unlock()

	suggestion := sess.Engine.Suggest()
	log.Debug().Str("session", sess.ID).Str("move", suggestion.Move).Bool("legal", suggestion.Legal).
		Float64("quality_loss", suggestion.Best.QualityLoss).Int("depth", suggestion.Depth).Msg("planner suggestion")

	return &SuggestResult{
		SessionID:  sess.ID,
		Suggestion: suggestion,
		GameState:  snapshot(sess.Engine.GetState()),
	}, nil
}

// AutoPlay lets the planner play up to maxMoves turns. The session lock is
// released between turns so state reads and watchers of the same session
// are not starved, and ctx is checked between turns.
func (s *gameServiceImpl) AutoPlay(ctx context.Context, sessionID string, maxMoves int) (*AutoPlayResult, error) {
	if maxMoves <= 0 || maxMoves > engine.MaxAutoPlayMoves {
		maxMoves = engine.MaxAutoPlayMoves
	}

	sess, err := s.acquire(sessionID)
	if err != nil {
		return nil, err
	}
	result := &AutoPlayResult{
		MovesRequested: maxMoves,
		Directions:     []string{},
		Events:         []GameEvent{},
		StartScore:     sess.Engine.GetScore(),
	}
	sess.Unlock()

	started := time.Now()

	for result.MovesExecuted < maxMoves {
		if err := ctx.Err(); err != nil {
			result.StopReasonCode = StopCancelled
			break
		}

		sess.Lock()
		if sess.Engine.IsGameOver() {
			sess.Unlock()
			result.StopReasonCode = StopGameOver
			break
		}
		dir := engine.ChooseMove(sess.Engine.GetGrid(), sess.Config.SearchDepth)
		step, events := play(sess.Engine, dir, result.MovesExecuted+1)
		sess.Unlock()

		result.Events = append(result.Events, events...)
		if !step.Success {
			result.StopReasonCode = StopBlocked
			break
		}
		result.MovesExecuted++
		result.Directions = append(result.Directions, step.Dir)
	}
	if result.StopReasonCode == "" {
		result.StopReasonCode = StopLimit
	}

	sess.Lock()
	state := sess.Engine.GetState()
	result.GameState = snapshot(state)
	result.EndScore = state.Score
	s.persist(sessionID, "auto play")
	sess.Unlock()

	result.ScoreDelta = result.EndScore - result.StartScore
	result.Duration = time.Since(started)

	log.Debug().
		Str("session", sessionID).
		Int("moves", result.MovesExecuted).
		Str("stop", result.StopReasonCode).
		Dur("took", result.Duration).
		Msg("auto play finished")

	return result, nil
}

// ListConfigs returns available game configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific game configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a game configuration to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	return s.configs.SaveConfig(configName, config)
}

func (s *gameServiceImpl) ReloadConfigs(ctx context.Context, configName string) error {
	if configName == "" {
		return s.configs.RefreshCache()
	}
	return s.configs.ReloadConfig(configName)
}

// acquire looks a session up, records the access and returns it locked.
// The caller unlocks it.
func (s *gameServiceImpl) acquire(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	s.touch(sessionID)
	sess.Lock()
	return sess, nil
}

// sessionInfo describes sess, whose lock the caller holds
func (s *gameServiceImpl) sessionInfo(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     s.getConfigID(sess.Config.Name),
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      snapshot(sess.Engine.GetState()),
		GameConfig:     sess.Config,
	}
}

// touch must run without the session lock held
func (s *gameServiceImpl) touch(sessionID string) {
	if err := s.sessions.UpdateLastAccessed(sessionID); err != nil {
		log.Debug().Err(err).Str("session", sessionID).Msg("failed to update last access")
	}
}

func (s *gameServiceImpl) persist(sessionID, after string) {
	if err := s.sessions.Save(sessionID); err != nil {
		log.Warn().Err(err).Str("session", sessionID).Msgf("failed to persist session after %s", after)
	}
}

// play applies one move to eng and describes what happened
func play(eng *engine.GameEngine, dir engine.Direction, idx int) (StepInfo, []GameEvent) {
	now := time.Now()
	before := eng.GetGrid()
	wasWon := eng.IsWon()

	out := eng.MoveDirection(dir)
	state := eng.GetState()

	step := StepInfo{
		Idx:     idx,
		Dir:     dir.String(),
		Success: out.Changed,
		MaxTile: state.MaxTile,
	}

	if !out.Changed {
		return step, []GameEvent{{
			Type:      EventBlocked,
			Message:   state.Message,
			Timestamp: now,
			Direction: dir.String(),
		}}
	}

	step.ScoreDelta = out.ScoreDelta
	step.Merges = before.TileCount() - out.Grid.TileCount()
	step.Won = state.Won && !wasWon

	events := []GameEvent{{
		Type:      EventMove,
		Message:   fmt.Sprintf("Moved %s", dir),
		Timestamp: now,
		Direction: dir.String(),
	}}

	if step.Merges > 0 {
		events = append(events, GameEvent{
			Type:      EventMerge,
			Message:   fmt.Sprintf("%d merge(s) for %d points", step.Merges, out.ScoreDelta),
			Timestamp: now,
			Direction: dir.String(),
			Value:     out.ScoreDelta,
		})
	}

	if state.LastSpawn != nil {
		sp := *state.LastSpawn
		step.Spawn = &sp
		pos := sp.Position
		events = append(events, GameEvent{
			Type:      EventSpawn,
			Message:   fmt.Sprintf("New %d at (%d,%d)", sp.Value, pos.Row, pos.Col),
			Timestamp: now,
			Position:  &pos,
			Value:     sp.Value,
		})
	}

	if step.Won {
		events = append(events, GameEvent{
			Type:      EventWon,
			Message:   state.Message,
			Timestamp: now,
			Value:     state.MaxTile,
		})
	}

	if state.GameOver {
		events = append(events, GameEvent{
			Type:      EventGameOver,
			Message:   state.Message,
			Timestamp: now,
			Value:     state.Score,
		})
	}

	return step, events
}

func resetEvent() GameEvent {
	return GameEvent{
		Type:      EventReset,
		Message:   "Game reset to initial state",
		Timestamp: time.Now(),
	}
}

// snapshot copies a state so callers can encode it while the session keeps playing
func snapshot(state *engine.GameState) *engine.GameState {
	if state == nil {
		return nil
	}
	c := *state
	if state.LastSpawn != nil {
		sp := *state.LastSpawn
		c.LastSpawn = &sp
	}
	c.PossibleMoves = slices.Clone(state.PossibleMoves)
	return &c
}
