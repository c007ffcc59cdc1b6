package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/game2048/game/engine"
	"github.com/wricardo/game2048/game/service"
)

const snapshotExt = ".json"

// FilePersistence keeps one JSON snapshot per session in a directory
type FilePersistence struct {
	sessionsDir   string
	configManager service.ConfigManager
}

// NewFilePersistence prepares dir for snapshots, creating it when missing
func NewFilePersistence(dir string, configs service.ConfigManager) (*FilePersistence, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create sessions directory %s: %w", dir, err)
	}
	return &FilePersistence{sessionsDir: dir, configManager: configs}, nil
}

func (fp *FilePersistence) snapshotPath(id string) string {
	return filepath.Join(fp.sessionsDir, strings.ToLower(id)+snapshotExt)
}

// Save writes the session's current board. The file is replaced atomically
// so a crash mid-write leaves the previous snapshot intact.
func (fp *FilePersistence) Save(session *service.Session) error {
	if session == nil {
		return errors.New("save: nil session")
	}

	snapshot := PersistedSessionData{
		ID:             session.ID,
		ConfigName:     fp.presetID(session.Config.Name),
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
		GameState:      session.Engine.GetState(),
	}
	encoded, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session %s: %w", session.ID, err)
	}

	dst := fp.snapshotPath(session.ID)
	if err := os.WriteFile(dst+".tmp", encoded, 0644); err != nil {
		return fmt.Errorf("write session %s: %w", session.ID, err)
	}
	return os.Rename(dst+".tmp", dst)
}

// Load rebuilds a session from its snapshot, reloading the preset it was
// started with.
func (fp *FilePersistence) Load(id string) (*service.Session, error) {
	raw, err := os.ReadFile(fp.snapshotPath(id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read session %s: %w", id, err)
	}

	var snapshot PersistedSessionData
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	if snapshot.GameState == nil {
		return nil, fmt.Errorf("session file %s has no game state", id)
	}

	cfg, err := fp.configManager.LoadConfig(snapshot.ConfigName)
	if err != nil {
		return nil, fmt.Errorf("session %s uses preset %q: %w", id, snapshot.ConfigName, err)
	}
	eng, err := engine.NewEngine(cfg)
	if err != nil {
		return nil, err
	}
	if err := eng.SetState(snapshot.GameState); err != nil {
		return nil, fmt.Errorf("restore session %s: %w", id, err)
	}

	return &service.Session{
		ID:             snapshot.ID,
		Engine:         eng,
		Config:         cfg,
		CreatedAt:      snapshot.CreatedAt,
		LastAccessedAt: snapshot.LastAccessedAt,
	}, nil
}

// Delete removes the snapshot, ErrSessionNotFound when there is none
func (fp *FilePersistence) Delete(id string) error {
	err := os.Remove(fp.snapshotPath(id))
	if errors.Is(err, fs.ErrNotExist) {
		return ErrSessionNotFound
	}
	return err
}

// ListAll returns the IDs of every snapshot in the directory
func (fp *FilePersistence) ListAll() ([]string, error) {
	entries, err := os.ReadDir(fp.sessionsDir)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		if id, ok := strings.CutSuffix(entry.Name(), snapshotExt); ok && !entry.IsDir() {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (fp *FilePersistence) Exists(id string) bool {
	info, err := os.Stat(fp.snapshotPath(id))
	return err == nil && !info.IsDir()
}

// presetID maps a preset's display name back to its file ID. Names that
// match no preset are taken to be IDs already.
func (fp *FilePersistence) presetID(name string) string {
	presets, err := fp.configManager.ListConfigs()
	if err != nil {
		return name
	}
	for _, p := range presets {
		if p.Name == name {
			return p.ConfigID
		}
	}
	return name
}
