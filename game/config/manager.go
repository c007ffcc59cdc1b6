package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/wricardo/game2048/game/engine"
	"github.com/wricardo/game2048/game/service"
)

var (
	ErrConfigNotFound = errors.New("configuration not found")
	ErrInvalidConfig  = errors.New("invalid configuration")
)

// DefaultConfigName is the preset used when a session names none
const DefaultConfigName = "classic"

// Manager serves the JSON presets in one directory, caching each after its
// first successful load.
type Manager struct {
	configDir     string
	defaultName   string
	defaultConfig *engine.GameConfig
	configs       map[string]*engine.GameConfig
	mu            sync.RWMutex
}

// NewManager fails when configDir is missing. An empty directory is fine:
// the built-in rules become the default.
func NewManager(configDir string) (*Manager, error) {
	if info, err := os.Stat(configDir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("config directory does not exist: %s", configDir)
	}

	m := &Manager{
		configDir:   configDir,
		defaultName: DefaultConfigName,
		configs:     make(map[string]*engine.GameConfig),
	}

	m.loadDefaultConfig()
	return m, nil
}

// presetID strips an optional .json suffix and rejects anything that could
// escape the directory.
func presetID(name string) (string, bool) {
	id := strings.TrimSuffix(name, ".json")
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return "", false
	}
	return id, true
}

func readPreset(path string) (*engine.GameConfig, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrConfigNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read preset: %w", err)
	}

	config := new(engine.GameConfig)
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, filepath.Base(path), err)
	}
	if err := engine.ValidateGameConfig(config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return config, nil
}

// LoadConfig returns the preset stored as <name>.json
func (m *Manager) LoadConfig(name string) (*engine.GameConfig, error) {
	id, ok := presetID(name)
	if !ok {
		return nil, fmt.Errorf("%w: bad config name %q", ErrConfigNotFound, name)
	}

	m.mu.RLock()
	cached, hit := m.configs[id]
	m.mu.RUnlock()
	if hit {
		return cached, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if cached, hit := m.configs[id]; hit {
		return cached, nil
	}

	config, err := readPreset(filepath.Join(m.configDir, id+".json"))
	if err != nil {
		return nil, err
	}
	m.configs[id] = config
	return config, nil
}

// ListConfigs describes every valid preset, sorted by ID. Invalid files are
// skipped.
func (m *Manager) ListConfigs() ([]*service.ConfigInfo, error) {
	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		return nil, fmt.Errorf("list presets: %w", err)
	}

	var configs []*service.ConfigInfo

	for _, entry := range entries {
		name, isJSON := strings.CutSuffix(entry.Name(), ".json")
		if entry.IsDir() || !isJSON {
			continue
		}

		config, err := m.LoadConfig(name)
		if err != nil {
			log.Debug().Err(err).Str("config", name).Msg("skipping config")
			continue
		}

		configs = append(configs, &service.ConfigInfo{
			Filename:        entry.Name(),
			ConfigID:        name,
			Name:            config.Name,
			Description:     config.Description,
			SearchDepth:     config.SearchDepth,
			Target:          config.Target,
			FourProbability: config.FourProbability,
			Seeded:          config.Seed != 0,
		})
	}

	slices.SortFunc(configs, func(a, b *service.ConfigInfo) int { return strings.Compare(a.ConfigID, b.ConfigID) })
	return configs, nil
}

func (m *Manager) GetDefault() *engine.GameConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultConfig
}

// SetDefault switches the default to a named preset. The choice survives
// RefreshCache.
func (m *Manager) SetDefault(name string) error {
	config, err := m.LoadConfig(name)
	if err != nil {
		return err
	}
	id, _ := presetID(name)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultName = id
	m.defaultConfig = config
	return nil
}

// RefreshCache drops every cached configuration and reloads the default from disk
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	m.configs = make(map[string]*engine.GameConfig)
	m.mu.Unlock()

	m.loadDefaultConfig()
	return nil
}

// ReloadConfig forces a single configuration to be read from disk again.
// On failure the preset is no longer served.
func (m *Manager) ReloadConfig(name string) error {
	id, ok := presetID(name)
	if !ok {
		return fmt.Errorf("%w: bad config name %q", ErrConfigNotFound, name)
	}

	m.mu.Lock()
	delete(m.configs, id)
	m.mu.Unlock()

	config, err := m.LoadConfig(id)
	if err != nil {
		return err
	}

	m.mu.Lock()
	if m.defaultName == id {
		m.defaultConfig = config
	}
	m.mu.Unlock()
	return nil
}

func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.configs)
}

// loadDefaultConfig picks the chosen default (classic.json unless SetDefault
// changed it), then the first valid preset, then the built-in rules.
func (m *Manager) loadDefaultConfig() {
	m.mu.RLock()
	name := m.defaultName
	m.mu.RUnlock()

	config, err := m.LoadConfig(name)
	if err != nil {
		configs, listErr := m.ListConfigs()
		if listErr == nil && len(configs) > 0 {
			config, err = m.LoadConfig(configs[0].ConfigID)
		}
		if err != nil {
			log.Debug().Str("dir", m.configDir).Msg("no usable config presets, using built-in rules")
			config = engine.DefaultGameConfig()
		}
	}

	m.mu.Lock()
	m.defaultConfig = config
	m.mu.Unlock()
}

// SaveConfig validates config and writes it as <name>.json, replacing any
// cached copy.
func (m *Manager) SaveConfig(name string, config *engine.GameConfig) error {
	if err := engine.ValidateGameConfig(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	id, ok := presetID(name)
	if !ok {
		return fmt.Errorf("%w: bad config name %q", ErrInvalidConfig, name)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(m.configDir, id+".json"), data, 0644); err != nil {
		return fmt.Errorf("write preset %s: %w", id, err)
	}

	m.mu.Lock()
	m.configs[id] = config
	m.mu.Unlock()
	return nil
}
