package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/wricardo/snake-game/game/engine"
	"github.com/wricardo/snake-game/game/service"
)

var (
	ErrConfigNotFound = service.ErrConfigNotFound
	ErrInvalidConfig  = service.ErrInvalidConfig
	ErrInvalidName    = fmt.Errorf("%w: bad name", service.ErrInvalidConfig)
)

// DefaultConfigName is the file loaded as the default configuration when present
const DefaultConfigName = "classic"

// Manager handles game configuration loading and caching
type Manager struct {
	configDir     string
	defaultConfig *engine.Config
	configs       map[string]*engine.Config
	mu            sync.RWMutex
}

// NewManager creates a new configuration manager
func NewManager(configDir string) (*Manager, error) {
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("config directory does not exist: %s", configDir)
	}

	m := &Manager{
		configDir: configDir,
		configs:   make(map[string]*engine.Config),
	}
	m.defaultConfig = m.pickDefault()

	return m, nil
}

// configID strips the .json extension and rejects names that escape the directory
func configID(name string) (string, error) {
	id := strings.TrimSuffix(strings.TrimSpace(name), ".json")
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return id, nil
}

// LoadConfig loads a configuration by name, with or without the .json extension
func (m *Manager) LoadConfig(name string) (*engine.Config, error) {
	id, err := configID(name)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	if config, exists := m.configs[id]; exists {
		m.mu.RUnlock()
		return config, nil
	}
	m.mu.RUnlock()

	config, err := m.readConfig(id)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// Another caller may have loaded it meanwhile
	if cached, exists := m.configs[id]; exists {
		return cached, nil
	}
	m.configs[id] = config
	return config, nil
}

func (m *Manager) readConfig(id string) (*engine.Config, error) {
	configPath := filepath.Join(m.configDir, id+".json")

	config, err := engine.LoadConfig(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrConfigNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return config, nil
}

// ReloadConfig drops the cached copy of a configuration and reads it again from disk
func (m *Manager) ReloadConfig(name string) error {
	id, err := configID(name)
	if err != nil {
		return err
	}

	config, err := m.readConfig(id)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.configs[id] = config
	m.mu.Unlock()
	return nil
}

// ValidateConfig checks a configuration without saving it
func (m *Manager) ValidateConfig(config *engine.Config) error {
	if err := engine.ValidateConfig(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// ListConfigs returns information about all available configurations
func (m *Manager) ListConfigs() ([]*service.ConfigInfo, error) {
	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	var configs []*service.ConfigInfo

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		name := strings.TrimSuffix(entry.Name(), ".json")

		config, err := m.LoadConfig(name)
		if err != nil {
			// Skip invalid configs
			continue
		}

		configs = append(configs, &service.ConfigInfo{
			Filename:       entry.Name(),
			ConfigID:       name, // This is the identifier to use for session creation
			Name:           config.Name,
			Description:    config.Description,
			GridSize:       config.GridSize,
			TickIntervalMs: config.TickIntervalMs,
			FoodReward:     config.FoodReward,
		})
	}

	sort.Slice(configs, func(i, j int) bool {
		return configs[i].ConfigID < configs[j].ConfigID
	})
	return configs, nil
}

// GetDefault returns the default configuration
func (m *Manager) GetDefault() *engine.Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultConfig
}

// SetDefault sets the default configuration by name
func (m *Manager) SetDefault(name string) error {
	config, err := m.LoadConfig(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultConfig = config
	return nil
}

// RefreshCache drops every cached configuration and picks the default again
func (m *Manager) RefreshCache() {
	m.mu.Lock()
	m.configs = make(map[string]*engine.Config)
	m.mu.Unlock()

	config := m.pickDefault()

	m.mu.Lock()
	m.defaultConfig = config
	m.mu.Unlock()
}

// pickDefault prefers classic.json, then the first valid file, then engine.DefaultConfig
func (m *Manager) pickDefault() *engine.Config {
	if config, err := m.LoadConfig(DefaultConfigName); err == nil {
		return config
	}

	configs, err := m.ListConfigs()
	if err == nil && len(configs) > 0 {
		if config, err := m.LoadConfig(configs[0].ConfigID); err == nil {
			return config
		}
	}

	return engine.DefaultConfig()
}

// SaveConfig saves a configuration to disk
func (m *Manager) SaveConfig(name string, config *engine.Config) error {
	id, err := configID(name)
	if err != nil {
		return err
	}
	if err := m.ValidateConfig(config); err != nil {
		return err
	}

	configPath := filepath.Join(m.configDir, id+".json")

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	m.mu.Lock()
	m.configs[id] = config
	m.mu.Unlock()

	return nil
}
