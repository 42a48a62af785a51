// Package limits manages the quota cap configuration with hot-reload support.
package limits

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Config holds the two quota caps as persisted in .config/limits.json.
type Config struct {
	DailyLimit        int `json:"dailyLimit"`
	ConversationLimit int `json:"conversationLimit"`
}

// Manager manages the limits configuration file with hot-reload support.
// Constructed once at startup and injected where needed.
type Manager struct {
	mu         sync.RWMutex
	config     Config
	configFile string
	watcher    *fsnotify.Watcher
	onChange   func(Config) // callback when config changes
}

// NewManager creates a limits config manager. If the config file does not
// exist yet, defaults are used and written out so operators have a file to
// edit.
func NewManager(configFile string, defaults Config) (*Manager, error) {
	if err := validateConfig(defaults); err != nil {
		return nil, fmt.Errorf("invalid default limits: %w", err)
	}

	m := &Manager{
		configFile: configFile,
		config:     defaults,
	}

	if err := m.loadConfig(); err != nil {
		log.Printf("⚠️ Limits config file not found, using defaults: %v", err)
		if err := m.saveConfig(); err != nil {
			log.Printf("⚠️ Failed to save default limits config: %v", err)
		}
	}

	if err := m.startWatcher(); err != nil {
		log.Printf("⚠️ Failed to start limits config watcher: %v", err)
	}

	return m, nil
}

// loadConfig loads configuration from file
func (m *Manager) loadConfig() error {
	data, err := os.ReadFile(m.configFile)
	if err != nil {
		return err
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return err
	}

	if err := validateConfig(config); err != nil {
		return err
	}

	m.mu.Lock()
	m.config = config
	m.mu.Unlock()

	log.Printf("✅ Limits config loaded: daily=%d, conversation=%d",
		config.DailyLimit, config.ConversationLimit)
	return nil
}

// saveConfig saves configuration to file
func (m *Manager) saveConfig() error {
	dir := filepath.Dir(m.configFile)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	m.mu.RLock()
	cfg := m.config
	m.mu.RUnlock()

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(m.configFile, data, 0644)
}

// startWatcher starts file change monitoring
func (m *Manager) startWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	m.watcher = watcher

	configBase := filepath.Base(m.configFile)

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				// We watch the directory; ignore unrelated files.
				if filepath.Base(event.Name) != configBase {
					continue
				}

				// Many editors update files via atomic rename/create, not only Write.
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
					log.Printf("📝 Limits config file updated, reloading...")
					if err := m.loadConfig(); err != nil {
						log.Printf("⚠️ Failed to reload limits config: %v", err)
						continue
					}

					m.mu.RLock()
					cfg := m.config
					cb := m.onChange
					m.mu.RUnlock()

					if cb != nil {
						cb(cfg)
					}
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("⚠️ Limits config watcher error: %v", err)
			}
		}
	}()

	// Watch the config file's directory to handle file creation
	dir := filepath.Dir(m.configFile)
	if err := watcher.Add(dir); err != nil {
		return watcher.Add(m.configFile)
	}
	return nil
}

// SetOnChangeCallback sets a callback function to be called when config changes
func (m *Manager) SetOnChangeCallback(callback func(Config)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = callback
}

// GetConfig returns the current configuration
func (m *Manager) GetConfig() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// UpdateConfig updates the configuration and saves to file
func (m *Manager) UpdateConfig(config Config) error {
	if err := validateConfig(config); err != nil {
		return err
	}

	m.mu.Lock()
	m.config = config
	cb := m.onChange
	m.mu.Unlock()

	if err := m.saveConfig(); err != nil {
		return err
	}

	log.Printf("✅ Limits config updated: daily=%d, conversation=%d",
		config.DailyLimit, config.ConversationLimit)

	if cb != nil {
		cb(config)
	}

	return nil
}

// Close closes the config manager and stops the file watcher
func (m *Manager) Close() error {
	if m.watcher != nil {
		return m.watcher.Close()
	}
	return nil
}

func validateConfig(config Config) error {
	const maxLimit = 100000

	if config.DailyLimit <= 0 {
		return fmt.Errorf("dailyLimit must be positive")
	}
	if config.DailyLimit > maxLimit {
		return fmt.Errorf("dailyLimit cannot exceed %d", maxLimit)
	}
	if config.ConversationLimit <= 0 {
		return fmt.Errorf("conversationLimit must be positive")
	}
	if config.ConversationLimit > maxLimit {
		return fmt.Errorf("conversationLimit cannot exceed %d", maxLimit)
	}
	return nil
}
