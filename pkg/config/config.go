package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"appfactory/pkg/types"
)

const (
	DefaultPath    = "config.json"
	DefaultAppsDir = "saved_apps"
	DefaultLogPath = "appfactory.log"
)

// Config is the persisted settings record.
type Config struct {
	APIKey     string           `json:"api_key"`
	Appearance types.Appearance `json:"appearance"`
}

func Default() Config {
	return Config{APIKey: "", Appearance: types.Dark}
}

// Store reads and writes a single Config as a JSON file.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	if path == "" {
		path = DefaultPath
	}
	return &Store{path: path}
}

func (s *Store) Path() string {
	return s.path
}

// Load returns the persisted record. When no file exists yet the default
// record is written and returned.
func (s *Store) Load() (Config, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg := Default()
		if err := s.Save(cfg); err != nil {
			return Config{}, err
		}
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", s.path, err)
	}
	if !cfg.Appearance.Valid() {
		cfg.Appearance = types.Dark
	}
	return cfg, nil
}

// Save overwrites the file with cfg in full.
func (s *Store) Save(cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "    ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Settings is the shared, explicitly passed configuration object. Components
// that depend on a setting subscribe and are notified synchronously on Update.
type Settings struct {
	mu          sync.RWMutex
	store       *Store
	current     Config
	subscribers []func(Config)
}

// Open loads the record from store and wraps it.
func Open(store *Store) (*Settings, error) {
	cfg, err := store.Load()
	if err != nil {
		return nil, err
	}
	return &Settings{store: store, current: cfg}, nil
}

func (s *Settings) Current() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Subscribe registers fn to run after every successful Update.
func (s *Settings) Subscribe(fn func(Config)) {
	s.mu.Lock()
	s.subscribers = append(s.subscribers, fn)
	s.mu.Unlock()
}

// Update persists cfg and then notifies subscribers in registration order.
// Nothing is notified if the write fails.
func (s *Settings) Update(cfg Config) error {
	if !cfg.Appearance.Valid() {
		return fmt.Errorf("unknown appearance %q", cfg.Appearance)
	}
	if err := s.store.Save(cfg); err != nil {
		return err
	}

	s.mu.Lock()
	s.current = cfg
	subs := make([]func(Config), len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(cfg)
	}
	return nil
}
