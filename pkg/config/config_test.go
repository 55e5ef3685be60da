package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"appfactory/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWritesDefaultWhenMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	store := NewStore(path)

	cfg, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, Config{APIKey: "", Appearance: types.Dark}, cfg)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var onDisk map[string]string
	require.NoError(t, json.Unmarshal(data, &onDisk))
	assert.Equal(t, map[string]string{"api_key": "", "appearance": "dark"}, onDisk)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "config.json"))
	want := Config{APIKey: "gsk_test", Appearance: types.Light}

	require.NoError(t, store.Save(want))
	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)

	require.NoError(t, store.Save(got))
	again, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestLoadNormalisesUnknownAppearance(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"api_key":"k","appearance":"system"}`), 0o600))

	cfg, err := NewStore(path).Load()
	require.NoError(t, err)
	assert.Equal(t, "k", cfg.APIKey)
	assert.Equal(t, types.Dark, cfg.Appearance)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := NewStore(path).Load()
	assert.Error(t, err)
}

func TestSettingsUpdateNotifiesSubscribers(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "config.json"))
	settings, err := Open(store)
	require.NoError(t, err)

	var calls []string
	settings.Subscribe(func(c Config) { calls = append(calls, "llm:"+c.APIKey) })
	settings.Subscribe(func(c Config) { calls = append(calls, "ui:"+string(c.Appearance)) })

	next := Config{APIKey: "abc", Appearance: types.Light}
	require.NoError(t, settings.Update(next))

	assert.Equal(t, []string{"llm:abc", "ui:light"}, calls)
	assert.Equal(t, next, settings.Current())

	persisted, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, next, persisted)
}

func TestSettingsUpdateRejectsUnknownAppearance(t *testing.T) {
	settings, err := Open(NewStore(filepath.Join(t.TempDir(), "config.json")))
	require.NoError(t, err)

	notified := false
	settings.Subscribe(func(Config) { notified = true })

	err = settings.Update(Config{APIKey: "abc", Appearance: "neon"})
	assert.Error(t, err)
	assert.False(t, notified)
	assert.Equal(t, Default(), settings.Current())
}

func TestSettingsUpdateWriteFailureSkipsNotify(t *testing.T) {
	dir := t.TempDir()
	// a directory where the file should be makes the write fail
	path := filepath.Join(dir, "config.json")
	store := NewStore(path)
	settings, err := Open(store)
	require.NoError(t, err)
	require.NoError(t, os.Remove(path))
	require.NoError(t, os.Mkdir(path, 0o755))

	notified := false
	settings.Subscribe(func(Config) { notified = true })

	err = settings.Update(Config{APIKey: "abc", Appearance: types.Dark})
	assert.Error(t, err)
	assert.False(t, notified)
	assert.Equal(t, "", settings.Current().APIKey)
}

func TestNewStoreDefaultPath(t *testing.T) {
	assert.Equal(t, DefaultPath, NewStore("").Path())
	assert.Equal(t, "/tmp/x.json", NewStore("/tmp/x.json").Path())
}
