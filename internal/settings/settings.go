// Package settings persists the panel's user settings in the index.
package settings

import (
	"encoding/json"
	"fmt"
	"sync"
)

// storageKey is the row in the index settings table holding the blob.
const storageKey = "relyaml.settings"

// Settings are the user-tunable panel options.
type Settings struct {
	MySetting     string `json:"mySetting"`
	ToggleSetting bool   `json:"toggleSetting"`
}

// Defaults returns the settings used when nothing is persisted.
func Defaults() Settings {
	return Settings{
		MySetting:     "default",
		ToggleSetting: true,
	}
}

// KV is the key/value backend, satisfied by *index.DB.
type KV interface {
	GetSetting(key string) (string, bool, error)
	PutSetting(key, value string) error
}

// Store loads and saves Settings.
type Store struct {
	kv KV

	mu      sync.RWMutex
	current Settings
}

// NewStore returns a Store holding defaults until Load is called.
func NewStore(kv KV) *Store {
	return &Store{kv: kv, current: Defaults()}
}

// Load reads the persisted blob and merges it over defaults: keys absent
// from the blob keep their default value.
func (s *Store) Load() (Settings, error) {
	out := Defaults()
	raw, ok, err := s.kv.GetSetting(storageKey)
	if err != nil {
		return out, fmt.Errorf("settings: load: %w", err)
	}
	if ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &out); err != nil {
			return Defaults(), fmt.Errorf("settings: decode: %w", err)
		}
	}
	s.mu.Lock()
	s.current = out
	s.mu.Unlock()
	return out, nil
}

// Get returns the settings last loaded or saved.
func (s *Store) Get() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Save persists v.
func (s *Store) Save(v Settings) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("settings: encode: %w", err)
	}
	if err := s.kv.PutSetting(storageKey, string(data)); err != nil {
		return fmt.Errorf("settings: save: %w", err)
	}
	s.mu.Lock()
	s.current = v
	s.mu.Unlock()
	return nil
}

// Patch holds optional updates; nil fields are left unchanged.
type Patch struct {
	MySetting     *string `json:"mySetting"`
	ToggleSetting *bool   `json:"toggleSetting"`
}

// Apply merges p into the current settings and saves the result.
func (s *Store) Apply(p Patch) (Settings, error) {
	v := s.Get()
	if p.MySetting != nil {
		v.MySetting = *p.MySetting
	}
	if p.ToggleSetting != nil {
		v.ToggleSetting = *p.ToggleSetting
	}
	if err := s.Save(v); err != nil {
		return s.Get(), err
	}
	return v, nil
}
