package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// FileName is the name of the settings file inside the configuration directory.
const FileName = Application + ".json"

// DefaultSystemPrompt is offered when no settings have been saved yet.
const DefaultSystemPrompt = "You are a language translation assistant. Translate the given text into Japanese, keeping its formatting intact.\nLeave markdown and other markup as it is."

// AppConfig holds the persisted user settings.
type AppConfig struct {
	AnthropicAPIKey string `json:"anthropicApiKey"`
	SystemPrompt    string `json:"systemPrompt"`
}

// record is the on-disk shape used for decoding. Pointer fields tell a missing
// key apart from an empty string, so partial records can be rejected.
type record struct {
	AnthropicAPIKey *string `json:"anthropicApiKey"`
	SystemPrompt    *string `json:"systemPrompt"`

	// Keys written by earlier builds of the app.
	LegacyAnthropicAPIKey *string `json:"anthropic_api_key"`
	LegacySystemPrompt    *string `json:"system_prompt"`
}

// Decode parses data into a complete AppConfig. Unknown keys are ignored.
// It fails if the document is not a JSON object or either field is missing
// or not a string.
func Decode(data []byte) (AppConfig, error) {
	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		return AppConfig{}, fmt.Errorf("invalid settings JSON: %w", err)
	}

	switch {
	case r.AnthropicAPIKey != nil && r.SystemPrompt != nil:
		return AppConfig{AnthropicAPIKey: *r.AnthropicAPIKey, SystemPrompt: *r.SystemPrompt}, nil
	case r.AnthropicAPIKey == nil && r.SystemPrompt == nil &&
		r.LegacyAnthropicAPIKey != nil && r.LegacySystemPrompt != nil:
		return AppConfig{AnthropicAPIKey: *r.LegacyAnthropicAPIKey, SystemPrompt: *r.LegacySystemPrompt}, nil
	case r.AnthropicAPIKey == nil:
		return AppConfig{}, fmt.Errorf("settings are missing field %q", "anthropicApiKey")
	default:
		return AppConfig{}, fmt.Errorf("settings are missing field %q", "systemPrompt")
	}
}

// Store loads and saves AppConfig in the per-user configuration directory.
// It keeps no state besides how to find that directory, which is resolved
// again on every call.
type Store struct {
	dirs      ProjectDirs
	configDir string
}

// Option configures a Store.
type Option func(*Store)

// WithDirs sets the application identity used to resolve the directory.
func WithDirs(dirs ProjectDirs) Option {
	return func(s *Store) { s.dirs = dirs }
}

// WithConfigDir pins the configuration directory, bypassing platform lookup.
func WithConfigDir(dir string) Option {
	return func(s *Store) { s.configDir = dir }
}

// NewStore creates a store for this application.
func NewStore(opts ...Option) *Store {
	s := &Store{dirs: DefaultProjectDirs()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the configuration directory.
func (s *Store) Dir() (string, error) {
	if s.configDir != "" {
		return s.configDir, nil
	}
	return s.dirs.ConfigDir()
}

// Path returns the path of the settings file.
func (s *Store) Path() (string, error) {
	dir, err := s.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

// Load reads the saved settings. The second return value is false when no
// usable settings exist: unresolvable directory, missing or unreadable file,
// or contents that do not form a complete record. None of these are errors;
// a fresh install simply has nothing saved yet.
func (s *Store) Load() (AppConfig, bool) {
	path, err := s.Path()
	if err != nil {
		log.Printf("Config: cannot resolve settings path: %v", err)
		return AppConfig{}, false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Config: cannot read '%s': %v", path, err)
		}
		return AppConfig{}, false
	}

	cfg, err := Decode(data)
	if err != nil {
		log.Printf("Config: ignoring '%s': %v", path, err)
		return AppConfig{}, false
	}
	return cfg, true
}

// Save replaces the saved settings with cfg. The directory is created when
// missing. The record is written to a temporary file and renamed over the
// target, so readers see either the old or the new record.
func (s *Store) Save(cfg AppConfig) error {
	dir, err := s.Dir()
	if err != nil {
		return fmt.Errorf("failed to resolve configuration directory: %w", err)
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create configuration directory '%s': %w", dir, err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	path := filepath.Join(dir, FileName)
	tmp, err := os.CreateTemp(dir, FileName+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create settings file in '%s': %w", dir, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once renamed

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write settings file '%s': %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to flush settings file '%s': %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close settings file '%s': %w", path, err)
	}
	if err := os.Chmod(tmpPath, 0o600); err != nil {
		return fmt.Errorf("failed to set permissions on '%s': %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to replace settings file '%s': %w", path, err)
	}

	log.Printf("Config: settings saved to '%s'", path)
	return nil
}
