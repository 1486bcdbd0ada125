package state

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lazycamel/lazycamel/internal/models"
	"gopkg.in/yaml.v3"
)

// State represents the persisted UI state
type State struct {
	// Last endpoint connected to
	Endpoint string `yaml:"endpoint,omitempty"`

	// Last active panel, by console id
	ActivePanel models.ConsoleID `yaml:"active_panel,omitempty"`

	// Text filter per panel
	Filters map[models.ConsoleID]string `yaml:"filters,omitempty"`

	// Options per console, restored as each subscription's initial options
	Options map[models.ConsoleID]models.Options `yaml:"options,omitempty"`
}

// DefaultState returns a new state with default values
func DefaultState() *State {
	return &State{
		ActivePanel: models.ConsoleRoute,
		Filters:     make(map[models.ConsoleID]string),
		Options:     make(map[models.ConsoleID]models.Options),
	}
}

// StatePath returns the full path to the state file
func StatePath() (string, error) {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "lazycamel", "state.yml"), nil
}

// Load loads the state from disk
func Load() (*State, error) {
	path, err := StatePath()
	if err != nil {
		return DefaultState(), err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultState(), nil
		}
		return DefaultState(), err
	}

	state := DefaultState()
	if err := yaml.Unmarshal(data, state); err != nil {
		return DefaultState(), fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if state.Filters == nil {
		state.Filters = make(map[models.ConsoleID]string)
	}
	if state.Options == nil {
		state.Options = make(map[models.ConsoleID]models.Options)
	}

	return state, nil
}

// Save writes the state to disk atomically
func Save(state *State) error {
	path, err := StatePath()
	if err != nil {
		return err
	}

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(state)
	if err != nil {
		return err
	}

	// Write atomically: write to temp file, then rename
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return err
	}

	return os.Rename(tmpPath, path)
}

// OptionsFor returns a copy of the saved options of a console, never nil
func (s *State) OptionsFor(id models.ConsoleID) models.Options {
	return s.Options[id].Clone()
}
