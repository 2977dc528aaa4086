// Package store persists application state between CLI invocations.
//
// The state file is a single YAML document holding the row pool, the
// customer policies (with stable serial assignments), the ids of exported
// invoices and the company profile. It is rewritten atomically on save.
package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/nilefleet/genset-invoicer/internal/policy"
	"github.com/nilefleet/genset-invoicer/internal/types"
	"github.com/nilefleet/genset-invoicer/pkg/utils"
)

// CurrentVersion is written to every saved state file.
const CurrentVersion = 1

// State is the persisted application state.
type State struct {
	Version  int                  `yaml:"version"`
	Company  types.CompanyProfile `yaml:"company"`
	Policies policy.Snapshot      `yaml:"policies"`
	Exported []string             `yaml:"exported,omitempty"`
	Rows     []types.Row          `yaml:"rows"`
}

// NewState returns the state of a fresh installation.
func NewState() *State {
	return &State{
		Version: CurrentVersion,
		Company: types.DefaultCompanyProfile(),
	}
}

// Store reads and writes one state file.
type Store struct {
	path string
}

// New creates a store for path.
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the state file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the state file. A missing file yields NewState().
func (s *Store) Load() (*State, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	st := NewState()
	if err := yaml.Unmarshal(data, st); err != nil {
		return nil, fmt.Errorf("failed to parse state file %s: %w", s.path, err)
	}
	if st.Version > CurrentVersion {
		return nil, fmt.Errorf("state file %s has version %d, this build understands up to %d", s.path, st.Version, CurrentVersion)
	}
	if st.Company.SignatureScale <= 0 {
		st.Company.SignatureScale = 1
	}

	return st, nil
}

// Save writes st to the state file.
func (s *Store) Save(st *State) error {
	if st == nil {
		return fmt.Errorf("save state: state is nil")
	}
	st.Version = CurrentVersion

	data, err := yaml.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}
	if err := utils.WriteFileAtomic(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	return nil
}
