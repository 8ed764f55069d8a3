package layoutstore

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/tiletree/internal/tiling"
)

// Snapshot is one named, persisted layout: the serialized tree plus a little
// metadata for listings.
type Snapshot struct {
	Name    string                 `yaml:"name"`
	SavedAt time.Time              `yaml:"saved_at"`
	Windows int                    `yaml:"windows"`
	Tree    *tiling.SerializedNode `yaml:"tree"`
}

// Store reads and writes layout snapshots in a directory, one YAML file per
// named layout.
type Store struct {
	dir string
}

// New returns a store rooted at dir, creating it if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create layout dir %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the store's directory.
func (s *Store) Dir() string {
	return s.dir
}

func validateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("layout name is required")
	}
	if name != filepath.Base(name) || strings.Contains(name, "..") {
		return fmt.Errorf("invalid layout name %q", name)
	}
	return nil
}

func (s *Store) path(name string) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, name+".yaml"), nil
}

// Save writes a snapshot atomically: to a temp file first, then renamed into
// place, so a crash mid-write never leaves a truncated layout.
func (s *Store) Save(name string, tree *tiling.SerializedNode, windows int) error {
	if tree == nil {
		return fmt.Errorf("layout %q: nothing to save", name)
	}
	path, err := s.path(name)
	if err != nil {
		return err
	}

	snap := Snapshot{
		Name:    name,
		SavedAt: time.Now().UTC(),
		Windows: windows,
		Tree:    tree,
	}
	data, err := yaml.Marshal(&snap)
	if err != nil {
		return fmt.Errorf("encode layout %q: %w", name, err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write layout %q: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("commit layout %q: %w", name, err)
	}
	return nil
}

// Load reads a named snapshot.
func (s *Store) Load(name string) (*Snapshot, error) {
	path, err := s.path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("layout %q does not exist", name)
		}
		return nil, fmt.Errorf("read layout %q: %w", name, err)
	}
	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse layout %q: %w", name, err)
	}
	if snap.Tree == nil {
		return nil, fmt.Errorf("layout %q has no tree", name)
	}
	return &snap, nil
}

// List returns the stored layout names, sorted.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read layout dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes a named snapshot.
func (s *Store) Delete(name string) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("layout %q does not exist", name)
		}
		return fmt.Errorf("delete layout %q: %w", name, err)
	}
	return nil
}

// SaveFile writes a snapshot to an arbitrary path, for the autosave state
// outside the named-layout directory.
func SaveFile(path string, tree *tiling.SerializedNode, windows int) error {
	if tree == nil {
		return fmt.Errorf("autosave: nothing to save")
	}
	snap := Snapshot{SavedAt: time.Now().UTC(), Windows: windows, Tree: tree}
	data, err := yaml.Marshal(&snap)
	if err != nil {
		return fmt.Errorf("encode autosave: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write autosave: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("commit autosave: %w", err)
	}
	return nil
}

// LoadFile reads a snapshot from an arbitrary path; a missing file returns
// nil without error.
func LoadFile(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read autosave: %w", err)
	}
	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse autosave: %w", err)
	}
	if snap.Tree == nil {
		return nil, nil
	}
	return &snap, nil
}
