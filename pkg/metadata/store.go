package metadata

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// ErrNotFound is returned when no record exists for a project name.
var ErrNotFound = errors.New("project metadata not found")

// Store reads and writes project records under <home>/projects/.
// It owns the metadata file format; nothing else writes these files.
type Store struct {
	home string
}

// NewStore returns a Store rooted at the claudette home directory.
func NewStore(home string) *Store {
	return &Store{home: home}
}

// ProjectsDir returns the directory holding one record file per project.
func (s *Store) ProjectsDir() string {
	return filepath.Join(s.home, "projects")
}

func (s *Store) recordPath(name string) string {
	return filepath.Join(s.ProjectsDir(), name+".toml")
}

// Save writes the record as TOML, creating the projects directory if needed.
func (s *Store) Save(rec *Record) error {
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("save %q: %w", rec.Name, err)
	}
	if err := os.MkdirAll(s.ProjectsDir(), 0o755); err != nil {
		return fmt.Errorf("create projects dir: %w", err)
	}
	data, err := toml.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal %q: %w", rec.Name, err)
	}
	if err := os.WriteFile(s.recordPath(rec.Name), data, 0o644); err != nil {
		return fmt.Errorf("write record %q: %w", rec.Name, err)
	}
	return nil
}

// Load reads a single record by project name.
func (s *Store) Load(name string) (*Record, error) {
	data, err := os.ReadFile(s.recordPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%q: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("read record %q: %w", name, err)
	}
	var rec Record
	if err := toml.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parse record %q: %w", name, err)
	}
	return &rec, nil
}

// LoadAll reads every record in the projects directory. A missing directory
// is an empty fleet, not an error. Unparseable records are skipped and
// reported together so one corrupt file cannot hide the rest of the fleet.
func (s *Store) LoadAll() ([]*Record, error) {
	entries, err := os.ReadDir(s.ProjectsDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read projects dir: %w", err)
	}

	var recs []*Record
	var bad []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".toml") {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".toml")
		rec, err := s.Load(name)
		if err != nil {
			bad = append(bad, entry.Name())
			continue
		}
		recs = append(recs, rec)
	}
	if len(bad) > 0 {
		return recs, fmt.Errorf("unreadable records: %s", strings.Join(bad, ", "))
	}
	return recs, nil
}

// Delete removes a record file. Deleting a missing record is a no-op.
func (s *Store) Delete(name string) error {
	if err := os.Remove(s.recordPath(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete record %q: %w", name, err)
	}
	return nil
}
