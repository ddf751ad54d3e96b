package metadata

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Version is the current metadata format version, recorded in
// <home>/claudette.json whenever the store is initialized or migrated.
const Version = "0.2.0"

const versionFileName = "claudette.json"

type versionFile struct {
	Version     string `json:"version"`
	LastUpdated string `json:"last_updated"`
}

// VersionFilePath returns the path of the format-version marker file.
func (s *Store) VersionFilePath() string {
	return filepath.Join(s.home, versionFileName)
}

// WriteVersionFile records the current format version with a timestamp,
// overwriting any previous content.
func (s *Store) WriteVersionFile() error {
	if err := os.MkdirAll(s.home, 0o755); err != nil {
		return fmt.Errorf("create home dir: %w", err)
	}
	vf := versionFile{
		Version:     Version,
		LastUpdated: time.Now().Format(time.RFC3339),
	}
	data, err := json.MarshalIndent(vf, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal version file: %w", err)
	}
	if err := os.WriteFile(s.VersionFilePath(), data, 0o644); err != nil {
		return fmt.Errorf("write version file: %w", err)
	}
	return nil
}

// ReadVersion returns the recorded format version, or "" if the marker
// file does not exist yet (a pre-0.2 install).
func (s *Store) ReadVersion() (string, error) {
	data, err := os.ReadFile(s.VersionFilePath())
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("read version file: %w", err)
	}
	var vf versionFile
	if err := json.Unmarshal(data, &vf); err != nil {
		return "", fmt.Errorf("parse version file: %w", err)
	}
	return vf.Version, nil
}

// MigrateLegacy converts v0.1 shell-style record files
// (<name>.claudette with PROJECT_NAME= / NODE_PORT= / PROJECT_PATH= lines)
// into TOML records, removes the old files, and writes the version marker.
// It returns the number of records migrated. A missing projects directory
// means there is nothing to migrate.
func (s *Store) MigrateLegacy() (int, error) {
	entries, err := os.ReadDir(s.ProjectsDir())
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("read projects dir: %w", err)
	}

	migrated := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".claudette") {
			continue
		}
		legacyPath := filepath.Join(s.ProjectsDir(), entry.Name())
		data, err := os.ReadFile(legacyPath)
		if err != nil {
			return migrated, fmt.Errorf("read legacy record %s: %w", entry.Name(), err)
		}
		rec, err := parseLegacyRecord(data)
		if err != nil {
			return migrated, fmt.Errorf("legacy record %s: %w", entry.Name(), err)
		}
		if err := s.Save(rec); err != nil {
			return migrated, err
		}
		if err := os.Remove(legacyPath); err != nil {
			return migrated, fmt.Errorf("remove legacy record %s: %w", entry.Name(), err)
		}
		migrated++
	}

	if err := s.WriteVersionFile(); err != nil {
		return migrated, err
	}
	return migrated, nil
}

// parseLegacyRecord parses the v0.1 shell-style KEY="value" format.
// Unknown keys (e.g. PROJECT_DESCRIPTION) are ignored.
func parseLegacyRecord(data []byte) (*Record, error) {
	fields := make(map[string]string)
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		value = strings.Trim(strings.TrimSpace(value), `"'`)
		fields[strings.TrimSpace(key)] = value
	}

	port, err := strconv.Atoi(fields["NODE_PORT"])
	if err != nil {
		return nil, fmt.Errorf("invalid NODE_PORT %q", fields["NODE_PORT"])
	}
	rec := &Record{
		Name: fields["PROJECT_NAME"],
		Port: port,
		Path: fields["PROJECT_PATH"],
	}
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	return rec, nil
}
