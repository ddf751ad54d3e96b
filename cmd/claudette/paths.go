package main

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths holds all resolved claudette state locations.
// Use ResolvePaths() to populate this struct with defaults + env overrides.
type Paths struct {
	Home         string // ~/.claudette or CLAUDETTE_HOME
	RepoRoot     string // base repository clone, or CLAUDETTE_REPO
	WorktreeBase string // parent of project worktrees, or CLAUDETTE_WORKTREES
	BackupsDir   string // snapshot storage (respects Home)
	AuditDBPath  string // reconciliation event log, or CLAUDETTE_DB_PATH
	ConfigPath   string // global settings file (respects Home)
}

// ResolvePaths returns all claudette paths, respecting env var overrides.
// Environment variables:
//   - CLAUDETTE_HOME: base directory for all claudette state (default: ~/.claudette)
//   - CLAUDETTE_REPO: base repository clone (default: $CLAUDETTE_HOME/superset)
//   - CLAUDETTE_WORKTREES: project worktree parent (default: $CLAUDETTE_HOME/worktrees)
//   - CLAUDETTE_DB_PATH: audit event database (default: $CLAUDETTE_HOME/audit.db)
//
// If CLAUDETTE_HOME is set, it becomes the base for all default paths.
// Specific env vars override both the default and the home base.
func ResolvePaths() (*Paths, error) {
	home, err := resolveHome()
	if err != nil {
		return nil, err
	}

	return &Paths{
		Home:         home,
		RepoRoot:     resolvePathWithEnv("CLAUDETTE_REPO", home, "superset"),
		WorktreeBase: resolvePathWithEnv("CLAUDETTE_WORKTREES", home, "worktrees"),
		BackupsDir:   filepath.Join(home, "backups"),
		AuditDBPath:  resolvePathWithEnv("CLAUDETTE_DB_PATH", home, "audit.db"),
		ConfigPath:   filepath.Join(home, "config.yaml"),
	}, nil
}

// resolveHome returns the claudette home directory from CLAUDETTE_HOME or ~/.claudette.
func resolveHome() (string, error) {
	if v := os.Getenv("CLAUDETTE_HOME"); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".claudette"), nil
}

// resolvePathWithEnv returns the env var value if set, else base/defaultName.
func resolvePathWithEnv(envVar, base, defaultName string) string {
	if v := os.Getenv(envVar); v != "" {
		return v
	}
	return filepath.Join(base, defaultName)
}
