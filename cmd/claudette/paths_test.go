package main

import (
	"path/filepath"
	"testing"
)

func TestResolvePaths_Defaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("CLAUDETTE_HOME", home)
	t.Setenv("CLAUDETTE_REPO", "")
	t.Setenv("CLAUDETTE_WORKTREES", "")
	t.Setenv("CLAUDETTE_DB_PATH", "")

	p, err := ResolvePaths()
	if err != nil {
		t.Fatal(err)
	}

	want := map[string]string{
		"Home":         home,
		"RepoRoot":     filepath.Join(home, "superset"),
		"WorktreeBase": filepath.Join(home, "worktrees"),
		"BackupsDir":   filepath.Join(home, "backups"),
		"AuditDBPath":  filepath.Join(home, "audit.db"),
		"ConfigPath":   filepath.Join(home, "config.yaml"),
	}
	got := map[string]string{
		"Home":         p.Home,
		"RepoRoot":     p.RepoRoot,
		"WorktreeBase": p.WorktreeBase,
		"BackupsDir":   p.BackupsDir,
		"AuditDBPath":  p.AuditDBPath,
		"ConfigPath":   p.ConfigPath,
	}
	for k, w := range want {
		if got[k] != w {
			t.Errorf("%s = %q, want %q", k, got[k], w)
		}
	}
}

func TestResolvePaths_SpecificOverridesWinOverHome(t *testing.T) {
	home := t.TempDir()
	repo := t.TempDir()
	t.Setenv("CLAUDETTE_HOME", home)
	t.Setenv("CLAUDETTE_REPO", repo)
	t.Setenv("CLAUDETTE_WORKTREES", "")
	t.Setenv("CLAUDETTE_DB_PATH", "")

	p, err := ResolvePaths()
	if err != nil {
		t.Fatal(err)
	}
	if p.RepoRoot != repo {
		t.Errorf("RepoRoot = %q, want override %q", p.RepoRoot, repo)
	}
	if p.WorktreeBase != filepath.Join(home, "worktrees") {
		t.Errorf("WorktreeBase = %q, want home-derived default", p.WorktreeBase)
	}
}
