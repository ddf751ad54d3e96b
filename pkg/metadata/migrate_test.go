package metadata //nolint:testpackage // internal test needs access to unexported helpers

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMigrateLegacy_ConvertsShellRecords(t *testing.T) {
	store := NewStore(t.TempDir())
	if err := os.MkdirAll(store.ProjectsDir(), 0o755); err != nil {
		t.Fatal(err)
	}

	legacy := `# claudette project record
PROJECT_NAME="feat-auth"
NODE_PORT="9003"
PROJECT_PATH="/work/feat-auth"
PROJECT_DESCRIPTION="ignored by the new format"
`
	legacyPath := filepath.Join(store.ProjectsDir(), "feat-auth.claudette")
	if err := os.WriteFile(legacyPath, []byte(legacy), 0o644); err != nil {
		t.Fatal(err)
	}

	n, err := store.MigrateLegacy()
	if err != nil {
		t.Fatalf("MigrateLegacy: %v", err)
	}
	if n != 1 {
		t.Errorf("migrated %d records, want 1", n)
	}

	rec, err := store.Load("feat-auth")
	if err != nil {
		t.Fatalf("Load after migration: %v", err)
	}
	if rec.Name != "feat-auth" || rec.Port != 9003 || rec.Path != "/work/feat-auth" {
		t.Errorf("migrated record = %+v", rec)
	}

	if _, err := os.Stat(legacyPath); !os.IsNotExist(err) {
		t.Error("legacy file must be removed after migration")
	}
	if v, err := store.ReadVersion(); err != nil || v != Version {
		t.Errorf("version after migration = %q, %v; want %q", v, err, Version)
	}
}

func TestMigrateLegacy_NothingToMigrate(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "fresh"))
	n, err := store.MigrateLegacy()
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("migrated %d, want 0", n)
	}
}

func TestMigrateLegacy_RejectsBadPort(t *testing.T) {
	store := NewStore(t.TempDir())
	if err := os.MkdirAll(store.ProjectsDir(), 0o755); err != nil {
		t.Fatal(err)
	}
	bad := "PROJECT_NAME=\"x\"\nNODE_PORT=\"not-a-port\"\nPROJECT_PATH=\"/w/x\"\n"
	if err := os.WriteFile(filepath.Join(store.ProjectsDir(), "x.claudette"), []byte(bad), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := store.MigrateLegacy(); err == nil {
		t.Fatal("expected error for unparseable legacy port")
	}
}

func TestReadVersion_MissingFileIsPre02(t *testing.T) {
	store := NewStore(t.TempDir())
	v, err := store.ReadVersion()
	if err != nil {
		t.Fatal(err)
	}
	if v != "" {
		t.Errorf("version = %q, want empty for a pre-0.2 install", v)
	}
}

func TestWriteVersionFile_Roundtrip(t *testing.T) {
	store := NewStore(t.TempDir())
	if err := store.WriteVersionFile(); err != nil {
		t.Fatal(err)
	}
	v, err := store.ReadVersion()
	if err != nil {
		t.Fatal(err)
	}
	if v != Version {
		t.Errorf("version = %q, want %q", v, Version)
	}
}
