package backup //nolint:testpackage // internal test needs access to unexported helpers

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTree(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestCapture_SkipsExcludedContent(t *testing.T) {
	src := t.TempDir()
	writeTree(t, src, map[string]string{
		"app.py":                     "code",
		"src/lib.py":                 "lib",
		".git/HEAD":                  "ref: refs/heads/main",
		".venv/bin/python":           "binary",
		"node_modules/pkg/index.js":  "js",
		"src/__pycache__/lib.pyc":    "pyc",
		"debug.log":                  "log line",
	})

	svc := NewService(t.TempDir())
	snap, err := svc.Capture("proj", src)
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}

	if snap.Files != 2 {
		t.Errorf("captured %d files, want 2 (app.py, src/lib.py)", snap.Files)
	}
	for _, rel := range []string{"app.py", "src/lib.py"} {
		if _, err := os.Stat(filepath.Join(snap.Dir, rel)); err != nil {
			t.Errorf("%s missing from snapshot: %v", rel, err)
		}
	}
	for _, rel := range []string{".git", ".venv", "node_modules", "debug.log", "src/__pycache__"} {
		if _, err := os.Stat(filepath.Join(snap.Dir, rel)); err == nil {
			t.Errorf("excluded %s was captured", rel)
		}
	}
}

func TestCapture_EmptyTreeIsValid(t *testing.T) {
	svc := NewService(t.TempDir())
	snap, err := svc.Capture("empty", t.TempDir())
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if snap.Files != 0 {
		t.Errorf("captured %d files, want 0", snap.Files)
	}
	if snap.ID == "" || snap.Dir == "" {
		t.Errorf("empty snapshot still needs identity: %+v", snap)
	}
}

func TestCapture_MissingSourceFails(t *testing.T) {
	svc := NewService(t.TempDir())
	if _, err := svc.Capture("gone", filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("expected error for missing source directory")
	}
}

func TestCapture_CollectsPerFileFailures(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits do not bind for root")
	}
	src := t.TempDir()
	writeTree(t, src, map[string]string{
		"ok.txt":     "readable",
		"secret.txt": "unreadable",
	})
	locked := filepath.Join(src, "secret.txt")
	if err := os.Chmod(locked, 0o000); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chmod(locked, 0o644) })

	svc := NewService(t.TempDir())
	snap, err := svc.Capture("proj", src)

	var partial *PartialIOError
	if !errors.As(err, &partial) {
		t.Fatalf("err = %v, want PartialIOError", err)
	}
	if snap == nil {
		t.Fatal("partial capture must still return a usable snapshot")
	}
	if len(partial.Failures) != 1 || !strings.HasSuffix(partial.Failures[0].Path, "secret.txt") {
		t.Errorf("failures = %+v, want the one unreadable file", partial.Failures)
	}
	// The readable file was still captured.
	if snap.Files != 1 {
		t.Errorf("captured %d files, want 1", snap.Files)
	}
	if _, err := os.Stat(filepath.Join(snap.Dir, "ok.txt")); err != nil {
		t.Errorf("ok.txt missing from partial snapshot: %v", err)
	}
}

func TestRestore_CollectsPerFileFailures(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits do not bind for root")
	}
	src := t.TempDir()
	writeTree(t, src, map[string]string{
		"a.txt":     "x",
		"sub/b.txt": "y",
	})
	svc := NewService(t.TempDir())
	snap, err := svc.Capture("proj", src)
	if err != nil {
		t.Fatal(err)
	}

	dest := t.TempDir()
	readonly := filepath.Join(dest, "sub")
	if err := os.Mkdir(readonly, 0o555); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chmod(readonly, 0o755) })

	res, err := svc.Restore(snap, dest)

	var partial *PartialIOError
	if !errors.As(err, &partial) {
		t.Fatalf("err = %v, want PartialIOError", err)
	}
	if res == nil || res.Copied != 1 {
		t.Fatalf("result = %+v, want the writable file copied", res)
	}
	if _, err := os.Stat(filepath.Join(dest, "a.txt")); err != nil {
		t.Errorf("a.txt not restored despite partial failure elsewhere: %v", err)
	}
	if len(partial.Failures) != 1 || !strings.HasSuffix(partial.Failures[0].Path, "b.txt") {
		t.Errorf("failures = %+v, want the one blocked file", partial.Failures)
	}
}

func TestRestore_OverlaysWithoutDeleting(t *testing.T) {
	src := t.TempDir()
	writeTree(t, src, map[string]string{
		"a.txt":     "from snapshot",
		"sub/b.txt": "also snapshot",
	})
	svc := NewService(t.TempDir())
	snap, err := svc.Capture("proj", src)
	if err != nil {
		t.Fatal(err)
	}

	dest := t.TempDir()
	writeTree(t, dest, map[string]string{
		"a.txt":     "stale",
		"newer.txt": "written after the snapshot",
	})

	res, err := svc.Restore(snap, dest)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if res.Copied != 2 {
		t.Errorf("copied %d files, want 2", res.Copied)
	}

	got, _ := os.ReadFile(filepath.Join(dest, "a.txt"))
	if string(got) != "from snapshot" {
		t.Errorf("a.txt = %q, colliding file must be overwritten", got)
	}
	got, _ = os.ReadFile(filepath.Join(dest, "newer.txt"))
	if string(got) != "written after the snapshot" {
		t.Errorf("newer.txt = %q, overlay must never touch extra files", got)
	}
	if _, err := os.Stat(filepath.Join(dest, "sub", "b.txt")); err != nil {
		t.Errorf("nested file not restored: %v", err)
	}
}

func TestRestore_CreatesMissingDestination(t *testing.T) {
	src := t.TempDir()
	writeTree(t, src, map[string]string{"a.txt": "x"})
	svc := NewService(t.TempDir())
	snap, err := svc.Capture("proj", src)
	if err != nil {
		t.Fatal(err)
	}

	dest := filepath.Join(t.TempDir(), "does", "not", "exist")
	if _, err := svc.Restore(snap, dest); err != nil {
		t.Fatalf("Restore into missing dest: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dest, "a.txt")); err != nil {
		t.Error(err)
	}
}

func TestDiffCount_OneDirectional(t *testing.T) {
	a := t.TempDir()
	b := t.TempDir()
	writeTree(t, a, map[string]string{
		"same.txt":    "identical",
		"changed.txt": "version A",
		"only-a.txt":  "missing from b",
	})
	writeTree(t, b, map[string]string{
		"same.txt":    "identical",
		"changed.txt": "version B!",
		"only-b.txt":  "newer work, must not count",
	})

	svc := NewService(t.TempDir())
	n, err := svc.DiffCount(a, b)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("diff = %d, want 2 (changed.txt, only-a.txt)", n)
	}
}

func TestDiffCount_SameSizeDifferentContent(t *testing.T) {
	a := t.TempDir()
	b := t.TempDir()
	writeTree(t, a, map[string]string{"f.txt": "aaaa"})
	writeTree(t, b, map[string]string{"f.txt": "bbbb"})

	svc := NewService(t.TempDir())
	n, err := svc.DiffCount(a, b)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("diff = %d, want 1", n)
	}
}

func TestDiffCount_SkipsExcluded(t *testing.T) {
	a := t.TempDir()
	writeTree(t, a, map[string]string{
		"f.txt":          "x",
		".git/HEAD":      "ref",
		".venv/pyvenv.cfg": "cfg",
	})

	svc := NewService(t.TempDir())
	n, err := svc.DiffCount(a, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("diff = %d, want 1 (excluded trees never count)", n)
	}
}

func TestDiffCount_ZeroAfterRestore(t *testing.T) {
	src := t.TempDir()
	writeTree(t, src, map[string]string{
		"a.txt":     "one",
		"sub/b.txt": "two",
	})
	svc := NewService(t.TempDir())
	snap, err := svc.Capture("proj", src)
	if err != nil {
		t.Fatal(err)
	}

	dest := t.TempDir()
	if _, err := svc.Restore(snap, dest); err != nil {
		t.Fatal(err)
	}
	n, err := svc.DiffCount(snap.Dir, dest)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("diff after restore = %d, want 0", n)
	}
}
