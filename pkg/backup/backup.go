// Package backup snapshots project directories before destructive repair
// steps and overlays them back afterwards. Snapshots are immutable once
// captured; restore is an overlay (additive/overwriting), never a mirror, so
// a stale snapshot can never delete newer work at the destination.
package backup

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// DefaultExcludes are regenerable-content patterns never captured, restored,
// or counted in diffs: VCS metadata, dependency caches, build output, logs.
// Patterns match individual path elements (filepath.Match syntax).
var DefaultExcludes = []string{
	".git",
	".venv",
	"node_modules",
	"__pycache__",
	".cache",
	"dist",
	"build",
	"*.log",
	"*.pyc",
}

// Snapshot is an immutable capture of a project directory, tagged with the
// project name and capture time. Multiple snapshots per project may coexist
// during a recovery session.
type Snapshot struct {
	ID        string
	Project   string
	Dir       string // where the captured tree lives
	CreatedAt time.Time
	Files     int // files captured
}

// RestoreResult reports the outcome of an overlay.
type RestoreResult struct {
	Copied int
}

// Service captures and restores snapshots under a fixed backups root.
type Service struct {
	root     string
	excludes []string
	now      func() time.Time
}

// NewService returns a Service storing snapshots under root with the
// default exclusion patterns.
func NewService(root string) *Service {
	return &Service{
		root:     root,
		excludes: DefaultExcludes,
		now:      time.Now,
	}
}

func (s *Service) excluded(name string) bool {
	for _, pat := range s.excludes {
		if ok, _ := filepath.Match(pat, name); ok {
			return true
		}
	}
	return false
}

// Capture walks path and copies every non-excluded file into a fresh
// snapshot directory. An empty tree is a valid (empty) snapshot. Per-file
// copy failures do not abort the capture; they are collected and returned
// as a *PartialIOError alongside the (still usable) snapshot.
func (s *Service) Capture(project, path string) (*Snapshot, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("capture %q: %w", project, err)
	}

	id := uuid.NewString()
	stamp := s.now().UTC()
	dir := filepath.Join(s.root, fmt.Sprintf("%s-%s-%s", project, stamp.Format("20060102T150405"), id[:8]))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}

	snap := &Snapshot{
		ID:        id,
		Project:   project,
		Dir:       dir,
		CreatedAt: stamp,
	}

	var failures []FileFailure
	walkErr := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			failures = append(failures, FileFailure{Path: p, Err: err})
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if p == path {
			return nil
		}
		if s.excluded(d.Name()) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(path, p)
		if err != nil {
			failures = append(failures, FileFailure{Path: p, Err: err})
			return nil
		}
		dst := filepath.Join(dir, rel)

		switch {
		case d.IsDir():
			if err := os.MkdirAll(dst, 0o755); err != nil {
				failures = append(failures, FileFailure{Path: p, Err: err})
				return fs.SkipDir
			}
		case d.Type()&fs.ModeSymlink != 0:
			target, err := os.Readlink(p)
			if err == nil {
				err = os.Symlink(target, dst)
			}
			if err != nil {
				failures = append(failures, FileFailure{Path: p, Err: err})
				return nil
			}
			snap.Files++
		case d.Type().IsRegular():
			if err := copyFile(p, dst); err != nil {
				failures = append(failures, FileFailure{Path: p, Err: err})
				return nil
			}
			snap.Files++
		}
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("capture %q: %w", project, walkErr)
	}

	if len(failures) > 0 {
		return snap, &PartialIOError{Op: "capture", Failures: failures}
	}
	return snap, nil
}

// Restore overlays the snapshot onto dest, creating directories as needed
// and overwriting colliding files. Files present at dest but absent from
// the snapshot are left untouched. Per-file failures are collected into a
// *PartialIOError; the rest of the overlay still completes.
func (s *Service) Restore(snap *Snapshot, dest string) (*RestoreResult, error) {
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return nil, fmt.Errorf("restore %q: %w", snap.Project, err)
	}

	res := &RestoreResult{}
	var failures []FileFailure
	walkErr := filepath.WalkDir(snap.Dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			failures = append(failures, FileFailure{Path: p, Err: err})
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if p == snap.Dir {
			return nil
		}

		rel, err := filepath.Rel(snap.Dir, p)
		if err != nil {
			failures = append(failures, FileFailure{Path: p, Err: err})
			return nil
		}
		dst := filepath.Join(dest, rel)

		switch {
		case d.IsDir():
			if err := os.MkdirAll(dst, 0o755); err != nil {
				failures = append(failures, FileFailure{Path: p, Err: err})
				return fs.SkipDir
			}
		case d.Type()&fs.ModeSymlink != 0:
			target, err := os.Readlink(p)
			if err == nil {
				_ = os.Remove(dst)
				err = os.Symlink(target, dst)
			}
			if err != nil {
				failures = append(failures, FileFailure{Path: p, Err: err})
				return nil
			}
			res.Copied++
		case d.Type().IsRegular():
			if err := copyFile(p, dst); err != nil {
				failures = append(failures, FileFailure{Path: p, Err: err})
				return nil
			}
			res.Copied++
		}
		return nil
	})
	if walkErr != nil {
		return res, fmt.Errorf("restore %q: %w", snap.Project, walkErr)
	}

	if len(failures) > 0 {
		return res, &PartialIOError{Op: "restore", Failures: failures}
	}
	return res, nil
}

// copyFile copies src to dst preserving mode and modification time.
func copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	// Best effort; a read-only filesystem timestamp is not worth failing for.
	_ = os.Chtimes(dst, info.ModTime(), info.ModTime())
	return nil
}
