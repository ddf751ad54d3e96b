package main

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"

	"claudette/pkg/auditlog"
	"claudette/pkg/backup"
	"claudette/pkg/freeze"
	"claudette/pkg/gitx"
	"claudette/pkg/metadata"
	"claudette/pkg/ports"
	"claudette/pkg/worktree"
)

// app bundles the resolved paths, settings, registry, and collaborators a
// command needs. Commands build one with newApp and tests construct their
// own with whatever mocks they want.
type app struct {
	paths    *Paths
	settings *Settings
	store    *metadata.Store
	reg      *metadata.Registry
	alloc    *ports.Allocator
	git      gitx.Runner
}

// newApp resolves paths and settings, migrates any legacy metadata records,
// and loads the registry.
func newApp() (*app, error) {
	paths, err := ResolvePaths()
	if err != nil {
		return nil, fmt.Errorf("resolve paths: %w", err)
	}
	settings, err := loadSettings(paths.ConfigPath)
	if err != nil {
		return nil, err
	}

	store := metadata.NewStore(paths.Home)
	if version, err := store.ReadVersion(); err == nil && version != metadata.Version {
		// Pre-0.2 installs carry shell-style records; convert before loading.
		if _, err := store.MigrateLegacy(); err != nil {
			return nil, fmt.Errorf("migrate metadata: %w", err)
		}
	}

	reg, err := metadata.OpenRegistry(store)
	if err != nil {
		return nil, err
	}

	return &app{
		paths:    paths,
		settings: settings,
		store:    store,
		reg:      reg,
		alloc:    ports.NewAllocator(reg),
		git:      &gitx.ExecRunner{},
	}, nil
}

// engine builds a reconciliation engine over the app's registry, with
// project paths taken from metadata records when present.
func (a *app) engine(rec worktree.Recorder) *worktree.Engine {
	reg := a.reg
	base := a.paths.WorktreeBase
	return worktree.NewEngine(worktree.Config{
		RepoRoot:     a.paths.RepoRoot,
		WorktreeBase: base,
		Git:          a.git,
		Backups:      backup.NewService(a.paths.BackupsDir),
		Recorder:     rec,
		Jobs:         a.settings.DoctorJobs,
		PathFor: func(name string) string {
			if r, ok := reg.Get(name); ok && r.Path != "" {
				return r.Path
			}
			return defaultProjectPath(base, name)
		},
	})
}

// freezeManager wires the freeze manager against the live engine, docker,
// and the standard provisioner.
func (a *app) freezeManager() *freeze.Manager {
	runner := &ExecRunner{}
	return freeze.NewManager(
		a.reg,
		a.engine(nil),
		&dockerUsage{runner: runner},
		&provisioner{runner: runner, python: a.settings.PythonVersion},
	)
}

// openAudit opens the audit database for appending. Callers own the handle.
func (a *app) openAudit() (*sql.DB, *auditlog.Writer, error) {
	db, err := openDB(a.paths.AuditDBPath)
	if err != nil {
		return nil, nil, err
	}
	w, err := auditlog.NewWriter(db)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return db, w, nil
}

func defaultProjectPath(base, name string) string {
	return filepath.Join(base, name)
}

// auditRecorder adapts auditlog.Writer to the engine's Recorder interface.
type auditRecorder struct {
	w *auditlog.Writer
}

func (r *auditRecorder) Record(ctx context.Context, ev worktree.Event) error {
	return r.w.Append(ctx, auditlog.Entry{
		Project:      ev.Project,
		Action:       ev.Action,
		SnapshotID:   ev.SnapshotID,
		FilesCarried: ev.FilesCarried,
		State:        ev.State,
		Error:        ev.Error,
	})
}
