// Package freeze reclaims disk space by removing a project's regenerable
// dependency artifacts, and restores them later by delegating to external
// tooling. Freezing is independent of reconciliation state except for one
// guard: a project whose binding is not bound is never frozen, because
// removing artifacts from a broken directory makes recovery harder.
package freeze

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"claudette/pkg/metadata"
	"claudette/pkg/worktree"
)

// DefaultTargets are the regenerable directories removed by a freeze,
// relative to the project path.
var DefaultTargets = []string{
	".venv",
	filepath.Join("superset-frontend", "node_modules"),
}

// HealthChecker reports a project's binding state. Implemented by
// worktree.Engine.
type HealthChecker interface {
	Health(ctx context.Context, name string) worktree.BindingState
}

// UsageChecker reports whether a project is currently in use by a live
// external process (running containers, an active shell). Opaque to this
// package; the production implementation asks docker.
type UsageChecker interface {
	InUse(ctx context.Context, name string) (bool, error)
}

// Regenerator rebuilds the artifacts a freeze removed (virtualenv, node
// modules). Opaque external operation with a plain success/failure outcome.
type Regenerator interface {
	Regenerate(ctx context.Context, rec metadata.Record) error
}

// Manager performs freeze and thaw transitions and keeps the frozen flag in
// the registry consistent with what is actually on disk.
type Manager struct {
	reg     *metadata.Registry
	health  HealthChecker
	usage   UsageChecker
	regen   Regenerator
	targets []string
}

// NewManager returns a Manager with the default target directories.
func NewManager(reg *metadata.Registry, health HealthChecker, usage UsageChecker, regen Regenerator) *Manager {
	return &Manager{
		reg:     reg,
		health:  health,
		usage:   usage,
		regen:   regen,
		targets: DefaultTargets,
	}
}

// Freeze removes the project's regenerable directories and records
// frozen=true. It refuses when the project is already frozen, when its
// binding is not bound, or when an external process is still using it.
func (m *Manager) Freeze(ctx context.Context, name string) error {
	rec, ok := m.reg.Get(name)
	if !ok {
		return fmt.Errorf("freeze %q: %w", name, metadata.ErrNotFound)
	}
	if rec.Frozen {
		return fmt.Errorf("project %q is already frozen", name)
	}
	if state := m.health.Health(ctx, name); state != worktree.StateBound {
		return fmt.Errorf("refusing to freeze %q: binding is %s, not bound", name, state)
	}
	if m.usage != nil {
		inUse, err := m.usage.InUse(ctx, name)
		if err != nil {
			return fmt.Errorf("check usage of %q: %w", name, err)
		}
		if inUse {
			return fmt.Errorf("refusing to freeze %q: project is in use", name)
		}
	}

	for _, target := range m.targets {
		if err := os.RemoveAll(filepath.Join(rec.Path, target)); err != nil {
			return fmt.Errorf("freeze %q: remove %s: %w", name, target, err)
		}
	}

	rec.Frozen = true
	return m.reg.Put(&rec)
}

// Thaw regenerates the removed artifacts and clears the frozen flag only
// after regeneration reports success, so a half-thawed project still reads
// as frozen.
func (m *Manager) Thaw(ctx context.Context, name string) error {
	rec, ok := m.reg.Get(name)
	if !ok {
		return fmt.Errorf("thaw %q: %w", name, metadata.ErrNotFound)
	}
	if !rec.Frozen {
		return fmt.Errorf("project %q is not frozen", name)
	}

	if err := m.regen.Regenerate(ctx, rec); err != nil {
		return fmt.Errorf("regenerate %q: %w", name, err)
	}

	rec.Frozen = false
	return m.reg.Put(&rec)
}
