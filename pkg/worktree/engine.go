// Package worktree implements the reconciliation and recovery engine: it
// detects drift between the registry's expectation ("project X is a worktree
// on branch X") and the on-disk reality, and repairs broken bindings without
// losing uncommitted work. Every destructive step is preceded by a snapshot
// and a relocation, so any failure path leaves the original content
// reachable either at the repaired path or at the relocated backup.
package worktree

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"claudette/pkg/backup"
	"claudette/pkg/gitx"
)

// Event is one audit record emitted when a reconciliation finishes.
type Event struct {
	Project      string
	Action       string // "healthy", "rebound", "broken", "pending"
	SnapshotID   string
	FilesCarried int
	State        string
	Error        string
}

// Recorder persists reconciliation events for audit. Recording is best
// effort; a failing recorder never fails a repair.
type Recorder interface {
	Record(ctx context.Context, ev Event) error
}

// Outcome is the per-project result contract surfaced to whatever drives a
// fleet-wide repair (CLI, automation).
type Outcome struct {
	Name                string
	State               BindingState
	FilesCarriedForward int
	RelocatedBackup     string // non-empty when the pre-repair directory was kept
	SnapshotID          string
	Pending             bool // deadline expired before this project was processed
	Err                 error
}

// Config carries the collaborators of an Engine. Git, Backups and RepoRoot
// are required; the rest have working defaults.
type Config struct {
	RepoRoot     string // base repository all worktrees hang off
	WorktreeBase string // parent directory of project worktrees
	Git          gitx.Runner
	Backups      *backup.Service
	Resolver     *Resolver // defaults to NewResolver(RepoRoot, Git)
	PathFor      func(name string) string
	Recorder     Recorder
	Jobs         int // fleet-run parallelism, default 4
}

// Engine drives the per-project reconciliation state machine. One Engine is
// shared by all workers of a fleet run; per-project mutexes guarantee that
// no two reconciliation steps for the same project overlap, while different
// projects proceed independently.
type Engine struct {
	repoRoot string
	git      gitx.Runner
	backups  *backup.Service
	resolver *Resolver
	pathFor  func(name string) string
	recorder Recorder
	jobs     int
	now      func() time.Time

	locks sync.Map // project name -> *sync.Mutex
}

// NewEngine builds an Engine from cfg, filling in defaults.
func NewEngine(cfg Config) *Engine {
	e := &Engine{
		repoRoot: cfg.RepoRoot,
		git:      cfg.Git,
		backups:  cfg.Backups,
		resolver: cfg.Resolver,
		pathFor:  cfg.PathFor,
		recorder: cfg.Recorder,
		jobs:     cfg.Jobs,
		now:      time.Now,
	}
	if e.resolver == nil {
		e.resolver = NewResolver(cfg.RepoRoot, cfg.Git)
	}
	if e.pathFor == nil {
		base := cfg.WorktreeBase
		e.pathFor = func(name string) string { return filepath.Join(base, name) }
	}
	if e.jobs <= 0 {
		e.jobs = 4
	}
	return e
}

func (e *Engine) projectLock(name string) *sync.Mutex {
	v, _ := e.locks.LoadOrStore(name, &sync.Mutex{})
	return v.(*sync.Mutex)
}

// Reconcile runs the full state machine for one project and returns its
// outcome. It is idempotent: on an already-bound project it performs no
// filesystem change and captures no snapshot.
//
// Steps: health fast path; snapshot + relocate the existing directory;
// prune stale worktree bookkeeping; resolve the branch origin; re-create
// the worktree binding (one attach-semantics retry on branch conflict);
// overlay the snapshot and verify it; release the relocated directory only
// when nothing needed carrying forward.
func (e *Engine) Reconcile(ctx context.Context, name string) Outcome {
	lock := e.projectLock(name)
	lock.Lock()
	defer lock.Unlock()

	out := Outcome{Name: name}
	path := e.pathFor(name)

	// Step 1: health fast path.
	state := e.health(ctx, path, name)
	if state == StateBound {
		out.State = StateBound
		e.record(ctx, out, "healthy")
		return out
	}

	// Step 2: preserve. Snapshot first, then relocate — never delete — the
	// existing directory so every later step is reversible.
	var snap *backup.Snapshot
	if state == StateBroken {
		var err error
		snap, err = e.backups.Capture(name, path)
		var partial *backup.PartialIOError
		if err != nil && !errors.As(err, &partial) {
			out.State = StateBroken
			out.Err = fmt.Errorf("preserve %s: %w", name, err)
			e.record(ctx, out, "broken")
			return out
		}
		out.SnapshotID = snap.ID
		if partial != nil {
			out.Err = err // partial capture is reported, not fatal
		}

		relocated := fmt.Sprintf("%s.repair-%s", path, e.now().UTC().Format("20060102T150405"))
		if renameErr := os.Rename(path, relocated); renameErr != nil {
			out.State = StateBroken
			out.Err = fmt.Errorf("relocate %s: %w", path, renameErr)
			e.record(ctx, out, "broken")
			return out
		}
		out.RelocatedBackup = relocated
	}

	if broken := e.aborted(ctx, &out); broken {
		return out
	}

	// Git refuses to add a worktree at a path it still tracks; clear stale
	// bookkeeping left by the relocated directory. Best effort.
	_, _, _ = e.git.Run(ctx, e.repoRoot, "worktree", "prune")

	// Step 3: resolve branch origin, fresh.
	origin, err := e.resolver.Resolve(ctx, name)
	if err != nil {
		out.State = StateBroken
		out.Err = err
		e.record(ctx, out, "broken")
		return out
	}

	if broken := e.aborted(ctx, &out); broken {
		return out
	}

	// Step 4: re-establish the binding.
	if err := e.addWorktree(ctx, path, name, origin); err != nil {
		out.State = StateBroken
		out.Err = err
		e.record(ctx, out, "broken")
		return out
	}

	// Step 5: overlay preserved content and verify it landed.
	if snap != nil {
		carried, err := e.backups.DiffCount(snap.Dir, path)
		if err != nil {
			out.State = StateBroken
			out.Err = fmt.Errorf("diff snapshot for %s: %w", name, err)
			e.record(ctx, out, "broken")
			return out
		}
		out.FilesCarriedForward = carried

		if carried > 0 {
			if _, err := e.backups.Restore(snap, path); err != nil {
				var partial *backup.PartialIOError
				if !errors.As(err, &partial) {
					out.State = StateBroken
					out.Err = fmt.Errorf("overlay %s: %w", name, err)
					e.record(ctx, out, "broken")
					return out
				}
				out.Err = err
			}
			verify, err := e.backups.DiffCount(snap.Dir, path)
			if err != nil || verify != 0 {
				// Overlay unverified: the binding is live but the relocated
				// directory stays so no content is lost.
				out.State = StateBound
				out.Err = fmt.Errorf("overlay of %s unverified (%d file(s) missing): %v", name, verify, err)
				e.record(ctx, out, "rebound")
				return out
			}
		}
	}

	// Step 6: commit. The relocated directory is released only when the
	// overlay carried nothing forward; otherwise it stays as the reported
	// backup of record.
	out.State = StateBound
	if out.RelocatedBackup != "" && out.FilesCarriedForward == 0 && out.Err == nil {
		if rmErr := os.RemoveAll(out.RelocatedBackup); rmErr == nil {
			out.RelocatedBackup = ""
		}
	}
	e.record(ctx, out, "rebound")
	return out
}

// aborted handles caller cancellation between steps. The project is left
// broken with its snapshot and relocated backup intact — never a state
// where content is lost.
func (e *Engine) aborted(ctx context.Context, out *Outcome) bool {
	if err := ctx.Err(); err != nil {
		out.State = StateBroken
		out.Err = err
		e.record(context.WithoutCancel(ctx), *out, "broken")
		return true
	}
	return false
}

// Bind resolves the branch origin fresh and creates the worktree binding at
// the project's path, with the same conflict-retry semantics reconciliation
// uses. Provisioning paths (claudette add) share this so creation and
// repair cannot drift apart.
func (e *Engine) Bind(ctx context.Context, name string) (Origin, error) {
	lock := e.projectLock(name)
	lock.Lock()
	defer lock.Unlock()

	origin, err := e.resolver.Resolve(ctx, name)
	if err != nil {
		return origin, err
	}
	return origin, e.addWorktree(ctx, e.pathFor(name), name, origin)
}

// addWorktree creates the worktree at path bound to branch, choosing the
// creation mode from the branch origin. On a "branch already exists"
// failure it retries exactly once with attach semantics: a previous partial
// run may have created the branch after the origin was resolved.
func (e *Engine) addWorktree(ctx context.Context, path, branch string, origin Origin) error {
	var args []string
	switch origin {
	case OriginLocal:
		args = []string{"worktree", "add", path, branch}
	case OriginRemote:
		args = []string{"worktree", "add", path, "-b", branch, e.resolver.remote + "/" + branch}
	default:
		args = []string{"worktree", "add", path, "-b", branch}
	}

	_, stderr, err := e.git.Run(ctx, e.repoRoot, args...)
	if err == nil {
		return nil
	}
	if !strings.Contains(stderr, "already exists") {
		return fmt.Errorf("worktree add %s: %w: %s", branch, err, strings.TrimSpace(stderr))
	}

	_, stderr, err = e.git.Run(ctx, e.repoRoot, "worktree", "add", path, branch)
	if err == nil {
		return nil
	}
	return &BranchConflictError{Project: branch, Branch: branch, Stderr: strings.TrimSpace(stderr)}
}

func (e *Engine) record(ctx context.Context, out Outcome, action string) {
	if e.recorder == nil {
		return
	}
	ev := Event{
		Project:      out.Name,
		Action:       action,
		SnapshotID:   out.SnapshotID,
		FilesCarried: out.FilesCarriedForward,
		State:        out.State.String(),
	}
	if out.Err != nil {
		ev.Error = out.Err.Error()
	}
	_ = e.recorder.Record(ctx, ev)
}

// ReconcileAll repairs the named projects with bounded parallelism. Each
// project is processed independently: one failure never blocks another.
// When ctx expires, projects not yet started are reported as pending
// instead of being dropped. Outcomes are returned in input order.
func (e *Engine) ReconcileAll(ctx context.Context, names []string) []Outcome {
	jobs := e.jobs
	if jobs > len(names) {
		jobs = len(names)
	}
	if jobs < 1 {
		jobs = 1
	}

	type indexed struct {
		i   int
		out Outcome
	}
	work := make(chan int)
	results := make(chan indexed, len(names))

	var wg sync.WaitGroup
	for w := 0; w < jobs; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range work {
				name := names[i]
				if ctx.Err() != nil {
					results <- indexed{i, Outcome{Name: name, Pending: true, Err: ctx.Err()}}
					continue
				}
				results <- indexed{i, e.Reconcile(ctx, name)}
			}
		}()
	}

	for i := range names {
		work <- i
	}
	close(work)
	wg.Wait()
	close(results)

	outs := make([]Outcome, len(names))
	for r := range results {
		outs[r.i] = r.out
	}
	return outs
}
