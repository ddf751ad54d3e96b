package worktree

import (
	"context"
	"os"
	"strings"
)

// BindingState describes whether a project directory is currently a valid
// worktree bound to its branch.
type BindingState int

const (
	// StateUnbound means the project directory does not exist; there is
	// nothing on disk to preserve before re-binding.
	StateUnbound BindingState = iota
	// StateBound means the directory is a git-recognized worktree checked
	// out on the branch matching the project name.
	StateBound
	// StateBroken means the directory exists but is not a valid binding:
	// git does not recognize it, or it sits on the wrong branch.
	StateBroken
)

func (s BindingState) String() string {
	switch s {
	case StateBound:
		return "bound"
	case StateBroken:
		return "broken"
	default:
		return "unbound"
	}
}

// Health checks the binding state of the project's directory. It never
// mutates anything; reconciliation uses it for the step-1 fast path and
// callers use it to gate freeze.
func (e *Engine) Health(ctx context.Context, name string) BindingState {
	return e.health(ctx, e.pathFor(name), name)
}

func (e *Engine) health(ctx context.Context, path, branch string) BindingState {
	if _, err := os.Stat(path); err != nil {
		return StateUnbound
	}
	out, _, err := e.git.Run(ctx, path, "rev-parse", "--is-inside-work-tree")
	if err != nil || strings.TrimSpace(out) != "true" {
		return StateBroken
	}
	out, _, err = e.git.Run(ctx, path, "branch", "--show-current")
	if err != nil || strings.TrimSpace(out) != branch {
		return StateBroken
	}
	return StateBound
}
