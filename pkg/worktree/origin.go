package worktree

import (
	"context"
	"fmt"
	"strings"

	"claudette/pkg/gitx"
)

// Origin describes where a project's branch currently exists.
type Origin int

const (
	// OriginAbsent means the branch exists neither locally nor on the remote.
	OriginAbsent Origin = iota
	// OriginLocal means a local branch of the project's name exists. Local
	// always wins over remote: it reflects the most recent work.
	OriginLocal
	// OriginRemote means the branch exists only as a remote-tracking ref.
	OriginRemote
)

func (o Origin) String() string {
	switch o {
	case OriginLocal:
		return "local"
	case OriginRemote:
		return "remote"
	default:
		return "absent"
	}
}

// Resolver answers, fresh on every call, whether a branch of a given name
// exists locally, only on the remote, or nowhere. No caching: a prior
// partial reconciliation run may have created a local branch in between
// calls, and a stale answer here means creating a duplicate branch.
type Resolver struct {
	repo   string
	remote string
	git    gitx.Runner
}

// NewResolver returns a Resolver for the base repository at repo, checking
// remote-tracking refs against "origin".
func NewResolver(repo string, git gitx.Runner) *Resolver {
	return &Resolver{repo: repo, remote: "origin", git: git}
}

// Resolve reports the branch origin for name. A failing git invocation is a
// *BackendUnavailableError: an empty listing is a definitive "absent", but
// an error means the answer is unknown and the caller must not guess.
func (r *Resolver) Resolve(ctx context.Context, name string) (Origin, error) {
	out, _, err := r.git.Run(ctx, r.repo, "branch", "--list", name)
	if err != nil {
		return OriginAbsent, &BackendUnavailableError{Project: name, Err: fmt.Errorf("list local branches: %w", err)}
	}
	if strings.TrimSpace(out) != "" {
		return OriginLocal, nil
	}

	out, _, err = r.git.Run(ctx, r.repo, "branch", "-r", "--list", r.remote+"/"+name)
	if err != nil {
		return OriginAbsent, &BackendUnavailableError{Project: name, Err: fmt.Errorf("list remote branches: %w", err)}
	}
	if strings.TrimSpace(out) != "" {
		return OriginRemote, nil
	}
	return OriginAbsent, nil
}
