package worktree

import "fmt"

// BackendUnavailableError means the version-control backend could not be
// queried at all (repository corrupt, git unreachable). It is fatal for the
// affected project only; a fleet run keeps processing the others.
type BackendUnavailableError struct {
	Project string
	Err     error
}

func (e *BackendUnavailableError) Error() string {
	return fmt.Sprintf("version-control backend unavailable for project %s: %v", e.Project, e.Err)
}

func (e *BackendUnavailableError) Unwrap() error { return e.Err }

// BranchConflictError means re-establishing the worktree binding failed
// twice in a row, the attach-semantics retry included. The project is left
// broken and its relocated backup directory is kept so no work is lost.
type BranchConflictError struct {
	Project string
	Branch  string
	Stderr  string // trimmed stderr from the final attempt
}

func (e *BranchConflictError) Error() string {
	return fmt.Sprintf("branch conflict rebinding project %s to %s after retry: %s",
		e.Project, e.Branch, e.Stderr)
}
