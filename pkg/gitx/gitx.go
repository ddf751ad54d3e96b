// Package gitx provides the git command execution boundary shared by every
// package that talks to the version-control backend. Callers depend on the
// Runner interface; production code uses ExecRunner, tests inject scripted
// mocks.
package gitx

import (
	"context"
	"os/exec"
	"strings"
)

// Runner abstracts git command execution for testability.
type Runner interface {
	Run(ctx context.Context, dir string, args ...string) (stdout string, stderr string, err error)
}

// ExecRunner implements Runner using os/exec.
type ExecRunner struct{}

// Run executes a git command in the given directory and returns stdout and stderr.
func (r *ExecRunner) Run(ctx context.Context, dir string, args ...string) (stdout, stderr string, err error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir

	var stdoutBuf, stderrBuf strings.Builder
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	err = cmd.Run()
	return stdoutBuf.String(), stderrBuf.String(), err
}
