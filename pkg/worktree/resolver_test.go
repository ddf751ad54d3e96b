package worktree //nolint:testpackage // shares the mock git runner

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestResolve_LocalWinsOverRemote(t *testing.T) {
	mock := &mockGitRunner{
		results: []mockResult{
			{Stdout: "  feat-a\n"}, // local branch listed
		},
	}
	r := NewResolver("/repo", mock)

	origin, err := r.Resolve(context.Background(), "feat-a")
	if err != nil {
		t.Fatal(err)
	}
	if origin != OriginLocal {
		t.Errorf("origin = %v, want local", origin)
	}
	// Local hit must short-circuit: the remote listing is never consulted.
	if calls := mock.getCalls(); len(calls) != 1 {
		t.Errorf("got %d git calls, want 1: %v", len(calls), calls)
	}
}

func TestResolve_RemoteOnly(t *testing.T) {
	mock := &mockGitRunner{
		results: []mockResult{
			{Stdout: ""},
			{Stdout: "  origin/feat-b\n"},
		},
	}
	r := NewResolver("/repo", mock)

	origin, err := r.Resolve(context.Background(), "feat-b")
	if err != nil {
		t.Fatal(err)
	}
	if origin != OriginRemote {
		t.Errorf("origin = %v, want remote", origin)
	}

	calls := mock.getCalls()
	if got := strings.Join(calls[1].Args, " "); got != "branch -r --list origin/feat-b" {
		t.Errorf("remote listing call = %q", got)
	}
}

func TestResolve_Absent(t *testing.T) {
	mock := &mockGitRunner{
		results: []mockResult{
			{Stdout: ""},
			{Stdout: ""},
		},
	}
	r := NewResolver("/repo", mock)

	origin, err := r.Resolve(context.Background(), "feat-new")
	if err != nil {
		t.Fatal(err)
	}
	if origin != OriginAbsent {
		t.Errorf("origin = %v, want absent", origin)
	}
}

func TestResolve_GitFailureIsNotAbsent(t *testing.T) {
	mock := &mockGitRunner{
		results: []mockResult{
			{Stderr: "fatal: not a git repository", Err: errors.New("exit 128")},
		},
	}
	r := NewResolver("/repo", mock)

	_, err := r.Resolve(context.Background(), "feat-c")

	var unavailable *BackendUnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("err = %v, want BackendUnavailableError", err)
	}
	if unavailable.Project != "feat-c" {
		t.Errorf("project = %q", unavailable.Project)
	}
}
