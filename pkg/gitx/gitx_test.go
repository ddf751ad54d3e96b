package gitx_test

import (
	"context"
	"os/exec"
	"strings"
	"testing"

	"claudette/pkg/gitx"
)

func TestExecRunner_RunsGit(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	r := &gitx.ExecRunner{}
	stdout, _, err := r.Run(context.Background(), t.TempDir(), "--version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(stdout, "git version") {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestExecRunner_CapturesStderrOnFailure(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	r := &gitx.ExecRunner{}
	_, stderr, err := r.Run(context.Background(), t.TempDir(), "rev-parse", "--is-inside-work-tree")
	if err == nil {
		t.Skip("temp dir unexpectedly inside a git repository")
	}
	if stderr == "" {
		t.Error("stderr empty on failing git invocation")
	}
}
