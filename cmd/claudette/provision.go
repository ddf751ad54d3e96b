package main

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"claudette/pkg/metadata"
)

// CmdRunner abstracts non-git command execution (uv, npm, docker) for
// testability.
type CmdRunner interface {
	Run(ctx context.Context, dir, name string, args ...string) ([]byte, error)
}

// ExecRunner implements CmdRunner using os/exec.
type ExecRunner struct{}

// Run executes a command in dir and returns its stdout as bytes.
func (r *ExecRunner) Run(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, exitErr.Stderr)
		}
		return nil, fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}
	return out, nil
}

// provisioner installs a project's development environment: Python venv,
// backend dependencies, frontend node modules. These are opaque external
// operations with plain success/failure outcomes; claudette never inspects
// what they produce. The same steps regenerate artifacts after a thaw.
type provisioner struct {
	runner CmdRunner
	python string // interpreter passed to uv venv, e.g. "python3.11"
}

// Provision sets up the environment inside rec.Path.
func (p *provisioner) Provision(ctx context.Context, rec metadata.Record) error {
	venvPython := filepath.Join(rec.Path, ".venv", "bin", "python")

	steps := []struct {
		desc string
		dir  string
		name string
		args []string
	}{
		{"create virtualenv", rec.Path, "uv", []string{"venv", "-p", p.python}},
		{"install backend deps", rec.Path, "uv", []string{"pip", "install", "-r", "requirements/development.txt", "--python", venvPython}},
		{"install project editable", rec.Path, "uv", []string{"pip", "install", "-e", ".", "--python", venvPython}},
		{"install frontend deps", filepath.Join(rec.Path, "superset-frontend"), "npm", []string{"install"}},
	}
	for _, step := range steps {
		if _, err := p.runner.Run(ctx, step.dir, step.name, step.args...); err != nil {
			return fmt.Errorf("%s: %w", step.desc, err)
		}
	}
	return nil
}

// Regenerate rebuilds the artifacts a freeze removed. Same external steps
// as initial provisioning; satisfies freeze.Regenerator.
func (p *provisioner) Regenerate(ctx context.Context, rec metadata.Record) error {
	return p.Provision(ctx, rec)
}

// dockerUsage reports whether a project's compose stack has running
// containers. A docker error reads as "not in use", matching the CLI's
// historical behavior when docker is absent.
type dockerUsage struct {
	runner CmdRunner
}

// InUse satisfies freeze.UsageChecker.
func (d *dockerUsage) InUse(ctx context.Context, name string) (bool, error) {
	out, err := d.runner.Run(ctx, "", "docker", "ps",
		"--filter", "label=com.docker.compose.project="+name, "-q")
	if err != nil {
		return false, nil //nolint:nilerr // no docker means nothing running
	}
	return strings.TrimSpace(string(out)) != "", nil
}
