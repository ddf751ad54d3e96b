// Package metadata persists per-project facts as human-editable TOML records
// and exposes them through an in-memory Registry. The Registry is the single
// source of truth for name, port, and path uniqueness across the fleet;
// every mutation goes through it so the uniqueness invariants hold under
// concurrent reconciliation.
package metadata

import (
	"fmt"
	"strings"
)

// Port range reserved for claudette projects. One port per project,
// stable for the project's lifetime.
const (
	PortMin = 9000
	PortMax = 9999
)

// Record holds the persisted facts for one project. The file lives at
// <home>/projects/<name>.toml and may be read (but never written) by
// external tools.
type Record struct {
	Name   string `toml:"name"`
	Port   int    `toml:"port"`
	Path   string `toml:"path"`
	PRLink string `toml:"pr_link,omitempty"`
	Frozen bool   `toml:"frozen,omitempty"`
}

// Validate checks that the record is internally consistent: non-empty name
// without path separators, a port inside the reserved range, and a
// non-empty path.
func (r *Record) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("project name is empty")
	}
	if strings.ContainsAny(r.Name, "/\\") || r.Name == "." || r.Name == ".." {
		return fmt.Errorf("invalid project name %q", r.Name)
	}
	if r.Port < PortMin || r.Port > PortMax {
		return fmt.Errorf("port %d outside reserved range %d-%d", r.Port, PortMin, PortMax)
	}
	if r.Path == "" {
		return fmt.Errorf("project %q has no path", r.Name)
	}
	return nil
}
