// Package ports assigns each project a unique, stable frontend port from the
// reserved range. The registry is the source of truth for which ports are
// held; the allocator only computes the lowest free one, so two concurrent
// Allocate calls can never hand out the same port.
package ports

import (
	"fmt"

	"claudette/pkg/metadata"
)

// RangeExhaustedError is returned when every port in the reserved range is
// held by a project. It is fatal for new-project creation only; existing
// projects are unaffected.
type RangeExhaustedError struct {
	Min, Max int
}

func (e *RangeExhaustedError) Error() string {
	return fmt.Sprintf("no free port in range %d-%d", e.Min, e.Max)
}

// Allocator hands out ports backed by the project registry.
type Allocator struct {
	reg *metadata.Registry
}

// NewAllocator returns an Allocator over the given registry.
func NewAllocator(reg *metadata.Registry) *Allocator {
	return &Allocator{reg: reg}
}

// Allocate returns the lowest port in the reserved range not held by any
// registry record, frozen projects included. The port is only reserved once
// the caller commits a record carrying it; callers that race will be caught
// by the registry's port-uniqueness check on Put.
func (a *Allocator) Allocate() (int, error) {
	used := a.reg.UsedPorts()
	for port := metadata.PortMin; port <= metadata.PortMax; port++ {
		if _, taken := used[port]; !taken {
			return port, nil
		}
	}
	return 0, &RangeExhaustedError{Min: metadata.PortMin, Max: metadata.PortMax}
}

// InUse reports whether port is currently held, and by which project.
func (a *Allocator) InUse(port int) (string, bool) {
	owner, taken := a.reg.UsedPorts()[port]
	return owner, taken
}

// Release verifies that port is no longer recorded against any project.
// Ports are freed by destroying the owning project's record, not by
// unbinding it; releasing a port that is still held is an error.
func (a *Allocator) Release(port int) error {
	if owner, taken := a.reg.UsedPorts()[port]; taken {
		return fmt.Errorf("port %d still held by project %q", port, owner)
	}
	return nil
}
