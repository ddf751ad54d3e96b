package main

import (
	"errors"
	"strings"
	"testing"

	"claudette/pkg/worktree"
)

func TestDoctorLine(t *testing.T) {
	cases := []struct {
		name          string
		outcome       worktree.Outcome
		wantMark      string
		wantUnhealthy bool
	}{
		{
			name:     "healthy",
			outcome:  worktree.Outcome{Name: "a", State: worktree.StateBound},
			wantMark: "healthy",
		},
		{
			name:          "pending",
			outcome:       worktree.Outcome{Name: "a", Pending: true},
			wantMark:      "pending",
			wantUnhealthy: true,
		},
		{
			name: "broken",
			outcome: worktree.Outcome{
				Name:            "a",
				State:           worktree.StateBroken,
				Err:             errors.New("branch conflict"),
				RelocatedBackup: "/backups/a.repair",
			},
			wantMark:      "broken",
			wantUnhealthy: true,
		},
		{
			// Bound with a residual error (unverified overlay, partial
			// capture) is a warning: content is preserved and the binding
			// is live, so it must not fail the run or read as broken.
			name: "bound with warning",
			outcome: worktree.Outcome{
				Name:            "a",
				State:           worktree.StateBound,
				Err:             errors.New("overlay unverified"),
				RelocatedBackup: "/backups/a.repair",
			},
			wantMark: "warning",
		},
		{
			name: "carried forward",
			outcome: worktree.Outcome{
				Name:                "a",
				State:               worktree.StateBound,
				SnapshotID:          "s1",
				FilesCarriedForward: 3,
				RelocatedBackup:     "/backups/a.repair",
			},
			wantMark: "fixed",
		},
		{
			name:     "clean rebind",
			outcome:  worktree.Outcome{Name: "a", State: worktree.StateBound, SnapshotID: "s1"},
			wantMark: "fixed",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			line, unhealthy := doctorLine(tc.outcome)
			if !strings.Contains(line, tc.wantMark) {
				t.Errorf("line = %q, want mark %q", line, tc.wantMark)
			}
			if unhealthy != tc.wantUnhealthy {
				t.Errorf("unhealthy = %v, want %v", unhealthy, tc.wantUnhealthy)
			}
			if tc.outcome.RelocatedBackup != "" && !strings.Contains(line, tc.outcome.RelocatedBackup) {
				t.Errorf("line %q does not name the relocated backup", line)
			}
		})
	}
}
