package main

import (
	"fmt"

	"claudette/internal/appversion"

	"github.com/spf13/cobra"
)

// newRootCmd creates the root claudette command with all subcommands attached.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "claudette",
		Short:         "Multi-environment workflow manager using git worktrees",
		Long:          "claudette manages a fleet of isolated development environments,\neach a git worktree of one shared base repository bound to a branch\nof the same name, with per-project ports, backups, and repair.",
		Version:       fmt.Sprintf("claudette %s", appversion.String()),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("{{.Version}}\n")

	cmd.AddCommand(
		newInitCmd(),
		newAddCmd(),
		newRemoveCmd(),
		newListCmd(),
		newStatusCmd(),
		newDoctorCmd(),
		newFreezeCmd(),
		newThawCmd(),
		newLogsCmd(),
	)

	return cmd
}
