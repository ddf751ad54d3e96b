package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"claudette/pkg/backup"

	"github.com/spf13/cobra"
)

// removeConfig holds injectable dependencies for the remove command.
type removeConfig struct {
	app     *app
	runner  CmdRunner
	backups *backup.Service
	in      io.Reader
	out     io.Writer

	project string
	force   bool
}

// newRemoveCmd creates the "claudette remove" subcommand.
func newRemoveCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "remove <project>",
		Short: "Remove a worktree project and clean up its resources",
		Long:  "Stops the project's containers, removes the worktree binding, and\nfrees its port. Uncommitted content is snapshotted first and the\nsnapshot path printed, so nothing is lost silently.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			return runRemove(cmd.Context(), &removeConfig{
				app:     a,
				runner:  &ExecRunner{},
				backups: backup.NewService(a.paths.BackupsDir),
				in:      cmd.InOrStdin(),
				out:     cmd.OutOrStdout(),
				project: args[0],
				force:   force,
			})
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip confirmation and remove even when the snapshot is incomplete")
	return cmd
}

func runRemove(ctx context.Context, cfg *removeConfig) error {
	a := cfg.app
	rec, ok := a.reg.Get(cfg.project)
	if !ok {
		return fmt.Errorf("project %q not found", cfg.project)
	}

	if !cfg.force {
		fmt.Fprintf(cfg.out, "this will permanently remove project %q and all its data\n", rec.Name)
		fmt.Fprint(cfg.out, "are you sure? [y/N] ")
		line, _ := bufio.NewReader(cfg.in).ReadString('\n')
		if answer := strings.ToLower(strings.TrimSpace(line)); answer != "y" && answer != "yes" {
			fmt.Fprintln(cfg.out, "cancelled")
			return nil
		}
	}

	// Destruction must first offer any uncommitted content to the user:
	// snapshot before removing, and print where the snapshot lives. A git
	// failure here means the binding is broken and the directory contents
	// are unknowable, so capture in that case too.
	if _, statErr := os.Stat(rec.Path); statErr == nil {
		out, _, gitErr := a.git.Run(ctx, rec.Path, "status", "--porcelain")
		if gitErr != nil || strings.TrimSpace(out) != "" {
			snap, err := cfg.backups.Capture(rec.Name, rec.Path)
			if snap == nil {
				return fmt.Errorf("snapshot uncommitted content: %w", err)
			}
			var partial *backup.PartialIOError
			if errors.As(err, &partial) {
				fmt.Fprintln(cfg.out, render(styleWarn, "snapshot incomplete: "+partial.Error()))
				if !cfg.force {
					return fmt.Errorf("refusing to remove %q: %d file(s) could not be preserved; use --force to remove anyway",
						rec.Name, len(partial.Failures))
				}
				fmt.Fprintf(cfg.out, "partial snapshot kept at %s\n", snap.Dir)
			} else {
				fmt.Fprintf(cfg.out, "uncommitted content preserved at %s\n", snap.Dir)
			}
		}
	}

	// Stop containers. Best effort: docker being down is no reason to keep
	// a half-removed project around.
	_, _ = cfg.runner.Run(ctx, rec.Path, "docker-compose",
		"-p", rec.Name, "-f", "docker-compose-light.yml", "down")

	if _, stderr, err := a.git.Run(ctx, a.paths.RepoRoot, "worktree", "remove", rec.Path, "--force"); err != nil {
		return fmt.Errorf("worktree remove %s: %w: %s", rec.Name, err, stderr)
	}

	if err := a.reg.Remove(rec.Name); err != nil {
		return err
	}
	if err := a.alloc.Release(rec.Port); err != nil {
		return err
	}

	fmt.Fprintln(cfg.out, render(styleGood, "project "+rec.Name+" removed"))
	return nil
}
