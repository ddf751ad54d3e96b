package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// initConfig holds injectable dependencies for the init command.
type initConfig struct {
	app   *app
	out   io.Writer
	force bool
}

// newInitCmd creates the "claudette init" subcommand.
func newInitCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize claudette and clone the base repository",
		Long:  "Creates the claudette home directory layout, clones the base\nrepository all worktrees hang off, and records the metadata\nformat version.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			return runInit(cmd.Context(), &initConfig{
				app:   a,
				out:   cmd.OutOrStdout(),
				force: force,
			})
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "re-initialize, replacing the existing base repository")
	return cmd
}

func runInit(ctx context.Context, cfg *initConfig) error {
	a := cfg.app

	if _, err := os.Stat(a.paths.RepoRoot); err == nil && !cfg.force {
		fmt.Fprintln(cfg.out, "claudette is already initialized")
		fmt.Fprintln(cfg.out, render(styleMuted, "base repository: "+a.paths.RepoRoot))
		fmt.Fprintln(cfg.out, render(styleMuted, "use --force to re-initialize"))
		return nil
	}

	for _, dir := range []string{a.paths.Home, a.paths.WorktreeBase, a.paths.BackupsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}

	if cfg.force {
		if err := os.RemoveAll(a.paths.RepoRoot); err != nil {
			return fmt.Errorf("remove old base repository: %w", err)
		}
	}

	fmt.Fprintf(cfg.out, "cloning %s (this may take a while)...\n", a.settings.RepoURL)
	if _, stderr, err := a.git.Run(ctx, a.paths.Home, "clone", a.settings.RepoURL, a.paths.RepoRoot); err != nil {
		return fmt.Errorf("clone base repository: %w: %s", err, stderr)
	}

	if err := a.store.WriteVersionFile(); err != nil {
		return err
	}

	fmt.Fprintln(cfg.out, render(styleGood, "claudette initialized"))
	fmt.Fprintln(cfg.out, render(styleMuted, "create your first project with: claudette add my-feature"))
	return nil
}
