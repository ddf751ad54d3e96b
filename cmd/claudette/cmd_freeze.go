package main

import (
	"context"
	"fmt"
	"io"

	"claudette/pkg/freeze"

	"github.com/spf13/cobra"
)

type freezeConfig struct {
	app     *app
	mgr     *freeze.Manager
	out     io.Writer
	project string
}

// newFreezeCmd creates the "claudette freeze" subcommand.
func newFreezeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "freeze <project>",
		Short: "Reclaim disk space by removing regenerable dependencies",
		Long:  "Deletes the project's virtualenv and node_modules. The worktree and\nall committed and uncommitted work are untouched; run thaw to rebuild.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			return runFreeze(cmd.Context(), &freezeConfig{
				app:     a,
				mgr:     a.freezeManager(),
				out:     cmd.OutOrStdout(),
				project: args[0],
			})
		},
	}
}

func runFreeze(ctx context.Context, cfg *freezeConfig) error {
	if err := cfg.mgr.Freeze(ctx, cfg.project); err != nil {
		return err
	}
	fmt.Fprintln(cfg.out, render(styleGood, fmt.Sprintf("project %s frozen; thaw with: claudette thaw %s", cfg.project, cfg.project)))
	return nil
}

type thawConfig struct {
	app     *app
	mgr     *freeze.Manager
	out     io.Writer
	project string
}

// newThawCmd creates the "claudette thaw" subcommand.
func newThawCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "thaw <project>",
		Short: "Rebuild a frozen project's dependencies",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			return runThaw(cmd.Context(), &thawConfig{
				app:     a,
				mgr:     a.freezeManager(),
				out:     cmd.OutOrStdout(),
				project: args[0],
			})
		},
	}
}

func runThaw(ctx context.Context, cfg *thawConfig) error {
	fmt.Fprintln(cfg.out, "rebuilding dependencies, this can take a few minutes...")
	if err := cfg.mgr.Thaw(ctx, cfg.project); err != nil {
		return err
	}
	fmt.Fprintln(cfg.out, render(styleGood, "project "+cfg.project+" thawed"))
	return nil
}
