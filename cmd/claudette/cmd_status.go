package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"claudette/pkg/worktree"

	"github.com/spf13/cobra"
)

type statusConfig struct {
	app     *app
	out     io.Writer
	project string
}

// newStatusCmd creates the "claudette status" subcommand.
func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status [project]",
		Short: "Show detailed status for one project, or the whole fleet",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if len(args) == 0 {
				return runList(cmd.Context(), &listConfig{app: a, out: cmd.OutOrStdout()})
			}
			return runStatus(cmd.Context(), &statusConfig{
				app:     a,
				out:     cmd.OutOrStdout(),
				project: args[0],
			})
		},
	}
}

func runStatus(ctx context.Context, cfg *statusConfig) error {
	a := cfg.app
	rec, ok := a.reg.Get(cfg.project)
	if !ok {
		return fmt.Errorf("project %q not found", cfg.project)
	}

	eng := a.engine(nil)
	state := eng.Health(ctx, rec.Name)

	fmt.Fprintln(cfg.out, render(styleHeader, rec.Name))
	fmt.Fprintf(cfg.out, "  port:   %d\n", rec.Port)
	fmt.Fprintf(cfg.out, "  path:   %s\n", rec.Path)
	fmt.Fprintf(cfg.out, "  state:  %s\n", renderState(state))
	if rec.Frozen {
		fmt.Fprintf(cfg.out, "  frozen: %s\n", render(styleWarn, "yes (dependencies removed; run claudette thaw)"))
	}
	if rec.PRLink != "" {
		fmt.Fprintf(cfg.out, "  pr:     %s\n", rec.PRLink)
	}

	// Anything beyond metadata needs a live worktree to inspect.
	if state != worktree.StateBound {
		return nil
	}

	if out, _, err := a.git.Run(ctx, rec.Path, "branch", "--show-current"); err == nil {
		fmt.Fprintf(cfg.out, "  branch: %s\n", strings.TrimSpace(out))
	}
	if out, _, err := a.git.Run(ctx, rec.Path, "status", "--porcelain"); err == nil {
		n := 0
		if s := strings.TrimSpace(out); s != "" {
			n = len(strings.Split(s, "\n"))
		}
		if n > 0 {
			fmt.Fprintf(cfg.out, "  uncommitted: %s\n", render(styleWarn, fmt.Sprintf("%d file(s)", n)))
		} else {
			fmt.Fprintf(cfg.out, "  uncommitted: %s\n", render(styleGood, "clean"))
		}
	}
	if out, _, err := a.git.Run(ctx, rec.Path, "log", "--oneline", "-5"); err == nil && strings.TrimSpace(out) != "" {
		fmt.Fprintln(cfg.out, "  recent commits:")
		for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
			fmt.Fprintf(cfg.out, "    %s\n", render(styleMuted, line))
		}
	}
	return nil
}
