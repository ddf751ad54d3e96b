package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"claudette/pkg/worktree"

	"github.com/spf13/cobra"
)

type doctorConfig struct {
	app    *app
	engine *worktree.Engine
	out    io.Writer

	projects []string
	timeout  time.Duration
	watch    bool
}

// newDoctorCmd creates the "claudette doctor" subcommand.
func newDoctorCmd() *cobra.Command {
	var (
		jobs    int
		timeout time.Duration
		watch   bool
	)
	cmd := &cobra.Command{
		Use:   "doctor [project...]",
		Short: "Check and repair worktree bindings across the fleet",
		Long: "Inspects every managed project (or just the named ones) and repairs\n" +
			"broken worktree bindings, carrying uncommitted work forward through a\n" +
			"snapshot. Exits non-zero if any project is left unhealthy.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			db, w, err := a.openAudit()
			if err != nil {
				return err
			}
			defer db.Close()

			if jobs > 0 {
				a.settings.DoctorJobs = jobs
			}
			return runDoctor(cmd.Context(), &doctorConfig{
				app:      a,
				engine:   a.engine(&auditRecorder{w: w}),
				out:      cmd.OutOrStdout(),
				projects: args,
				timeout:  timeout,
				watch:    watch,
			})
		},
	}
	cmd.Flags().IntVar(&jobs, "jobs", 0, "max concurrent repairs (default from config)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "overall deadline for the run")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "re-run on worktree directory changes")
	return cmd
}

func runDoctor(ctx context.Context, cfg *doctorConfig) error {
	if !cfg.watch {
		return doctorPass(ctx, cfg)
	}

	if err := doctorPass(ctx, cfg); err != nil {
		fmt.Fprintln(cfg.out, render(styleBad, err.Error()))
	}
	fmt.Fprintln(cfg.out, render(styleMuted, "watching for changes (ctrl-c to stop)"))
	return watchWorktrees(ctx, cfg.app.paths.WorktreeBase, func() {
		if err := doctorPass(ctx, cfg); err != nil {
			fmt.Fprintln(cfg.out, render(styleBad, err.Error()))
		}
	})
}

func doctorPass(ctx context.Context, cfg *doctorConfig) error {
	names := cfg.projects
	if len(names) == 0 {
		names = cfg.app.reg.Names()
	}
	if len(names) == 0 {
		fmt.Fprintln(cfg.out, render(styleMuted, "no projects to check"))
		return nil
	}

	runCtx := ctx
	if cfg.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, cfg.timeout)
		defer cancel()
	}

	outcomes := cfg.engine.ReconcileAll(runCtx, names)

	unhealthy := 0
	for _, o := range outcomes {
		line, bad := doctorLine(o)
		fmt.Fprintln(cfg.out, line)
		if bad {
			unhealthy++
		}
	}

	if unhealthy > 0 {
		return fmt.Errorf("%d of %d project(s) unhealthy", unhealthy, len(outcomes))
	}
	return nil
}

// doctorLine renders one reconciliation outcome and reports whether it
// counts toward the non-zero exit. The binding state decides the verdict;
// a bound project with a residual error (unverified overlay, partial
// capture) is a warning, not a failure, since its content is preserved.
func doctorLine(o worktree.Outcome) (string, bool) {
	relocated := func(line string) string {
		if o.RelocatedBackup != "" {
			line += fmt.Sprintf("\n        previous contents kept at %s", o.RelocatedBackup)
		}
		return line
	}

	switch {
	case o.Pending:
		return fmt.Sprintf("%s %s", render(styleWarn, "pending"), o.Name), true
	case o.State != worktree.StateBound:
		return relocated(fmt.Sprintf("%s %s: %v", render(styleBad, "broken "), o.Name, o.Err)), true
	case o.Err != nil:
		return relocated(fmt.Sprintf("%s %s: rebound, but: %v", render(styleWarn, "warning"), o.Name, o.Err)), false
	case o.FilesCarriedForward > 0:
		return relocated(fmt.Sprintf("%s %s: rebound, %d file(s) carried forward",
			render(styleGood, "fixed  "), o.Name, o.FilesCarriedForward)), false
	case o.SnapshotID != "":
		return fmt.Sprintf("%s %s: rebound", render(styleGood, "fixed  "), o.Name), false
	default:
		return fmt.Sprintf("%s %s", render(styleGood, "healthy"), o.Name), false
	}
}
