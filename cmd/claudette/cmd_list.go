package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"claudette/pkg/worktree"

	"github.com/spf13/cobra"
)

type listConfig struct {
	app *app
	out io.Writer
}

// newListCmd creates the "claudette list" subcommand.
func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all managed projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			return runList(cmd.Context(), &listConfig{app: a, out: cmd.OutOrStdout()})
		},
	}
}

func runList(ctx context.Context, cfg *listConfig) error {
	a := cfg.app
	names := a.reg.Names()
	if len(names) == 0 {
		fmt.Fprintln(cfg.out, render(styleMuted, "no projects yet; create one with: claudette add <name>"))
		return nil
	}

	eng := a.engine(nil)
	tw := tabwriter.NewWriter(cfg.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, render(styleHeader, "PROJECT\tPORT\tPATH\tSTATE\tFROZEN"))
	for _, name := range names {
		rec, _ := a.reg.Get(name)
		stateCol := renderState(eng.Health(ctx, name))
		frozen := ""
		if rec.Frozen {
			frozen = render(styleWarn, "yes")
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n", rec.Name, rec.Port, rec.Path, stateCol, frozen)
	}
	return tw.Flush()
}

func renderState(s worktree.BindingState) string {
	switch s {
	case worktree.StateBound:
		return render(styleGood, s.String())
	case worktree.StateBroken:
		return render(styleBad, s.String())
	default:
		return render(styleWarn, s.String())
	}
}
