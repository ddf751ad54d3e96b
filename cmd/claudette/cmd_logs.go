package main

import (
	"context"
	"fmt"
	"io"

	"claudette/pkg/auditlog"

	"github.com/spf13/cobra"
)

type logsConfig struct {
	reader  *auditlog.Reader
	out     io.Writer
	project string
	limit   int
}

// newLogsCmd creates the "claudette logs" subcommand.
func newLogsCmd() *cobra.Command {
	var (
		project string
		limit   int
	)
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show recent reconciliation events",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			reader, err := auditlog.NewReader(a.paths.AuditDBPath)
			if err != nil {
				return fmt.Errorf("open audit log: %w", err)
			}
			defer reader.Close()
			return runLogs(cmd.Context(), &logsConfig{
				reader:  reader,
				out:     cmd.OutOrStdout(),
				project: project,
				limit:   limit,
			})
		},
	}
	cmd.Flags().StringVarP(&project, "project", "p", "", "only events for this project")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "max events to show")
	return cmd
}

func runLogs(ctx context.Context, cfg *logsConfig) error {
	entries, err := cfg.reader.Recent(ctx, auditlog.QueryOpts{
		Project: cfg.project,
		Limit:   cfg.limit,
	})
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(cfg.out, render(styleMuted, "no events recorded"))
		return nil
	}
	for _, e := range entries {
		line := fmt.Sprintf("%s  %-8s %s", e.CreatedAt.Format("2006-01-02 15:04:05"), e.Action, e.Project)
		if e.FilesCarried > 0 {
			line += fmt.Sprintf("  carried=%d", e.FilesCarried)
		}
		if e.Error != "" {
			line += "  " + render(styleBad, e.Error)
		}
		fmt.Fprintln(cfg.out, line)
	}
	return nil
}
