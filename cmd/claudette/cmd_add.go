package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"claudette/pkg/metadata"
	"claudette/pkg/worktree"

	"github.com/spf13/cobra"
)

// addConfig holds injectable dependencies for the add command.
type addConfig struct {
	app       *app
	engine    *worktree.Engine
	provision func(ctx context.Context, rec metadata.Record) error
	out       io.Writer

	project  string
	port     int // 0 = auto-assign
	reuse    bool
	forceNew bool
	newName  string
}

// newAddCmd creates the "claudette add" subcommand.
func newAddCmd() *cobra.Command {
	var (
		reuse    bool
		forceNew bool
		newName  string
	)
	cmd := &cobra.Command{
		Use:   "add <project> [port]",
		Short: "Create a new worktree project with an isolated environment",
		Long:  "The project name becomes both the git branch name and the worktree\ndirectory name. The frontend port is auto-assigned from the reserved\nrange unless given explicitly.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			port := 0
			if len(args) == 2 {
				port, err = strconv.Atoi(args[1])
				if err != nil {
					return fmt.Errorf("invalid port %q", args[1])
				}
			}
			p := &provisioner{runner: &ExecRunner{}, python: a.settings.PythonVersion}
			return runAdd(cmd.Context(), &addConfig{
				app:       a,
				engine:    a.engine(nil),
				provision: p.Provision,
				out:       cmd.OutOrStdout(),
				project:   args[0],
				port:      port,
				reuse:     reuse,
				forceNew:  forceNew,
				newName:   newName,
			})
		},
	}
	cmd.Flags().BoolVar(&reuse, "reuse", false, "reuse an existing branch of the same name")
	cmd.Flags().BoolVar(&forceNew, "force-new", false, "delete an existing branch of the same name and start fresh")
	cmd.Flags().StringVar(&newName, "name", "", "use a different branch name on conflict")
	return cmd
}

func runAdd(ctx context.Context, cfg *addConfig) error {
	if cfg.reuse && cfg.forceNew {
		return fmt.Errorf("cannot use both --reuse and --force-new")
	}
	a := cfg.app
	if _, err := os.Stat(a.paths.RepoRoot); err != nil {
		return fmt.Errorf("claudette is not initialized; run 'claudette init' first")
	}

	project := cfg.project

	// Branch conflict handling up front, so the recorded name is final.
	resolver := worktree.NewResolver(a.paths.RepoRoot, a.git)
	origin, err := resolver.Resolve(ctx, project)
	if err != nil {
		return err
	}
	if origin == worktree.OriginLocal {
		switch {
		case cfg.newName != "":
			alt, err := resolver.Resolve(ctx, cfg.newName)
			if err != nil {
				return err
			}
			if alt != worktree.OriginAbsent {
				return fmt.Errorf("branch %q also already exists", cfg.newName)
			}
			project = cfg.newName
		case cfg.forceNew:
			if _, stderr, err := a.git.Run(ctx, a.paths.RepoRoot, "branch", "-D", project); err != nil {
				return fmt.Errorf("delete branch %q: %w: %s", project, err, stderr)
			}
		case cfg.reuse:
			fmt.Fprintf(cfg.out, "reusing existing branch %q\n", project)
		default:
			return fmt.Errorf("branch %q already exists; pass --reuse, --force-new, or --name <other>", project)
		}
	}

	// Port assignment. An explicit port is checked for collisions; auto
	// assignment picks the lowest free one.
	port := cfg.port
	if port == 0 {
		port, err = a.alloc.Allocate()
		if err != nil {
			return err
		}
		fmt.Fprintf(cfg.out, "creating project %s (auto-assigned port %d)\n", project, port)
	} else {
		if owner, taken := a.alloc.InUse(port); taken {
			suggestion, suggestErr := a.alloc.Allocate()
			if suggestErr == nil {
				return fmt.Errorf("port %d is already used by project %q; try %d or omit the port", port, owner, suggestion)
			}
			return fmt.Errorf("port %d is already used by project %q", port, owner)
		}
		fmt.Fprintf(cfg.out, "creating project %s (port %d)\n", project, port)
	}

	if err := os.MkdirAll(a.paths.WorktreeBase, 0o755); err != nil {
		return fmt.Errorf("create worktree base: %w", err)
	}

	if _, err := cfg.engine.Bind(ctx, project); err != nil {
		return err
	}

	rec := metadata.Record{
		Name: project,
		Port: port,
		Path: defaultProjectPath(a.paths.WorktreeBase, project),
	}
	if err := a.reg.Put(&rec); err != nil {
		return err
	}

	// Environment setup is external and may take minutes; a failure leaves
	// the worktree and record in place so it can be re-run.
	if cfg.provision != nil {
		if err := cfg.provision(ctx, rec); err != nil {
			fmt.Fprintln(cfg.out, render(styleWarn, "environment setup incomplete: "+err.Error()))
			fmt.Fprintln(cfg.out, render(styleMuted, "the worktree and metadata were kept; finish setup manually"))
		}
	}

	fmt.Fprintln(cfg.out, render(styleGood, "project "+project+" created"))
	return nil
}
