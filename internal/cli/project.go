package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/panecraft/pkg/cache"
	"github.com/matzehuels/panecraft/pkg/config"
	"github.com/matzehuels/panecraft/pkg/design"
	perrors "github.com/matzehuels/panecraft/pkg/errors"
	pio "github.com/matzehuels/panecraft/pkg/io"
	"github.com/matzehuels/panecraft/pkg/project"
	"github.com/matzehuels/panecraft/pkg/session"
)

func (c *CLI) projectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "project",
		Aliases: []string{"projects"},
		Short:   "Manage saved projects",
		Long: `Save design files as projects in the configured store and fetch them back.

Projects belong to the user signed in with "panecraft login", or to the local
user when nobody is signed in.`,
	}

	cmd.AddCommand(c.projectListCommand())
	cmd.AddCommand(c.projectPushCommand())
	cmd.AddCommand(c.projectPullCommand())
	cmd.AddCommand(c.projectRmCommand())

	return cmd
}

// projectEnv is an open project store and the user acting on it.
type projectEnv struct {
	cfg    *config.Config
	store  project.Store
	userID string
}

func (c *CLI) openProjectEnv(ctx context.Context) (*projectEnv, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	sess, err := c.currentSession(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		sess = session.MockLocal()
	}
	store, err := cfg.OpenProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("open project store: %w", err)
	}
	c.Logger.Debug("project store opened", "backend", cfg.Storage.Backend, "user", sess.UserID())
	return &projectEnv{cfg: cfg, store: store, userID: sess.UserID()}, nil
}

// withRetry retries fn while the store reports backend failures.
func withRetry(ctx context.Context, fn func() error) error {
	return cache.RetryWithBackoff(ctx, func() error {
		err := fn()
		if perrors.Is(err, perrors.ErrCodeStorage) {
			return cache.Retryable(err)
		}
		return err
	})
}

// get fetches a project the user may read.
func (e *projectEnv) get(ctx context.Context, id string) (*project.Project, error) {
	var p *project.Project
	err := withRetry(ctx, func() (err error) {
		p, err = e.store.Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	if !p.CanRead(e.userID) {
		return nil, project.ErrNotFound
	}
	return p, nil
}

// =============================================================================
// project list
// =============================================================================

func (c *CLI) projectListCommand() *cobra.Command {
	var opts project.ListOptions

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List your projects, most recently updated first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			env, err := c.openProjectEnv(ctx)
			if err != nil {
				return err
			}
			defer env.store.Close()

			var page *project.Page
			err = withRetry(ctx, func() (err error) {
				page, err = env.store.ListByUser(ctx, env.userID, opts)
				return err
			})
			if err != nil {
				return err
			}
			if len(page.Projects) == 0 {
				printInfo("No projects")
				printNextStep("Save a design", appName+" project push -f "+defaultDesignFile)
				return nil
			}
			writeProjectTable(cmd.OutOrStdout(), page.Projects, time.Now())
			if page.HasMore {
				printNextStep("More", fmt.Sprintf("%s project list --after %s", appName, page.Next))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.Limit, "limit", project.DefaultPageSize, "projects per page")
	cmd.Flags().StringVar(&opts.After, "after", "", "cursor printed by the previous page")
	return cmd
}

func writeProjectTable(w io.Writer, projects []*project.Project, now time.Time) {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	rows := make([][]string, len(projects))
	for i, p := range projects {
		public := ""
		if p.IsPublic {
			public = "✓"
		}
		rows[i] = []string{p.ID, p.Title, strconv.Itoa(len(p.Design.Nodes)), public, formatRelativeTime(p.UpdatedAt, now)}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Title", "Nodes", "Public", "Updated").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case col == 0 || col == 4:
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			return lipgloss.NewStyle()
		})
	fmt.Fprintln(w, t.Render())
}

// =============================================================================
// project push
// =============================================================================

func (c *CLI) projectPushCommand() *cobra.Command {
	var (
		path   string
		title  string
		public bool
	)

	cmd := &cobra.Command{
		Use:   "push",
		Short: "Save a design file as a project",
		Long: `Save the design file in the project store.

The first push creates a project and records its ID in the file; later
pushes update that project.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			f, err := c.openDesign(path)
			if err != nil {
				return err
			}
			snap := f.tree.Snapshot()
			if err := project.ValidateDesign(snap); err != nil {
				return err
			}
			env, err := c.openProjectEnv(ctx)
			if err != nil {
				return err
			}
			defer env.store.Close()

			if title == "" {
				title = f.projectName()
			}

			sp := newSpinner(ctx, os.Stderr, "Checking project...")
			sp.Start()
			p, created, err := env.push(ctx, sp, f.doc.ProjectID, title, snap, public, cmd.Flags().Changed("public"))
			sp.Stop()
			if err != nil {
				return err
			}

			if f.doc.ProjectID != p.ID || f.doc.Name != p.Title {
				f.doc.ProjectID = p.ID
				f.doc.Name = p.Title
				f.doc.Snapshot = snap
				if err := pio.ExportJSON(f.doc, f.path); err != nil {
					return err
				}
			}

			if created {
				printSuccess("Created project %s", StyleHighlight.Render(p.Title))
			} else {
				printSuccess("Updated project %s", StyleHighlight.Render(p.Title))
			}
			printKeyValue("ID", p.ID)
			printKeyValue("Nodes", strconv.Itoa(len(p.Design.Nodes)))
			return nil
		},
	}

	addFileFlag(cmd, &path)
	cmd.Flags().StringVar(&title, "title", "", "project title (default: design name)")
	cmd.Flags().BoolVar(&public, "public", false, "make the project readable by everyone")
	return cmd
}

// push updates the project with id, or creates a new one when id is empty
// or no longer exists.
func (e *projectEnv) push(ctx context.Context, sp *spinner, id, title string, snap design.Snapshot, public, setPublic bool) (*project.Project, bool, error) {
	if id != "" {
		existing, err := e.get(ctx, id)
		switch {
		case perrors.Is(err, perrors.ErrCodeProjectNotFound):
		case err != nil:
			return nil, false, err
		case !existing.CanWrite(e.userID):
			return nil, false, perrors.New(perrors.ErrCodeForbidden, "project %s belongs to another user", id)
		default:
			sp.Update("Updating project...")
			u := project.Update{Title: &title, Design: &snap}
			if setPublic {
				u.IsPublic = &public
			}
			var p *project.Project
			err := withRetry(ctx, func() (err error) {
				p, err = e.store.Update(ctx, id, u)
				return err
			})
			return p, false, err
		}
	}

	sp.Update("Creating project...")
	p := project.New(e.userID, title, snap)
	p.IsPublic = public
	if err := withRetry(ctx, func() error { return e.store.Create(ctx, p) }); err != nil {
		return nil, false, err
	}
	return p, true, nil
}

// =============================================================================
// project pull
// =============================================================================

func (c *CLI) projectPullCommand() *cobra.Command {
	var (
		path  string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "pull <id>",
		Short: "Write a saved project to a design file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if !force {
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", path)
				}
			}
			env, err := c.openProjectEnv(ctx)
			if err != nil {
				return err
			}
			defer env.store.Close()

			p, err := env.get(ctx, args[0])
			if err != nil {
				return err
			}
			doc := &pio.Document{Name: p.Title, ProjectID: p.ID, Snapshot: p.Design}
			if err := pio.ExportJSON(doc, path); err != nil {
				return err
			}
			printSuccess("Pulled %s", StyleHighlight.Render(p.Title))
			printFile(path)
			return nil
		},
	}

	addFileFlag(cmd, &path)
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

// =============================================================================
// project rm
// =============================================================================

func (c *CLI) projectRmCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a saved project",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			env, err := c.openProjectEnv(ctx)
			if err != nil {
				return err
			}
			defer env.store.Close()

			p, err := env.get(ctx, args[0])
			if err != nil {
				return err
			}
			if !p.CanWrite(env.userID) {
				return perrors.New(perrors.ErrCodeForbidden, "project %s belongs to another user", p.ID)
			}
			if err := withRetry(ctx, func() error { return env.store.Delete(ctx, p.ID) }); err != nil {
				return err
			}
			printSuccess("Deleted project %s", StyleHighlight.Render(p.Title))
			return nil
		},
	}
}
