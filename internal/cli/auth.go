package cli

import (
	"context"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/panecraft/pkg/config"
	"github.com/matzehuels/panecraft/pkg/session"
)

// cliSessions opens the file holding the CLI's own session. It lives in the
// configured session directory when sessions are file-based.
func cliSessions(cfg *config.Config) (*session.CLIStore, error) {
	dir := cfg.Session.Dir
	if cfg.Session.Backend != config.BackendFile || dir == "" {
		base, err := config.ConfigDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(base, "sessions")
	}
	return session.NewCLIStore(dir)
}

// currentSession returns the signed-in session, or nil.
func (c *CLI) currentSession(ctx context.Context, cfg *config.Config) (*session.Session, error) {
	store, err := cliSessions(cfg)
	if err != nil {
		return nil, err
	}
	return store.GetSession(ctx)
}

// =============================================================================
// login
// =============================================================================

func (c *CLI) loginCommand() *cobra.Command {
	var name, email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in as a named user",
		Long: `Start a session for the given user. Projects pushed afterwards belong to
that user. The session lasts for the configured session TTL.`,
		Example: `  panecraft login --email ada@example.com --name Ada`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			user, err := session.NewUser(name, email)
			if err != nil {
				return err
			}
			sess, err := session.New(user, cfg.Session.TTL)
			if err != nil {
				return err
			}
			store, err := cliSessions(cfg)
			if err != nil {
				return err
			}
			if err := store.SaveSession(ctx, sess); err != nil {
				return err
			}

			c.Logger.Debug("session saved", "path", store.Path())
			printSuccess("Signed in as %s", StyleHighlight.Render(user.Name))
			printKeyValue("Email", user.Email)
			printKeyValue("Expires", sess.ExpiresAt.Local().Format(time.RFC1123))
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&name, "name", "", "display name (default: part of the email before @)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

// =============================================================================
// logout
// =============================================================================

func (c *CLI) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			store, err := cliSessions(cfg)
			if err != nil {
				return err
			}
			if err := store.DeleteSession(cmd.Context()); err != nil {
				return err
			}
			printSuccess("Signed out")
			return nil
		},
	}
}

// =============================================================================
// whoami
// =============================================================================

func (c *CLI) whoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			sess, err := c.currentSession(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			if sess == nil {
				printInfo("Not signed in; projects belong to the local user")
				printNextStep("Sign in", appName+" login --email you@example.com")
				return nil
			}
			printKeyValue("Name", sess.User.Name)
			printKeyValue("Email", sess.User.Email)
			printKeyValue("User ID", sess.User.ID)
			printKeyValue("Expires", sess.ExpiresAt.Local().Format(time.RFC1123))
			return nil
		},
	}
}
