package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/biamino/biamino-backend/internal/bootstrap"
	"github.com/biamino/biamino-backend/internal/users"
)

var seedUsersCmd = &cobra.Command{
	Use:   "seed-users",
	Short: "Create user records for the credential table",
	Long: `Create a user record for every credential (CREDENTIALS_FILE or the built-in
accounts) whose email has none yet. Existing records are not modified.`,
	Args: cobra.NoArgs,
	RunE: runSeedUsers,
}

var clearSessionsCmd = &cobra.Command{
	Use:   "clear-sessions",
	Short: "Sign every session out",
	Args:  cobra.NoArgs,
	RunE:  runClearSessions,
}

func runSeedUsers(cmd *cobra.Command, _ []string) error {
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	creds, err := bootstrap.Credentials(e.cfg.Session)
	if err != nil {
		return err
	}
	n, err := users.EnsureUsers(e.ctx, e.stores.Store, creds.All())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "created %d of %d users\n", n, len(creds.All()))
	return nil
}

func runClearSessions(cmd *cobra.Command, _ []string) error {
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	sessions, err := bootstrap.NewSessionManager(e.cfg, e.stores.Store, e.stores.Redis)
	if err != nil {
		return err
	}
	if err := sessions.ClearAll(e.ctx); err != nil {
		return fmt.Errorf("clear sessions: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "all sessions cleared")
	return nil
}
