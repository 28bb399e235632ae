package auranut

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arhaangamer7865-design/Auranut/internal/session"
)

var logoutYes bool

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with the demo account",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, s *session.Session) error {
			if err := s.Login(ctx, session.MockUser()); err != nil {
				return err
			}
			u, _ := s.User()
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s <%s>\n", u.Name, u.Email)
			if s.Phase() == session.PhaseOnboarding {
				fmt.Fprintln(cmd.OutOrStdout(), "Next: run `auranut onboard` to set your goals")
			}
			return nil
		})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and erase all local data",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, s *session.Session) error {
			ok := s.Logout(func() bool {
				return logoutYes || confirm(cmd, "This erases your profile, logs, weights and chat. Continue?")
			})
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Logout cancelled")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out; all local data erased")
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(loginCmd, logoutCmd)
	logoutCmd.Flags().BoolVarP(&logoutYes, "yes", "y", false, "Skip the confirmation prompt")
}
