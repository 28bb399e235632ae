package auranut

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arhaangamer7865-design/Auranut/internal/model"
	"github.com/arhaangamer7865-design/Auranut/internal/session"
)

var themeCmd = &cobra.Command{
	Use:   "theme",
	Short: "Show or change the display theme",
}

var themeShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current theme",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, s *session.Session) error {
			fmt.Fprintf(cmd.OutOrStdout(), "Theme: %s\n", s.Theme())
			return nil
		})
	},
}

var themeToggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Switch between light and dark",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, s *session.Session) error {
			fmt.Fprintf(cmd.OutOrStdout(), "Theme: %s\n", s.ToggleTheme())
			return nil
		})
	},
}

var themeSetCmd = &cobra.Command{
	Use:       "set <light|dark>",
	Short:     "Set the theme",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(model.ThemeLight), string(model.ThemeDark)},
	RunE: func(cmd *cobra.Command, args []string) error {
		theme := model.Theme(strings.ToLower(strings.TrimSpace(args[0])))
		return withSession(cmd, func(ctx context.Context, s *session.Session) error {
			if err := s.SetTheme(theme); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Theme: %s\n", theme)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(themeCmd)
	themeCmd.AddCommand(themeShowCmd, themeToggleCmd, themeSetCmd)
}
