package auranut

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/arhaangamer7865-design/Auranut/internal/markdown"
	"github.com/arhaangamer7865-design/Auranut/internal/session"
)

var (
	coachClearYes bool
	analyzeHTML   string
)

var coachCmd = &cobra.Command{
	Use:   "coach",
	Short: "Chat with the AI coach",
}

var coachAskCmd = &cobra.Command{
	Use:   "ask <message>",
	Short: "Ask the coach a question",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, s *session.Session) error {
			reply, err := s.Ask(ctx, joinArgs(args))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), reply.Text)
			return nil
		})
	},
}

var coachHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the conversation",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, s *session.Session) error {
			for _, m := range s.ChatHistory() {
				at := time.UnixMilli(m.Timestamp).Local().Format("2006-01-02 15:04")
				fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s: %s\n", at, m.Role, strings.TrimSpace(m.Text))
			}
			return nil
		})
	},
}

var coachClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the conversation",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, s *session.Session) error {
			if !s.ClearChat(func() bool { return coachClearYes || confirm(cmd, "Clear chat history?") }) {
				fmt.Fprintln(cmd.OutOrStdout(), "Chat kept")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Chat history cleared")
			return nil
		})
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run a deep analysis of your recent week",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, s *session.Session) error {
			report, err := s.RequestDeepAnalysis(ctx)
			if err != nil {
				return err
			}
			if strings.TrimSpace(analyzeHTML) == "" {
				fmt.Fprintln(cmd.OutOrStdout(), report)
				return nil
			}
			f, err := os.Create(analyzeHTML)
			if err != nil {
				return fmt.Errorf("create html report: %w", err)
			}
			defer f.Close()
			if err := markdown.NewRenderer().WritePage(f, "Auranut Deep Analysis", string(s.Theme()), []byte(report)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote analysis to %s\n", analyzeHTML)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(coachCmd, analyzeCmd)
	coachCmd.AddCommand(coachAskCmd, coachHistoryCmd, coachClearCmd)
	coachClearCmd.Flags().BoolVarP(&coachClearYes, "yes", "y", false, "Skip the confirmation prompt")
	analyzeCmd.Flags().StringVar(&analyzeHTML, "html", "", "Write the report as an HTML page to this file")
}
