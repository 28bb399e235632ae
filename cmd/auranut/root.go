package auranut

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/arhaangamer7865-design/Auranut/internal/config"
	"github.com/arhaangamer7865-design/Auranut/internal/logger"
)

var (
	dbPath string
	cfg    *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "auranut",
	Short: "auranut tracks meals, exercise, weight and water with an AI coach",
	Long:  "auranut is a local-first nutrition and fitness tracker. Food lookups, calorie estimates, goals and coaching are powered by Gemini.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()
		logger.Init(cfg.IsDevelopment(), cfg.SentryDSN)
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	logger.Flush()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to SQLite database (default: $AURANUT_DB or the user config dir)")
}
