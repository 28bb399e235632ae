package auranut

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/arhaangamer7865-design/Auranut/internal/app"
	"github.com/arhaangamer7865-design/Auranut/internal/config"
	"github.com/arhaangamer7865-design/Auranut/internal/db"
	"github.com/arhaangamer7865-design/Auranut/internal/gateway"
	"github.com/arhaangamer7865-design/Auranut/internal/provider/gemini"
	"github.com/arhaangamer7865-design/Auranut/internal/session"
	"github.com/arhaangamer7865-design/Auranut/internal/store"
)

// newGateway builds the AI boundary. Tests replace it with a fake.
var newGateway = func(c *config.Config) session.Gateway {
	var gen gateway.Generator
	if c.HasGemini() {
		gen = &gemini.Client{
			APIKey:     c.GeminiAPIKey,
			BaseURL:    c.GeminiBaseURL,
			HTTPClient: &http.Client{Timeout: c.AITimeout + 5*time.Second},
		}
	}
	return gateway.New(gen,
		gateway.WithModels(c.GeminiModel, c.GeminiAnalysisModel),
		gateway.WithTimeout(c.AITimeout),
		gateway.WithRatePerMinute(c.AIRatePerMinute),
	)
}

func currentConfig() *config.Config {
	if cfg == nil {
		cfg = config.Load()
	}
	return cfg
}

func resolveDBPath() (string, error) {
	if dbPath != "" {
		return dbPath, nil
	}
	if p := currentConfig().DBPath; p != "" {
		return p, nil
	}
	return app.DefaultDBPath()
}

func withDB(run func(*sqlx.DB) error) error {
	path, err := resolveDBPath()
	if err != nil {
		return err
	}
	if err := app.EnsureDBDir(path); err != nil {
		return err
	}
	sqldb, err := db.Open(path)
	if err != nil {
		return err
	}
	defer sqldb.Close()

	if err := db.ApplyMigrations(sqldb); err != nil {
		return err
	}
	return run(sqldb)
}

func withStore(run func(store.KV) error) error {
	return withDB(func(sqldb *sqlx.DB) error {
		return run(store.NewSQLite(sqldb))
	})
}

func withSession(cmd *cobra.Command, run func(context.Context, *session.Session) error) error {
	c := currentConfig()
	return withStore(func(kv store.KV) error {
		s := session.New(kv, newGateway(c), session.WithLoginDelay(c.LoginDelay))
		s.Load()
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		return run(ctx, s)
	})
}

// confirm asks a yes/no question on the command's input. Anything but y/yes is no.
func confirm(cmd *cobra.Command, question string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N]: ", question)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && err != io.EOF {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

func formatKcal(v float64) string {
	return fmt.Sprintf("%.0f kcal", v)
}
