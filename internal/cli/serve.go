package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/houzzhunt/hh/internal/logging"
	"github.com/houzzhunt/hh/internal/session"
	"github.com/houzzhunt/hh/internal/web"
)

// flashMaxAge is how long an unread flash value is kept.
const flashMaxAge = 24 * time.Hour

func newServeCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the public site",
		Long:  "Start an HTTP server for the lead forms, the thank-you page and the property map feed.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), port)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "port to listen on (default: $HH_PORT or 8080)")

	return cmd
}

func runServe(ctx context.Context, port int) error {
	database, cfg, err := openDB()
	if err != nil {
		return err
	}
	defer closeDB(database)

	logging.Setup(cfg.DevMode)

	if port == 0 {
		port = cfg.Port
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if n, err := session.NewFlashStore(database).Cleanup(ctx, flashMaxAge); err != nil {
		slog.Warn("cleaning up flash messages", "error", err)
	} else if n > 0 {
		slog.Info("removed stale flash messages", "count", n)
	}

	srv, err := web.NewServer(database, cfg)
	if err != nil {
		return err
	}

	return srv.ListenAndServe(ctx, port)
}
