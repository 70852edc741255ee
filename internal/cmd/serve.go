package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/logview-dev/logview/internal/cache"
	"github.com/logview-dev/logview/internal/config"
	"github.com/logview-dev/logview/internal/handler"
	"github.com/logview-dev/logview/internal/metrics"
	"github.com/logview-dev/logview/internal/scanner"
	"github.com/logview-dev/logview/internal/scheduler"
	"github.com/logview-dev/logview/internal/server"
	"github.com/logview-dev/logview/internal/viewstore"
	"github.com/logview-dev/logview/internal/watcher"
)

var (
	serveName  string
	serveHost  string
	servePort  string
	serveWatch bool
)

var serveCmd = &cobra.Command{
	Use:   "serve <root>",
	Short: "Serve a view over the local web API",
	Long: `Start the local server for one project root and view. View edits re-render
the cached rows; only an explicit scan (or --watch trigger) re-walks the
directory tree, and every such scan is a complete walk.

Examples:
  logview serve ./runs
  logview serve ./runs --name experiments --port 9000
  logview serve ./runs --watch`,
	Args: cobra.ExactArgs(1),
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveName, "name", "default", "view name")
	serveCmd.Flags().StringVar(&serveHost, "host", "", "bind host (overrides config)")
	serveCmd.Flags().StringVar(&servePort, "port", "", "bind port (overrides config)")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "rescan on file changes under the root")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	log := newLogger()

	root, err := resolveRoot(args[0])
	if err != nil {
		return err
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if serveHost != "" {
		cfg.Server.Host = serveHost
	}
	if servePort != "" {
		cfg.Server.Port = servePort
	}

	store := viewstore.New(root)
	if _, err := store.Load(serveName); err != nil {
		// Surface the remediation before the server ever starts.
		return err
	}

	metricsHandler, err := metrics.New("logview")
	if err != nil {
		return err
	}

	rowCache := cache.New()
	renderScheduler := scheduler.New(time.Duration(cfg.Render.DebounceMS) * time.Millisecond)
	viewHandler := handler.NewViewHandler(store, rowCache, metricsHandler, renderScheduler, log, serveName)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if serveWatch {
		w, err := watcher.New(root, scanner.DefaultIgnoredDirs, log)
		if err != nil {
			return err
		}
		go w.Start(ctx, 500*time.Millisecond)
		go func() {
			for range w.Changed {
				viewHandler.Rescan("watch")
			}
		}()
		log.Info().Str("root", root).Msg("watch mode enabled")
	}

	srv := server.New(cfg, log, viewHandler, metricsHandler)
	if err := srv.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
