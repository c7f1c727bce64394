package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/conneroisu/canon/internal/server"
	"github.com/conneroisu/canon/internal/storage"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"s"},
	Short:   "Run the live preview server",
	Long: `Render the demo widgets, attach every enabled behavior, and run the
document's event loop on wall-clock time so that timers (carousel autoplay)
fire live. The server exposes:

  GET  /               current markup of the live document
  GET  /ws             websocket stream of behavior events; accepts actions
  POST /api/actions    replay a click, keydown, input or focus
  GET  /api/behaviors  registered markers and attached roots
  GET  /metrics        Prometheus metrics
  GET  /healthz        health check

Sidebar state is persisted to storage.path.

Examples:
  canon serve                 # Serve on localhost:7331
  canon serve -p 8080         # Custom port
  canon serve --tick 50ms     # Coarser loop tick`,
	RunE: runServe,
}

var (
	serveFlags *StandardFlags
	serveTick  time.Duration
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveFlags = AddStandardFlags(serveCmd, "server")
	serveCmd.Flags().DurationVar(&serveTick, "tick", 10*time.Millisecond, "Wall-clock tick of the document loop")

	AddFlagValidation(serveCmd, "port", ValidatePort)
	SetViperBindings(serveCmd, map[string]string{
		"port": "server.port",
		"host": "server.host",
	})
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := storage.OpenFileStore(cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("failed to open state store: %w", err)
	}

	srv, err := server.New(server.Options{
		Config:    cfg,
		Behaviors: buildBehaviors(cfg, store, logger),
		Logger:    logger,
		Tick:      serveTick,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	ctx, cancel := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	fmt.Fprintf(cmd.OutOrStdout(), "Serving on http://%s:%d\n", cfg.Server.Host, cfg.Server.Port)
	return srv.ListenAndServe(ctx)
}
