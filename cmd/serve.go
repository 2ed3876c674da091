package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/helmcode/logtriage/pkg/server"
)

var listenAddr string

func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the triage pipeline over HTTP",
		Long: `Expose the pipeline as a JSON API:

  GET  /api/health
  POST /api/classify   {"log_files": [...]}
  POST /api/run        {"log_files": [...], "selected_solution": {...}, "send_notifications": false}
  POST /api/notify     {"log_files": [...], "selected_solution": {...}}`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().StringVar(&listenAddr, "addr", "", "Listen address (default from config, 0.0.0.0:8080)")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	addr := listenAddr
	if addr == "" {
		addr = cfg.Addr
	}

	p, provider, err := newPipeline(ctx, newLogger())
	if err != nil {
		return err
	}

	srv := server.NewServer(addr, p, provider)
	if err := srv.Start(); err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	printSuccess(fmt.Sprintf("Listening on %s (provider %s)", addr, provider))

	<-ctx.Done()
	return srv.Stop()
}
