package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeanpaul/learnbot/internal/engine"
	"github.com/jeanpaul/learnbot/internal/server"
)

func newServeCmd(o *rootOptions) *cobra.Command {
	var (
		store     string
		host      string
		port      int
		mode      string
		noMetrics bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a chatbot over HTTP",
		Long: `Start the HTTP API for one chatbot.

Endpoints:
  POST /api/v1/turns       {"text": "..."}
  POST /api/v1/teach       {"answer": "..."}
  GET  /api/v1/entries
  GET  /api/v1/transcript  (?format=markdown)
  GET  /health
  GET  /metrics

Conversations are tracked with the X-Session-Id header.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := o.cfg.Server
			if cmd.Flags().Changed("host") {
				cfg.Host = host
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			if cmd.Flags().Changed("mode") {
				cfg.Mode = mode
			}
			if noMetrics {
				cfg.Metrics = false
			}

			backend, err := o.openBackend(false)
			if err != nil {
				return err
			}
			defer backend.Close()

			kb, _, err := o.openStore(cmd.Context(), backend, o.storeName(store))
			if err != nil {
				return err
			}

			srv := server.New(cfg, kb, backend, engine.OptionsFromConfig(o.cfg))
			srv.Setup()

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Start()
			}()
			fmt.Fprintf(cmd.OutOrStdout(), "Serving %s on http://%s\n", kb.Key(), srv.Addr())

			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("server error: %w", err)
				}
				return nil
			case <-cmd.Context().Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()
				if err := srv.Stop(shutdownCtx); err != nil {
					return fmt.Errorf("server shutdown: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Server stopped")
				return nil
			}
		},
	}
	cmd.Flags().StringVarP(&store, "store", "s", "", "chatbot to serve")
	cmd.Flags().StringVar(&host, "host", "localhost", "listen host")
	cmd.Flags().IntVar(&port, "port", 8080, "listen port")
	cmd.Flags().StringVar(&mode, "mode", "release", "gin mode (debug, release, test)")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "disable the /metrics endpoint")
	return cmd
}
