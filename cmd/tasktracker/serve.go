package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AlibekovAA/toggle-task/internal/common/bootstrap"
	"github.com/AlibekovAA/toggle-task/internal/common/config"
	srv "github.com/AlibekovAA/toggle-task/internal/common/server"
)

func serveCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Long: `Run the task tracker web application.

Configuration is read from the environment (STORAGE_DRIVER, DATABASE_URL,
SESSION_SECRET, INCIDENT_API_URL, ...). --port overrides HTTP_PORT.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := bootstrap.NewLogger()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}

			cfg, err := config.LoadAppConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if port != "" {
				cfg.HTTPPort = port
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			app, err := bootstrap.NewApp(ctx, cfg, log, nil)
			if err != nil {
				return err
			}
			defer app.Close()

			app.StartBackground(ctx)

			serverConfig := srv.DefaultServerConfig(cfg.HTTPPort)
			server := srv.NewServer(serverConfig, app.Handler())

			hooks := []srv.ShutdownHook{
				func(context.Context) error {
					log.Infof("%s: stopping cleanup goroutine", bootstrap.ServiceName)
					cancel()
					return nil
				},
			}

			return srv.Run(ctx, server, serverConfig, log, bootstrap.ServiceName, hooks)
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "listen port (overrides HTTP_PORT)")

	return cmd
}
