package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/hiring-coach/internal/config"
	"github.com/jonathan/hiring-coach/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server exposing candidate evaluation, CV coaching, job-fit and practice interview endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := withSignals(cmd.Context())
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	srvCfg, err := serverConfig(cfg, servePort)
	if err != nil {
		return err
	}
	srv := server.New(server.Services{
		Evaluation: a.evaluation,
		Coaching:   a.coaching,
		Interview:  a.interview,
	}, srvCfg)
	return srv.Start(ctx)
}

// serverConfig derives the HTTP server settings. A non-zero port overrides cfg.
func serverConfig(cfg *config.Config, port int) (server.Config, error) {
	out := server.Config{
		Port:            cfg.Server.Port,
		ShutdownTimeout: time.Duration(cfg.Server.ShutdownTimeoutSeconds) * time.Second,
		MaxUploadBytes:  int64(cfg.Server.MaxUploadMB) << 20,
	}
	if port > 0 {
		out.Port = port
	}
	if cfg.Auth.Enabled {
		jwtCfg, err := config.NewJWTConfig(cfg.Auth)
		if err != nil {
			return server.Config{}, err
		}
		out.JWT = server.NewJWTService(jwtCfg)
	}
	return out, nil
}

// withSignals cancels ctx on SIGINT or SIGTERM.
func withSignals(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
}
