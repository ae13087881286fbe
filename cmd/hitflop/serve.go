package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cognicore/hitflop/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard HTTP server",
		Long:  "Run the dashboard HTTP server. SIGHUP drops cached tables so regenerated data is served without a restart.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return a.serve(ctx)
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	dash, err := a.dashboard(ctx)
	if err != nil {
		return err
	}
	defer dash.Close()

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-hup:
				dash.Reload()
			}
		}
	}()

	srv, err := server.New(dash, server.Options{
		Addr:            a.cfg.Addr(),
		RateLimitRPS:    a.cfg.RateLimitRPS,
		RateLimitBurst:  a.cfg.RateLimitBurst,
		ShutdownTimeout: a.cfg.ShutdownGrace,
		TrustedProxies:  a.cfg.TrustedProxies,
		Logger:          &a.logger,
	})
	if err != nil {
		return err
	}

	a.logger.Info().Str("data_dir", a.dataDir).Str("env", a.cfg.AppEnv).Msg("starting dashboard")
	return srv.Start(ctx)
}
