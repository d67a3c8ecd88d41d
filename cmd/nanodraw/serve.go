package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kbukum/nanodraw/logger"
	"github.com/kbukum/nanodraw/server"
)

func (a *App) newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the relay server",
		Long: `Run the relay server.

POST /generate relays a generation's progress as Server-Sent Events, so a
browser can drive generations without holding the API key.`,
		Args: cobra.NoArgs,
		RunE: a.runServe,
	}
}

func (a *App) runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown, err := a.initObservability(ctx)
	if err != nil {
		return err
	}
	defer a.shutdownObservability(shutdown)

	client, err := a.newClient()
	if err != nil {
		return err
	}
	defer client.Close(context.Background())

	if !a.cfg.Server.Auth.Enabled() {
		a.log.Warn("server.auth.secret is empty; /generate is open to anyone who can reach this port")
	}

	srv := server.New(a.cfg.Server, a.log)
	srv.ApplyMiddleware()
	srv.RegisterDefaultEndpoints(a.cfg.Name, client)
	srv.RegisterDraw(client)

	if err := srv.Start(ctx); err != nil {
		return err
	}
	a.log.Info("relay ready", logger.Fields("addr", srv.Addr(), "upstream", a.cfg.Draw.BaseURL))

	<-ctx.Done()
	return srv.Stop(context.Background())
}
