package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/maestro-sh/maestro/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the flows over HTTP with WebSocket event streaming",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp()
		if err != nil {
			return err
		}
		defer a.Close()

		addr := serveAddr
		if addr == "" {
			addr = a.cfg.Server.Addr
		}

		src := server.NewSource(a.rt, a.creds, a.bindings)
		s := server.New(server.Options{
			Addr:            addr,
			AllowedOrigins:  a.cfg.Server.AllowedOrigins,
			OverlayPath:     a.cfg.Routing.OverlayPath,
			DefaultPrefs:    a.prefs(false, false),
			SEOMinimumScore: a.cfg.Defaults.SEOMinimumScore,
		}, src, a.tracker)

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		fmt.Printf("maestro listening on %s\n", addr)
		return s.Run(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides config)")
}
