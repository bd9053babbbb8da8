package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"gutencorpus/internal/api"
	"gutencorpus/internal/store"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the corpus over a read-only HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger(cmd)
			if err != nil {
				return err
			}
			apiCfg := cfg.API
			if bind != "" {
				apiCfg.Bind = bind
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			return ctx.withStore(cmd, func(_ context.Context, st *store.Store) error {
				return api.NewServer(apiCfg, st, logger).Serve(signalCtx)
			})
		},
	}

	cmd.Flags().StringVar(&bind, "bind", "", "Override api.bind")
	return cmd
}
