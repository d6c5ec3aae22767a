package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/numsphere/callflow/config"
	"github.com/numsphere/callflow/dispatch"
	"github.com/numsphere/callflow/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the voice webhook endpoint",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
			zerolog.SetGlobalLevel(level)
		}

		mem := store.NewMemory()
		if cfg.FlowsDir != "" {
			if err := mem.LoadDir(cfg.FlowsDir); err != nil {
				return err
			}
			log.Info().Str("dir", cfg.FlowsDir).Msg("seeded flows")
		}

		opts := []dispatch.Option{
			dispatch.WithLogger(log.Logger),
			dispatch.WithCallbackPath(cfg.CallbackPath),
			dispatch.WithDefaultVoice(cfg.DefaultVoice),
		}
		if cfg.ValidateSignatures {
			opts = append(opts, dispatch.WithSignatureValidation(cfg.AuthToken, cfg.PublicURL))
		}
		handler := dispatch.NewHandler(mem, mem, opts...)

		server := &http.Server{
			Addr:              cfg.ListenAddr,
			Handler:           handler.Routes(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			log.Info().Str("addr", cfg.ListenAddr).Str("path", cfg.CallbackPath).Msg("listening")
			errCh <- server.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
			log.Info().Msg("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		}
	},
}
