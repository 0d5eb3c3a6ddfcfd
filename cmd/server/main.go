package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/castlab/relaygate/internal/adapters/http"
	"github.com/castlab/relaygate/internal/adapters/media"
	"github.com/castlab/relaygate/internal/app"
	"github.com/castlab/relaygate/internal/app/orch"
	"github.com/castlab/relaygate/internal/config"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	engine := media.NewEngine(cfg.ServerAddress, cfg.Debug)
	defer engine.Close()

	reg := app.NewRegistry()
	o := &orch.Orchestrator{
		Engine:   engine,
		Registry: reg,
		Caps:     orch.DefaultCapabilities(),
	}

	r := router.SetupRouter(cfg, o)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("relaygate server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	var tlsSrv *http.Server
	if cfg.TLSEnabled() {
		tlsSrv = &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.TLSPort),
			Handler: r,
		}
		go func() {
			log.Info().Str("addr", tlsSrv.Addr).Msg("relaygate TLS server started")
			if err := tlsSrv.ListenAndServeTLS(cfg.CertFile, cfg.KeyFile); err != nil && err != http.ErrServerClosed {
				log.Error().Err(err).Msg("tls server error")
			}
		}()
	}

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	if tlsSrv != nil {
		if err := tlsSrv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("TLS server forced to shutdown")
		}
	}
	log.Info().Msg("Server exited gracefully")
}
