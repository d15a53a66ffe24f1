// Command smartread runs the local bridge that serves simplify, explain and
// key management to the reader extension.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/smartread/smartread/internal/api"
	"github.com/smartread/smartread/internal/config"
	"github.com/smartread/smartread/internal/crypto"
	"github.com/smartread/smartread/internal/database"
	"github.com/smartread/smartread/internal/keymanager"
	"github.com/smartread/smartread/internal/service"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "Path to YAML config file")
	generate := flag.Bool("generate-config", false, "Write a sample config to --config and exit")
	flag.Parse()

	if *generate {
		if err := config.GenerateSample(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "failed to generate config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Sample config written to %s\n", *configPath)
		return
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	setupLogging(cfg.Logging)

	store, err := database.Open(cfg.Storage)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open storage")
	}
	defer store.Close()

	cipher := crypto.NewService(crypto.HostSource{Overrides: deviceOverrides(cfg.Device)})
	keys := keymanager.New(store, cipher, &cfg.LLM)

	simplify := service.NewSimplifyService(cfg)
	explain := service.NewExplainService(cfg)

	startCtx, cancelStart := context.WithTimeout(context.Background(), 5*time.Second)
	provider, err := service.BindDefault(startCtx, keys, simplify, explain)
	cancelStart()
	if err != nil {
		log.Warn().Err(err).Msg("Starting without a bound engine")
	} else if provider == "" {
		log.Warn().Msg("No API key stored; save one through POST /api/v1/keys")
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           api.NewRouter(cfg, api.NewHandler(simplify, explain, keys)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("storage", cfg.Storage.Driver).Msg("Bridge starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down bridge...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Forced shutdown")
	}
	log.Info().Msg("Bridge exited")
}

// loadConfig falls back to defaults when the file does not exist.
func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		cfg := config.DefaultConfig()
		return cfg, cfg.Validate()
	}
	return config.Load(path)
}

func setupLogging(cfg config.LoggingConfig) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "text" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

func deviceOverrides(d config.DeviceConfig) crypto.Overrides {
	return crypto.Overrides{
		UserAgent:           d.UserAgent,
		Language:            d.Language,
		HardwareConcurrency: d.HardwareConcurrency,
		ScreenWidth:         d.ScreenWidth,
		ScreenHeight:        d.ScreenHeight,
		ColorDepth:          d.ColorDepth,
		TimezoneOffset:      d.TimezoneOffset,
	}
}
