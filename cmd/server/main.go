package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/woozymasta/mapproj/internal/config"
	"github.com/woozymasta/mapproj/internal/logger"
	"github.com/woozymasta/mapproj/internal/server"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile     string `short:"c" long:"config"          env:"CONFIG_FILE"     description:"Path to configuration file"      default:"config.yaml"`
	Addr           string `short:"a" long:"addr"            env:"LISTEN_ADDRESS"  description:"Address to listen on"            default:"0.0.0.0"`
	Port           int    `short:"p" long:"port"            env:"LISTEN_PORT"     description:"Port to listen on"               default:"8080"`
	ViewProjection string `short:"v" long:"view-projection" env:"VIEW_PROJECTION" description:"Override the configured view projection"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	// Setup Logging
	opts.Logger.Setup()

	// Load Config
	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if opts.ViewProjection != "" {
		cfg.ViewProjection = opts.ViewProjection
	}

	client := &http.Client{Timeout: 30 * time.Second}

	srvCtx, err := server.NewServerContext(cfg, client)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize server context")
	}
	defer srvCtx.Close()

	listenAddr := fmt.Sprintf("%s:%d", opts.Addr, opts.Port)
	log.Info().
		Str("addr", listenAddr).
		Int("sources_loaded", len(srvCtx.Sources)).
		Str("view_projection", srvCtx.View.Projection()).
		Msg("Web server started")

	srv := &http.Server{
		Addr:              listenAddr,
		Handler:           srvCtx.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if err := srv.ListenAndServe(); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}
