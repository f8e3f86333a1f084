package main

import (
	"net/http"
	"os"
	"time"

	"github.com/woozymasta/mapproj/internal/config"
	"github.com/woozymasta/mapproj/internal/logger"
	"github.com/woozymasta/mapproj/internal/source"
	"github.com/woozymasta/mapproj/internal/view"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile string   `short:"c" long:"config"     env:"CONFIG_FILE"     description:"Path to configuration file" default:"config.yaml"`
	OutDir     string   `short:"o" long:"out"        env:"OUT_DIR"         description:"Directory for GeoJSON files" default:"sources"`
	Projection string   `short:"P" long:"projection" env:"OUT_PROJECTION"  description:"Projection of written files, defaults to each source's data projection"`
	Limit      []string `short:"l" long:"limit"      env:"LIMIT_NAMES"     description:"Limit processing to specific source names"`
	Force      bool     `short:"f" long:"force"      description:"Force overwrite of existing files"`
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

	opts.Logger.Setup()

	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if err := source.Configure(cfg); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply type projections")
	}

	v, err := view.New(cfg.ViewProjection)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create view")
	}

	client := &http.Client{Timeout: 30 * time.Second}

	// Filter sources if limit is set
	sourcesToProcess := cfg.Sources
	if len(opts.Limit) > 0 {
		sourcesToProcess = make([]config.Source, 0)
		availableSources := make(map[string]config.Source)
		for _, s := range cfg.Sources {
			availableSources[s.Name] = s
		}

		seen := make(map[string]bool)

		for _, limitName := range opts.Limit {
			if seen[limitName] {
				continue
			}
			seen[limitName] = true

			if s, ok := availableSources[limitName]; ok {
				sourcesToProcess = append(sourcesToProcess, s)
			} else {
				log.Error().
					Str("name", limitName).
					Msg("Source specified in --limit not found in configuration")
			}
		}
	}

	log.Info().
		Int("sources_total", len(cfg.Sources)).
		Int("sources_queued", len(sourcesToProcess)).
		Str("out", opts.OutDir).
		Msg("Starting loader")

	failed := 0
	for _, src := range sourcesToProcess {
		s, err := source.Load(client, src, v)
		if err != nil {
			log.Error().Err(err).Str("source", src.Name).Msg("Failed to load source")
			failed++
			continue
		}

		code := opts.Projection
		if code == "" {
			code = s.ResolvedDataProjection()
		}

		path, err := source.Save(s, opts.OutDir, code, opts.Force)
		s.Close()
		if err != nil {
			log.Error().Err(err).Str("source", src.Name).Msg("Failed to save source")
			failed++
			continue
		}

		log.Info().
			Str("source", src.Name).
			Str("projection", code).
			Str("path", path).
			Msg("Source written")
	}

	if failed > 0 {
		log.Fatal().Int("failed", failed).Msg("Loader finished with errors")
	}

	log.Info().Msg("Loader finished successfully")
}
