package server

import (
	"net/http"

	"github.com/woozymasta/mapproj/internal/config"
	"github.com/woozymasta/mapproj/internal/layer"
	"github.com/woozymasta/mapproj/internal/source"
	"github.com/woozymasta/mapproj/internal/view"

	"github.com/rs/zerolog/log"
)

// ServerContext holds dependencies for request handlers.
type ServerContext struct {
	Config             *config.Config
	View               *view.View
	Sources            []*layer.Source
	SourceNameResolver map[string]*layer.Source
}

// NewServerContext creates the view and loads all configured sources.
// Sources that fail to load are logged and skipped.
func NewServerContext(cfg *config.Config, client *http.Client) (*ServerContext, error) {
	log.Info().Int("config_sources_count", len(cfg.Sources)).Msg("Initializing server context")

	if err := source.Configure(cfg); err != nil {
		return nil, err
	}

	v, err := view.New(cfg.ViewProjection)
	if err != nil {
		return nil, err
	}

	ctx := &ServerContext{
		Config:             cfg,
		View:               v,
		Sources:            make([]*layer.Source, 0, len(cfg.Sources)),
		SourceNameResolver: make(map[string]*layer.Source),
	}

	for _, src := range cfg.Sources {
		s, err := source.Load(client, src, v)
		if err != nil {
			log.Warn().
				Err(err).
				Str("source", src.Name).
				Msg("Skipping source: failed to load")
			continue
		}

		ctx.SourceNameResolver[src.Name] = s
		for _, alias := range src.Aliases {
			ctx.SourceNameResolver[alias] = s
		}

		ctx.Sources = append(ctx.Sources, s)
	}

	log.Info().
		Int("valid_sources_count", len(ctx.Sources)).
		Str("view_projection", v.Projection()).
		Msg("Server context initialized successfully")

	return ctx, nil
}

// Close detaches all sources from the view.
func (s *ServerContext) Close() {
	for _, src := range s.Sources {
		src.Close()
	}
}

// Routes returns the HTTP handler serving the API.
func (s *ServerContext) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/projections", s.HandleProjections)
	mux.HandleFunc("/api/view", s.HandleView)
	mux.HandleFunc("/api/sources", s.HandleSourcesList)
	mux.HandleFunc("/api/sources/", s.HandleSource)
	mux.HandleFunc("/api/transform", s.HandleTransform)

	return RequestLogger(mux)
}
