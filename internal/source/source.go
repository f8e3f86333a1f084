// Package source handles fetching configured GeoJSON sources and writing
// them back to disk.
package source

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/woozymasta/mapproj/internal/config"
	"github.com/woozymasta/mapproj/internal/layer"

	"github.com/rs/zerolog/log"
)

// maxBodySize caps remote GeoJSON downloads.
const maxBodySize = 256 << 20

// Fetch returns the raw GeoJSON of a source.
// Inline data has priority over a local path, which has priority over a URL.
func Fetch(client *http.Client, src config.Source) ([]byte, error) {
	switch {
	case src.Inline != nil:
		log.Debug().Str("source", src.Name).Msg("Using inline GeoJSON from config")
		return src.InlineJSON()

	case src.Path != "":
		log.Debug().Str("source", src.Name).Str("path", src.Path).Msg("Reading GeoJSON file")
		return os.ReadFile(src.Path)

	case src.URL != "":
		log.Debug().Str("source", src.Name).Str("url", src.URL).Msg("Downloading GeoJSON")
		return download(client, src.URL)
	}

	return nil, fmt.Errorf("source %q has no data", src.Name)
}

func download(client *http.Client, url string) ([]byte, error) {
	resp, err := client.Get(url)
	if err != nil {
		return nil, err
	}
	// Explicitly ignore close error as it's a read-only operation
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
}

// Load fetches a source and builds a layer.Source following v.
// The source data projection overrides the type default when set.
func Load(client *http.Client, src config.Source, v layer.View) (*layer.Source, error) {
	data, err := Fetch(client, src)
	if err != nil {
		return nil, err
	}

	s := layer.NewSource(src.Name, v)
	s.Attribution = src.Attribution
	if src.DataProjection != "" {
		s.SetDataProjection(src.DataProjection)
	}

	if err := s.Load(data); err != nil {
		s.Close()
		return nil, fmt.Errorf("source %q: %w", src.Name, err)
	}

	log.Info().
		Str("source", src.Name).
		Int("features", s.Len()).
		Str("data_projection", s.ResolvedDataProjection()).
		Msg("Source loaded")

	return s, nil
}

// Save writes the source as dir/<name>.geojson in the projection given by
// code. Existing files are kept unless force is set.
func Save(s *layer.Source, dir, code string, force bool) (string, error) {
	path := filepath.Join(dir, s.Name+".geojson")

	if _, err := os.Stat(path); err == nil && !force {
		log.Debug().Str("source", s.Name).Str("path", path).Msg("GeoJSON file exists, skipping")
		return path, nil
	}

	data, err := s.GeoJSONIn(code)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}

	// We care about write errors on close
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			log.Error().Err(closeErr).Str("path", path).Msg("Failed to close file")
		}
	}()

	if _, err := f.Write(data); err != nil {
		return "", err
	}

	return path, nil
}

// Configure applies the per component type data projections of cfg.
func Configure(cfg *config.Config) error {
	for kind, code := range cfg.TypeProjections {
		if err := layer.SetTypeDataProjection(layer.Kind(kind), code); err != nil {
			return fmt.Errorf("type %q: %w", kind, err)
		}
		log.Debug().Str("type", kind).Str("data_projection", code).Msg("Type data projection set")
	}
	return nil
}
