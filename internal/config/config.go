// Package config handles configuration loading and shared data structures.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/woozymasta/mapproj/internal/proj"

	"gopkg.in/yaml.v3"
)

// Config represents the root configuration file structure.
type Config struct {
	// component type name -> default data projection
	TypeProjections map[string]string `yaml:"type_projections,omitempty" json:"type_projections,omitempty"`

	ViewProjection string   `yaml:"view_projection,omitempty" json:"view_projection"`
	DataProjection string   `yaml:"data_projection,omitempty" json:"data_projection,omitempty"`
	Attribution    string   `yaml:"attribution,omitempty" json:"attribution,omitempty"`
	Sources        []Source `yaml:"sources" json:"sources"`
}

// Source represents a single GeoJSON feature source.
type Source struct {
	Index *int `yaml:"index,omitempty" json:"index,omitempty"`

	// defining a FeatureCollection directly in config.yaml
	Inline map[string]any `yaml:"geojson,omitempty" json:"-"`

	Name           string   `yaml:"name" json:"name"`
	Path           string   `yaml:"path,omitempty" json:"-"`
	URL            string   `yaml:"url,omitempty" json:"-"`
	DataProjection string   `yaml:"data_projection,omitempty" json:"data_projection,omitempty"`
	Attribution    string   `yaml:"attribution,omitempty" json:"attribution,omitempty"`
	Aliases        []string `yaml:"aliases,omitempty" json:"aliases,omitempty"`
}

// InlineJSON returns the inline FeatureCollection encoded as JSON, nil if
// the source has none.
func (s *Source) InlineJSON() ([]byte, error) {
	if s.Inline == nil {
		return nil, nil
	}
	return json.Marshal(s.Inline)
}

// Load reads and parses the YAML configuration file from the specified path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return Parse(data)
}

// Parse decodes a YAML configuration and normalizes it.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if err := cfg.Normalize(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Normalize fills defaults, checks projection codes and sorts sources by
// index then name.
func (c *Config) Normalize() error {
	if c.ViewProjection == "" {
		c.ViewProjection = proj.EPSG3857
	}

	codes := []string{c.ViewProjection, c.DataProjection}
	for _, code := range c.TypeProjections {
		codes = append(codes, code)
	}

	seen := make(map[string]bool)
	for i := range c.Sources {
		src := &c.Sources[i]

		if src.Name == "" {
			return fmt.Errorf("source #%d: name is required", i)
		}
		if seen[src.Name] {
			return fmt.Errorf("source %q: duplicate name", src.Name)
		}
		seen[src.Name] = true

		if src.Path == "" && src.URL == "" && src.Inline == nil {
			return fmt.Errorf("source %q: one of path, url or geojson is required", src.Name)
		}
		if src.Attribution == "" {
			src.Attribution = c.Attribution
		}

		codes = append(codes, src.DataProjection)
	}

	var errs []error
	for _, code := range codes {
		if code == "" {
			continue
		}
		if _, err := proj.Get(code); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	sort.SliceStable(c.Sources, func(i, j int) bool {
		idxI, idxJ := 999999, 999999
		if c.Sources[i].Index != nil {
			idxI = *c.Sources[i].Index
		}
		if c.Sources[j].Index != nil {
			idxJ = *c.Sources[j].Index
		}
		if idxI != idxJ {
			return idxI < idxJ
		}

		return c.Sources[i].Name < c.Sources[j].Name
	})

	return nil
}
