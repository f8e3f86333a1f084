package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/woozymasta/mapproj/internal/proj"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
attribution: "© test"
data_projection: EPSG:4326
type_projections:
  feature: EPSG:4326
sources:
  - name: towns
    index: 2
    path: towns.geojson
  - name: rivers
    url: https://example.com/rivers.geojson
    data_projection: EPSG:3857
    attribution: rivers inc
  - name: poi
    index: 1
    geojson:
      type: FeatureCollection
      features:
        - type: Feature
          geometry: {type: Point, coordinates: [10, 10]}
          properties: {name: center}
`

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, proj.EPSG3857, cfg.ViewProjection)
	assert.Equal(t, proj.EPSG4326, cfg.DataProjection)
	assert.Equal(t, proj.EPSG4326, cfg.TypeProjections["feature"])

	require.Len(t, cfg.Sources, 3)
	assert.Equal(t, "poi", cfg.Sources[0].Name)
	assert.Equal(t, "towns", cfg.Sources[1].Name)
	assert.Equal(t, "rivers", cfg.Sources[2].Name)

	assert.Equal(t, "© test", cfg.Sources[0].Attribution)
	assert.Equal(t, "rivers inc", cfg.Sources[2].Attribution)

	data, err := cfg.Sources[0].InlineJSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"FeatureCollection"`)

	none, err := cfg.Sources[1].InlineJSON()
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"bad yaml", "sources: ["},
		{"unknown view projection", "view_projection: EPSG:0\nsources: []"},
		{"unknown source projection", "sources:\n  - name: a\n    path: a.json\n    data_projection: nope"},
		{"missing name", "sources:\n  - path: a.json"},
		{"duplicate name", "sources:\n  - name: a\n    path: a.json\n  - name: a\n    path: b.json"},
		{"no location", "sources:\n  - name: a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.in))
			assert.Error(t, err)
		})
	}
}
