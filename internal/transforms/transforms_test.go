package transforms

import (
	"testing"

	"github.com/woozymasta/mapproj/internal/proj"
	"github.com/woozymasta/mapproj/internal/view"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticView string

func (v staticView) Projection() string { return string(v) }

func assertPointInDelta(t *testing.T, want, got orb.Point, delta float64) {
	t.Helper()
	assert.InDelta(t, want[0], got[0], delta, "x")
	assert.InDelta(t, want[1], got[1], delta, "y")
}

func TestResolvedDataProjection(t *testing.T) {
	tests := []struct {
		name        string
		view        ViewProjector
		typeDefault string
		override    string
		want        string
	}{
		{"override wins", staticView(proj.EPSG3857), "EPSG:900913", proj.EPSG4326, proj.EPSG4326},
		{"override over view", staticView(proj.EPSG4326), "", proj.EPSG3857, proj.EPSG3857},
		{"type default", staticView(proj.EPSG3857), proj.EPSG4326, "", proj.EPSG4326},
		{"view fallback", staticView(proj.EPSG4326), "", "", proj.EPSG4326},
		{"no view", nil, "", "", proj.EPSG3857},
		{"no view type default", nil, proj.EPSG4326, "", proj.EPSG4326},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := New(tt.view, tt.typeDefault)
			tr.DataProjection = tt.override
			assert.Equal(t, tt.want, tr.ResolvedDataProjection())
		})
	}
}

func TestResolvedDataProjectionFollowsChanges(t *testing.T) {
	v, err := view.New(proj.EPSG3857)
	require.NoError(t, err)

	tr := New(v, "")
	assert.Equal(t, proj.EPSG3857, tr.ResolvedDataProjection())

	require.NoError(t, v.SetProjection(proj.EPSG4326))
	assert.Equal(t, proj.EPSG4326, tr.ViewProjection())
	assert.Equal(t, proj.EPSG4326, tr.ResolvedDataProjection())

	tr.DataProjection = proj.EPSG3857
	assert.Equal(t, proj.EPSG3857, tr.ResolvedDataProjection())

	tr.DataProjection = ""
	tr.SetView(nil)
	assert.Equal(t, DefaultViewProjection, tr.ResolvedDataProjection())
}

func TestPointIdentityWithoutOverride(t *testing.T) {
	tr := New(staticView(proj.EPSG3857), "")

	got, err := tr.PointToDataProj(orb.Point{0, 0})
	require.NoError(t, err)
	assert.Equal(t, orb.Point{0, 0}, got)
}

func TestPointToDataProj(t *testing.T) {
	tr := New(staticView(proj.EPSG3857), "")
	tr.DataProjection = proj.EPSG4326

	origin, err := tr.PointToDataProj(orb.Point{0, 0})
	require.NoError(t, err)
	assertPointInDelta(t, orb.Point{0, 0}, origin, 1e-9)

	got, err := tr.PointToDataProj(orb.Point{1113194.9, 1118889.97})
	require.NoError(t, err)
	assertPointInDelta(t, orb.Point{10, 10}, got, 1e-5)

	back, err := tr.PointToViewProj(got)
	require.NoError(t, err)
	assertPointInDelta(t, orb.Point{1113194.9, 1118889.97}, back, 1e-3)
}

func TestRoundTrips(t *testing.T) {
	tr := New(staticView(proj.EPSG3857), proj.EPSG4326)

	ring := orb.Ring{{-10, -10}, {10, -10}, {10, 10}, {-10, 10}, {-10, -10}}
	line := orb.LineString{{-0.1278, 51.5074}, {2.3522, 48.8566}}
	poly := orb.Polygon{ring}

	t.Run("line", func(t *testing.T) {
		v, err := tr.LineToViewProj(line)
		require.NoError(t, err)
		d, err := tr.LineToDataProj(v)
		require.NoError(t, err)
		require.Len(t, d, len(line))
		for i := range line {
			assertPointInDelta(t, line[i], d[i], 1e-9)
		}
	})

	t.Run("polygon", func(t *testing.T) {
		v, err := tr.PolygonToViewProj(poly)
		require.NoError(t, err)
		d, err := tr.PolygonToDataProj(v)
		require.NoError(t, err)
		for i := range ring {
			assertPointInDelta(t, ring[i], d[0][i], 1e-9)
		}
	})

	t.Run("multi point", func(t *testing.T) {
		mp := orb.MultiPoint(line)
		v, err := tr.MultiPointToViewProj(mp)
		require.NoError(t, err)
		d, err := tr.MultiPointToDataProj(v)
		require.NoError(t, err)
		for i := range mp {
			assertPointInDelta(t, mp[i], d[i], 1e-9)
		}
	})

	t.Run("multi line", func(t *testing.T) {
		ml := orb.MultiLineString{line, line}
		v, err := tr.MultiLineToViewProj(ml)
		require.NoError(t, err)
		d, err := tr.MultiLineToDataProj(v)
		require.NoError(t, err)
		for i := range ml {
			for j := range ml[i] {
				assertPointInDelta(t, ml[i][j], d[i][j], 1e-9)
			}
		}
	})

	t.Run("multi polygon", func(t *testing.T) {
		mp := orb.MultiPolygon{poly}
		v, err := tr.MultiPolygonToViewProj(mp)
		require.NoError(t, err)
		d, err := tr.MultiPolygonToDataProj(v)
		require.NoError(t, err)
		for i := range ring {
			assertPointInDelta(t, ring[i], d[0][0][i], 1e-9)
		}
	})

	t.Run("extent", func(t *testing.T) {
		ext := ring.Bound()
		v, err := tr.ExtentToViewProj(ext)
		require.NoError(t, err)
		d, err := tr.ExtentToDataProj(v)
		require.NoError(t, err)
		assertPointInDelta(t, ext.Min, d.Min, 1e-9)
		assertPointInDelta(t, ext.Max, d.Max, 1e-9)
	})

	// inputs stay as the caller left them
	assert.Equal(t, orb.LineString{{-0.1278, 51.5074}, {2.3522, 48.8566}}, line)
	assert.Equal(t, orb.Point{-10, -10}, poly[0][0])
}

func TestUnknownProjectionPropagates(t *testing.T) {
	tr := New(staticView(proj.EPSG3857), "")
	tr.DataProjection = "EPSG:0"

	_, err := tr.PointToDataProj(orb.Point{1, 1})
	assert.ErrorIs(t, err, proj.ErrUnknownProjection)

	_, err = tr.ExtentToViewProj(orb.Bound{})
	assert.ErrorIs(t, err, proj.ErrUnknownProjection)

	_, err = tr.WriteGeometryInDataProj(orb.Point{1, 1})
	assert.ErrorIs(t, err, proj.ErrUnknownProjection)
}

func TestGeoJSON(t *testing.T) {
	tr := New(staticView(proj.EPSG3857), "")
	tr.DataProjection = proj.EPSG4326

	g, err := tr.ReadGeometryInDataProj([]byte(`{"type":"Point","coordinates":[10,10]}`))
	require.NoError(t, err)
	assertPointInDelta(t, orb.Point{1113194.9079, 1118889.9748}, g.(orb.Point), 1e-3)

	data, err := tr.WriteGeometryInDataProj(g)
	require.NoError(t, err)
	back, err := geojson.UnmarshalGeometry(data)
	require.NoError(t, err)
	assertPointInDelta(t, orb.Point{10, 10}, back.Geometry().(orb.Point), 1e-9)

	f, err := tr.ReadFeatureInDataProj([]byte(
		`{"type":"Feature","id":7,"geometry":{"type":"LineString","coordinates":[[0,0],[10,10]]},"properties":{}}`))
	require.NoError(t, err)
	ls := f.Geometry.(orb.LineString)
	assertPointInDelta(t, orb.Point{1113194.9079, 1118889.9748}, ls[1], 1e-3)

	data, err = tr.WriteFeatureInDataProj(f)
	require.NoError(t, err)
	backF, err := geojson.UnmarshalFeature(data)
	require.NoError(t, err)
	assert.EqualValues(t, 7, backF.ID)
	assertPointInDelta(t, orb.Point{10, 10}, backF.Geometry.(orb.LineString)[1], 1e-9)
}

func TestFeatureCollections(t *testing.T) {
	tr := New(staticView(proj.EPSG3857), proj.EPSG4326)

	fc, err := tr.ReadFeaturesInDataProj([]byte(`{"type":"FeatureCollection","features":[` +
		`{"type":"Feature","geometry":{"type":"Point","coordinates":[10,10]},"properties":{}}]}`))
	require.NoError(t, err)
	require.Len(t, fc.Features, 1)

	data, err := tr.WriteFeaturesInDataProj(fc)
	require.NoError(t, err)

	back, err := geojson.UnmarshalFeatureCollection(data)
	require.NoError(t, err)
	require.Len(t, back.Features, 1)
	assertPointInDelta(t, orb.Point{10, 10}, back.Features[0].Geometry.(orb.Point), 1e-9)
}
