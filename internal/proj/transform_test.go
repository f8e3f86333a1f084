package proj

import (
	"errors"
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const epsilon = 1e-6

func assertPointInDelta(t *testing.T, want, got orb.Point, delta float64) {
	t.Helper()
	assert.InDelta(t, want[0], got[0], delta, "x")
	assert.InDelta(t, want[1], got[1], delta, "y")
}

func TestGetAliases(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"EPSG:4326", EPSG4326},
		{"CRS:84", EPSG4326},
		{"urn:ogc:def:crs:EPSG::4326", EPSG4326},
		{"EPSG:3857", EPSG3857},
		{"EPSG:900913", EPSG3857},
		{"EPSG:102100", EPSG3857},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			p, err := Get(tt.code)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Code)
		})
	}
}

func TestGetUnknown(t *testing.T) {
	_, err := Get("EPSG:0")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownProjection))
}

func TestEquivalent(t *testing.T) {
	ok, err := Equivalent("EPSG:3857", "EPSG:900913")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Equivalent("EPSG:3857", "EPSG:4326")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = Equivalent("EPSG:3857", "nope")
	assert.ErrorIs(t, err, ErrUnknownProjection)
}

func TestRegister(t *testing.T) {
	// WGS84 scaled by 10.
	scaled := &Projection{
		Code:      "TEST:SCALED",
		Units:     UnitsMeters,
		Aliases:   []string{"TEST:SCALED-ALIAS"},
		ToWGS84:   func(p orb.Point) orb.Point { return orb.Point{p[0] / 10, p[1] / 10} },
		FromWGS84: func(p orb.Point) orb.Point { return orb.Point{p[0] * 10, p[1] * 10} },
	}
	require.NoError(t, Register(scaled))
	assert.Contains(t, Codes(), "TEST:SCALED")

	got, err := TransformPoint(orb.Point{10, 20}, EPSG4326, "TEST:SCALED-ALIAS")
	require.NoError(t, err)
	assert.Equal(t, orb.Point{100, 200}, got)

	// Composed through WGS84.
	merc, err := TransformPoint(orb.Point{100, 100}, "TEST:SCALED", EPSG3857)
	require.NoError(t, err)
	assertPointInDelta(t, orb.Point{1113194.9079327357, 1118889.9748579597}, merc, 1e-3)

	assert.Error(t, Register(&Projection{Code: "TEST:BROKEN"}))
	assert.Error(t, Register(&Projection{}))
}

func TestTransformPoint(t *testing.T) {
	tests := []struct {
		name     string
		in       orb.Point
		src, dst string
		want     orb.Point
		delta    float64
	}{
		{"identity", orb.Point{0, 0}, EPSG3857, EPSG3857, orb.Point{0, 0}, 0},
		{"identity alias", orb.Point{12, 34}, EPSG3857, "EPSG:900913", orb.Point{12, 34}, 0},
		{"origin", orb.Point{0, 0}, EPSG3857, EPSG4326, orb.Point{0, 0}, epsilon},
		{"to lonlat", orb.Point{1113194.9, 1118889.97}, EPSG3857, EPSG4326, orb.Point{10, 10}, 1e-5},
		{"to mercator", orb.Point{10, 10}, EPSG4326, EPSG3857, orb.Point{1113194.9079, 1118889.9748}, 1e-3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := TransformPoint(tt.in, tt.src, tt.dst)
			require.NoError(t, err)
			assertPointInDelta(t, tt.want, got, tt.delta)
		})
	}
}

func TestTransformUnknownProjection(t *testing.T) {
	_, err := TransformPoint(orb.Point{1, 1}, "EPSG:0", EPSG4326)
	assert.ErrorIs(t, err, ErrUnknownProjection)

	_, err = TransformLine(orb.LineString{{1, 1}}, EPSG4326, "bogus")
	assert.ErrorIs(t, err, ErrUnknownProjection)

	_, err = TransformExtent(orb.Bound{}, "bogus", EPSG4326)
	assert.ErrorIs(t, err, ErrUnknownProjection)
}

func TestTransformDoesNotMutateInput(t *testing.T) {
	line := orb.LineString{{10, 10}, {20, 20}}
	poly := orb.Polygon{{{0, 0}, {10, 0}, {10, 10}, {0, 0}}}
	mpoly := orb.MultiPolygon{poly}

	_, err := TransformLine(line, EPSG4326, EPSG3857)
	require.NoError(t, err)
	_, err = TransformPolygon(poly, EPSG4326, EPSG3857)
	require.NoError(t, err)
	_, err = TransformMultiPolygon(mpoly, EPSG4326, EPSG3857)
	require.NoError(t, err)
	_, err = TransformGeometry(line, EPSG4326, EPSG3857)
	require.NoError(t, err)

	assert.Equal(t, orb.LineString{{10, 10}, {20, 20}}, line)
	assert.Equal(t, orb.Polygon{{{0, 0}, {10, 0}, {10, 10}, {0, 0}}}, poly)
	assert.Equal(t, orb.Polygon{{{0, 0}, {10, 0}, {10, 10}, {0, 0}}}, mpoly[0])
}

func TestTransformIdentityReturnsCopy(t *testing.T) {
	line := orb.LineString{{1, 2}, {3, 4}}

	got, err := TransformLine(line, EPSG3857, EPSG3857)
	require.NoError(t, err)
	assert.Equal(t, line, got)

	got[0][0] = 99
	assert.Equal(t, 1.0, line[0][0])
}

func TestTransformRoundTrip(t *testing.T) {
	mls := orb.MultiLineString{{{-5, 40}, {2, 48}}, {{13, 52}, {21, 52}}}
	mp := orb.MultiPoint{{-73.98, 40.75}, {139.69, 35.68}}

	merc, err := TransformMultiLine(mls, EPSG4326, EPSG3857)
	require.NoError(t, err)
	back, err := TransformMultiLine(merc, EPSG3857, EPSG4326)
	require.NoError(t, err)
	for i := range mls {
		for j := range mls[i] {
			assertPointInDelta(t, mls[i][j], back[i][j], epsilon)
		}
	}

	mercPts, err := TransformMultiPoint(mp, EPSG4326, EPSG3857)
	require.NoError(t, err)
	backPts, err := TransformMultiPoint(mercPts, EPSG3857, EPSG4326)
	require.NoError(t, err)
	for i := range mp {
		assertPointInDelta(t, mp[i], backPts[i], epsilon)
	}
}

func TestTransformEmpty(t *testing.T) {
	got, err := TransformLine(orb.LineString{}, EPSG4326, EPSG3857)
	require.NoError(t, err)
	assert.Empty(t, got)

	nilLine, err := TransformLine(nil, EPSG4326, EPSG3857)
	require.NoError(t, err)
	assert.Nil(t, nilLine)

	g, err := TransformGeometry(nil, EPSG4326, EPSG3857)
	require.NoError(t, err)
	assert.Nil(t, g)
}

func TestTransformExtent(t *testing.T) {
	b := orb.Bound{Min: orb.Point{-10, -10}, Max: orb.Point{10, 10}}

	got, err := TransformExtent(b, EPSG4326, EPSG3857)
	require.NoError(t, err)
	assertPointInDelta(t, orb.Point{-1113194.9079, -1118889.9748}, got.Min, 1e-3)
	assertPointInDelta(t, orb.Point{1113194.9079, 1118889.9748}, got.Max, 1e-3)

	back, err := TransformExtent(got, EPSG3857, EPSG4326)
	require.NoError(t, err)
	assertPointInDelta(t, b.Min, back.Min, epsilon)
	assertPointInDelta(t, b.Max, back.Max, epsilon)
}

func TestTransformGeometryBound(t *testing.T) {
	g, err := TransformGeometry(orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{10, 10}}, EPSG4326, EPSG3857)
	require.NoError(t, err)

	b, ok := g.(orb.Bound)
	require.True(t, ok)
	assert.False(t, math.IsNaN(b.Max[1]))
	assert.InDelta(t, 1113194.9079, b.Max[0], 1e-3)
}

func TestTransformGeometryCollectionBound(t *testing.T) {
	b := orb.Bound{Min: orb.Point{-10, 0}, Max: orb.Point{10, 10}}
	c := orb.Collection{orb.Point{10, 10}, b}

	g, err := TransformGeometry(c, EPSG4326, EPSG3857)
	require.NoError(t, err)

	out, ok := g.(orb.Collection)
	require.True(t, ok)
	require.Len(t, out, 2)
	assertPointInDelta(t, orb.Point{1113194.9079, 1118889.9748}, out[0].(orb.Point), 1e-3)

	want, err := TransformExtent(b, EPSG4326, EPSG3857)
	require.NoError(t, err)
	assert.Equal(t, want, out[1])

	// input untouched
	assert.Equal(t, orb.Point{10, 10}, c[0])
	assert.Equal(t, b, c[1])

	_, err = TransformGeometry(orb.Collection{orb.Point{0, 0}}, EPSG4326, "bogus")
	assert.ErrorIs(t, err, ErrUnknownProjection)
}
