package layer

import (
	"github.com/woozymasta/mapproj/internal/proj"
	"github.com/woozymasta/mapproj/internal/transforms"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Feature is a single map feature. Its geometry is held in the view
// projection; after the view projection changes it is re-projected on the
// next access. A Feature is not safe for concurrent mutation.
type Feature struct {
	transforms.ProjTransforms

	ID         any
	Properties geojson.Properties

	geometry orb.Geometry
	geomProj string // projection geometry is held in
}

// NewFeature creates an empty feature attached to v.
func NewFeature(v transforms.ViewProjector) *Feature {
	return &Feature{
		ProjTransforms: transforms.New(v, TypeDataProjection(KindFeature)),
		Properties:     geojson.Properties{},
	}
}

// Geometry returns the geometry in the current view projection.
func (f *Feature) Geometry() (orb.Geometry, error) {
	code := f.ViewProjection()

	g, err := f.geometryIn(code)
	if err != nil {
		return nil, err
	}

	f.geometry, f.geomProj = g, code
	return g, nil
}

// SetGeometry replaces the geometry with one already in the view projection.
func (f *Feature) SetGeometry(g orb.Geometry) {
	f.geometry, f.geomProj = g, f.ViewProjection()
}

// Coordinates returns the geometry in the resolved data projection.
func (f *Feature) Coordinates() (orb.Geometry, error) {
	t, g, err := f.pinned()
	if err != nil {
		return nil, err
	}

	return toDataProj(&t, g)
}

// SetCoordinates replaces the geometry with one given in the resolved data
// projection.
func (f *Feature) SetCoordinates(g orb.Geometry) error {
	t, code := f.at()

	vg, err := toViewProj(&t, g)
	if err != nil {
		return err
	}

	f.geometry, f.geomProj = vg, code
	return nil
}

// SetGeometryGeoJSON replaces the geometry from a GeoJSON geometry object
// in the resolved data projection.
func (f *Feature) SetGeometryGeoJSON(data []byte) error {
	t, code := f.at()

	g, err := t.ReadGeometryInDataProj(data)
	if err != nil {
		return err
	}

	f.geometry, f.geomProj = g, code
	return nil
}

// GeometryGeoJSON encodes the geometry in the resolved data projection.
func (f *Feature) GeometryGeoJSON() ([]byte, error) {
	t, g, err := f.pinned()
	if err != nil {
		return nil, err
	}

	return t.WriteGeometryInDataProj(g)
}

// GeoJSON encodes the whole feature in the resolved data projection.
func (f *Feature) GeoJSON() ([]byte, error) {
	t, g, err := f.pinned()
	if err != nil {
		return nil, err
	}

	return t.WriteFeatureInDataProj(f.geoJSONFeature(g))
}

// SetGeoJSON replaces id, properties and geometry from a GeoJSON feature in
// the resolved data projection.
func (f *Feature) SetGeoJSON(data []byte) error {
	t, code := f.at()

	gf, err := t.ReadFeatureInDataProj(data)
	if err != nil {
		return err
	}

	f.ID = gf.ID
	f.Properties = gf.Properties
	f.geometry, f.geomProj = gf.Geometry, code
	return nil
}

// at returns the transforms pinned to the view projection read once, so a
// concurrent view switch cannot split one conversion.
func (f *Feature) at() (transforms.ProjTransforms, string) {
	code := f.ViewProjection()

	t := f.ProjTransforms
	t.SetView(fixedView(code))
	return t, code
}

// pinned is at plus the geometry expressed in the pinned projection.
func (f *Feature) pinned() (transforms.ProjTransforms, orb.Geometry, error) {
	t, code := f.at()

	g, err := f.geometryIn(code)
	if err != nil {
		return t, nil, err
	}

	return t, g, nil
}

// geometryIn returns the geometry in code without touching the stored one.
func (f *Feature) geometryIn(code string) (orb.Geometry, error) {
	if f.geometry == nil || f.geomProj == code {
		return f.geometry, nil
	}

	return proj.TransformGeometry(f.geometry, f.geomProj, code)
}

func (f *Feature) geoJSONFeature(g orb.Geometry) *geojson.Feature {
	return &geojson.Feature{
		ID:         f.ID,
		Type:       "Feature",
		Geometry:   g,
		Properties: f.Properties,
	}
}
