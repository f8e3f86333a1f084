// Package transforms gives map components helpers to move coordinates
// between the projection of the view they are attached to and the
// projection their plain input/output data is declared in.
//
// Components compose a ProjTransforms value and call its methods; the
// resolved data projection is derived on every call, so changes of the
// instance override or of the view projection are seen immediately.
package transforms

import (
	"github.com/woozymasta/mapproj/internal/geo"
	"github.com/woozymasta/mapproj/internal/proj"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// DefaultViewProjection is used when no view is attached.
const DefaultViewProjection = proj.EPSG3857

// ViewProjector reports the projection code of the current view.
type ViewProjector interface {
	Projection() string
}

// Transformer is the set of conversions a component gets from ProjTransforms.
type Transformer interface {
	ViewProjection() string
	ResolvedDataProjection() string

	PointToViewProj(orb.Point) (orb.Point, error)
	PointToDataProj(orb.Point) (orb.Point, error)
	LineToViewProj(orb.LineString) (orb.LineString, error)
	LineToDataProj(orb.LineString) (orb.LineString, error)
	PolygonToViewProj(orb.Polygon) (orb.Polygon, error)
	PolygonToDataProj(orb.Polygon) (orb.Polygon, error)
	MultiPointToViewProj(orb.MultiPoint) (orb.MultiPoint, error)
	MultiPointToDataProj(orb.MultiPoint) (orb.MultiPoint, error)
	MultiLineToViewProj(orb.MultiLineString) (orb.MultiLineString, error)
	MultiLineToDataProj(orb.MultiLineString) (orb.MultiLineString, error)
	MultiPolygonToViewProj(orb.MultiPolygon) (orb.MultiPolygon, error)
	MultiPolygonToDataProj(orb.MultiPolygon) (orb.MultiPolygon, error)
	ExtentToViewProj(orb.Bound) (orb.Bound, error)
	ExtentToDataProj(orb.Bound) (orb.Bound, error)

	WriteGeometryInDataProj(orb.Geometry) ([]byte, error)
	ReadGeometryInDataProj([]byte) (orb.Geometry, error)
	WriteFeatureInDataProj(*geojson.Feature) ([]byte, error)
	ReadFeatureInDataProj([]byte) (*geojson.Feature, error)
}

var _ Transformer = (*ProjTransforms)(nil)

// ProjTransforms resolves a component's data projection and converts values
// between it and the view projection.
type ProjTransforms struct {
	// DataProjection overrides the data projection of this instance.
	// Empty means not set.
	DataProjection string

	typeDefault string
	view        ViewProjector
}

// New returns transforms bound to view. typeDefault is the data projection
// shared by all components of the host's type, empty if there is none.
func New(view ViewProjector, typeDefault string) ProjTransforms {
	return ProjTransforms{typeDefault: typeDefault, view: view}
}

// SetView attaches the transforms to another view, nil detaches it.
func (t *ProjTransforms) SetView(v ViewProjector) {
	t.view = v
}

// TypeDataProjection returns the component type default, empty if unset.
func (t *ProjTransforms) TypeDataProjection() string {
	return t.typeDefault
}

// ViewProjection returns the projection of the attached view, or
// DefaultViewProjection when detached.
func (t *ProjTransforms) ViewProjection() string {
	if t.view == nil {
		return DefaultViewProjection
	}
	return t.view.Projection()
}

// ResolvedDataProjection returns the instance override, else the component
// type default, else the view projection.
func (t *ProjTransforms) ResolvedDataProjection() string {
	_, data := t.projections()
	return data
}

// projections reads the view once and returns it with the data projection
// resolved against it.
func (t *ProjTransforms) projections() (viewProj, dataProj string) {
	viewProj = t.ViewProjection()
	return viewProj, coalesce(t.DataProjection, t.typeDefault, viewProj)
}

func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func (t *ProjTransforms) PointToViewProj(point orb.Point) (orb.Point, error) {
	viewProj, dataProj := t.projections()
	return proj.TransformPoint(point, dataProj, viewProj)
}

func (t *ProjTransforms) PointToDataProj(point orb.Point) (orb.Point, error) {
	viewProj, dataProj := t.projections()
	return proj.TransformPoint(point, viewProj, dataProj)
}

func (t *ProjTransforms) LineToViewProj(line orb.LineString) (orb.LineString, error) {
	viewProj, dataProj := t.projections()
	return proj.TransformLine(line, dataProj, viewProj)
}

func (t *ProjTransforms) LineToDataProj(line orb.LineString) (orb.LineString, error) {
	viewProj, dataProj := t.projections()
	return proj.TransformLine(line, viewProj, dataProj)
}

func (t *ProjTransforms) PolygonToViewProj(polygon orb.Polygon) (orb.Polygon, error) {
	viewProj, dataProj := t.projections()
	return proj.TransformPolygon(polygon, dataProj, viewProj)
}

func (t *ProjTransforms) PolygonToDataProj(polygon orb.Polygon) (orb.Polygon, error) {
	viewProj, dataProj := t.projections()
	return proj.TransformPolygon(polygon, viewProj, dataProj)
}

func (t *ProjTransforms) MultiPointToViewProj(multiPoint orb.MultiPoint) (orb.MultiPoint, error) {
	viewProj, dataProj := t.projections()
	return proj.TransformMultiPoint(multiPoint, dataProj, viewProj)
}

func (t *ProjTransforms) MultiPointToDataProj(multiPoint orb.MultiPoint) (orb.MultiPoint, error) {
	viewProj, dataProj := t.projections()
	return proj.TransformMultiPoint(multiPoint, viewProj, dataProj)
}

func (t *ProjTransforms) MultiLineToViewProj(multiLine orb.MultiLineString) (orb.MultiLineString, error) {
	viewProj, dataProj := t.projections()
	return proj.TransformMultiLine(multiLine, dataProj, viewProj)
}

func (t *ProjTransforms) MultiLineToDataProj(multiLine orb.MultiLineString) (orb.MultiLineString, error) {
	viewProj, dataProj := t.projections()
	return proj.TransformMultiLine(multiLine, viewProj, dataProj)
}

func (t *ProjTransforms) MultiPolygonToViewProj(multiPolygon orb.MultiPolygon) (orb.MultiPolygon, error) {
	viewProj, dataProj := t.projections()
	return proj.TransformMultiPolygon(multiPolygon, dataProj, viewProj)
}

func (t *ProjTransforms) MultiPolygonToDataProj(multiPolygon orb.MultiPolygon) (orb.MultiPolygon, error) {
	viewProj, dataProj := t.projections()
	return proj.TransformMultiPolygon(multiPolygon, viewProj, dataProj)
}

func (t *ProjTransforms) ExtentToViewProj(extent orb.Bound) (orb.Bound, error) {
	viewProj, dataProj := t.projections()
	return proj.TransformExtent(extent, dataProj, viewProj)
}

func (t *ProjTransforms) ExtentToDataProj(extent orb.Bound) (orb.Bound, error) {
	viewProj, dataProj := t.projections()
	return proj.TransformExtent(extent, viewProj, dataProj)
}

// WriteGeometryInDataProj encodes a view-projected geometry as GeoJSON in
// the resolved data projection.
func (t *ProjTransforms) WriteGeometryInDataProj(geometry orb.Geometry) ([]byte, error) {
	viewProj, dataProj := t.projections()
	return geo.WriteGeometry(geometry, viewProj, dataProj)
}

// ReadGeometryInDataProj decodes GeoJSON in the resolved data projection
// into a view-projected geometry.
func (t *ProjTransforms) ReadGeometryInDataProj(data []byte) (orb.Geometry, error) {
	viewProj, dataProj := t.projections()
	return geo.ReadGeometry(data, viewProj, dataProj)
}

func (t *ProjTransforms) WriteFeatureInDataProj(feature *geojson.Feature) ([]byte, error) {
	viewProj, dataProj := t.projections()
	return geo.WriteFeature(feature, viewProj, dataProj)
}

func (t *ProjTransforms) ReadFeatureInDataProj(data []byte) (*geojson.Feature, error) {
	viewProj, dataProj := t.projections()
	return geo.ReadFeature(data, viewProj, dataProj)
}

func (t *ProjTransforms) WriteFeaturesInDataProj(fc *geojson.FeatureCollection) ([]byte, error) {
	viewProj, dataProj := t.projections()
	return geo.WriteFeatures(fc, viewProj, dataProj)
}

func (t *ProjTransforms) ReadFeaturesInDataProj(data []byte) (*geojson.FeatureCollection, error) {
	viewProj, dataProj := t.projections()
	return geo.ReadFeatures(data, viewProj, dataProj)
}
