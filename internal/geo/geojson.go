// Package geo reads and writes GeoJSON, converting coordinates between the
// projection plain data is expressed in and the projection features are kept in.
package geo

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/woozymasta/mapproj/internal/proj"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// GeoJSON object types.
const (
	TypeFeature           = "Feature"
	TypeFeatureCollection = "FeatureCollection"
)

var (
	// ErrNoGeometry is returned when a geometry is required but missing.
	ErrNoGeometry = errors.New("geojson: no geometry")
	// ErrUnsupportedGeometry is returned for orb values GeoJSON cannot encode.
	ErrUnsupportedGeometry = errors.New("geojson: unsupported geometry")
)

// ReadGeometry decodes a GeoJSON geometry expressed in dataProj and returns
// it in featureProj.
func ReadGeometry(data []byte, featureProj, dataProj string) (orb.Geometry, error) {
	g, err := geojson.UnmarshalGeometry(data)
	if err != nil {
		return nil, fmt.Errorf("decode geometry: %w", err)
	}
	if g.Geometry() == nil {
		return nil, ErrNoGeometry
	}

	return proj.TransformGeometry(g.Geometry(), dataProj, featureProj)
}

// WriteGeometry encodes a geometry kept in featureProj as GeoJSON expressed
// in dataProj.
func WriteGeometry(g orb.Geometry, featureProj, dataProj string) ([]byte, error) {
	if g == nil {
		return nil, ErrNoGeometry
	}
	if _, ok := g.(orb.Bound); ok {
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedGeometry, g)
	}

	out, err := proj.TransformGeometry(g, featureProj, dataProj)
	if err != nil {
		return nil, err
	}

	return geojson.NewGeometry(out).MarshalJSON()
}

// ReadFeature decodes a GeoJSON feature expressed in dataProj. The returned
// feature's geometry and bbox are in featureProj; a null geometry stays nil.
func ReadFeature(data []byte, featureProj, dataProj string) (*geojson.Feature, error) {
	f, err := geojson.UnmarshalFeature(data)
	if err != nil {
		return nil, fmt.Errorf("decode feature: %w", err)
	}

	return transformFeature(f, dataProj, featureProj)
}

// WriteFeature encodes a feature kept in featureProj as GeoJSON expressed in
// dataProj. The input feature is not modified.
func WriteFeature(f *geojson.Feature, featureProj, dataProj string) ([]byte, error) {
	if f == nil {
		return nil, errors.New("geojson: nil feature")
	}

	out, err := transformFeature(f, featureProj, dataProj)
	if err != nil {
		return nil, err
	}

	return out.MarshalJSON()
}

// ReadFeatures decodes a FeatureCollection expressed in dataProj.
func ReadFeatures(data []byte, featureProj, dataProj string) (*geojson.FeatureCollection, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decode feature collection: %w", err)
	}

	return TransformFeatures(fc, dataProj, featureProj)
}

// WriteFeatures encodes a FeatureCollection kept in featureProj as GeoJSON
// expressed in dataProj.
func WriteFeatures(fc *geojson.FeatureCollection, featureProj, dataProj string) ([]byte, error) {
	out, err := TransformFeatures(fc, featureProj, dataProj)
	if err != nil {
		return nil, err
	}

	return out.MarshalJSON()
}

// TransformFeatures returns a new collection with every feature converted
// from src to dst. Properties maps are shared with the input.
func TransformFeatures(fc *geojson.FeatureCollection, src, dst string) (*geojson.FeatureCollection, error) {
	out := geojson.NewFeatureCollection()
	if fc == nil {
		return out, nil
	}

	out.ExtraMembers = fc.ExtraMembers
	if len(fc.BBox) > 0 {
		bbox, err := transformBBox(fc.BBox, src, dst)
		if err != nil {
			return nil, err
		}
		out.BBox = bbox
	}

	out.Features = make([]*geojson.Feature, 0, len(fc.Features))
	for i, f := range fc.Features {
		tf, err := transformFeature(f, src, dst)
		if err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}
		out.Append(tf)
	}

	return out, nil
}

// Reproject converts any GeoJSON object (Geometry, Feature or
// FeatureCollection) from src to dst and returns the encoded result.
func Reproject(data []byte, src, dst string) ([]byte, error) {
	typ, err := DetectType(data)
	if err != nil {
		return nil, err
	}

	switch typ {
	case TypeFeatureCollection:
		fc, err := ReadFeatures(data, dst, src)
		if err != nil {
			return nil, err
		}
		return fc.MarshalJSON()

	case TypeFeature:
		f, err := ReadFeature(data, dst, src)
		if err != nil {
			return nil, err
		}
		return f.MarshalJSON()

	default:
		g, err := ReadGeometry(data, dst, src)
		if err != nil {
			return nil, err
		}
		return geojson.NewGeometry(g).MarshalJSON()
	}
}

// DetectType returns the "type" member of a GeoJSON object.
func DetectType(data []byte) (string, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return "", fmt.Errorf("decode geojson: %w", err)
	}
	if head.Type == "" {
		return "", errors.New("geojson: missing type member")
	}

	return head.Type, nil
}

func transformFeature(f *geojson.Feature, src, dst string) (*geojson.Feature, error) {
	if f == nil {
		return nil, errors.New("geojson: nil feature")
	}

	out := *f

	if f.Geometry != nil {
		g, err := proj.TransformGeometry(f.Geometry, src, dst)
		if err != nil {
			return nil, err
		}
		out.Geometry = g
	}

	if len(f.BBox) > 0 {
		bbox, err := transformBBox(f.BBox, src, dst)
		if err != nil {
			return nil, err
		}
		out.BBox = bbox
	}

	return &out, nil
}

// transformBBox converts a 2D bbox. Other bbox shapes are dropped since
// their extra dimensions cannot be carried over.
func transformBBox(bbox geojson.BBox, src, dst string) (geojson.BBox, error) {
	if len(bbox) != 4 {
		return nil, nil
	}

	b, err := proj.TransformExtent(bbox.Bound(), src, dst)
	if err != nil {
		return nil, err
	}

	return geojson.NewBBox(b), nil
}
