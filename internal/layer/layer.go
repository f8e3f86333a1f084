// Package layer implements vector map components. They keep geometries in
// the view projection and exchange plain data in their data projection.
package layer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/woozymasta/mapproj/internal/proj"
	"github.com/woozymasta/mapproj/internal/transforms"

	"github.com/paulmach/orb"
)

// Kind names a component type.
type Kind string

const (
	KindFeature Kind = "feature"
	KindSource  Kind = "source"
)

// ErrUnsupportedGeometry is returned for geometry types components cannot hold.
var ErrUnsupportedGeometry = errors.New("unsupported geometry")

var (
	typeMu       sync.RWMutex
	typeDefaults = map[Kind]string{
		KindSource: proj.EPSG4326,
	}
)

// SetTypeDataProjection sets the default data projection of every component
// of kind created afterwards. An empty code removes the default.
func SetTypeDataProjection(kind Kind, code string) error {
	if code != "" {
		if _, err := proj.Get(code); err != nil {
			return err
		}
	}

	typeMu.Lock()
	defer typeMu.Unlock()

	if code == "" {
		delete(typeDefaults, kind)
	} else {
		typeDefaults[kind] = code
	}

	return nil
}

// TypeDataProjection returns the default data projection of kind.
func TypeDataProjection(kind Kind) string {
	typeMu.RLock()
	defer typeMu.RUnlock()
	return typeDefaults[kind]
}

// fixedView is a view frozen in one projection.
type fixedView string

func (v fixedView) Projection() string { return string(v) }

// toViewProj converts a data-projected geometry with the matching
// per-shape helper of t.
func toViewProj(t *transforms.ProjTransforms, g orb.Geometry) (orb.Geometry, error) {
	switch g := g.(type) {
	case orb.Point:
		return t.PointToViewProj(g)
	case orb.MultiPoint:
		return t.MultiPointToViewProj(g)
	case orb.LineString:
		return t.LineToViewProj(g)
	case orb.MultiLineString:
		return t.MultiLineToViewProj(g)
	case orb.Ring:
		ls, err := t.LineToViewProj(orb.LineString(g))
		return orb.Ring(ls), err
	case orb.Polygon:
		return t.PolygonToViewProj(g)
	case orb.MultiPolygon:
		return t.MultiPolygonToViewProj(g)
	case orb.Bound:
		return t.ExtentToViewProj(g)
	case orb.Collection:
		out := make(orb.Collection, 0, len(g))
		for _, item := range g {
			c, err := toViewProj(t, item)
			if err != nil {
				return nil, err
			}
			out = append(out, c)
		}
		return out, nil
	case nil:
		return nil, nil
	}

	return nil, fmt.Errorf("%w: %T", ErrUnsupportedGeometry, g)
}

// toDataProj is the inverse of toViewProj.
func toDataProj(t *transforms.ProjTransforms, g orb.Geometry) (orb.Geometry, error) {
	switch g := g.(type) {
	case orb.Point:
		return t.PointToDataProj(g)
	case orb.MultiPoint:
		return t.MultiPointToDataProj(g)
	case orb.LineString:
		return t.LineToDataProj(g)
	case orb.MultiLineString:
		return t.MultiLineToDataProj(g)
	case orb.Ring:
		ls, err := t.LineToDataProj(orb.LineString(g))
		return orb.Ring(ls), err
	case orb.Polygon:
		return t.PolygonToDataProj(g)
	case orb.MultiPolygon:
		return t.MultiPolygonToDataProj(g)
	case orb.Bound:
		return t.ExtentToDataProj(g)
	case orb.Collection:
		out := make(orb.Collection, 0, len(g))
		for _, item := range g {
			c, err := toDataProj(t, item)
			if err != nil {
				return nil, err
			}
			out = append(out, c)
		}
		return out, nil
	case nil:
		return nil, nil
	}

	return nil, fmt.Errorf("%w: %T", ErrUnsupportedGeometry, g)
}
