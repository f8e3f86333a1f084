package proj

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
	"github.com/rs/zerolog/log"
)

func identity(p orb.Point) orb.Point { return p }

// Converter returns the point conversion from src to dst. Conversions go
// through WGS84 unless one side already is WGS84.
func Converter(src, dst string) (orb.Projection, error) {
	from, err := Get(src)
	if err != nil {
		return nil, err
	}
	to, err := Get(dst)
	if err != nil {
		return nil, err
	}

	switch {
	case from == to:
		return identity, nil
	case from.Code == EPSG4326:
		return to.FromWGS84, nil
	case to.Code == EPSG4326:
		return from.ToWGS84, nil
	}

	log.Trace().
		Str("src", from.Code).
		Str("dst", to.Code).
		Msg("Composing projection through WGS84")

	toWGS84, fromWGS84 := from.ToWGS84, to.FromWGS84
	return func(p orb.Point) orb.Point {
		return fromWGS84(toWGS84(p))
	}, nil
}

// TransformPoint converts a point from src to dst.
func TransformPoint(p orb.Point, src, dst string) (orb.Point, error) {
	fn, err := Converter(src, dst)
	if err != nil {
		return orb.Point{}, err
	}

	return fn(p), nil
}

// TransformLine converts a line string from src to dst.
// The input is left untouched, the result is a new slice.
func TransformLine(ls orb.LineString, src, dst string) (orb.LineString, error) {
	fn, err := Converter(src, dst)
	if err != nil {
		return nil, err
	}

	return project.LineString(ls.Clone(), fn), nil
}

// TransformPolygon converts every ring of a polygon from src to dst.
func TransformPolygon(p orb.Polygon, src, dst string) (orb.Polygon, error) {
	fn, err := Converter(src, dst)
	if err != nil {
		return nil, err
	}

	return project.Polygon(p.Clone(), fn), nil
}

// TransformMultiPoint converts a multi point from src to dst.
func TransformMultiPoint(mp orb.MultiPoint, src, dst string) (orb.MultiPoint, error) {
	fn, err := Converter(src, dst)
	if err != nil {
		return nil, err
	}

	return project.MultiPoint(mp.Clone(), fn), nil
}

// TransformMultiLine converts a multi line string from src to dst.
func TransformMultiLine(mls orb.MultiLineString, src, dst string) (orb.MultiLineString, error) {
	fn, err := Converter(src, dst)
	if err != nil {
		return nil, err
	}

	return project.MultiLineString(mls.Clone(), fn), nil
}

// TransformMultiPolygon converts a multi polygon from src to dst.
func TransformMultiPolygon(mp orb.MultiPolygon, src, dst string) (orb.MultiPolygon, error) {
	fn, err := Converter(src, dst)
	if err != nil {
		return nil, err
	}

	return project.MultiPolygon(mp.Clone(), fn), nil
}

// TransformExtent converts an extent from src to dst. All four corners are
// converted and the result is their bounding box, so it stays axis aligned
// in the target projection.
func TransformExtent(b orb.Bound, src, dst string) (orb.Bound, error) {
	fn, err := Converter(src, dst)
	if err != nil {
		return orb.Bound{}, err
	}

	corners := [4]orb.Point{
		b.Min,
		{b.Min[0], b.Max[1]},
		{b.Max[0], b.Min[1]},
		b.Max,
	}

	first := fn(corners[0])
	out := orb.Bound{Min: first, Max: first}
	for _, c := range corners[1:] {
		out = out.Extend(fn(c))
	}

	return out, nil
}

// TransformGeometry converts any orb geometry, including collections and
// bounds, from src to dst. A nil geometry stays nil.
func TransformGeometry(g orb.Geometry, src, dst string) (orb.Geometry, error) {
	fn, err := Converter(src, dst)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, nil
	}

	switch g := g.(type) {
	case orb.Bound:
		return TransformExtent(g, src, dst)
	case orb.Collection:
		out := make(orb.Collection, 0, len(g))
		for _, item := range g {
			c, err := TransformGeometry(item, src, dst)
			if err != nil {
				return nil, err
			}
			out = append(out, c)
		}
		return out, nil
	}

	return project.Geometry(orb.Clone(g), fn), nil
}
