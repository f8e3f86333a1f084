// Package proj keeps the registry of known projections and transforms
// orb geometries between them.
package proj

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

// Canonical codes of the built-in projections.
const (
	EPSG4326 = "EPSG:4326"
	EPSG3857 = "EPSG:3857"
)

// mercatorHalfSize is half the width of the EPSG:3857 world in meters.
const mercatorHalfSize = 20037508.342789244

// ErrUnknownProjection is returned for codes missing from the registry.
var ErrUnknownProjection = errors.New("unknown projection")

// Units of a projection's coordinates.
type Units string

const (
	UnitsDegrees Units = "degrees"
	UnitsMeters  Units = "m"
)

// Projection describes a coordinate reference system and how to reach it
// from WGS84 longitude/latitude and back.
type Projection struct {
	Code    string    `json:"code" yaml:"code"`
	Units   Units     `json:"units" yaml:"units"`
	Extent  orb.Bound `json:"extent" yaml:"extent"`
	Aliases []string  `json:"aliases,omitempty" yaml:"aliases,omitempty"`

	// ToWGS84 and FromWGS84 may be nil only for EPSG:4326 itself.
	ToWGS84   orb.Projection `json:"-" yaml:"-"`
	FromWGS84 orb.Projection `json:"-" yaml:"-"`
}

type registry struct {
	mu     sync.RWMutex
	byCode map[string]*Projection
	codes  []string
}

var defaultRegistry = &registry{byCode: make(map[string]*Projection)}

func init() {
	builtins := []*Projection{
		{
			Code:   EPSG4326,
			Units:  UnitsDegrees,
			Extent: orb.Bound{Min: orb.Point{-180, -90}, Max: orb.Point{180, 90}},
			Aliases: []string{
				"CRS:84",
				"urn:ogc:def:crs:EPSG::4326",
				"urn:ogc:def:crs:OGC:1.3:CRS84",
				"urn:ogc:def:crs:OGC:2:84",
				"urn:x-ogc:def:crs:EPSG:4326",
				"http://www.opengis.net/gml/srs/epsg.xml#4326",
			},
		},
		{
			Code:  EPSG3857,
			Units: UnitsMeters,
			Extent: orb.Bound{
				Min: orb.Point{-mercatorHalfSize, -mercatorHalfSize},
				Max: orb.Point{mercatorHalfSize, mercatorHalfSize},
			},
			Aliases: []string{
				"EPSG:102100",
				"EPSG:102113",
				"EPSG:900913",
				"urn:ogc:def:crs:EPSG:6.18:3:3857",
				"urn:ogc:def:crs:EPSG::3857",
				"http://www.opengis.net/gml/srs/epsg.xml#3857",
			},
			ToWGS84:   project.Mercator.ToWGS84,
			FromWGS84: project.WGS84.ToMercator,
		},
	}

	for _, p := range builtins {
		if err := defaultRegistry.register(p); err != nil {
			panic(err)
		}
	}
}

func (r *registry) register(p *Projection) error {
	if p == nil || p.Code == "" {
		return errors.New("projection code is empty")
	}
	if p.Code != EPSG4326 && (p.ToWGS84 == nil || p.FromWGS84 == nil) {
		return fmt.Errorf("projection %s: both WGS84 conversions are required", p.Code)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byCode[p.Code]; !ok {
		r.codes = append(r.codes, p.Code)
		sort.Strings(r.codes)
	}

	r.byCode[p.Code] = p
	for _, alias := range p.Aliases {
		r.byCode[alias] = p
	}

	return nil
}

func (r *registry) get(code string) (*Projection, error) {
	r.mu.RLock()
	p, ok := r.byCode[code]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProjection, code)
	}

	return p, nil
}

// Register adds a projection and its aliases to the registry, replacing any
// previous entry under the same codes.
func Register(p *Projection) error {
	return defaultRegistry.register(p)
}

// Get looks up a projection by its code or one of its aliases.
func Get(code string) (*Projection, error) {
	return defaultRegistry.get(code)
}

// Codes returns the canonical codes of all registered projections, sorted.
func Codes() []string {
	defaultRegistry.mu.RLock()
	defer defaultRegistry.mu.RUnlock()

	out := make([]string, len(defaultRegistry.codes))
	copy(out, defaultRegistry.codes)
	return out
}

// Equivalent reports whether both codes name the same projection.
func Equivalent(a, b string) (bool, error) {
	pa, err := Get(a)
	if err != nil {
		return false, err
	}
	pb, err := Get(b)
	if err != nil {
		return false, err
	}

	return pa == pb, nil
}
