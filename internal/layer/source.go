package layer

import (
	"sync"

	"github.com/woozymasta/mapproj/internal/geo"
	"github.com/woozymasta/mapproj/internal/proj"
	"github.com/woozymasta/mapproj/internal/transforms"
	"github.com/woozymasta/mapproj/internal/view"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog/log"
)

// View is a view a Source can follow.
type View interface {
	transforms.ViewProjector
	Subscribe(fn view.ChangeFunc) (unsubscribe func())
}

// Source is a named collection of features. Features are stored in the view
// projection and re-projected when the view projection changes.
// All methods are safe for concurrent use.
type Source struct {
	Name        string
	Attribution string

	mu          sync.RWMutex
	tr          transforms.ProjTransforms
	fc          *geojson.FeatureCollection
	storedProj  string // projection fc is currently in
	generation  int    // bumped on every view attach
	unsubscribe func()
}

// NewSource creates an empty source following v. Close releases the
// subscription.
func NewSource(name string, v View) *Source {
	s := &Source{
		Name: name,
		tr:   transforms.New(nil, TypeDataProjection(KindSource)),
		fc:   geojson.NewFeatureCollection(),
	}
	s.SetView(v)

	return s
}

// SetView makes the source follow v. Stored features are re-projected into
// the projection of v.
func (s *Source) SetView(v View) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.detach()
	s.generation++
	gen := s.generation
	s.unsubscribe = v.Subscribe(func(oldCode, newCode string) {
		s.reproject(gen, oldCode, newCode)
	})
	s.tr.SetView(v)

	code := v.Projection()
	if s.storedProj == "" {
		s.storedProj = code
		return
	}

	s.moveTo(s.storedProj, code)
}

// Close stops following the view.
func (s *Source) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detach()
}

func (s *Source) detach() {
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
}

// SetDataProjection overrides the data projection of this source.
func (s *Source) SetDataProjection(code string) {
	s.mu.Lock()
	s.tr.DataProjection = code
	s.mu.Unlock()
}

// DataProjection returns the instance override, empty if unset.
func (s *Source) DataProjection() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tr.DataProjection
}

// ViewProjection returns the projection the features are stored in.
func (s *Source) ViewProjection() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.storedProj
}

// ResolvedDataProjection returns the instance override, else the source
// type default, else the view projection.
func (s *Source) ResolvedDataProjection() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dataProjection()
}

// Transforms returns a copy of the source transforms pinned to the
// projection the features are stored in.
func (s *Source) Transforms() transforms.ProjTransforms {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tr := s.tr
	tr.SetView(fixedView(s.storedProj))
	return tr
}

// Load replaces the features with a GeoJSON FeatureCollection given in the
// resolved data projection.
func (s *Source) Load(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	fc, err := geo.ReadFeatures(data, s.storedProj, s.dataProjection())
	if err != nil {
		return err
	}

	s.fc = fc

	log.Debug().
		Str("source", s.Name).
		Int("features", len(fc.Features)).
		Str("data_projection", s.dataProjection()).
		Str("view_projection", s.storedProj).
		Msg("Source loaded")

	return nil
}

// AddFeature appends a feature component, taking its view-projected geometry.
func (s *Source) AddFeature(f *Feature) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := f.geometryIn(s.storedProj)
	if err != nil {
		return err
	}

	s.fc.Append(f.geoJSONFeature(g))
	return nil
}

// Len returns the number of features.
func (s *Source) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.fc.Features)
}

// GeoJSON encodes all features in the resolved data projection.
func (s *Source) GeoJSON() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return geo.WriteFeatures(s.fc, s.storedProj, s.dataProjection())
}

// GeoJSONIn encodes all features in the given projection.
func (s *Source) GeoJSONIn(code string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return geo.WriteFeatures(s.fc, s.storedProj, code)
}

// Extent returns the bounding box of all geometries in the view projection.
// ok is false when the source has no geometry.
func (s *Source) Extent() (extent orb.Bound, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.extent()
}

// ExtentIn returns the bounding box of all geometries in the given projection.
func (s *Source) ExtentIn(code string) (orb.Bound, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.extent()
	if !ok {
		return orb.Bound{}, false, nil
	}

	out, err := proj.TransformExtent(b, s.storedProj, code)
	return out, true, err
}

// ExtentInDataProj returns the bounding box in the resolved data projection.
func (s *Source) ExtentInDataProj() (orb.Bound, bool, error) {
	s.mu.RLock()
	code := s.dataProjection()
	s.mu.RUnlock()

	return s.ExtentIn(code)
}

func (s *Source) extent() (orb.Bound, bool) {
	var (
		out   orb.Bound
		found bool
	)

	for _, f := range s.fc.Features {
		if f.Geometry == nil {
			continue
		}

		b := f.Geometry.Bound()
		if !found {
			out, found = b, true
			continue
		}
		out = out.Union(b)
	}

	return out, found
}

// dataProjection resolves the data projection against the projection the
// features are stored in, so it never races with a pending view change.
func (s *Source) dataProjection() string {
	for _, code := range []string{s.tr.DataProjection, s.tr.TypeDataProjection()} {
		if code != "" {
			return code
		}
	}
	return s.storedProj
}

func (s *Source) reproject(gen int, oldCode, newCode string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// late notification from a view the source no longer follows
	if gen != s.generation {
		return
	}

	s.moveTo(oldCode, newCode)
}

// moveTo re-projects stored features into code. oldCode is only logged.
func (s *Source) moveTo(oldCode, code string) {
	if s.storedProj == code {
		return
	}

	fc, err := geo.TransformFeatures(s.fc, s.storedProj, code)
	if err != nil {
		log.Error().
			Err(err).
			Str("source", s.Name).
			Str("from", oldCode).
			Str("to", code).
			Msg("Failed to re-project source features")
		return
	}

	s.fc = fc
	s.storedProj = code

	log.Debug().
		Str("source", s.Name).
		Str("from", oldCode).
		Str("to", code).
		Int("features", len(fc.Features)).
		Msg("Source re-projected")
}
