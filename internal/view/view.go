// Package view holds the state of the map viewport that other components
// read their view projection from.
package view

import (
	"sync"

	"github.com/woozymasta/mapproj/internal/proj"

	"github.com/rs/zerolog/log"
)

// DefaultProjection is the projection of a zero View.
const DefaultProjection = proj.EPSG3857

// ChangeFunc is called after the view projection changed. It must not
// switch the projection of the view that calls it.
type ChangeFunc func(oldCode, newCode string)

// View owns the current view projection code. The zero value is a view in
// DefaultProjection.
type View struct {
	// notifyMu orders switches so subscribers see them in sequence.
	notifyMu sync.Mutex

	mu         sync.RWMutex
	projection string
	listeners  map[int]ChangeFunc
	nextID     int
}

// New creates a view in the given projection. The code must be registered.
func New(code string) (*View, error) {
	p, err := proj.Get(code)
	if err != nil {
		return nil, err
	}

	return &View{projection: p.Code, listeners: make(map[int]ChangeFunc)}, nil
}

// Projection returns the canonical code of the current view projection.
func (v *View) Projection() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.current()
}

func (v *View) current() string {
	if v.projection == "" {
		return DefaultProjection
	}
	return v.projection
}

// SetProjection switches the view to another projection and notifies
// subscribers synchronously. Aliases are normalized to the canonical code;
// switching to an equivalent projection is a no-op. Concurrent switches are
// applied and delivered one at a time.
func (v *View) SetProjection(code string) error {
	p, err := proj.Get(code)
	if err != nil {
		return err
	}

	v.notifyMu.Lock()
	defer v.notifyMu.Unlock()

	v.mu.Lock()
	old := v.current()
	if old == p.Code {
		v.mu.Unlock()
		return nil
	}
	v.projection = p.Code

	listeners := make([]ChangeFunc, 0, len(v.listeners))
	for _, fn := range v.listeners {
		listeners = append(listeners, fn)
	}
	v.mu.Unlock()

	log.Debug().
		Str("from", old).
		Str("to", p.Code).
		Int("subscribers", len(listeners)).
		Msg("View projection changed")

	for _, fn := range listeners {
		fn(old, p.Code)
	}

	return nil
}

// Subscribe registers fn for projection changes and returns a function that
// removes the subscription.
func (v *View) Subscribe(fn ChangeFunc) (unsubscribe func()) {
	v.mu.Lock()
	if v.listeners == nil {
		v.listeners = make(map[int]ChangeFunc)
	}
	id := v.nextID
	v.nextID++
	v.listeners[id] = fn
	v.mu.Unlock()

	return func() {
		v.mu.Lock()
		delete(v.listeners, id)
		v.mu.Unlock()
	}
}
