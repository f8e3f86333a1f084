// Package server handles HTTP requests and middleware.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/woozymasta/mapproj/internal/geo"
	"github.com/woozymasta/mapproj/internal/proj"
	"github.com/woozymasta/mapproj/internal/transforms"

	"github.com/paulmach/orb"
	"github.com/rs/zerolog/log"
)

// maxRequestBody caps POST/PUT bodies.
const maxRequestBody = 16 << 20

type projectionInfo struct {
	Code    string     `json:"code"`
	Units   proj.Units `json:"units"`
	Extent  [4]float64 `json:"extent"`
	Aliases []string   `json:"aliases,omitempty"`
}

type viewInfo struct {
	Projection string `json:"projection"`
}

type sourceInfo struct {
	Name           string      `json:"name"`
	Attribution    string      `json:"attribution,omitempty"`
	DataProjection string      `json:"data_projection"`
	Extent         *[4]float64 `json:"extent,omitempty"`
	Features       int         `json:"features"`
}

type transformRequest struct {
	Shape          string          `json:"shape"`
	Direction      string          `json:"direction"`
	DataProjection string          `json:"data_projection,omitempty"`
	Coordinates    json.RawMessage `json:"coordinates"`
}

type transformResponse struct {
	Coordinates    any    `json:"coordinates"`
	ViewProjection string `json:"view_projection"`
	DataProjection string `json:"data_projection"`
}

// Transform directions accepted by /api/transform.
const (
	DirectionToView = "to_view"
	DirectionToData = "to_data"
)

// HandleProjections lists registered projections.
func (s *ServerContext) HandleProjections(w http.ResponseWriter, r *http.Request) {
	codes := proj.Codes()
	out := make([]projectionInfo, 0, len(codes))
	for _, code := range codes {
		p, err := proj.Get(code)
		if err != nil {
			continue
		}
		out = append(out, projectionInfo{
			Code:    p.Code,
			Units:   p.Units,
			Extent:  extentArray(p.Extent),
			Aliases: p.Aliases,
		})
	}

	writeJSON(w, http.StatusOK, out)
}

// HandleView reports the view projection on GET and switches it on PUT.
func (s *ServerContext) HandleView(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, viewInfo{Projection: s.View.Projection()})

	case http.MethodPut, http.MethodPost:
		var req viewInfo
		if err := decodeBody(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if err := s.View.SetProjection(req.Projection); err != nil {
			writeError(w, statusFor(err), err)
			return
		}

		log.Info().Str("projection", s.View.Projection()).Msg("View projection switched")
		writeJSON(w, http.StatusOK, viewInfo{Projection: s.View.Projection()})

	default:
		w.Header().Set("Allow", "GET, PUT, POST")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	}
}

// HandleSourcesList serves the loaded sources with their data projection
// and extent expressed in it.
func (s *ServerContext) HandleSourcesList(w http.ResponseWriter, r *http.Request) {
	out := make([]sourceInfo, 0, len(s.Sources))
	for _, src := range s.Sources {
		info := sourceInfo{
			Name:           src.Name,
			Attribution:    src.Attribution,
			DataProjection: src.ResolvedDataProjection(),
			Features:       src.Len(),
		}

		ext, ok, err := src.ExtentInDataProj()
		if err != nil {
			log.Warn().Err(err).Str("source", src.Name).Msg("Failed to compute source extent")
		} else if ok {
			arr := extentArray(ext)
			info.Extent = &arr
		}

		out = append(out, info)
	}

	writeJSON(w, http.StatusOK, out)
}

// HandleSource serves a source as GeoJSON or its extent.
// Path: /api/sources/{name}[/extent], optional ?proj=CODE.
func (s *ServerContext) HandleSource(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	// parts: api, sources, name[, extent]
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) < 3 || len(parts) > 4 {
		http.NotFound(w, r)
		return
	}

	src, ok := s.SourceNameResolver[parts[2]]
	if !ok {
		http.NotFound(w, r)
		return
	}

	code := r.URL.Query().Get("proj")
	if code == "" {
		code = src.ResolvedDataProjection()
	}

	if len(parts) == 4 {
		if parts[3] != "extent" {
			http.NotFound(w, r)
			return
		}

		ext, ok, err := src.ExtentIn(code)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		if !ok {
			writeError(w, http.StatusNotFound, errors.New("source has no geometries"))
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"projection": code,
			"extent":     extentArray(ext),
		})
		return
	}

	data, err := src.GeoJSONIn(code)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	w.Header().Set("Content-Type", "application/geo+json")
	w.Header().Set("Cache-Control", "public, no-cache")
	_, _ = w.Write(data)
}

// HandleTransform converts coordinates between the view projection and a
// data projection.
func (s *ServerContext) HandleTransform(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	var req transformRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	tr := transforms.New(s.View, s.Config.DataProjection)
	tr.DataProjection = req.DataProjection

	out, err := transformCoordinates(&tr, req)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	writeJSON(w, http.StatusOK, transformResponse{
		Coordinates:    out,
		ViewProjection: tr.ViewProjection(),
		DataProjection: tr.ResolvedDataProjection(),
	})
}

var errBadRequest = errors.New("bad request")

func transformCoordinates(tr *transforms.ProjTransforms, req transformRequest) (any, error) {
	toView := false
	switch req.Direction {
	case DirectionToView:
		toView = true
	case DirectionToData:
	default:
		return nil, fmt.Errorf("%w: direction must be %q or %q", errBadRequest, DirectionToView, DirectionToData)
	}

	switch req.Shape {
	case "point":
		return convert(req.Coordinates, pick(toView, tr.PointToViewProj, tr.PointToDataProj))
	case "line":
		return convert(req.Coordinates, pick(toView, tr.LineToViewProj, tr.LineToDataProj))
	case "polygon":
		return convert(req.Coordinates, pick(toView, tr.PolygonToViewProj, tr.PolygonToDataProj))
	case "multipoint":
		return convert(req.Coordinates, pick(toView, tr.MultiPointToViewProj, tr.MultiPointToDataProj))
	case "multiline":
		return convert(req.Coordinates, pick(toView, tr.MultiLineToViewProj, tr.MultiLineToDataProj))
	case "multipolygon":
		return convert(req.Coordinates, pick(toView, tr.MultiPolygonToViewProj, tr.MultiPolygonToDataProj))
	case "extent":
		var in []float64
		if err := json.Unmarshal(req.Coordinates, &in); err != nil {
			return nil, fmt.Errorf("%w: extent: %v", errBadRequest, err)
		}
		if len(in) != 4 {
			return nil, fmt.Errorf("%w: extent needs 4 numbers, got %d", errBadRequest, len(in))
		}
		fn := pick(toView, tr.ExtentToViewProj, tr.ExtentToDataProj)
		out, err := fn(orb.Bound{Min: orb.Point{in[0], in[1]}, Max: orb.Point{in[2], in[3]}})
		if err != nil {
			return nil, err
		}
		return extentArray(out), nil
	}

	return nil, fmt.Errorf("%w: unknown shape %q", errBadRequest, req.Shape)
}

func pick[T any](toView bool, viewFn, dataFn T) T {
	if toView {
		return viewFn
	}
	return dataFn
}

func convert[T any](raw json.RawMessage, fn func(T) (T, error)) (any, error) {
	var in T
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, fmt.Errorf("%w: coordinates: %v", errBadRequest, err)
	}

	return fn(in)
}

func extentArray(b orb.Bound) [4]float64 {
	return [4]float64{b.Min[0], b.Min[1], b.Max[0], b.Max[1]}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(v)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, proj.ErrUnknownProjection),
		errors.Is(err, geo.ErrNoGeometry),
		errors.Is(err, geo.ErrUnsupportedGeometry):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Ignoring error as we cannot handle client disconnects
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
