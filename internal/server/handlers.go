package server

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/matzehuels/floorplanner/pkg/buildinfo"
	"github.com/matzehuels/floorplanner/pkg/errors"
	pkgio "github.com/matzehuels/floorplanner/pkg/io"
	"github.com/matzehuels/floorplanner/pkg/observability"
	"github.com/matzehuels/floorplanner/pkg/pipeline"
)

// LayoutRequest is the body of the layout and render endpoints.
type LayoutRequest struct {
	Modules string       `json:"modules"`          // module list in the text format
	Target  *pkgio.Point `json:"target,omitempty"` // migrate: default origin
	Net     []string     `json:"net,omitempty"`    // migrate: default signed modules
	Pair    []string     `json:"pair,omitempty"`   // reduce: default the two net members
	Refresh bool         `json:"refresh,omitempty"`

	// Render only.
	Operation string  `json:"operation,omitempty"`
	Width     float64 `json:"width,omitempty"`
	Height    float64 `json:"height,omitempty"`
	Scale     float64 `json:"scale,omitempty"`
	Labels    *bool   `json:"labels,omitempty"`
	Cuts      bool    `json:"cuts,omitempty"`
}

// LayoutResponse is returned by the layout endpoints.
type LayoutResponse struct {
	RequestID  string                `json:"request_id"`
	DesignHash string                `json:"design_hash"`
	Layout     pkgio.Layout          `json:"layout"`
	Optimize   pipeline.OptimizeInfo `json:"optimize"`
	Floorplan  string                `json:"floorplan"` // modules in tree order, text format
	Cached     bool                  `json:"cached"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	RequestID string `json:"request_id"`
	Code      string `json:"code"`
	Message   string `json:"message"`
}

var contentTypes = map[string]string{
	pipeline.FormatSVG: "image/svg+xml",
	pipeline.FormatPDF: "application/pdf",
	pipeline.FormatPNG: "image/png",
}

type healthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, healthResponse{Status: "ok", Build: buildinfo.Get()})
}

// handleLayout runs op and returns the resulting layout.
func (s *Server) handleLayout(op string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := s.decode(w, r)
		if !ok {
			return
		}
		opts, err := req.options(op)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		opts.Formats = []string{pipeline.FormatText}

		result, err := s.runner.Execute(r.Context(), opts)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.writeJSON(w, r, http.StatusOK, LayoutResponse{
			RequestID:  RequestIDFromContext(r.Context()),
			DesignHash: result.DesignHash,
			Layout:     result.Layout,
			Optimize:   result.Optimize,
			Floorplan:  string(result.Artifacts[pipeline.FormatText]),
			Cached:     result.CacheInfo.LayoutHit,
		})
	}
}

// handleRender runs the requested operation and returns a drawing in the
// format named by the format query parameter (default svg).
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatSVG
	}
	contentType, ok := contentTypes[format]
	if !ok {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "format must be one of svg, pdf, png; got %q", format))
		return
	}

	req, ok := s.decode(w, r)
	if !ok {
		return
	}
	op := req.Operation
	if op == "" {
		op = pipeline.OpBuild
	}
	opts, err := req.options(op)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts.Formats = []string{format}
	opts.Width, opts.Height, opts.Scale = req.Width, req.Height, req.Scale
	opts.Labels = req.Labels == nil || *req.Labels
	opts.Cuts = req.Cuts

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data := result.Artifacts[format]
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.logWriteError(r, err)
	}
}

// decode reads a LayoutRequest, writing the error response itself on
// failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request) (LayoutRequest, bool) {
	var req LayoutRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			s.writeStatus(w, r, http.StatusRequestEntityTooLarge,
				errors.New(errors.ErrCodeInvalidInput, "request body exceeds %d bytes", tooLarge.Limit))
			return req, false
		}
		s.writeStatus(w, r, http.StatusBadRequest, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode request"))
		return req, false
	}
	return req, true
}

// options converts the request into pipeline options for op.
func (req LayoutRequest) options(op string) (pipeline.Options, error) {
	if req.Modules == "" {
		return pipeline.Options{}, errors.New(errors.ErrCodeInvalidInput, "modules is required")
	}
	opts := pipeline.Options{
		Modules:   req.Modules,
		Operation: op,
		Net:       req.Net,
		Refresh:   req.Refresh,
	}
	if req.Target != nil {
		opts.TargetX, opts.TargetY = req.Target.X, req.Target.Y
	}
	switch len(req.Pair) {
	case 0:
	case 2:
		opts.A, opts.B = req.Pair[0], req.Pair[1]
	default:
		return opts, errors.New(errors.ErrCodeInvalidInput, "pair must name exactly two modules, got %d", len(req.Pair))
	}
	return opts, nil
}

// statusFor maps an error code to an HTTP status.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidPath,
		errors.ErrCodeBuildFailure, errors.ErrCodeFileNotFound:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	s.writeStatus(w, r, statusFor(err), err)
}

func (s *Server) writeStatus(w http.ResponseWriter, r *http.Request, status int, err error) {
	observability.HTTP().OnError(r.Context(), r.Method, r.URL.Path, err)

	code := string(errors.GetCode(err))
	msg := errors.UserMessage(err)
	if code == "" {
		code = string(errors.ErrCodeInternal)
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "request_id", RequestIDFromContext(r.Context()), "error", err)
		msg = fmt.Sprintf("internal error (request %s)", RequestIDFromContext(r.Context()))
	}
	s.writeJSON(w, r, status, ErrorResponse{
		RequestID: RequestIDFromContext(r.Context()),
		Code:      code,
		Message:   msg,
	})
}

// writeJSON sends v with the given status. The header is already out when
// encoding fails, so the failure can only be logged.
func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logWriteError(r, err)
	}
}

func (s *Server) logWriteError(r *http.Request, err error) {
	s.logger.Error("write response", "path", r.URL.Path, "request_id", RequestIDFromContext(r.Context()), "error", err)
}
