package server

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/matzehuels/taskweb/pkg/buildinfo"
	"github.com/matzehuels/taskweb/pkg/errors"
	"github.com/matzehuels/taskweb/pkg/graph"
	taskio "github.com/matzehuels/taskweb/pkg/io"
	"github.com/matzehuels/taskweb/pkg/observability"
	"github.com/matzehuels/taskweb/pkg/palette"
	"github.com/matzehuels/taskweb/pkg/pipeline"
	"github.com/matzehuels/taskweb/pkg/session"
)

// contentTypes maps artifact formats to response content types.
var contentTypes = map[string]string{
	graph.FormatSVG:  "image/svg+xml",
	graph.FormatHTML: "text/html; charset=utf-8",
	graph.FormatJSON: "application/json",
	graph.FormatPNG:  "image/png",
	graph.FormatPDF:  "application/pdf",
	graph.FormatDOT:  "text/vnd.graphviz; charset=utf-8",
}

// RenderResponse answers POST /renders and GET /renders/{id}.
type RenderResponse struct {
	ID        string            `json:"id"`
	InputHash string            `json:"input_hash"`
	Formats   []string          `json:"formats"`
	Links     map[string]string `json:"links"`
	Warnings  []string          `json:"warnings,omitempty"`
	Nodes     int               `json:"nodes"`
	MaxLevel  int               `json:"max_level"`
	Cycles    [][]string        `json:"cycles,omitempty"`
	Cached    *CacheStatus      `json:"cached,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	ExpiresAt time.Time         `json:"expires_at"`
}

// CacheStatus reports which pipeline stages were served from the cache.
type CacheStatus struct {
	Layout bool `json:"layout"`
	Render bool `json:"render"`
}

// ErrorResponse is the body of every error answer.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok\n")
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

func (s *Server) handlePalette(w http.ResponseWriter, r *http.Request) {
	p := palette.Default()
	if s.cfg.Defaults.Palette != nil {
		p = *s.cfg.Defaults.Palette
	}
	writeJSON(w, http.StatusOK, p)
}

// handleRender runs the pipeline for a single format and answers with the
// artifact itself.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	in, opts, err := s.decodeRequest(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	format := graph.FormatSVG
	if len(opts.Formats) > 0 {
		format = opts.Formats[0]
	}
	opts.Formats = []string{format}

	result, err := s.cfg.Runner.Execute(r.Context(), in, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeArtifact(w, format, result.Artifacts[format])
}

func (s *Server) handleCreateRender(w http.ResponseWriter, r *http.Request) {
	in, opts, err := s.decodeRequest(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.cfg.Runner.Execute(r.Context(), in, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	sess := session.New(result.InputHash, result.Layout, result.Artifacts, s.cfg.SessionTTL)
	sess.Warnings = result.Warnings
	if err := s.cfg.Store.Set(r.Context(), sess); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "store render"))
		return
	}

	resp := renderResponse(sess)
	resp.Cached = &CacheStatus{Layout: result.CacheInfo.LayoutHit, Render: result.CacheInfo.RenderHit}
	w.Header().Set("Location", "/renders/"+sess.ID)
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetRender(w http.ResponseWriter, r *http.Request) {
	sess, err := s.lookup(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, renderResponse(sess))
}

func (s *Server) handleGetArtifact(w http.ResponseWriter, r *http.Request) {
	sess, err := s.lookup(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	format := chi.URLParam(r, "format")
	if err := pipeline.ValidateFormat(format); err != nil {
		s.writeError(w, r, err)
		return
	}

	data, ok := sess.Artifact(format)
	if !ok {
		// any format can be produced later from the stored layout
		opts := s.defaultOptions()
		opts.Formats = []string{format}
		artifacts, err := pipeline.Render(r.Context(), sess.Layout, opts)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		data = artifacts[format]
	}
	writeArtifact(w, format, data)
}

func (s *Server) handleDeleteRender(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := errors.ValidateRenderID(id); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.cfg.Store.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "delete render"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) lookup(r *http.Request) (*session.Session, error) {
	id := chi.URLParam(r, "id")
	if err := errors.ValidateRenderID(id); err != nil {
		return nil, err
	}
	sess, err := s.cfg.Store.Get(r.Context(), id)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "load render")
	}
	if sess == nil {
		return nil, errors.New(errors.ErrCodeNotFound, "render %s not found", id)
	}
	return sess, nil
}

// =============================================================================
// Request Decoding
// =============================================================================

// decodeRequest reads the input document and the pipeline options.
//
// The document format follows the Content-Type header (JSON by default,
// YAML, or a CSV connection table). JSON bodies may carry an "options"
// object. Query parameters override both.
func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request) (graph.Input, pipeline.Options, error) {
	opts := s.defaultOptions()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes))
	if err != nil {
		return graph.Input{}, opts, errors.Wrap(errors.ErrCodeInvalidInput, err, "read body")
	}

	format := bodyFormat(r.Header.Get("Content-Type"))
	in, err := taskio.Read(bytes.NewReader(body), format)
	if err != nil {
		return graph.Input{}, opts, err
	}

	if format == taskio.FormatJSON {
		var envelope struct {
			Options json.RawMessage `json:"options"`
		}
		if trimmed := bytes.TrimSpace(body); len(trimmed) > 0 && trimmed[0] == '{' {
			if err := json.Unmarshal(trimmed, &envelope); err != nil {
				return graph.Input{}, opts, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode options")
			}
		}
		if len(envelope.Options) > 0 {
			if err := json.Unmarshal(envelope.Options, &opts); err != nil {
				return graph.Input{}, opts, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode options")
			}
		}
	}

	if err := applyQuery(&opts, r); err != nil {
		return graph.Input{}, opts, err
	}
	return in, opts, nil
}

// defaultOptions copies the configured defaults. Layout and palette are
// deep-copied so request options never write through to them.
func (s *Server) defaultOptions() pipeline.Options {
	opts := s.cfg.Defaults
	opts.Logger = s.cfg.Logger
	opts.Formats = slices.Clone(opts.Formats)
	if opts.Layout != nil {
		l := *opts.Layout
		opts.Layout = &l
	}
	if opts.Palette != nil {
		p := palette.Palette{Categories: slices.Clone(opts.Palette.Categories)}
		opts.Palette = &p
	}
	return opts
}

func bodyFormat(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return taskio.FormatJSON
	}
	switch {
	case strings.HasSuffix(mediaType, "yaml"):
		return taskio.FormatYAML
	case mediaType == "text/csv":
		return taskio.FormatCSV
	}
	return taskio.FormatJSON
}

func applyQuery(opts *pipeline.Options, r *http.Request) error {
	q := r.URL.Query()
	if v := q.Get("format"); v != "" {
		opts.Formats = strings.Split(v, ",")
	}
	if v := q.Get("viz_type"); v != "" {
		opts.VizType = v
	}
	if v := q.Get("strategy"); v != "" {
		opts.Strategy = v
	}
	if v := q.Get("title"); v != "" {
		opts.Title = v
	}
	if v := q.Get("seed"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "seed")
		}
		opts.Seed = seed
	}
	for name, dst := range map[string]*bool{"static": &opts.Static, "detailed": &opts.Detailed, "refresh": &opts.Refresh} {
		if v := q.Get(name); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return errors.Wrap(errors.ErrCodeInvalidInput, err, "%s", name)
			}
			*dst = b
		}
	}
	return nil
}

// =============================================================================
// Responses
// =============================================================================

func renderResponse(sess *session.Session) RenderResponse {
	formats := sess.Formats()
	links := make(map[string]string, len(formats))
	for _, f := range formats {
		links[f] = fmt.Sprintf("/renders/%s/%s", sess.ID, f)
	}
	return RenderResponse{
		ID:        sess.ID,
		InputHash: sess.InputHash,
		Formats:   formats,
		Links:     links,
		Warnings:  sess.Warnings,
		Nodes:     len(sess.Layout.Nodes),
		MaxLevel:  sess.Layout.MaxLevel,
		Cycles:    sess.Layout.Cycles,
		CreatedAt: sess.CreatedAt,
		ExpiresAt: sess.ExpiresAt,
	}
}

func writeArtifact(w http.ResponseWriter, format string, data []byte) {
	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if r.Context().Err() == context.DeadlineExceeded {
		err = errors.Wrap(errors.ErrCodeTimeout, err, "request timed out")
	}
	status := errors.HTTPStatus(err)
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	route := r.URL.Path
	if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
		route = rctx.RoutePattern()
	}
	observability.HTTP().OnError(r.Context(), r.Method, route, err)
	if status >= http.StatusInternalServerError {
		s.cfg.Logger.Error("request failed", "route", route, "err", err)
	}
	writeJSON(w, status, ErrorResponse{Code: string(code), Message: errors.UserMessage(err)})
}
