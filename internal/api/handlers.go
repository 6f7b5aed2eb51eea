package api

import (
	"cmp"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/bimtower/pkg/buildinfo"
	"github.com/matzehuels/bimtower/pkg/errors"
	"github.com/matzehuels/bimtower/pkg/manifest"
	"github.com/matzehuels/bimtower/pkg/pipeline"
	"github.com/matzehuels/bimtower/pkg/scene"
	"github.com/matzehuels/bimtower/pkg/storage"
)

var contentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatPDF:  "application/pdf",
	pipeline.FormatJSON: "application/json",
	pipeline.FormatDOT:  "text/vnd.graphviz",
	pipeline.FormatIFC:  "application/x-step",
}

// =============================================================================
// Health
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

// =============================================================================
// Stateless export
// =============================================================================

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	doc, err := s.readManifest(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	m, err := s.runner.LoadDocument(r.Context(), doc, "request")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeExport(w, r, m)
}

// =============================================================================
// Stored models
// =============================================================================

func (s *Server) handleCreateModel(w http.ResponseWriter, r *http.Request) {
	doc, err := s.readManifest(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	// reject manifests that would not load
	if _, err := s.runner.LoadDocument(r.Context(), doc, "request"); err != nil {
		s.writeError(w, r, err)
		return
	}

	m := &storage.Model{Name: r.URL.Query().Get("name"), Document: doc}
	if err := s.repo.Save(r.Context(), m); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/v1/models/"+m.ID)
	writeJSON(w, http.StatusCreated, m.Summary())
}

func (s *Server) handleListModels(w http.ResponseWriter, r *http.Request) {
	list, err := s.repo.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"models": list})
}

func (s *Server) handleGetModel(w http.ResponseWriter, r *http.Request) {
	m, err := s.repo.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleDeleteModel(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleModelExport(w http.ResponseWriter, r *http.Request) {
	m, ok := s.loadStored(w, r)
	if !ok {
		return
	}
	s.writeExport(w, r, m)
}

func (s *Server) handleModelScene(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, pipeline.ViewScene, pipeline.FormatJSON)
}

func (s *Server) handleModelRender(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, chi.URLParam(r, "view"), chi.URLParam(r, "format"))
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, view, format string) {
	opts, err := renderOptions(r, view, format)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	m, ok := s.loadStored(w, r)
	if !ok {
		return
	}

	artifacts, hit, err := s.runner.RenderWithCacheInfo(r.Context(), m, opts)
	if stderrors.Is(err, scene.ErrConverterMissing) {
		err = errors.Wrap(errors.ErrCodeUnsupported, err, "%s output is not available on this server", format)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentTypes[format])
	if hit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	w.WriteHeader(http.StatusOK)
	w.Write(artifacts[format])
}

// =============================================================================
// Helpers
// =============================================================================

// loadStored fetches the model named by the id parameter and loads it. It
// writes the error response itself and reports whether to continue.
func (s *Server) loadStored(w http.ResponseWriter, r *http.Request) (*pipeline.Model, bool) {
	stored, err := s.repo.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	doc := stored.Document
	if doc.Name == "" {
		doc.Name = stored.Name
	}
	m, err := s.runner.LoadDocument(r.Context(), doc, "model "+stored.ID)
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	return m, true
}

func (s *Server) writeExport(w http.ResponseWriter, r *http.Request, m *pipeline.Model) {
	q := r.URL.Query()
	opts := pipeline.Options{
		Header:      s.header,
		ProjectName: cmp.Or(q.Get("project_name"), s.projectName),
		Absolute:    boolParam(q.Get("absolute")),
	}
	data := s.runner.Export(r.Context(), m, opts)

	w.Header().Set("Content-Type", contentTypes[pipeline.FormatIFC])
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportFilename(m.Name)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (s *Server) readManifest(r *http.Request) (*manifest.Document, error) {
	format := manifest.FormatJSON
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mt, _, err := mime.ParseMediaType(ct)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "bad Content-Type")
		}
		switch mt {
		case "application/json":
		case "application/toml", "text/toml":
			format = manifest.FormatTOML
		default:
			return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported Content-Type %q (use application/json or application/toml)", mt)
		}
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, s.maxBody+1))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read body")
	}
	if int64(len(body)) > s.maxBody {
		return nil, errors.New(errors.ErrCodeInvalidInput, "request body exceeds %d bytes", s.maxBody)
	}
	return manifest.Parse(body, format)
}

func renderOptions(r *http.Request, view, format string) (pipeline.Options, error) {
	q := r.URL.Query()
	opts := pipeline.Options{
		View:       view,
		Formats:    []string{format},
		Labels:     boolParam(q.Get("labels")),
		Containers: boolParam(q.Get("containers")),
		Detailed:   boolParam(q.Get("detailed")),
		Properties: boolParam(q.Get("properties")),
	}
	if v := q.Get("scale"); v != "" {
		scale, err := strconv.ParseFloat(v, 64)
		if err != nil || scale <= 0 {
			return opts, errors.New(errors.ErrCodeInvalidInput, "scale must be a positive number, got %q", v)
		}
		opts.Scale = scale
	}
	return opts, opts.ValidateAndSetDefaults()
}

func exportFilename(name string) string {
	name = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == '"' || r < 0x20 {
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	if name == "" || errors.ValidateFilename(name+".ifc") != nil {
		return "export.ifc"
	}
	return name + ".ifc"
}

func boolParam(v string) bool {
	b, _ := strconv.ParseBool(v)
	return b
}

type errorBody struct {
	Code    string   `json:"code"`
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	code := string(errors.GetCode(err))
	if code == "" {
		code = string(errors.ErrCodeInternal)
	}
	body := errorBody{Code: code, Error: errors.UserMessage(err)}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
		body.Error = "internal error"
	} else if cause := stderrors.Unwrap(err); cause != nil {
		body.Details = details(cause)
	}
	writeJSON(w, status, body)
}

func details(err error) []string {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []string
		for _, e := range joined.Unwrap() {
			out = append(out, e.Error())
		}
		return out
	}
	return []string{err.Error()}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
