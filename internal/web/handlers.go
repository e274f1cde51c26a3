package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/acadflow/acadflow/internal/grid"
	"github.com/acadflow/acadflow/internal/logging"
	"github.com/acadflow/acadflow/internal/presets"
	"github.com/acadflow/acadflow/internal/tabular"
	"github.com/acadflow/acadflow/internal/web/views"
)

var (
	errNoFile   = errors.New("no file provided")
	errTooLarge = errors.New("file too large")
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"status":  "ok",
		"imports": s.service.LimiterStatus(),
	})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := views.Dashboard(s.service.Presets()).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render dashboard", "error", err)
	}
}

// presetInfo is the JSON shape of one preset.
type presetInfo struct {
	presets.Preset
	Filters []grid.Filter `json:"filters,omitempty"`
}

func (s *Server) handleListPresets(w http.ResponseWriter, r *http.Request) {
	all := s.service.Presets()
	out := make([]presetInfo, len(all))
	for i, p := range all {
		out[i] = presetInfo{Preset: p, Filters: p.GridFilters()}
	}
	writeJSON(w, out)
}

// handleRows returns the grid view as JSON, or as an HTML partial for HTMX.
func (s *Server) handleRows(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	view, err := s.service.View(r.Context(), kind, parseQuery(r, s.cfg.Grid.MaxPageSize))
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	if isHTMX(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := views.Grid(kind, view).Render(r.Context(), w); err != nil {
			logging.FromContext(r.Context()).Error("render grid", "kind", kind, "error", err)
		}
		return
	}
	writeJSON(w, view)
}

// handleExport downloads every row matching the query, not only one page.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	format, err := tabular.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	sink := &downloadSink{w: w}
	if _, err := s.service.Export(r.Context(), kind, parseQuery(r, 0), format, sink); err != nil {
		failDownload(w, r, sink, err)
	}
}

func (s *Server) handleTemplate(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	format, err := tabular.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	sink := &downloadSink{w: w}
	if _, err := s.service.Template(r.Context(), kind, format, sink); err != nil {
		failDownload(w, r, sink, err)
	}
}

// handleImport parses the multipart "file" field and persists its valid rows.
// A rejected file answers 422 with the import report.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	if _, err := s.service.Preset(kind); err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Import.MaxFileSize)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			respondError(w, r, errTooLarge, http.StatusRequestEntityTooLarge)
			return
		}
		respondError(w, r, errNoFile, http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, r, errNoFile, http.StatusBadRequest)
		return
	}
	defer file.Close()

	report, err := s.service.Import(r.Context(), kind, header.Filename, file)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	status := http.StatusOK
	if report.Failed() {
		status = http.StatusUnprocessableEntity
	}
	if isHTMX(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		_ = views.ImportSummary(report).Render(r.Context(), w)
		return
	}
	writeJSONStatus(w, status, report)
}

func (s *Server) handleJournal(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	if _, err := s.service.Preset(kind); err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	limit := parseIntParam(r.URL.Query().Get("limit"), 50)
	writeJSON(w, s.service.Journal(kind, limit))
}

func (s *Server) handleDeleteRow(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	id := chi.URLParam(r, "id")
	if err := s.service.Delete(r.Context(), kind, id); err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	if isHTMX(r) {
		w.WriteHeader(http.StatusOK)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	if err := s.service.Reset(r.Context(), kind); err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
