package web

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/filingmap/internal/core"
	"github.com/JonMunkholm/filingmap/internal/export"
	"github.com/JonMunkholm/filingmap/internal/forms"
	"github.com/JonMunkholm/filingmap/internal/logging"
	"github.com/JonMunkholm/filingmap/internal/mapping"
	"github.com/JonMunkholm/filingmap/internal/web/views"
	"github.com/JonMunkholm/filingmap/internal/xbrl"
)

// tableDetail is the response of GET /api/tables/{id}.
type tableDetail struct {
	core.TableInfo
	Labels   *mapping.PeriodLabels `json:"labels,omitempty"`
	Template mapping.Template      `json:"template"`
}

// handleDashboard renders the table index page.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	data := views.DashboardData{
		Groups: []views.TableGroup{
			{Name: s.service.Forms().Name(), Tables: s.service.Forms().Infos()},
			{Name: s.service.XBRL().Name(), Tables: s.service.XBRL().Infos()},
		},
		Status: s.service.LimiterStatus(),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := views.Dashboard(data).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("dashboard render failed", "error", err)
	}
}

// handleStatus reports document slot usage and table counts.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, map[string]any{
		"documents":   s.service.LimiterStatus(),
		"form_tables": s.service.Forms().TableCount(),
		"xbrl_tables": s.service.XBRL().TableCount(),
	})
}

// handleListTables returns both registries' tables.
func (s *Server) handleListTables(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, map[string][]core.TableInfo{
		"forms": s.service.Forms().Infos(),
		"xbrl":  s.service.XBRL().Infos(),
	})
}

// handleGetTable returns one form table with its template.
func (s *Server) handleGetTable(w http.ResponseWriter, r *http.Request) {
	id, err := s.service.Forms().ParseTableID(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	def, _ := s.service.Forms().Get(id)

	detail := tableDetail{TableInfo: def.Info, Template: def.Template}
	if def.Info.Strategy == mapping.PeriodPair {
		labels := def.Labels
		if labels.Current == "" {
			labels.Current = mapping.DefaultPeriodLabels.Current
		}
		if labels.Previous == "" {
			labels.Previous = mapping.DefaultPeriodLabels.Previous
		}
		detail.Labels = &labels
	}
	writeJSON(w, r, detail)
}

// handleResolveTable resolves one form table against the posted document.
func (s *Server) handleResolveTable(w http.ResponseWriter, r *http.Request) {
	id, err := s.service.Forms().ParseTableID(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	var res core.TableResult
	err = s.service.WithDocument(r.Context(), func() error {
		store, err := readFormStore(r)
		if err != nil {
			return err
		}
		res, err = s.service.ResolveFormStore(id, store)
		return err
	})
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, r, res)
}

// handleResolveAll resolves every form table against the posted document.
// Individual table failures are part of the 200 response.
func (s *Server) handleResolveAll(w http.ResponseWriter, r *http.Request) {
	var batch *core.BatchResult
	err := s.service.WithDocument(r.Context(), func() error {
		store, err := readFormStore(r)
		if err != nil {
			return err
		}
		if ident := forms.Identify(store); ident.CIN != "" {
			w.Header().Set("X-Filing-CIN", ident.CIN)
		}
		batch = s.service.BatchFormStore(r.Context(), store)
		return nil
	})
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, r, batch)
}

// handleFacts returns the linked facts of the posted XBRL instance, as JSON
// or, with ?format=csv, as the fact table (?filtered=true keeps only the
// key elements).
func (s *Server) handleFacts(w http.ResponseWriter, r *http.Request) {
	var facts []xbrl.Fact
	err := s.service.WithDocument(r.Context(), func() error {
		var err error
		facts, err = s.service.ExtractFacts(r.Body)
		return err
	})
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	q := r.URL.Query()
	if q.Get("format") != "csv" {
		writeJSON(w, r, facts)
		return
	}

	var keep func(xbrl.Fact) bool
	if q.Get("filtered") == "true" {
		keep = export.IsKeyElement
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="facts.csv"`)
	if err := export.WriteCSV(w, facts, keep); err != nil {
		logging.FromContext(r.Context()).Error("csv write failed", "error", err)
	}
}

// handleXBRLTables resolves every XBRL table against the posted instance.
// A document that cannot be parsed still yields one error per table.
func (s *Server) handleXBRLTables(w http.ResponseWriter, r *http.Request) {
	batch := s.service.BatchXBRLDocument(r.Context(), r.Body)
	if n := batch.Failed(); n > 0 && n == len(batch.Entries) {
		if err := batch.Entries[0].Err; statusFor(err) == http.StatusServiceUnavailable {
			s.respondError(w, r, err, http.StatusServiceUnavailable)
			return
		}
	}
	writeJSON(w, r, batch)
}

// readFormStore builds a field store from the request body: a PDF form for
// application/pdf, a JSON field dump or pdfcpu export otherwise.
func readFormStore(r *http.Request) (mapping.MapStore, error) {
	mediaType := "application/json"
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mt, _, err := mime.ParseMediaType(ct)
		if err != nil {
			return nil, fmt.Errorf("%w: content type %q", forms.ErrUnsupported, ct)
		}
		mediaType = mt
	}

	switch mediaType {
	case "application/pdf":
		b, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, err
		}
		return forms.ReadPDF(bytes.NewReader(b), "request body")
	case "application/json":
		return forms.ReadJSON(r.Body)
	default:
		return nil, fmt.Errorf("%w: content type %s", forms.ErrUnsupported, mediaType)
	}
}
