package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"amsterdam_guide/internal/adapters/observability"
	"amsterdam_guide/internal/app"
	"amsterdam_guide/internal/domain"
)

const maxUploadBytes = 10 << 20

type Handlers struct {
	Imports *app.ImportService
	Q       *app.QueryService
	Admin   *app.AdminService
	Photos  *app.PhotoService

	BaseURL       string
	ImportLimiter *rate.Limiter
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Group(func(r chi.Router) {
		if h.ImportLimiter != nil {
			r.Use(RateLimit(h.ImportLimiter))
		}
		r.Post("/v1/import/places", h.importPlaces)
	})
	s.mux.Get("/v1/import/template", h.importTemplate)

	s.mux.Post("/v1/admin/places", h.createPlace)
	s.mux.Post("/v1/places/{slug}/photos", h.uploadPhoto)

	s.mux.Get("/v1/places/{slug}", h.getPlace)
	s.mux.Get("/v1/categories", h.listCategories)
	s.mux.Get("/v1/categories/{slug}/places", h.listByCategory)
	s.mux.Get("/v1/neighborhoods", h.listNeighborhoods)
	s.mux.Get("/v1/neighborhoods/{slug}/places", h.listByNeighborhood)

	s.mux.Get("/sitemap.xml", h.sitemap)
	s.mux.Get("/robots.txt", h.robots)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

/********** import **********/

// importPlaces accepts either a multipart CSV upload (field "file") or a JSON
// body {"rows": [...]}. Both shapes funnel into the same pipeline so there is
// exactly one validation path.
func (h *Handlers) importPlaces(w http.ResponseWriter, r *http.Request) {
	ct := r.Header.Get("Content-Type")

	var (
		report domain.ImportReport
		err    error
	)
	switch {
	case strings.HasPrefix(ct, "multipart/form-data"):
		if perr := r.ParseMultipartForm(maxUploadBytes); perr != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid multipart body"})
			return
		}
		f, _, ferr := r.FormFile("file")
		if ferr != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": domain.ErrNoFile.Error()})
			return
		}
		defer f.Close()
		report, err = h.Imports.ImportCSV(r.Context(), f)

	case strings.HasPrefix(ct, "application/json"):
		var body struct {
			Rows []map[string]any `json:"rows"`
		}
		if derr := json.NewDecoder(io.LimitReader(r.Body, maxUploadBytes)).Decode(&body); derr != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid JSON body"})
			return
		}
		report, err = h.Imports.ImportRows(r.Context(), rawRowsFromJSON(body.Rows))

	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "expected multipart/form-data or application/json"})
		return
	}

	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNoValidRows):
			// report carries the per-row reasons; nothing was written
			writeJSON(w, http.StatusBadRequest, report)
		case errors.Is(err, domain.ErrBadCSV), errors.Is(err, domain.ErrNoRows):
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		default:
			log.Error().Err(err).Msg("import failed")
			writeJSON(w, http.StatusInternalServerError, map[string]string{"message": err.Error()})
		}
		return
	}

	observability.ObserveImport(int(report.InsertedOrUpdated), report.Skipped)
	writeJSON(w, http.StatusOK, report)
}

func rawRowsFromJSON(in []map[string]any) []domain.RawRow {
	out := make([]domain.RawRow, 0, len(in))
	for _, m := range in {
		row := make(domain.RawRow, len(m))
		for k, v := range m {
			row[app.NormalizeHeader(k)] = stringifyField(v)
		}
		out = append(out, row)
	}
	return out
}

func stringifyField(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		b, _ := json.Marshal(t)
		return string(b)
	}
}

const templateCSV = "name,slug,category_slug,address,website,price_level,rating,review_count,neighborhood_slug\n" +
	"Cafe de Pijp,cafe-de-pijp,cafes,\"Ferdinand Bolstraat 1, Amsterdam\",https://cafedepijp.example,2,4.4,123,de-pijp\n"

func (h *Handlers) importTemplate(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="places-template.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(templateCSV))
}

/********** admin **********/

func (h *Handlers) createPlace(w http.ResponseWriter, r *http.Request) {
	var in app.CreatePlaceInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", "expected a JSON place")
		return
	}
	p, err := h.Admin.CreatePlace(r.Context(), in)
	if err != nil {
		if errors.Is(err, app.ErrMissingFields) {
			writeProblem(w, http.StatusBadRequest, "Invalid place", err.Error())
			return
		}
		log.Error().Err(err).Msg("create place failed")
		writeProblem(w, http.StatusInternalServerError, "Create failed", err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"slug": p.Slug, "name": p.Name})
}

func (h *Handlers) uploadPhoto(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", "expected multipart form data")
		return
	}
	f, hdr, err := r.FormFile("file")
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", "file is required")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes))
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", "could not read file")
		return
	}

	url, err := h.Photos.Upload(r.Context(), slug, hdr.Filename, hdr.Header.Get("Content-Type"), r.FormValue("alt"), data)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeProblem(w, http.StatusNotFound, "Not Found", "place not found")
			return
		}
		log.Error().Err(err).Str("slug", slug).Msg("photo upload failed")
		writeProblem(w, http.StatusInternalServerError, "Upload failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "url": url})
}

/********** reads **********/

func (h *Handlers) getPlace(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	resp, err := h.Q.GetPlace(r.Context(), slug)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeProblem(w, http.StatusNotFound, "Not Found", "place not found")
			return
		}
		writeProblem(w, http.StatusInternalServerError, "Query failed", err.Error())
		return
	}

	etag, body := calcETagAndBody(resp)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write getPlace body")
	}
}

func parseLimit(r *http.Request) (int, bool) {
	limit := 50
	if ls := r.URL.Query().Get("limit"); ls != "" {
		l, err := strconv.Atoi(ls)
		if err != nil || l <= 0 || l > 200 {
			return 0, false
		}
		limit = l
	}
	return limit, true
}

func (h *Handlers) listByCategory(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(r)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid limit", "limit must be an integer between 1 and 200")
		return
	}
	out, err := h.Q.ListByCategory(r.Context(), chi.URLParam(r, "slug"), limit)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Query failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"places": out})
}

func (h *Handlers) listByNeighborhood(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(r)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid limit", "limit must be an integer between 1 and 200")
		return
	}
	out, err := h.Q.ListByNeighborhood(r.Context(), chi.URLParam(r, "slug"), limit)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Query failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"places": out})
}

func (h *Handlers) listCategories(w http.ResponseWriter, r *http.Request) {
	out, err := h.Q.ListCategories(r.Context())
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Query failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": out})
}

func (h *Handlers) listNeighborhoods(w http.ResponseWriter, r *http.Request) {
	out, err := h.Q.ListNeighborhoods(r.Context())
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Query failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"neighborhoods": out})
}

/********** sitemap / robots **********/

const sitemapPlaceCap = 5000

func (h *Handlers) sitemap(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	cats, err := h.Q.ListCategories(ctx)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Query failed", err.Error())
		return
	}
	hoods, err := h.Q.ListNeighborhoods(ctx)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Query failed", err.Error())
		return
	}
	places, err := h.Q.SitemapEntries(ctx, sitemapPlaceCap)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Query failed", err.Error())
		return
	}

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">` + "\n")
	writeURL := func(loc, lastmod string) {
		b.WriteString("  <url><loc>")
		b.WriteString(loc)
		b.WriteString("</loc>")
		if lastmod != "" {
			b.WriteString("<lastmod>")
			b.WriteString(lastmod)
			b.WriteString("</lastmod>")
		}
		b.WriteString("</url>\n")
	}

	writeURL(h.BaseURL+"/", "")
	writeURL(h.BaseURL+"/amsterdam/neighborhoods", "")
	for _, c := range cats {
		writeURL(h.BaseURL+"/amsterdam/"+c.Slug, "")
	}
	for _, n := range hoods {
		writeURL(h.BaseURL+"/amsterdam/neighborhoods/"+n.Slug, "")
	}
	for _, p := range places {
		writeURL(h.BaseURL+"/place/"+p.Slug, p.LastModified.UTC().Format("2006-01-02"))
	}
	b.WriteString("</urlset>\n")

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(b.String()))
}

func (h *Handlers) robots(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "User-agent: *\nAllow: /\nDisallow: /admin\n\nSitemap: %s/sitemap.xml\n", h.BaseURL)
}
