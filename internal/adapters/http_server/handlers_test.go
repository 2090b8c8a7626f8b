package httpserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	server "amsterdam_guide/internal/adapters/http_server"
	"amsterdam_guide/internal/adapters/objectstore"
	"amsterdam_guide/internal/app"
	"amsterdam_guide/internal/domain"
)

// ---- fakes ----

type stubRepo struct {
	cats   map[string]int64
	bySlug map[string]domain.Place
	pv     *domain.PlaceView
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		cats:   map[string]int64{"cafes": 1, "bars": 2},
		bySlug: map[string]domain.Place{},
	}
}

func (s *stubRepo) UpsertPlaces(ctx context.Context, ps []domain.Place) (int64, error) {
	for _, p := range ps {
		s.bySlug[p.Slug] = p
	}
	return int64(len(ps)), nil
}
func (s *stubRepo) InsertPlace(ctx context.Context, p domain.Place) error { return nil }
func (s *stubRepo) InsertPhoto(ctx context.Context, ph domain.Photo) error {
	return nil
}
func (s *stubRepo) ResolveCategorySlugs(ctx context.Context, slugs []string) (map[string]int64, error) {
	out := map[string]int64{}
	for _, sl := range slugs {
		if id, ok := s.cats[sl]; ok {
			out[sl] = id
		}
	}
	return out, nil
}
func (s *stubRepo) ResolveNeighborhoodSlugs(ctx context.Context, slugs []string) (map[string]int64, error) {
	return map[string]int64{}, nil
}
func (s *stubRepo) GetPlaceBySlug(ctx context.Context, slug string) (domain.PlaceView, error) {
	if s.pv != nil && s.pv.Slug == slug {
		return *s.pv, nil
	}
	return domain.PlaceView{}, domain.ErrNotFound
}
func (s *stubRepo) GetPlaceID(ctx context.Context, slug string) (int64, error) {
	if s.pv != nil && s.pv.Slug == slug {
		return s.pv.ID, nil
	}
	return 0, domain.ErrNotFound
}
func (s *stubRepo) ListPlacesByCategory(ctx context.Context, categorySlug string, limit int) ([]domain.PlaceView, error) {
	return nil, nil
}
func (s *stubRepo) ListPlacesByNeighborhood(ctx context.Context, hoodSlug string, limit int) ([]domain.PlaceView, error) {
	return nil, nil
}
func (s *stubRepo) ListCategories(ctx context.Context) ([]domain.Category, error)        { return nil, nil }
func (s *stubRepo) ListNeighborhoods(ctx context.Context) ([]domain.Neighborhood, error) { return nil, nil }
func (s *stubRepo) ListPhotos(ctx context.Context, placeID int64) ([]domain.Photo, error) {
	return nil, nil
}
func (s *stubRepo) ListSitemapEntries(ctx context.Context, limit int) ([]domain.SitemapEntry, error) {
	return nil, nil
}

type noopCache struct{}

func (noopCache) Get(ctx context.Context, key string, dst any) (bool, error) { return false, nil }
func (noopCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	return nil
}
func (noopCache) Del(ctx context.Context, key string) error { return nil }

func newTestServer(t *testing.T, repo *stubRepo) *httptest.Server {
	t.Helper()
	srv := server.New()
	srv.MountHandlers(&server.Handlers{
		Imports: app.NewImportService(repo, nil),
		Q:       app.NewQueryService(repo, noopCache{}, time.Minute),
		Admin:   app.NewAdminService(repo, nil),
		Photos:  app.NewPhotoService(repo, objectstore.NewDisk(t.TempDir(), "/photos"), nil),
		BaseURL: "http://guide.test",
	})
	ts := httptest.NewServer(srv.Mux())
	t.Cleanup(ts.Close)
	return ts
}

func multipartCSV(t *testing.T, csv string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "places.csv")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write([]byte(csv)); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	_ = mw.Close()
	return &buf, mw.FormDataContentType()
}

// ---- tests ----

func TestImportEndpoint_MultipartCSV(t *testing.T) {
	repo := newStubRepo()
	ts := newTestServer(t, repo)

	body, ct := multipartCSV(t, "name,category_slug\nCafe de Pijp,cafes\nBar Foo,bars\n")
	resp, err := http.Post(ts.URL+"/v1/import/places", ct, body)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: %d", resp.StatusCode)
	}
	var report domain.ImportReport
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.InsertedOrUpdated != 2 || report.Skipped != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if _, ok := repo.bySlug["cafe-de-pijp"]; !ok {
		t.Fatal("place not written")
	}
}

func TestImportEndpoint_JSONRows(t *testing.T) {
	repo := newStubRepo()
	ts := newTestServer(t, repo)

	payload := `{"rows":[{"name":"Cafe de Pijp","category_slug":"cafes","price_level":2,"rating":4.4}]}`
	resp, err := http.Post(ts.URL+"/v1/import/places", "application/json", strings.NewReader(payload))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: %d", resp.StatusCode)
	}
	p, ok := repo.bySlug["cafe-de-pijp"]
	if !ok {
		t.Fatal("place not written")
	}
	if p.PriceLevel == nil || *p.PriceLevel != 2 || p.Rating == nil || *p.Rating != 4.4 {
		t.Fatalf("JSON numbers not normalized: %+v", p)
	}
}

func TestImportEndpoint_AllRowsInvalidIs400(t *testing.T) {
	repo := newStubRepo()
	ts := newTestServer(t, repo)

	body, ct := multipartCSV(t, "name,category_slug\n,cafes\n")
	resp, err := http.Post(ts.URL+"/v1/import/places", ct, body)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status: %d", resp.StatusCode)
	}
	var report domain.ImportReport
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.InsertedOrUpdated != 0 || len(report.Errors) == 0 {
		t.Fatalf("expected zero writes and row errors, got %+v", report)
	}
	if len(repo.bySlug) != 0 {
		t.Fatal("no writes may occur")
	}
}

func TestImportEndpoint_UnsupportedContentType(t *testing.T) {
	ts := newTestServer(t, newStubRepo())

	resp, err := http.Post(ts.URL+"/v1/import/places", "text/plain", strings.NewReader("hi"))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status: %d", resp.StatusCode)
	}
}

func TestTemplateEndpoint(t *testing.T) {
	ts := newTestServer(t, newStubRepo())

	resp, err := http.Get(ts.URL + "/v1/import/template")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("content type: %s", ct)
	}
	buf := new(strings.Builder)
	if _, err := io.Copy(buf, resp.Body); err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "name,slug,category_slug") {
		t.Fatalf("unexpected template: %q", buf.String())
	}
}

func TestGetPlace_ETagAnd304(t *testing.T) {
	repo := newStubRepo()
	repo.pv = &domain.PlaceView{ID: 1, Slug: "cafe-de-pijp", Name: "Cafe de Pijp"}
	ts := newTestServer(t, repo)

	resp, err := http.Get(ts.URL + "/v1/places/cafe-de-pijp")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	etag := resp.Header.Get("ETag")
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || etag == "" {
		t.Fatalf("status %d etag %q", resp.StatusCode, etag)
	}

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/v1/places/cafe-de-pijp", nil)
	req.Header.Set("If-None-Match", etag)
	resp2, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp2.Body.Close()
	if resp2.StatusCode != http.StatusNotModified {
		t.Fatalf("expected 304, got %d", resp2.StatusCode)
	}
}

func TestGetPlace_NotFound(t *testing.T) {
	ts := newTestServer(t, newStubRepo())

	resp, err := http.Get(ts.URL + "/v1/places/nope")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status: %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/problem+json") {
		t.Fatalf("content type: %s", ct)
	}
}

func TestUploadPhoto(t *testing.T) {
	repo := newStubRepo()
	repo.pv = &domain.PlaceView{ID: 9, Slug: "cafe-de-pijp", Name: "Cafe de Pijp"}
	ts := newTestServer(t, repo)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("file", "front.jpg")
	_, _ = fw.Write([]byte("not-really-a-jpeg"))
	_ = mw.WriteField("alt", "front of the cafe")
	_ = mw.Close()

	resp, err := http.Post(ts.URL+"/v1/places/cafe-de-pijp/photos", mw.FormDataContentType(), &buf)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: %d", resp.StatusCode)
	}
	var out struct {
		OK  bool   `json:"ok"`
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !out.OK || !strings.Contains(out.URL, "cafe-de-pijp/") {
		t.Fatalf("unexpected response: %+v", out)
	}
}

func TestUploadPhoto_UnknownPlace(t *testing.T) {
	ts := newTestServer(t, newStubRepo())

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("file", "x.jpg")
	_, _ = fw.Write([]byte("x"))
	_ = mw.Close()

	resp, err := http.Post(ts.URL+"/v1/places/ghost/photos", mw.FormDataContentType(), &buf)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status: %d", resp.StatusCode)
	}
}
