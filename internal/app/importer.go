package app

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"amsterdam_guide/internal/domain"
)

// ImportService runs the CSV/JSON bulk import: parse, clean, resolve slugs,
// bulk upsert. One invocation is one sequential unit of work; rejected rows
// are collected, never retried.
type ImportService struct {
	repo  domain.PlaceRepository
	cache domain.Cache
}

func NewImportService(r domain.PlaceRepository, cache domain.Cache) *ImportService {
	return &ImportService{repo: r, cache: cache}
}

// ImportCSV parses the upload and hands the rows to ImportRows.
func (s *ImportService) ImportCSV(ctx context.Context, r io.Reader) (domain.ImportReport, error) {
	rows, err := decodeCSV(r)
	if err != nil {
		return domain.ImportReport{}, err
	}
	return s.ImportRows(ctx, rows)
}

// ImportRows validates, resolves, and upserts a raw row set. A report is
// returned together with ErrNoValidRows when every row was rejected, so the
// caller can still surface the per-row reasons; store failures are terminal
// and carry no report.
func (s *ImportService) ImportRows(ctx context.Context, raw []domain.RawRow) (domain.ImportReport, error) {
	if len(raw) == 0 {
		return domain.ImportReport{}, domain.ErrNoRows
	}

	// Stage 2: per-row cleaning and validation.
	cleaned := make([]domain.CleanRow, 0, len(raw))
	rowErrs := []domain.RowError{}
	for i, r := range raw {
		c, rerr := cleanRow(i, r)
		if rerr != nil {
			rowErrs = append(rowErrs, *rerr)
			continue
		}
		cleaned = append(cleaned, c)
	}
	if len(cleaned) == 0 {
		return domain.ImportReport{
			Message: "No valid rows after validation",
			Skipped: len(rowErrs),
			Errors:  rowErrs,
		}, domain.ErrNoValidRows
	}

	// Stage 3: resolve category/neighborhood slugs to ids. The two lookups
	// are independent reads and run concurrently.
	catSlugs := make([]string, 0, len(cleaned))
	hoodSlugs := make([]string, 0, len(cleaned))
	for _, c := range cleaned {
		catSlugs = append(catSlugs, c.CategorySlug)
		if c.NeighborhoodSlug != nil {
			hoodSlugs = append(hoodSlugs, *c.NeighborhoodSlug)
		}
	}

	var catMap, hoodMap map[string]int64
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		catMap, err = resolveKeys(egCtx, catSlugs, s.repo.ResolveCategorySlugs)
		if err != nil {
			return fmt.Errorf("resolve categories: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		var err error
		hoodMap, err = resolveKeys(egCtx, hoodSlugs, s.repo.ResolveNeighborhoodSlugs)
		if err != nil {
			return fmt.Errorf("resolve neighborhoods: %w", err)
		}
		return nil
	})
	if err := eg.Wait(); err != nil {
		return domain.ImportReport{}, err
	}

	batch := make([]domain.Place, 0, len(cleaned))
	for _, c := range cleaned {
		catID, ok := catMap[c.CategorySlug]
		if !ok {
			rowErrs = append(rowErrs, domain.RowError{
				Row:    c.Row,
				Reason: "Unknown category_slug: " + c.CategorySlug,
			})
			continue
		}
		c.CategoryID = catID
		if c.NeighborhoodSlug != nil {
			if hoodID, ok := hoodMap[*c.NeighborhoodSlug]; ok {
				c.NeighborhoodID = &hoodID
			}
		}
		batch = append(batch, c.ToPlace())
	}
	if len(batch) == 0 {
		return domain.ImportReport{
			Message: "All rows were skipped due to invalid category slugs",
			Skipped: len(rowErrs),
			Errors:  rowErrs,
		}, domain.ErrNoValidRows
	}

	// Stage 4: one bulk upsert keyed on slug; the store's conflict handling
	// is the only concurrency safety net we rely on. Duplicate slugs within
	// one upload collapse to the last occurrence first, since a single
	// INSERT ... ON CONFLICT cannot touch the same row twice.
	batch = dedupeBySlug(batch)
	count, err := s.repo.UpsertPlaces(ctx, batch)
	if err != nil {
		return domain.ImportReport{}, fmt.Errorf("upsert places: %w", err)
	}

	if s.cache != nil {
		for _, p := range batch {
			s.invalidatePlace(ctx, p.Slug)
		}
		_ = s.cache.Del(ctx, "sitemap")
	}

	log.Info().
		Int("imported", len(batch)).
		Int("skipped", len(rowErrs)).
		Msg("import complete")

	return domain.ImportReport{
		Message:           "Import complete",
		InsertedOrUpdated: count,
		Skipped:           len(rowErrs),
		Errors:            rowErrs,
	}, nil
}

// cleanRow derives the typed row or the reason it was rejected. Row numbers
// are reported as i+2 to account for the header line and 1-based display.
func cleanRow(i int, r domain.RawRow) (domain.CleanRow, *domain.RowError) {
	row := i + 2

	name := strings.TrimSpace(r["name"])
	if name == "" {
		return domain.CleanRow{}, &domain.RowError{Row: row, Reason: "Missing name"}
	}

	slugSrc := r["slug"]
	if strings.TrimSpace(slugSrc) == "" {
		slugSrc = name
	}
	slug := Slugify(slugSrc)
	if slug == "" {
		return domain.CleanRow{}, &domain.RowError{Row: row, Reason: "Missing slug (or could not generate from name)"}
	}

	categorySlug := Slugify(r["category_slug"])
	if categorySlug == "" {
		return domain.CleanRow{}, &domain.RowError{Row: row, Reason: "Missing category_slug"}
	}

	c := domain.CleanRow{
		Row:          row,
		Slug:         slug,
		Name:         name,
		Address:      normText(r["address"]),
		Website:      normWebsite(r["website"]),
		PriceLevel:   normPriceLevel(r["price_level"]),
		Rating:       normRating(r["rating"]),
		ReviewCount:  normReviewCount(r["review_count"]),
		CategorySlug: categorySlug,
	}
	if hood := Slugify(r["neighborhood_slug"]); hood != "" {
		c.NeighborhoodSlug = &hood
	}
	return c, nil
}

func dedupeBySlug(ps []domain.Place) []domain.Place {
	idx := make(map[string]int, len(ps))
	out := ps[:0]
	for _, p := range ps {
		if i, ok := idx[p.Slug]; ok {
			out[i] = p
			continue
		}
		idx[p.Slug] = len(out)
		out = append(out, p)
	}
	return out
}

func (s *ImportService) invalidatePlace(ctx context.Context, slug string) {
	_ = s.cache.Del(ctx, "place:"+slug)
}
