package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"amsterdam_guide/internal/domain"
)

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
func valInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}
func valInt64(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}
func valF64(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) UpsertPlaces(ctx context.Context, ps []domain.Place) (int64, error) {
	if len(ps) == 0 {
		return 0, nil
	}
	values := make([]string, 0, len(ps))
	args := make([]any, 0, len(ps)*9) // 9 params per row; updated_at is now()
	for i, p := range ps {
		base := i * 9
		values = append(values, fmt.Sprintf("($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,now())",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8, base+9))
		args = append(args,
			p.Slug,
			p.Name,
			valStr(p.Address),
			valStr(p.Website),
			valInt(p.PriceLevel),
			valF64(p.Rating),
			p.ReviewCount,
			p.CategoryID,
			valInt64(p.NeighborhoodID),
		)
	}
	sqlStr := upsertPlacesPrefix + strings.Join(values, ",") + upsertPlacesSuffix
	res, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		// driver without RowsAffected support: fall back to the batch size
		return int64(len(ps)), nil
	}
	return n, nil
}

func (r *Repo) InsertPlace(ctx context.Context, p domain.Place) error {
	_, err := r.db.ExecContext(ctx, insertPlaceSQL,
		p.Slug,
		p.Name,
		valStr(p.Address),
		valStr(p.Website),
		valInt(p.PriceLevel),
		valF64(p.Rating),
		p.ReviewCount,
		p.CategoryID,
		valInt64(p.NeighborhoodID),
	)
	return err
}

func (r *Repo) InsertPhoto(ctx context.Context, ph domain.Photo) error {
	_, err := r.db.ExecContext(ctx, insertPhotoSQL, ph.PlaceID, ph.URL, ph.Alt, ph.SortOrder)
	return err
}

func (r *Repo) ResolveCategorySlugs(ctx context.Context, slugs []string) (map[string]int64, error) {
	return r.resolveSlugs(ctx, resolveCategorySlugsSQL, slugs)
}

func (r *Repo) ResolveNeighborhoodSlugs(ctx context.Context, slugs []string) (map[string]int64, error) {
	return r.resolveSlugs(ctx, resolveNeighborhoodSlugsSQL, slugs)
}

func (r *Repo) resolveSlugs(ctx context.Context, query string, slugs []string) (map[string]int64, error) {
	out := make(map[string]int64, len(slugs))
	if len(slugs) == 0 {
		return out, nil
	}
	rows, err := r.db.QueryContext(ctx, query, pq.Array(slugs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var slug string
		if err := rows.Scan(&id, &slug); err != nil {
			return nil, err
		}
		out[slug] = id
	}
	return out, rows.Err()
}

func (r *Repo) GetPlaceBySlug(ctx context.Context, slug string) (domain.PlaceView, error) {
	row := r.db.QueryRowContext(ctx, getPlaceSQL, slug)
	pv, err := scanPlaceView(row)
	if err == sql.ErrNoRows {
		return domain.PlaceView{}, domain.ErrNotFound
	}
	return pv, err
}

func (r *Repo) GetPlaceID(ctx context.Context, slug string) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `SELECT id FROM places WHERE slug = $1`, slug).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, domain.ErrNotFound
	}
	return id, err
}

func (r *Repo) ListPlacesByCategory(ctx context.Context, categorySlug string, limit int) ([]domain.PlaceView, error) {
	return r.listPlaces(ctx, listByCategorySQL, categorySlug, limit)
}

func (r *Repo) ListPlacesByNeighborhood(ctx context.Context, hoodSlug string, limit int) ([]domain.PlaceView, error) {
	return r.listPlaces(ctx, listByNeighborhoodSQL, hoodSlug, limit)
}

func (r *Repo) listPlaces(ctx context.Context, query, slug string, limit int) ([]domain.PlaceView, error) {
	rows, err := r.db.QueryContext(ctx, query, slug, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.PlaceView
	for rows.Next() {
		pv, err := scanPlaceView(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, pv)
	}
	return out, rows.Err()
}

type rowScanner interface{ Scan(dest ...any) error }

func scanPlaceView(row rowScanner) (domain.PlaceView, error) {
	var pv domain.PlaceView
	var address, website, catLabel, hoodName sql.NullString
	var priceLevel sql.NullInt64
	var rating sql.NullFloat64

	if err := row.Scan(
		&pv.ID,
		&pv.Slug,
		&pv.Name,
		&address,
		&website,
		&priceLevel,
		&rating,
		&pv.ReviewCount,
		&catLabel,
		&hoodName,
	); err != nil {
		return domain.PlaceView{}, err
	}

	if address.Valid {
		s := address.String
		pv.Address = &s
	}
	if website.Valid {
		s := website.String
		pv.Website = &s
	}
	if priceLevel.Valid {
		n := int(priceLevel.Int64)
		pv.PriceLevel = &n
	}
	if rating.Valid {
		f := rating.Float64
		pv.Rating = &f
	}
	if catLabel.Valid {
		s := catLabel.String
		pv.CategoryLabel = &s
	}
	if hoodName.Valid {
		s := hoodName.String
		pv.NeighborhoodName = &s
	}
	return pv, nil
}

func (r *Repo) ListCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := r.db.QueryContext(ctx, listCategoriesSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Slug, &c.Label); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repo) ListNeighborhoods(ctx context.Context) ([]domain.Neighborhood, error) {
	rows, err := r.db.QueryContext(ctx, listNeighborhoodsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Neighborhood
	for rows.Next() {
		var n domain.Neighborhood
		if err := rows.Scan(&n.ID, &n.Slug, &n.Name); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *Repo) ListPhotos(ctx context.Context, placeID int64) ([]domain.Photo, error) {
	rows, err := r.db.QueryContext(ctx, listPhotosSQL, placeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Photo
	for rows.Next() {
		var ph domain.Photo
		var alt sql.NullString
		if err := rows.Scan(&ph.ID, &ph.PlaceID, &ph.URL, &alt, &ph.SortOrder); err != nil {
			return nil, err
		}
		ph.Alt = alt.String
		out = append(out, ph)
	}
	return out, rows.Err()
}

func (r *Repo) ListSitemapEntries(ctx context.Context, limit int) ([]domain.SitemapEntry, error) {
	rows, err := r.db.QueryContext(ctx, listSitemapSQL, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.SitemapEntry
	for rows.Next() {
		var e domain.SitemapEntry
		if err := rows.Scan(&e.Slug, &e.LastModified); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
