package app

import (
	"context"
	"fmt"
	"time"

	"amsterdam_guide/internal/domain"
)

// QueryService serves the rendering layer's reads through the cache.
type QueryService struct {
	repo     domain.PlaceRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(r domain.PlaceRepository, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{repo: r, cache: c, cacheTTL: ttl}
}

func (s *QueryService) GetPlace(ctx context.Context, slug string) (domain.PlaceView, error) {
	key := "place:" + slug
	var pv domain.PlaceView
	if ok, _ := s.cache.Get(ctx, key, &pv); ok {
		return pv, nil
	}
	pv, err := s.repo.GetPlaceBySlug(ctx, slug)
	if err != nil {
		return domain.PlaceView{}, err
	}
	photos, err := s.repo.ListPhotos(ctx, pv.ID)
	if err != nil {
		return domain.PlaceView{}, err
	}
	pv.Photos = photos
	_ = s.cache.Set(ctx, key, pv, int(s.cacheTTL.Seconds()))
	return pv, nil
}

func (s *QueryService) ListByCategory(ctx context.Context, categorySlug string, limit int) ([]domain.PlaceView, error) {
	key := fmt.Sprintf("cat:%s:%d", categorySlug, limit)
	var out []domain.PlaceView
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}
	out, err := s.repo.ListPlacesByCategory(ctx, categorySlug, limit)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, key, out, int(s.cacheTTL.Seconds()))
	return out, nil
}

func (s *QueryService) ListByNeighborhood(ctx context.Context, hoodSlug string, limit int) ([]domain.PlaceView, error) {
	key := fmt.Sprintf("hood:%s:%d", hoodSlug, limit)
	var out []domain.PlaceView
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}
	out, err := s.repo.ListPlacesByNeighborhood(ctx, hoodSlug, limit)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, key, out, int(s.cacheTTL.Seconds()))
	return out, nil
}

func (s *QueryService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *QueryService) ListNeighborhoods(ctx context.Context) ([]domain.Neighborhood, error) {
	var out []domain.Neighborhood
	if ok, _ := s.cache.Get(ctx, "neighborhoods", &out); ok {
		return out, nil
	}
	out, err := s.repo.ListNeighborhoods(ctx)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, "neighborhoods", out, int(s.cacheTTL.Seconds()))
	return out, nil
}

// SitemapEntries returns place entries newest-first; the repo caps the set so
// one sitemap stays well under the 50k URL limit.
func (s *QueryService) SitemapEntries(ctx context.Context, limit int) ([]domain.SitemapEntry, error) {
	return s.repo.ListSitemapEntries(ctx, limit)
}
