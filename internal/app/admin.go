package app

import (
	"context"
	"errors"
	"strings"

	"amsterdam_guide/internal/domain"
)

// AdminService covers the manual console: single-place creation.
type AdminService struct {
	repo  domain.PlaceRepository
	cache domain.Cache
}

func NewAdminService(r domain.PlaceRepository, cache domain.Cache) *AdminService {
	return &AdminService{repo: r, cache: cache}
}

type CreatePlaceInput struct {
	Name           string   `json:"name"`
	Slug           string   `json:"slug"`
	CategoryID     int64    `json:"category_id"`
	NeighborhoodID *int64   `json:"neighborhood_id,omitempty"`
	Address        *string  `json:"address,omitempty"`
	Website        *string  `json:"website,omitempty"`
	PriceLevel     *int     `json:"price_level,omitempty"`
	Rating         *float64 `json:"rating,omitempty"`
}

var ErrMissingFields = errors.New("name, slug, and category_id are required")

func (s *AdminService) CreatePlace(ctx context.Context, in CreatePlaceInput) (domain.Place, error) {
	name := strings.TrimSpace(in.Name)
	slug := Slugify(in.Slug)
	if slug == "" {
		slug = Slugify(name)
	}
	if name == "" || slug == "" || in.CategoryID == 0 {
		return domain.Place{}, ErrMissingFields
	}

	p := domain.Place{
		Slug:           slug,
		Name:           name,
		Address:        in.Address,
		Website:        in.Website,
		PriceLevel:     in.PriceLevel,
		Rating:         in.Rating,
		CategoryID:     in.CategoryID,
		NeighborhoodID: in.NeighborhoodID,
	}
	if err := s.repo.InsertPlace(ctx, p); err != nil {
		return domain.Place{}, err
	}
	if s.cache != nil {
		_ = s.cache.Del(ctx, "place:"+slug)
		_ = s.cache.Del(ctx, "sitemap")
	}
	return p, nil
}
