package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("not found")

	// Terminal import failures that are the caller's fault (HTTP 400).
	ErrNoFile      = errors.New("no file uploaded")
	ErrBadCSV      = errors.New("csv parse error")
	ErrNoRows      = errors.New("upload contained no data rows")
	ErrNoValidRows = errors.New("no valid rows after validation")
)

type PlaceRepository interface {
	// Write paths
	UpsertPlaces(ctx context.Context, ps []Place) (int64, error)
	InsertPlace(ctx context.Context, p Place) error
	InsertPhoto(ctx context.Context, ph Photo) error

	// Slug resolution (in-set lookups over distinct slugs)
	ResolveCategorySlugs(ctx context.Context, slugs []string) (map[string]int64, error)
	ResolveNeighborhoodSlugs(ctx context.Context, slugs []string) (map[string]int64, error)

	// Read paths
	GetPlaceBySlug(ctx context.Context, slug string) (PlaceView, error)
	GetPlaceID(ctx context.Context, slug string) (int64, error)
	ListPlacesByCategory(ctx context.Context, categorySlug string, limit int) ([]PlaceView, error)
	ListPlacesByNeighborhood(ctx context.Context, hoodSlug string, limit int) ([]PlaceView, error)
	ListCategories(ctx context.Context) ([]Category, error)
	ListNeighborhoods(ctx context.Context) ([]Neighborhood, error)
	ListPhotos(ctx context.Context, placeID int64) ([]Photo, error)
	ListSitemapEntries(ctx context.Context, limit int) ([]SitemapEntry, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// ObjectStore holds photo binaries; Put returns a public URL for the stored
// object.
type ObjectStore interface {
	Put(ctx context.Context, path string, contentType string, data []byte) (string, error)
}

// Read models
type PlaceView struct {
	ID               int64    `json:"-"`
	Slug             string   `json:"slug"`
	Name             string   `json:"name"`
	Address          *string  `json:"address,omitempty"`
	Website          *string  `json:"website,omitempty"`
	PriceLevel       *int     `json:"price_level,omitempty"`
	Rating           *float64 `json:"rating,omitempty"`
	ReviewCount      int      `json:"review_count"`
	CategoryLabel    *string  `json:"category,omitempty"`
	NeighborhoodName *string  `json:"neighborhood,omitempty"`
	Photos           []Photo  `json:"photos,omitempty"`
}

type SitemapEntry struct {
	Slug         string
	LastModified time.Time
}
