package domain

import "time"

type Place struct {
	ID             int64
	Slug           string
	Name           string
	Address        *string
	Website        *string
	PriceLevel     *int
	Rating         *float64
	ReviewCount    int
	CategoryID     int64
	NeighborhoodID *int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Category and Neighborhood are reference data: rows pre-exist and the
// import only ever reads them to resolve slugs.
type Category struct {
	ID    int64  `json:"id"`
	Slug  string `json:"slug"`
	Label string `json:"label"`
}

type Neighborhood struct {
	ID   int64  `json:"id"`
	Slug string `json:"slug"`
	Name string `json:"name"`
}

type Photo struct {
	ID        int64  `json:"id"`
	PlaceID   int64  `json:"-"`
	URL       string `json:"url"`
	Alt       string `json:"alt,omitempty"`
	SortOrder int    `json:"sort_order"`
}
