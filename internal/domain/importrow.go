package domain

// RawRow is one record as parsed from the upload, keyed by normalized header.
type RawRow map[string]string

// CleanRow is a validated row with typed fields; foreign keys are filled in
// during resolution, just before the row joins the write batch.
type CleanRow struct {
	Row              int // display row number (header + 1-based data index)
	Slug             string
	Name             string
	Address          *string
	Website          *string
	PriceLevel       *int
	Rating           *float64
	ReviewCount      int
	CategorySlug     string
	NeighborhoodSlug *string

	CategoryID     int64
	NeighborhoodID *int64
}

type RowError struct {
	Row    int    `json:"row"`
	Reason string `json:"error"`
}

// ImportReport is the operator-facing outcome of one import invocation.
// A report is only produced when the pipeline reached the upsert; terminal
// failures surface as errors instead.
type ImportReport struct {
	Message           string     `json:"message"`
	InsertedOrUpdated int64      `json:"insertedOrUpdated"`
	Skipped           int        `json:"skipped"`
	Errors            []RowError `json:"errors"`
}

func (r CleanRow) ToPlace() Place {
	return Place{
		Slug:           r.Slug,
		Name:           r.Name,
		Address:        r.Address,
		Website:        r.Website,
		PriceLevel:     r.PriceLevel,
		Rating:         r.Rating,
		ReviewCount:    r.ReviewCount,
		CategoryID:     r.CategoryID,
		NeighborhoodID: r.NeighborhoodID,
	}
}
