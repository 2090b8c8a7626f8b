package postgres

// Bulk upsert keyed on the unique slug. EXCLUDED carries the incoming row;
// updated_at refreshes on every write so the sitemap sorts honestly.
const upsertPlacesPrefix = `
INSERT INTO places
  (slug, name, address, website, price_level, rating, review_count, category_id, neighborhood_id, updated_at)
VALUES `

const upsertPlacesSuffix = `
ON CONFLICT (slug) DO UPDATE SET
  name            = EXCLUDED.name,
  address         = EXCLUDED.address,
  website         = EXCLUDED.website,
  price_level     = EXCLUDED.price_level,
  rating          = EXCLUDED.rating,
  review_count    = EXCLUDED.review_count,
  category_id     = EXCLUDED.category_id,
  neighborhood_id = EXCLUDED.neighborhood_id,
  updated_at      = now()
`

// Admin create is a plain insert: a duplicate slug is an operator error and
// must surface, not silently overwrite.
const insertPlaceSQL = `
INSERT INTO places
  (slug, name, address, website, price_level, rating, review_count, category_id, neighborhood_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`

const insertPhotoSQL = `
INSERT INTO place_photos (place_id, url, alt, sort_order)
VALUES ($1, $2, $3, $4)
`

const resolveCategorySlugsSQL = `
SELECT id, slug FROM categories WHERE slug = ANY($1)
`

const resolveNeighborhoodSlugsSQL = `
SELECT id, slug FROM neighborhoods WHERE slug = ANY($1)
`

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

const getPlaceSQL = `
SELECT
  p.id,
  p.slug,
  p.name,
  p.address,
  p.website,
  p.price_level,
  p.rating,
  p.review_count,
  c.label,
  n.name
FROM places p
JOIN categories c ON c.id = p.category_id
LEFT JOIN neighborhoods n ON n.id = p.neighborhood_id
WHERE p.slug = $1
`

const listByCategorySQL = `
SELECT
  p.id, p.slug, p.name, p.address, p.website, p.price_level, p.rating, p.review_count,
  c.label, n.name
FROM places p
JOIN categories c ON c.id = p.category_id
LEFT JOIN neighborhoods n ON n.id = p.neighborhood_id
WHERE c.slug = $1
ORDER BY p.rating DESC NULLS LAST, p.review_count DESC, p.name
LIMIT $2
`

const listByNeighborhoodSQL = `
SELECT
  p.id, p.slug, p.name, p.address, p.website, p.price_level, p.rating, p.review_count,
  c.label, n.name
FROM places p
JOIN categories c ON c.id = p.category_id
JOIN neighborhoods n ON n.id = p.neighborhood_id
WHERE n.slug = $1
ORDER BY p.rating DESC NULLS LAST, p.review_count DESC, p.name
LIMIT $2
`

const listCategoriesSQL = `
SELECT id, slug, label FROM categories ORDER BY label
`

const listNeighborhoodsSQL = `
SELECT id, slug, name FROM neighborhoods ORDER BY name
`

const listPhotosSQL = `
SELECT id, place_id, url, alt, sort_order
FROM place_photos
WHERE place_id = $1
ORDER BY sort_order, id
`

const listSitemapSQL = `
SELECT slug, COALESCE(updated_at, created_at)
FROM places
ORDER BY COALESCE(updated_at, created_at) DESC
LIMIT $1
`
