package mysql

const insertPlaceSQL = `
INSERT INTO places
  (external_id, name, address, category, latitude, longitude)
VALUES
  (?, ?, ?, ?, ?, ?)
`

const findPlaceIDSQL = `SELECT id FROM places WHERE external_id = ?`

const getPlaceSQL = `
SELECT id, external_id, name, address, category, latitude, longitude, created_at, updated_at
FROM places
WHERE id = ?
`

// Single aggregate read for map markers; places without reviews report 0.
const listPlacesWithCountsSQL = `
SELECT
  p.id,
  p.external_id,
  p.name,
  p.address,
  p.category,
  p.latitude,
  p.longitude,
  COUNT(r.id) AS review_count
FROM places p
LEFT JOIN reviews r ON r.place_id = p.id
GROUP BY p.id, p.external_id, p.name, p.address, p.category, p.latitude, p.longitude
ORDER BY p.id
`

const insertReviewSQL = `
INSERT INTO reviews
  (place_id, nickname, credential_digest, rating, review_text)
VALUES
  (?, ?, ?, ?, ?)
`

const listRatingsSQL = `SELECT rating FROM reviews WHERE place_id = ?`

// Newest first; aligns with ix_reviews_place_created. The digest column is
// never selected on read paths.
const listReviewsSQL = `
SELECT id, place_id, nickname, rating, review_text, created_at, updated_at
FROM reviews
WHERE place_id = ?
ORDER BY created_at DESC, id DESC
`
