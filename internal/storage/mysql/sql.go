package mysql

const getUserSQL = `
SELECT id, email, first_name, last_name, bio, city, country, created_at
FROM users
WHERE id = ?
`

const getCategorySQL = `
SELECT id, name, description
FROM categories
WHERE id = ?
`

// Base listing row joined with its category. Reviews and bookings are loaded
// with the two follow-up queries below; a single three-way join would fan out.
const getListingSQL = `
SELECT
  l.id,
  l.host_id,
  l.category_id,
  l.name,
  l.description,
  l.status,
  l.price_cents,
  l.currency,
  l.city,
  l.country,
  l.address,
  l.facilities,
  l.location,
  l.operating_hours,
  l.age_groups,
  l.created_at,
  l.updated_at,
  c.name,
  c.description
FROM listings l
LEFT JOIN categories c ON c.id = l.category_id
WHERE l.id = ?
`

const listingReviewsSQL = `
SELECT r.id, r.listing_id, r.user_id, r.rating, r.title, r.comment, r.status, r.created_at,
       u.first_name, u.last_name
FROM reviews r
JOIN users u ON u.id = r.user_id
WHERE r.listing_id = ?
ORDER BY r.created_at DESC, r.id DESC
`

const listingBookingsSQL = `
SELECT b.id, b.listing_id, b.user_id, b.status, b.start_date, b.end_date, b.guests, b.total_cents, b.note, b.created_at,
       u.first_name, u.last_name
FROM bookings b
JOIN users u ON u.id = b.user_id
WHERE b.listing_id = ?
ORDER BY b.start_date DESC, b.id DESC
`

const getBookingSQL = `
SELECT b.id, b.listing_id, b.user_id, b.status, b.start_date, b.end_date, b.guests, b.total_cents, b.note, b.created_at,
       l.name, u.first_name, u.last_name
FROM bookings b
JOIN listings l ON l.id = b.listing_id
JOIN users u ON u.id = b.user_id
WHERE b.id = ?
`

const getReviewSQL = `
SELECT r.id, r.listing_id, r.user_id, r.rating, r.title, r.comment, r.status, r.created_at,
       u.first_name, u.last_name
FROM reviews r
JOIN users u ON u.id = r.user_id
WHERE r.id = ?
`

const listCategoriesSQL = `
SELECT id, name, description
FROM categories
ORDER BY name
`

const listingIDsSQL = `
SELECT id FROM listings ORDER BY id
`

const userBookingsSQL = `
SELECT b.id, b.listing_id, b.user_id, b.status, b.start_date, b.end_date, b.guests, b.total_cents, b.note, b.created_at,
       l.name, u.first_name, u.last_name
FROM bookings b
JOIN listings l ON l.id = b.listing_id
JOIN users u ON u.id = b.user_id
WHERE b.user_id = ?
ORDER BY b.start_date DESC, b.id DESC
`

const userReviewsSQL = `
SELECT r.id, r.listing_id, r.user_id, r.rating, r.title, r.comment, r.status, r.created_at,
       u.first_name, u.last_name
FROM reviews r
JOIN users u ON u.id = r.user_id
WHERE r.user_id = ?
ORDER BY r.created_at DESC, r.id DESC
`

// -----------------------------------------------------------------------------
// WRITE QUERIES
// -----------------------------------------------------------------------------

const insertListingSQL = `
INSERT INTO listings
  (host_id, category_id, name, description, status, price_cents, currency,
   city, country, address, facilities, location, operating_hours, age_groups)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const updateListingSQL = `
UPDATE listings SET
  category_id     = ?,
  name            = ?,
  description     = ?,
  status          = ?,
  price_cents     = ?,
  currency        = ?,
  city            = ?,
  country         = ?,
  address         = ?,
  facilities      = ?,
  location        = ?,
  operating_hours = ?,
  age_groups      = ?,
  updated_at      = CURRENT_TIMESTAMP
WHERE id = ?
`

const deleteListingSQL = `DELETE FROM listings WHERE id = ?`

const insertBookingSQL = `
INSERT INTO bookings
  (listing_id, user_id, status, start_date, end_date, guests, total_cents, note)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?)
`

const updateBookingStatusSQL = `UPDATE bookings SET status = ? WHERE id = ?`

const deleteBookingSQL = `DELETE FROM bookings WHERE id = ?`

const insertReviewSQL = `
INSERT INTO reviews
  (listing_id, user_id, rating, title, comment, status)
VALUES
  (?, ?, ?, ?, ?, ?)
`

const setReviewStatusSQL = `UPDATE reviews SET status = ? WHERE id = ?`

const updateUserSQL = `
UPDATE users SET
  email      = ?,
  first_name = ?,
  last_name  = ?,
  bio        = ?,
  city       = ?,
  country    = ?
WHERE id = ?
`

// -----------------------------------------------------------------------------
// REWARD LEDGER
// -----------------------------------------------------------------------------

const insertRewardSQL = `
INSERT INTO reward_ledger (user_id, points, reason, tier)
VALUES (?, ?, ?, ?)
`

const sumRewardSQL = `
SELECT COALESCE(SUM(points), 0) FROM reward_ledger WHERE user_id = ?
`

const latestTierSQL = `
SELECT tier FROM reward_ledger
WHERE user_id = ?
ORDER BY id DESC
LIMIT 1
`
