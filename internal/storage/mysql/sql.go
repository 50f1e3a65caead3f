package mysql

const insertRestaurantSQL = `
INSERT INTO restaurants
  (name, address, latitude, longitude, water_billing_policy, submission_status)
VALUES
  (?, ?, ?, ?, ?, 'pending')
`

// Guarded transition: only a row still pending at write time is touched.
// RowsAffected==0 means absent or already reviewed; callers cannot tell
// the two apart and are not supposed to.
const markReviewedSQL = `
UPDATE restaurants
SET submission_status = ?,
    reviewed_at       = CURRENT_TIMESTAMP,
    reviewed_by       = ?,
    notes             = ?
WHERE id = ? AND submission_status = 'pending'
`

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

const getRestaurantSQL = `
SELECT
  id, name, address, latitude, longitude,
  water_billing_policy, submission_status,
  submitted_at, reviewed_at, reviewed_by, notes
FROM restaurants
WHERE id = ?
`

// Exact match. name/address are declared utf8mb4_bin in the migration so
// both this comparison and the unique key are case-sensitive.
const findByNameAddressSQL = `
SELECT
  id, name, address, latitude, longitude,
  water_billing_policy, submission_status,
  submitted_at, reviewed_at, reviewed_by, notes
FROM restaurants
WHERE name = ? AND address = ?
`

const listApprovedSQL = `
SELECT id, name, address, latitude, longitude, water_billing_policy
FROM restaurants
WHERE submission_status = 'approved'
ORDER BY id
`

const listPendingSQL = `
SELECT
  id, name, address, latitude, longitude,
  water_billing_policy, submission_status, submitted_at, notes
FROM restaurants
WHERE submission_status = 'pending'
ORDER BY id
`

const getAdminByUsernameSQL = `
SELECT id, username, password_hash, created_at
FROM admin_users
WHERE username = ?
`

const upsertAdminSQL = `
INSERT INTO admin_users (username, password_hash)
VALUES (?, ?)
ON DUPLICATE KEY UPDATE password_hash = VALUES(password_hash)
`
