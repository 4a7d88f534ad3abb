package mysql

const insertReviewSQL = `
INSERT INTO reviews
  (business_id, reviewer_name, phone, content, status, sentiment_score, is_positive)
VALUES
  (?, ?, ?, ?, ?, ?, ?)
`

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

// Display order: pinned first, then newest. id breaks created_at ties so the
// order is stable across reads. Served by idx_reviews_display.
const listApprovedSQL = `
SELECT
  id,
  business_id,
  reviewer_name,
  content,
  status,
  sentiment_score,
  is_positive,
  pinned,
  created_at
FROM reviews
WHERE business_id = ? AND status = 'approved'
ORDER BY pinned DESC, created_at DESC, id DESC
`
