package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/storekit/storefront/internal/domain"
	"github.com/storekit/storefront/pkg/database"
	apperrors "github.com/storekit/storefront/pkg/errors"
)

// ReviewRepository implements repository.ReviewRepository using PostgreSQL.
type ReviewRepository struct {
	pool database.DBTX
}

// NewReviewRepository creates a new PostgreSQL-backed review repository.
func NewReviewRepository(pool database.DBTX) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

const reviewColumns = `id, product_id, user_id, rating, title, body, images, is_approved, helpful_count, created_at, updated_at`

func scanReview(row pgx.Row) (*domain.Review, error) {
	var rv domain.Review
	err := row.Scan(
		&rv.ID,
		&rv.ProductID,
		&rv.UserID,
		&rv.Rating,
		&rv.Title,
		&rv.Body,
		&rv.Images,
		&rv.IsApproved,
		&rv.HelpfulCount,
		&rv.CreatedAt,
		&rv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rv, nil
}

// Create inserts a new review into the database.
func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	query := `
		INSERT INTO reviews (id, product_id, user_id, rating, title, body, images, is_approved, helpful_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.pool.Exec(ctx, query,
		review.ID,
		review.ProductID,
		review.UserID,
		review.Rating,
		review.Title,
		review.Body,
		review.Images,
		review.IsApproved,
		review.HelpfulCount,
		review.CreatedAt,
		review.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert review: %w", err)
	}

	return nil
}

// GetByID retrieves a review by its ID.
func (r *ReviewRepository) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE id = $1`

	rv, err := scanReview(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("get review by id: %w", err)
	}

	return rv, nil
}

// ListApprovedByProduct returns approved reviews for a product, newest-first,
// along with the total approved count.
func (r *ReviewRepository) ListApprovedByProduct(ctx context.Context, productID string, page, perPage int) ([]domain.Review, int, error) {
	limit := perPage
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if page > 1 {
		offset = (page - 1) * limit
	}

	query := `
		SELECT ` + reviewColumns + `,
		       count(*) OVER() AS total_count
		FROM reviews
		WHERE product_id = $1 AND is_approved = TRUE
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	return r.listReviews(ctx, query, productID, limit, offset)
}

// ListPending returns unapproved reviews oldest-first for moderation.
func (r *ReviewRepository) ListPending(ctx context.Context, page, perPage int) ([]domain.Review, int, error) {
	limit := perPage
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if page > 1 {
		offset = (page - 1) * limit
	}

	query := `
		SELECT ` + reviewColumns + `,
		       count(*) OVER() AS total_count
		FROM reviews
		WHERE is_approved = FALSE
		ORDER BY created_at ASC
		LIMIT $1 OFFSET $2`

	return r.listReviews(ctx, query, limit, offset)
}

func (r *ReviewRepository) listReviews(ctx context.Context, query string, args ...any) ([]domain.Review, int, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	var (
		reviews    []domain.Review
		totalCount int
	)

	for rows.Next() {
		var rv domain.Review
		if err := rows.Scan(
			&rv.ID,
			&rv.ProductID,
			&rv.UserID,
			&rv.Rating,
			&rv.Title,
			&rv.Body,
			&rv.Images,
			&rv.IsApproved,
			&rv.HelpfulCount,
			&rv.CreatedAt,
			&rv.UpdatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan review row: %w", err)
		}
		reviews = append(reviews, rv)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate review rows: %w", err)
	}

	if reviews == nil {
		reviews = []domain.Review{}
	}

	return reviews, totalCount, nil
}

// Approve marks a review as approved. Approving an already-approved review
// re-applies the flag and still refreshes updated_at.
func (r *ReviewRepository) Approve(ctx context.Context, id string) error {
	query := `
		UPDATE reviews
		SET is_approved = TRUE, updated_at = NOW()
		WHERE id = $1`

	ct, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("approve review: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("review", id)
	}

	return nil
}

// IncrementHelpful atomically increments the helpful count by one and returns
// the new value. The increment happens in SQL so concurrent calls never lose
// an update.
func (r *ReviewRepository) IncrementHelpful(ctx context.Context, id string) (int, error) {
	query := `
		UPDATE reviews
		SET helpful_count = helpful_count + 1, updated_at = NOW()
		WHERE id = $1
		RETURNING helpful_count`

	var count int
	err := r.pool.QueryRow(ctx, query, id).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperrors.NotFound("review", id)
		}
		return 0, fmt.Errorf("increment helpful count: %w", err)
	}

	return count, nil
}

// CountApprovedByRating returns the number of approved reviews per star value
// for a product. Star values with no reviews are absent from the map.
func (r *ReviewRepository) CountApprovedByRating(ctx context.Context, productID string) (_ map[int]int, err error) {
	query := `
		SELECT rating, COUNT(*)
		FROM reviews
		WHERE product_id = $1 AND is_approved = TRUE
		GROUP BY rating`

	ctx, end := database.TraceQuery(ctx, "ReviewRepository.CountApprovedByRating", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("count reviews by rating: %w", err)
	}
	defer rows.Close()

	counts := make(map[int]int)
	for rows.Next() {
		var rating, count int
		if err = rows.Scan(&rating, &count); err != nil {
			return nil, fmt.Errorf("scan rating count row: %w", err)
		}
		counts[rating] = count
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rating count rows: %w", err)
	}

	return counts, nil
}
