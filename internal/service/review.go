package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/storekit/storefront/internal/cache"
	"github.com/storekit/storefront/internal/domain"
	"github.com/storekit/storefront/internal/event"
	"github.com/storekit/storefront/internal/repository"
	apperrors "github.com/storekit/storefront/pkg/errors"
)

// CreateReviewInput holds the parameters for creating a review.
type CreateReviewInput struct {
	ProductID string
	UserID    string
	Rating    int
	Title     string
	Body      string
	Images    []string
}

// ReviewListResult contains reviews and their aggregate summary.
type ReviewListResult struct {
	Reviews    []domain.Review       `json:"reviews"`
	Summary    *domain.ReviewSummary `json:"summary"`
	TotalCount int                   `json:"total_count"`
	Page       int                   `json:"page"`
	PerPage    int                   `json:"per_page"`
	TotalPages int                   `json:"total_pages"`
}

// ReviewService implements the business logic for review operations.
type ReviewService struct {
	repo     repository.ReviewRepository
	cache    cache.SummaryCache
	producer *event.Producer
	logger   *slog.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(
	repo repository.ReviewRepository,
	summaryCache cache.SummaryCache,
	producer *event.Producer,
	logger *slog.Logger,
) *ReviewService {
	return &ReviewService{
		repo:     repo,
		cache:    summaryCache,
		producer: producer,
		logger:   logger,
	}
}

// CreateReview creates a new unapproved review. Reviews only count toward the
// product summary once a moderator approves them.
func (s *ReviewService) CreateReview(ctx context.Context, input *CreateReviewInput) (*domain.Review, error) {
	if input.ProductID == "" {
		return nil, apperrors.InvalidInput("product_id is required")
	}
	if input.UserID == "" {
		return nil, apperrors.InvalidInput("user_id is required")
	}
	if input.Rating < domain.MinRating || input.Rating > domain.MaxRating {
		return nil, apperrors.InvalidInput("rating must be between 1 and 5")
	}

	images := input.Images
	if images == nil {
		images = []string{}
	}

	now := time.Now().UTC()
	review := &domain.Review{
		ID:        uuid.New().String(),
		ProductID: input.ProductID,
		UserID:    input.UserID,
		Rating:    input.Rating,
		Title:     input.Title,
		Body:      input.Body,
		Images:    images,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}

	if err := s.producer.PublishReviewCreated(ctx, review); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish review.created event",
			slog.String("review_id", review.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "review created",
		slog.String("review_id", review.ID),
		slog.String("product_id", review.ProductID),
		slog.String("user_id", review.UserID),
		slog.Int("rating", review.Rating),
	)

	return review, nil
}

// GetReview retrieves a single review by ID.
func (s *ReviewService) GetReview(ctx context.Context, id string) (*domain.Review, error) {
	review, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get review: %w", err)
	}
	return review, nil
}

// ListReviews returns paginated approved reviews for a product along with the
// aggregate rating summary.
func (s *ReviewService) ListReviews(ctx context.Context, productID string, page, perPage int) (*ReviewListResult, error) {
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}

	reviews, total, err := s.repo.ListApprovedByProduct(ctx, productID, page, perPage)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}

	summary, err := s.ComputeSummary(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("get review summary: %w", err)
	}

	totalPages := total / perPage
	if total%perPage > 0 {
		totalPages++
	}

	return &ReviewListResult{
		Reviews:    reviews,
		Summary:    summary,
		TotalCount: total,
		Page:       page,
		PerPage:    perPage,
		TotalPages: totalPages,
	}, nil
}

// ListPendingReviews returns reviews awaiting moderation, oldest-first.
func (s *ReviewService) ListPendingReviews(ctx context.Context, page, perPage int) ([]domain.Review, int, error) {
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}

	reviews, total, err := s.repo.ListPending(ctx, page, perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("list pending reviews: %w", err)
	}

	return reviews, total, nil
}

// ApproveReview marks a review as approved, making it visible and countable
// in the product summary. Approving an already-approved review succeeds and
// re-applies the flag.
func (s *ReviewService) ApproveReview(ctx context.Context, id string) (*domain.Review, error) {
	review, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get review for approval: %w", err)
	}

	if err := s.repo.Approve(ctx, id); err != nil {
		return nil, fmt.Errorf("approve review: %w", err)
	}
	review.IsApproved = true

	// Drop the cached summary so the next read recomputes with this review.
	if err := s.cache.Invalidate(ctx, review.ProductID); err != nil {
		s.logger.WarnContext(ctx, "failed to invalidate summary cache",
			slog.String("product_id", review.ProductID),
			slog.String("error", err.Error()),
		)
	}

	if err := s.producer.PublishReviewApproved(ctx, review); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish review.approved event",
			slog.String("review_id", review.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "review approved",
		slog.String("review_id", review.ID),
		slog.String("product_id", review.ProductID),
	)

	return review, nil
}

// MarkHelpful increments the helpful vote count for a review and returns the
// new count. Votes are anonymous and unlimited.
func (s *ReviewService) MarkHelpful(ctx context.Context, id string) (int, error) {
	count, err := s.repo.IncrementHelpful(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("mark review helpful: %w", err)
	}

	s.logger.InfoContext(ctx, "review marked helpful",
		slog.String("review_id", id),
		slog.Int("helpful_count", count),
	)

	return count, nil
}

// ComputeSummary returns the aggregate rating summary for a product, computed
// over approved reviews only. Summaries are served from cache when available.
func (s *ReviewService) ComputeSummary(ctx context.Context, productID string) (*domain.ReviewSummary, error) {
	if cached, err := s.cache.Get(ctx, productID); err == nil {
		return cached, nil
	}

	counts, err := s.repo.CountApprovedByRating(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("compute review summary: %w", err)
	}

	summary := domain.BuildSummary(counts)

	if err := s.cache.Set(ctx, productID, &summary); err != nil {
		s.logger.WarnContext(ctx, "failed to cache review summary",
			slog.String("product_id", productID),
			slog.String("error", err.Error()),
		)
	}

	return &summary, nil
}
