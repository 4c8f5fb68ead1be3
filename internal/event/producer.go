package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/storekit/storefront/internal/domain"
	pkgkafka "github.com/storekit/storefront/pkg/kafka"
)

// Kafka topic constants for storefront domain events.
const (
	TopicReviewCreated  = "storefront.review.created"
	TopicReviewApproved = "storefront.review.approved"
	TopicStockUpdated   = "storefront.stock.updated"
	TopicStockLow       = "storefront.stock.low"
)

// Aggregate type constants.
const (
	AggregateTypeReview  = "review"
	AggregateTypeProduct = "product"
)

// Source identifier for events originating from the storefront service.
const SourceStorefront = "storefront"

// ReviewCreatedData is the payload for a review.created event.
type ReviewCreatedData struct {
	ReviewID  string `json:"review_id"`
	ProductID string `json:"product_id"`
	UserID    string `json:"user_id"`
	Rating    int    `json:"rating"`
}

// ReviewApprovedData is the payload for a review.approved event.
type ReviewApprovedData struct {
	ReviewID  string `json:"review_id"`
	ProductID string `json:"product_id"`
	Rating    int    `json:"rating"`
}

// StockUpdatedData is the payload for a stock.updated event.
type StockUpdatedData struct {
	ProductID    string `json:"product_id"`
	OldStock     int    `json:"old_stock"`
	NewStock     int    `json:"new_stock"`
	ChangeAmount int    `json:"change_amount"`
	Reason       string `json:"reason"`
	ChangedBy    string `json:"changed_by"`
}

// StockLowData is the payload for a stock.low event.
type StockLowData struct {
	ProductID string `json:"product_id"`
	NewStock  int    `json:"new_stock"`
	Threshold int    `json:"threshold"`
}

// Producer publishes storefront domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the storefront service.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishReviewCreated publishes a review.created event.
func (p *Producer) PublishReviewCreated(ctx context.Context, review *domain.Review) error {
	data := ReviewCreatedData{
		ReviewID:  review.ID,
		ProductID: review.ProductID,
		UserID:    review.UserID,
		Rating:    review.Rating,
	}

	event, err := pkgkafka.NewEvent(TopicReviewCreated, review.ID, AggregateTypeReview, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create review.created event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicReviewCreated, event); err != nil {
		return fmt.Errorf("publish review.created event: %w", err)
	}

	p.logger.DebugContext(ctx, "published review.created event",
		slog.String("review_id", review.ID),
		slog.String("product_id", review.ProductID),
	)

	return nil
}

// PublishReviewApproved publishes a review.approved event.
func (p *Producer) PublishReviewApproved(ctx context.Context, review *domain.Review) error {
	data := ReviewApprovedData{
		ReviewID:  review.ID,
		ProductID: review.ProductID,
		Rating:    review.Rating,
	}

	event, err := pkgkafka.NewEvent(TopicReviewApproved, review.ID, AggregateTypeReview, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create review.approved event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicReviewApproved, event); err != nil {
		return fmt.Errorf("publish review.approved event: %w", err)
	}

	p.logger.DebugContext(ctx, "published review.approved event",
		slog.String("review_id", review.ID),
		slog.String("product_id", review.ProductID),
	)

	return nil
}

// PublishStockUpdated publishes a stock.updated event.
func (p *Producer) PublishStockUpdated(ctx context.Context, change *domain.StockChange) error {
	data := StockUpdatedData{
		ProductID:    change.ProductID,
		OldStock:     change.OldStock,
		NewStock:     change.NewStock,
		ChangeAmount: change.ChangeAmount,
		Reason:       change.Reason,
		ChangedBy:    change.ChangedBy,
	}

	event, err := pkgkafka.NewEvent(TopicStockUpdated, change.ProductID, AggregateTypeProduct, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create stock.updated event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicStockUpdated, event); err != nil {
		return fmt.Errorf("publish stock.updated event: %w", err)
	}

	p.logger.DebugContext(ctx, "published stock.updated event",
		slog.String("product_id", change.ProductID),
		slog.Int("new_stock", change.NewStock),
	)

	return nil
}

// PublishStockLow publishes a stock.low event when an update leaves a product
// at or below the low stock threshold.
func (p *Producer) PublishStockLow(ctx context.Context, change *domain.StockChange, threshold int) error {
	data := StockLowData{
		ProductID: change.ProductID,
		NewStock:  change.NewStock,
		Threshold: threshold,
	}

	event, err := pkgkafka.NewEvent(TopicStockLow, change.ProductID, AggregateTypeProduct, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create stock.low event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicStockLow, event); err != nil {
		return fmt.Errorf("publish stock.low event: %w", err)
	}

	p.logger.DebugContext(ctx, "published stock.low event",
		slog.String("product_id", change.ProductID),
		slog.Int("new_stock", change.NewStock),
		slog.Int("threshold", threshold),
	)

	return nil
}
