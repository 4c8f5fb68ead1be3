package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/storekit/storefront/internal/domain"
	"github.com/storekit/storefront/internal/event"
	"github.com/storekit/storefront/internal/repository"
	apperrors "github.com/storekit/storefront/pkg/errors"
)

// UpdateStockInput holds the parameters for a stock update.
type UpdateStockInput struct {
	ProductID string
	NewStock  int
	Reason    string
	ChangedBy string
}

// StockService implements the business logic for the stock ledger.
type StockService struct {
	stockRepo   repository.StockRepository
	productRepo repository.ProductRepository
	producer    *event.Producer
	logger      *slog.Logger
	threshold   int
}

// NewStockService creates a new stock service. threshold is the default low
// stock level used when callers do not supply one.
func NewStockService(
	stockRepo repository.StockRepository,
	productRepo repository.ProductRepository,
	producer *event.Producer,
	logger *slog.Logger,
	threshold int,
) *StockService {
	if threshold <= 0 {
		threshold = domain.DefaultLowStockThreshold
	}
	return &StockService{
		stockRepo:   stockRepo,
		productRepo: productRepo,
		producer:    producer,
		logger:      logger,
		threshold:   threshold,
	}
}

// UpdateStock sets a product's stock to an absolute quantity and records the
// change in the ledger. The update and the ledger append happen in one
// transaction, so the history never disagrees with the product row.
func (s *StockService) UpdateStock(ctx context.Context, input *UpdateStockInput) (*domain.StockChange, error) {
	if input.ProductID == "" {
		return nil, apperrors.InvalidInput("product_id is required")
	}
	if input.Reason == "" {
		return nil, apperrors.InvalidInput("reason is required")
	}
	if input.ChangedBy == "" {
		return nil, apperrors.InvalidInput("changed_by is required")
	}

	change, err := s.stockRepo.SetQuantity(ctx, input.ProductID, input.NewStock, input.Reason, input.ChangedBy)
	if err != nil {
		return nil, fmt.Errorf("update stock: %w", err)
	}

	if err := s.producer.PublishStockUpdated(ctx, change); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish stock.updated event",
			slog.String("product_id", change.ProductID),
			slog.String("error", err.Error()),
		)
	}

	if change.NewStock <= s.threshold {
		if err := s.producer.PublishStockLow(ctx, change, s.threshold); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish stock.low event",
				slog.String("product_id", change.ProductID),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.InfoContext(ctx, "stock updated",
		slog.String("product_id", change.ProductID),
		slog.Int("old_stock", change.OldStock),
		slog.Int("new_stock", change.NewStock),
		slog.Int("change_amount", change.ChangeAmount),
		slog.String("reason", change.Reason),
		slog.String("changed_by", change.ChangedBy),
	)

	return change, nil
}

// GetHistory returns the stock ledger for a product, newest-first. A product
// with no recorded changes yields an empty page.
func (s *StockService) GetHistory(ctx context.Context, productID string, page, perPage int) ([]domain.StockChange, int, error) {
	if productID == "" {
		return nil, 0, apperrors.InvalidInput("product_id is required")
	}
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}

	changes, total, err := s.stockRepo.History(ctx, productID, page, perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("get stock history: %w", err)
	}

	return changes, total, nil
}

// GetLowStockProducts returns products at or below the threshold, most
// urgent first. A non-positive threshold falls back to the configured default.
func (s *StockService) GetLowStockProducts(ctx context.Context, threshold, page, perPage int) ([]domain.Product, int, error) {
	if threshold <= 0 {
		threshold = s.threshold
	}
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}

	products, total, err := s.productRepo.ListLowStock(ctx, threshold, page, perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("list low stock products: %w", err)
	}

	return products, total, nil
}
