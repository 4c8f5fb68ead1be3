package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/storekit/storefront/internal/domain"
	"github.com/storekit/storefront/internal/repository"
	apperrors "github.com/storekit/storefront/pkg/errors"
)

// CreateProductInput holds the parameters for creating a product.
type CreateProductInput struct {
	Name          string
	SKU           string
	PriceCents    int64
	StockQuantity int
}

// ProductService implements the business logic for catalog products.
type ProductService struct {
	repo   repository.ProductRepository
	logger *slog.Logger
}

// NewProductService creates a new product service.
func NewProductService(repo repository.ProductRepository, logger *slog.Logger) *ProductService {
	return &ProductService{
		repo:   repo,
		logger: logger,
	}
}

// CreateProduct creates a new catalog product. The SKU must be unique.
func (s *ProductService) CreateProduct(ctx context.Context, input *CreateProductInput) (*domain.Product, error) {
	if input.Name == "" {
		return nil, apperrors.InvalidInput("name is required")
	}
	if input.SKU == "" {
		return nil, apperrors.InvalidInput("sku is required")
	}
	if input.PriceCents < 0 {
		return nil, apperrors.InvalidInput("price_cents must be non-negative")
	}
	if input.StockQuantity < 0 {
		return nil, apperrors.InvalidInput("stock_quantity must be non-negative")
	}

	now := time.Now().UTC()
	product := &domain.Product{
		ID:            uuid.New().String(),
		Name:          input.Name,
		SKU:           input.SKU,
		PriceCents:    input.PriceCents,
		StockQuantity: input.StockQuantity,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.logger.InfoContext(ctx, "product created",
		slog.String("product_id", product.ID),
		slog.String("sku", product.SKU),
	)

	return product, nil
}

// GetProduct retrieves a product by ID.
func (s *ProductService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return product, nil
}

// ListProducts returns paginated products, newest-first.
func (s *ProductService) ListProducts(ctx context.Context, page, perPage int) ([]domain.Product, int, error) {
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}

	products, total, err := s.repo.List(ctx, page, perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}

	return products, total, nil
}
