package repository

import (
	"context"

	"github.com/storekit/storefront/internal/domain"
)

// ReviewRepository defines the interface for review persistence operations.
type ReviewRepository interface {
	// Create inserts a new review into the store.
	Create(ctx context.Context, review *domain.Review) error

	// GetByID retrieves a review by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Review, error)

	// ListApprovedByProduct returns approved reviews for a product,
	// newest-first, along with the total approved count.
	ListApprovedByProduct(ctx context.Context, productID string, page, perPage int) ([]domain.Review, int, error)

	// ListPending returns unapproved reviews oldest-first for moderation.
	ListPending(ctx context.Context, page, perPage int) ([]domain.Review, int, error)

	// Approve marks a review as approved and refreshes its update timestamp,
	// regardless of prior approval state. Returns ErrNotFound when the id
	// does not resolve.
	Approve(ctx context.Context, id string) error

	// IncrementHelpful atomically increments the helpful count by one and
	// returns the new value. Returns ErrNotFound when the id does not resolve.
	IncrementHelpful(ctx context.Context, id string) (int, error)

	// CountApprovedByRating returns the number of approved reviews per star
	// value for a product. Star values with no reviews are absent from the map.
	CountApprovedByRating(ctx context.Context, productID string) (map[int]int, error)
}

// ProductRepository defines the interface for product persistence operations.
type ProductRepository interface {
	// Create inserts a new product into the store.
	Create(ctx context.Context, product *domain.Product) error

	// GetByID retrieves a product by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Product, error)

	// List returns products newest-first along with the total count.
	List(ctx context.Context, page, perPage int) ([]domain.Product, int, error)

	// ListLowStock returns products with stock_quantity <= threshold,
	// ascending by stock quantity, along with the total count.
	ListLowStock(ctx context.Context, threshold, page, perPage int) ([]domain.Product, int, error)
}

// StockRepository defines the interface for the stock ledger.
type StockRepository interface {
	// SetQuantity sets a product's absolute stock quantity and appends a
	// ledger entry in the same transaction. The product row is locked for
	// the duration so concurrent updates to the same product are
	// serialized. Returns ErrNotFound when the product does not exist.
	SetQuantity(ctx context.Context, productID string, newStock int, reason, changedBy string) (*domain.StockChange, error)

	// History returns ledger entries for a product, newest-first, along
	// with the total count.
	History(ctx context.Context, productID string, page, perPage int) ([]domain.StockChange, int, error)
}
