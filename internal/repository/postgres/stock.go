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

// StockRepository implements repository.StockRepository using PostgreSQL.
type StockRepository struct {
	pool database.DBTX
}

// NewStockRepository creates a new PostgreSQL-backed stock repository.
func NewStockRepository(pool database.DBTX) *StockRepository {
	return &StockRepository{pool: pool}
}

// SetQuantity sets a product's absolute stock quantity and appends a ledger
// entry in one transaction. The product row is locked with FOR UPDATE so
// concurrent updates to the same product serialize and every ledger entry
// records a consistent old/new pair.
func (r *StockRepository) SetQuantity(ctx context.Context, productID string, newStock int, reason, changedBy string) (_ *domain.StockChange, err error) {
	ctx, end := database.TraceQuery(ctx, "StockRepository.SetQuantity", "UPDATE products / INSERT stock_history")
	defer func() { end(err) }()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin stock update: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var oldStock int
	err = tx.QueryRow(ctx,
		`SELECT stock_quantity FROM products WHERE id = $1 FOR UPDATE`,
		productID,
	).Scan(&oldStock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("product", productID)
		}
		return nil, fmt.Errorf("lock product stock: %w", err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE products SET stock_quantity = $1, updated_at = NOW() WHERE id = $2`,
		newStock, productID,
	)
	if err != nil {
		return nil, fmt.Errorf("update product stock: %w", err)
	}

	change := domain.NewStockChange(productID, oldStock, newStock, reason, changedBy)
	err = tx.QueryRow(ctx,
		`INSERT INTO stock_history (product_id, old_stock, new_stock, change_amount, reason, changed_by)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		change.ProductID, change.OldStock, change.NewStock, change.ChangeAmount, change.Reason, change.ChangedBy,
	).Scan(&change.ID, &change.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert stock history: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit stock update: %w", err)
	}

	return &change, nil
}

// History returns ledger entries for a product, newest-first, along with the
// total count.
func (r *StockRepository) History(ctx context.Context, productID string, page, perPage int) ([]domain.StockChange, int, error) {
	limit := perPage
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if page > 1 {
		offset = (page - 1) * limit
	}

	query := `
		SELECT id, product_id, old_stock, new_stock, change_amount, reason, changed_by, created_at,
		       count(*) OVER() AS total_count
		FROM stock_history
		WHERE product_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, productID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list stock history: %w", err)
	}
	defer rows.Close()

	var (
		changes    []domain.StockChange
		totalCount int
	)

	for rows.Next() {
		var c domain.StockChange
		if err := rows.Scan(
			&c.ID,
			&c.ProductID,
			&c.OldStock,
			&c.NewStock,
			&c.ChangeAmount,
			&c.Reason,
			&c.ChangedBy,
			&c.CreatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan stock history row: %w", err)
		}
		changes = append(changes, c)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate stock history rows: %w", err)
	}

	if changes == nil {
		changes = []domain.StockChange{}
	}

	return changes, totalCount, nil
}
