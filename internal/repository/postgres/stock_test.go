package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storekit/storefront/internal/domain"
	apperrors "github.com/storekit/storefront/pkg/errors"
)

var historyCols = []string{
	"id", "product_id", "old_stock", "new_stock", "change_amount",
	"reason", "changed_by", "created_at",
}

var historyColsWithCount = append(historyCols[:len(historyCols):len(historyCols)], "total_count")

func sampleChange() domain.StockChange {
	return domain.StockChange{
		ID:           int64(1),
		ProductID:    "prod-1",
		OldStock:     20,
		NewStock:     15,
		ChangeAmount: -5,
		Reason:       domain.StockReasonDamaged,
		ChangedBy:    "admin-1",
		CreatedAt:    now,
	}
}

func historyRow(c domain.StockChange) []any {
	return []any{
		c.ID, c.ProductID, c.OldStock, c.NewStock, c.ChangeAmount,
		c.Reason, c.ChangedBy, c.CreatedAt,
	}
}

// ---------------------------------------------------------------------------
// SetQuantity
// ---------------------------------------------------------------------------

func TestStockRepository_SetQuantity_Success(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewStockRepository(mock)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT stock_quantity FROM products WHERE").
		WithArgs("prod-1").
		WillReturnRows(pgxmock.NewRows([]string{"stock_quantity"}).AddRow(20))
	mock.ExpectExec("UPDATE products SET stock_quantity").
		WithArgs(15, "prod-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectQuery("INSERT INTO stock_history").
		WithArgs("prod-1", 20, 15, -5, domain.StockReasonDamaged, "admin-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(7), now))
	mock.ExpectCommit()

	change, err := repo.SetQuantity(context.Background(), "prod-1", 15, domain.StockReasonDamaged, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, int64(7), change.ID)
	assert.Equal(t, 20, change.OldStock)
	assert.Equal(t, 15, change.NewStock)
	assert.Equal(t, -5, change.ChangeAmount)
	assert.Equal(t, now, change.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStockRepository_SetQuantity_Increase(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewStockRepository(mock)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT stock_quantity FROM products WHERE").
		WithArgs("prod-1").
		WillReturnRows(pgxmock.NewRows([]string{"stock_quantity"}).AddRow(15))
	mock.ExpectExec("UPDATE products SET stock_quantity").
		WithArgs(25, "prod-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectQuery("INSERT INTO stock_history").
		WithArgs("prod-1", 15, 25, 10, domain.StockReasonRestock, "admin-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(8), now))
	mock.ExpectCommit()

	change, err := repo.SetQuantity(context.Background(), "prod-1", 25, domain.StockReasonRestock, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, 10, change.ChangeAmount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStockRepository_SetQuantity_ProductNotFound(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewStockRepository(mock)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT stock_quantity FROM products WHERE").
		WithArgs("missing-id").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()

	change, err := repo.SetQuantity(context.Background(), "missing-id", 10, domain.StockReasonRestock, "admin-1")
	assert.Nil(t, change)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStockRepository_SetQuantity_BeginError(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewStockRepository(mock)

	mock.ExpectBegin().WillReturnError(errors.New("begin failed"))

	change, err := repo.SetQuantity(context.Background(), "prod-1", 10, domain.StockReasonRestock, "admin-1")
	assert.Nil(t, change)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "begin stock update")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStockRepository_SetQuantity_HistoryInsertError(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewStockRepository(mock)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT stock_quantity FROM products WHERE").
		WithArgs("prod-1").
		WillReturnRows(pgxmock.NewRows([]string{"stock_quantity"}).AddRow(20))
	mock.ExpectExec("UPDATE products SET stock_quantity").
		WithArgs(15, "prod-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectQuery("INSERT INTO stock_history").
		WithArgs("prod-1", 20, 15, -5, domain.StockReasonDamaged, "admin-1").
		WillReturnError(errors.New("insert failed"))
	mock.ExpectRollback()

	change, err := repo.SetQuantity(context.Background(), "prod-1", 15, domain.StockReasonDamaged, "admin-1")
	assert.Nil(t, change)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert stock history")
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ---------------------------------------------------------------------------
// History
// ---------------------------------------------------------------------------

func TestStockRepository_History_Success(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewStockRepository(mock)

	newer := sampleChange()
	newer.ID = 2
	newer.OldStock = 15
	newer.NewStock = 25
	newer.ChangeAmount = 10
	newer.Reason = domain.StockReasonRestock
	older := sampleChange()

	r1 := append(historyRow(newer), 2)
	r2 := append(historyRow(older), 2)

	mock.ExpectQuery("SELECT .+ FROM stock_history WHERE product_id").
		WithArgs("prod-1", 20, 0).
		WillReturnRows(
			pgxmock.NewRows(historyColsWithCount).
				AddRow(r1...).
				AddRow(r2...),
		)

	changes, total, err := repo.History(context.Background(), "prod-1", 1, 20)
	require.NoError(t, err)
	require.Len(t, changes, 2)
	assert.Equal(t, 2, total)
	assert.Equal(t, int64(2), changes[0].ID)
	assert.Equal(t, 10, changes[0].ChangeAmount)
	assert.Equal(t, int64(1), changes[1].ID)
	assert.Equal(t, -5, changes[1].ChangeAmount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStockRepository_History_Empty(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewStockRepository(mock)

	mock.ExpectQuery("SELECT .+ FROM stock_history WHERE product_id").
		WithArgs("prod-unchanged", 20, 0).
		WillReturnRows(pgxmock.NewRows(historyColsWithCount))

	changes, total, err := repo.History(context.Background(), "prod-unchanged", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, []domain.StockChange{}, changes) // empty slice, not nil
	assert.Equal(t, 0, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
