package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/storekit/storefront/internal/domain"
	"github.com/storekit/storefront/internal/service"
	apperrors "github.com/storekit/storefront/pkg/errors"
)

// ============================================================================
// Mock Repositories
// ============================================================================

type mockStockRepository struct {
	mock.Mock
}

func (m *mockStockRepository) SetQuantity(ctx context.Context, productID string, newStock int, reason, changedBy string) (*domain.StockChange, error) {
	args := m.Called(ctx, productID, newStock, reason, changedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StockChange), args.Error(1)
}

func (m *mockStockRepository) History(ctx context.Context, productID string, page, perPage int) ([]domain.StockChange, int, error) {
	args := m.Called(ctx, productID, page, perPage)
	return args.Get(0).([]domain.StockChange), args.Int(1), args.Error(2)
}

type mockProductRepository struct {
	mock.Mock
}

func (m *mockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *mockProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductRepository) List(ctx context.Context, page, perPage int) ([]domain.Product, int, error) {
	args := m.Called(ctx, page, perPage)
	return args.Get(0).([]domain.Product), args.Int(1), args.Error(2)
}

func (m *mockProductRepository) ListLowStock(ctx context.Context, threshold, page, perPage int) ([]domain.Product, int, error) {
	args := m.Called(ctx, threshold, page, perPage)
	return args.Get(0).([]domain.Product), args.Int(1), args.Error(2)
}

// ============================================================================
// Test Helpers
// ============================================================================

func testStockHandler(stockRepo *mockStockRepository, productRepo *mockProductRepository) *StockHandler {
	svc := service.NewStockService(stockRepo, productRepo, testEventProducer(), testLogger(), domain.DefaultLowStockThreshold)
	return NewStockHandler(svc, testLogger())
}

// setupStockRouter creates a chi router matching the production route layout
// for the stock ledger.
func setupStockRouter(handler *StockHandler) *chi.Mux {
	r := chi.NewRouter()
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Get("/low-stock", handler.ListLowStock)
		r.Put("/{productId}/stock", handler.UpdateStock)
		r.Get("/{productId}/stock/history", handler.GetHistory)
	})
	return r
}

func sampleStockChange() *domain.StockChange {
	return &domain.StockChange{
		ID:           1,
		ProductID:    validProductID,
		OldStock:     20,
		NewStock:     15,
		ChangeAmount: -5,
		Reason:       domain.StockReasonDamaged,
		ChangedBy:    "admin-1",
		CreatedAt:    time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC),
	}
}

// ============================================================================
// PUT /api/v1/products/{productId}/stock - UpdateStock
// ============================================================================

func TestUpdateStock_Success(t *testing.T) {
	stockRepo := new(mockStockRepository)
	productRepo := new(mockProductRepository)
	router := setupStockRouter(testStockHandler(stockRepo, productRepo))

	stockRepo.On("SetQuantity", mock.Anything, validProductID, 15, domain.StockReasonDamaged, "admin-1").
		Return(sampleStockChange(), nil)

	body, _ := json.Marshal(UpdateStockRequest{
		NewStock:  15,
		Reason:    domain.StockReasonDamaged,
		ChangedBy: "admin-1",
	})

	req := httptest.NewRequest(http.MethodPut, "/api/v1/products/"+validProductID+"/stock", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	require.Nil(t, resp.Error)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 20, data["old_stock"])
	assert.EqualValues(t, 15, data["new_stock"])
	assert.EqualValues(t, -5, data["change_amount"])
	stockRepo.AssertExpectations(t)
}

func TestUpdateStock_ZeroIsValid(t *testing.T) {
	stockRepo := new(mockStockRepository)
	productRepo := new(mockProductRepository)
	router := setupStockRouter(testStockHandler(stockRepo, productRepo))

	change := sampleStockChange()
	change.NewStock = 0
	change.ChangeAmount = -20
	stockRepo.On("SetQuantity", mock.Anything, validProductID, 0, domain.StockReasonSale, "admin-1").
		Return(change, nil)

	body, _ := json.Marshal(UpdateStockRequest{
		NewStock:  0,
		Reason:    domain.StockReasonSale,
		ChangedBy: "admin-1",
	})

	req := httptest.NewRequest(http.MethodPut, "/api/v1/products/"+validProductID+"/stock", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	stockRepo.AssertExpectations(t)
}

func TestUpdateStock_NegativeRejected(t *testing.T) {
	stockRepo := new(mockStockRepository)
	productRepo := new(mockProductRepository)
	router := setupStockRouter(testStockHandler(stockRepo, productRepo))

	body, _ := json.Marshal(UpdateStockRequest{
		NewStock:  -5,
		Reason:    domain.StockReasonCorrection,
		ChangedBy: "admin-1",
	})

	req := httptest.NewRequest(http.MethodPut, "/api/v1/products/"+validProductID+"/stock", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	stockRepo.AssertNotCalled(t, "SetQuantity")
}

func TestUpdateStock_MissingReason(t *testing.T) {
	stockRepo := new(mockStockRepository)
	productRepo := new(mockProductRepository)
	router := setupStockRouter(testStockHandler(stockRepo, productRepo))

	body, _ := json.Marshal(UpdateStockRequest{
		NewStock:  10,
		ChangedBy: "admin-1",
	})

	req := httptest.NewRequest(http.MethodPut, "/api/v1/products/"+validProductID+"/stock", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	stockRepo.AssertNotCalled(t, "SetQuantity")
}

func TestUpdateStock_ProductNotFound(t *testing.T) {
	stockRepo := new(mockStockRepository)
	productRepo := new(mockProductRepository)
	router := setupStockRouter(testStockHandler(stockRepo, productRepo))

	stockRepo.On("SetQuantity", mock.Anything, validProductID, 10, domain.StockReasonRestock, "admin-1").
		Return(nil, apperrors.NotFound("product", validProductID))

	body, _ := json.Marshal(UpdateStockRequest{
		NewStock:  10,
		Reason:    domain.StockReasonRestock,
		ChangedBy: "admin-1",
	})

	req := httptest.NewRequest(http.MethodPut, "/api/v1/products/"+validProductID+"/stock", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
}

// ============================================================================
// GET /api/v1/products/{productId}/stock/history - GetHistory
// ============================================================================

func TestGetHistory_Success(t *testing.T) {
	stockRepo := new(mockStockRepository)
	productRepo := new(mockProductRepository)
	router := setupStockRouter(testStockHandler(stockRepo, productRepo))

	stockRepo.On("History", mock.Anything, validProductID, 1, 20).
		Return([]domain.StockChange{*sampleStockChange()}, 1, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/"+validProductID+"/stock/history", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	require.Nil(t, resp.Error)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 1, data["total_count"])
	stockRepo.AssertExpectations(t)
}

func TestGetHistory_EmptyLedger(t *testing.T) {
	stockRepo := new(mockStockRepository)
	productRepo := new(mockProductRepository)
	router := setupStockRouter(testStockHandler(stockRepo, productRepo))

	stockRepo.On("History", mock.Anything, validProductID, 1, 20).
		Return([]domain.StockChange{}, 0, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/"+validProductID+"/stock/history", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	require.Nil(t, resp.Error)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 0, data["total_count"])
	assert.Empty(t, data["data"])
}

// ============================================================================
// GET /api/v1/products/low-stock - ListLowStock
// ============================================================================

func TestListLowStock_DefaultThreshold(t *testing.T) {
	stockRepo := new(mockStockRepository)
	productRepo := new(mockProductRepository)
	router := setupStockRouter(testStockHandler(stockRepo, productRepo))

	low := domain.Product{ID: validProductID, Name: "Widget", SKU: "WID-001", StockQuantity: 3}
	productRepo.On("ListLowStock", mock.Anything, domain.DefaultLowStockThreshold, 1, 20).
		Return([]domain.Product{low}, 1, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/low-stock", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	productRepo.AssertExpectations(t)
}

func TestListLowStock_ExplicitThreshold(t *testing.T) {
	stockRepo := new(mockStockRepository)
	productRepo := new(mockProductRepository)
	router := setupStockRouter(testStockHandler(stockRepo, productRepo))

	productRepo.On("ListLowStock", mock.Anything, 25, 1, 20).
		Return([]domain.Product{}, 0, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/low-stock?threshold=25", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	productRepo.AssertExpectations(t)
}

func TestListLowStock_InvalidThreshold(t *testing.T) {
	stockRepo := new(mockStockRepository)
	productRepo := new(mockProductRepository)
	router := setupStockRouter(testStockHandler(stockRepo, productRepo))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/low-stock?threshold=abc", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_PARAMETER", resp.Error.Code)
	productRepo.AssertNotCalled(t, "ListLowStock")
}
