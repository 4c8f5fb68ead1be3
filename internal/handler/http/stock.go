package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/storekit/storefront/internal/domain"
	"github.com/storekit/storefront/internal/service"
	"github.com/storekit/storefront/pkg/httputil"
	"github.com/storekit/storefront/pkg/pagination"
	"github.com/storekit/storefront/pkg/validator"
)

// StockHandler handles HTTP requests for stock ledger endpoints.
type StockHandler struct {
	service *service.StockService
	logger  *slog.Logger
}

// NewStockHandler creates a new stock HTTP handler.
func NewStockHandler(svc *service.StockService, logger *slog.Logger) *StockHandler {
	return &StockHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// UpdateStockRequest is the JSON request body for setting a product's stock.
type UpdateStockRequest struct {
	NewStock  int    `json:"new_stock" validate:"gte=0"`
	Reason    string `json:"reason" validate:"required,max=100"`
	ChangedBy string `json:"changed_by" validate:"required,max=100"`
}

// --- Handlers ---

// UpdateStock handles PUT /api/v1/products/{productId}/stock
func (h *StockHandler) UpdateStock(w http.ResponseWriter, r *http.Request) {
	productID, ok := httputil.ParseUUID(w, chi.URLParam(r, "productId"))
	if !ok {
		return
	}

	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req UpdateStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	change, err := h.service.UpdateStock(r.Context(), &service.UpdateStockInput{
		ProductID: productID.String(),
		NewStock:  req.NewStock,
		Reason:    req.Reason,
		ChangedBy: req.ChangedBy,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: change})
}

// GetHistory handles GET /api/v1/products/{productId}/stock/history
func (h *StockHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	productID, ok := httputil.ParseUUID(w, chi.URLParam(r, "productId"))
	if !ok {
		return
	}

	params := pagination.FromRequest(r)

	changes, total, err := h.service.GetHistory(r.Context(), productID.String(), params.Page, params.PerPage)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: pagination.NewResult[domain.StockChange](changes, total, params),
	})
}

// ListLowStock handles GET /api/v1/products/low-stock
func (h *StockHandler) ListLowStock(w http.ResponseWriter, r *http.Request) {
	threshold := 0
	if v := r.URL.Query().Get("threshold"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "threshold must be a valid positive integer"},
			})
			return
		}
		threshold = n
	}

	params := pagination.FromRequest(r)

	products, total, err := h.service.GetLowStockProducts(r.Context(), threshold, params.Page, params.PerPage)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: pagination.NewResult[domain.Product](products, total, params),
	})
}
