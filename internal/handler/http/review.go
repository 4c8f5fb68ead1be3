package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/storekit/storefront/internal/domain"
	"github.com/storekit/storefront/internal/service"
	"github.com/storekit/storefront/pkg/httputil"
	"github.com/storekit/storefront/pkg/pagination"
	"github.com/storekit/storefront/pkg/validator"
)

// ReviewHandler handles HTTP requests for review endpoints.
type ReviewHandler struct {
	service *service.ReviewService
	logger  *slog.Logger
}

// NewReviewHandler creates a new review HTTP handler.
func NewReviewHandler(svc *service.ReviewService, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// CreateReviewRequest is the JSON request body for creating a review.
type CreateReviewRequest struct {
	UserID string   `json:"user_id" validate:"required,uuid"`
	Rating int      `json:"rating" validate:"required,gte=1,lte=5"`
	Title  string   `json:"title" validate:"required,max=200"`
	Body   string   `json:"body" validate:"max=5000"`
	Images []string `json:"images" validate:"omitempty,max=5,dive,url"`
}

// --- Handlers ---

// CreateReview handles POST /api/v1/products/{productId}/reviews
func (h *ReviewHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	productID, ok := httputil.ParseUUID(w, chi.URLParam(r, "productId"))
	if !ok {
		return
	}

	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req CreateReviewRequest
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

	review, err := h.service.CreateReview(r.Context(), &service.CreateReviewInput{
		ProductID: productID.String(),
		UserID:    req.UserID,
		Rating:    req.Rating,
		Title:     req.Title,
		Body:      req.Body,
		Images:    req.Images,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: review})
}

// ListReviews handles GET /api/v1/products/{productId}/reviews
func (h *ReviewHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	productID, ok := httputil.ParseUUID(w, chi.URLParam(r, "productId"))
	if !ok {
		return
	}

	params := pagination.FromRequest(r)

	result, err := h.service.ListReviews(r.Context(), productID.String(), params.Page, params.PerPage)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: result})
}

// GetSummary handles GET /api/v1/products/{productId}/reviews/summary
func (h *ReviewHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	productID, ok := httputil.ParseUUID(w, chi.URLParam(r, "productId"))
	if !ok {
		return
	}

	summary, err := h.service.ComputeSummary(r.Context(), productID.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: summary})
}

// ApproveReview handles POST /api/v1/reviews/{reviewId}/approve
func (h *ReviewHandler) ApproveReview(w http.ResponseWriter, r *http.Request) {
	reviewID, ok := httputil.ParseUUID(w, chi.URLParam(r, "reviewId"))
	if !ok {
		return
	}

	review, err := h.service.ApproveReview(r.Context(), reviewID.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: review})
}

// MarkHelpful handles POST /api/v1/reviews/{reviewId}/helpful
func (h *ReviewHandler) MarkHelpful(w http.ResponseWriter, r *http.Request) {
	reviewID, ok := httputil.ParseUUID(w, chi.URLParam(r, "reviewId"))
	if !ok {
		return
	}

	count, err := h.service.MarkHelpful(r.Context(), reviewID.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]any{
		"review_id":     reviewID.String(),
		"helpful_count": count,
	}})
}

// ListPending handles GET /api/v1/admin/reviews/pending
func (h *ReviewHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)

	reviews, total, err := h.service.ListPendingReviews(r.Context(), params.Page, params.PerPage)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: pagination.NewResult[domain.Review](reviews, total, params),
	})
}
