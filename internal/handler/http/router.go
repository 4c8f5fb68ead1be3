package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/storekit/storefront/internal/service"
	"github.com/storekit/storefront/pkg/health"
	"github.com/storekit/storefront/pkg/middleware"
)

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(
	productService *service.ProductService,
	reviewService *service.ReviewService,
	stockService *service.StockService,
	healthHandler *health.Handler,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(CORS)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("storefront"))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	productHandler := NewProductHandler(productService, logger)
	reviewHandler := NewReviewHandler(reviewService, logger)
	stockHandler := NewStockHandler(stockService, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Route("/products", func(r chi.Router) {
			r.Post("/", productHandler.CreateProduct)
			r.Get("/", productHandler.ListProducts)
			r.Get("/low-stock", stockHandler.ListLowStock)

			r.Route("/{productId}", func(r chi.Router) {
				r.Get("/", productHandler.GetProduct)

				// Reviews
				r.Post("/reviews", reviewHandler.CreateReview)
				r.Get("/reviews", reviewHandler.ListReviews)
				r.With(middleware.CacheControl(60)).Get("/reviews/summary", reviewHandler.GetSummary)

				// Stock ledger
				r.Put("/stock", stockHandler.UpdateStock)
				r.Get("/stock/history", stockHandler.GetHistory)
			})
		})

		// Moderation
		r.Post("/reviews/{reviewId}/approve", reviewHandler.ApproveReview)
		r.Post("/reviews/{reviewId}/helpful", reviewHandler.MarkHelpful)
		r.Get("/admin/reviews/pending", reviewHandler.ListPending)
	})

	return r
}
