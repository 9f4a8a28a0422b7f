package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes configures all API routes.
func SetupRoutes(h *Handlers) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	// CORS - the dashboard frontend runs on its own origin in development
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	// Health check
	r.Get("/health", h.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		// Dashboard - all data in one call
		r.Get("/dashboard", h.GetDashboard)
		r.Get("/years", h.GetYears)
		r.Post("/refresh", h.RefreshSnapshot)

		// Individual metric views
		r.Route("/metrics", func(r chi.Router) {
			r.Get("/summary", h.GetSummary)
			r.Get("/monthly-revenue", h.GetMonthlyRevenue)
			r.Get("/categories", h.GetCategories)
			r.Get("/states", h.GetStates)
			r.Get("/reviews", h.GetReviews)
			r.Get("/order-status", h.GetOrderStatus)
		})
	})

	return r
}
