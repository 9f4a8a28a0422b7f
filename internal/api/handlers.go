package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/ignite/commerce-insights/internal/insights"
	"github.com/ignite/commerce-insights/internal/pkg/distlock"
	"github.com/ignite/commerce-insights/internal/pkg/logger"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	service   *insights.Service
	cache     *insights.PayloadCache
	startTime time.Time

	// newRefreshLock, when set, produces a fresh distributed lock per
	// refresh request so only one replica reloads the dataset at a time.
	newRefreshLock func() distlock.Lock
}

// NewHandlers creates a new Handlers instance. cache may be nil, and
// newRefreshLock may be nil to refresh without cross-replica locking.
func NewHandlers(service *insights.Service, cache *insights.PayloadCache, newRefreshLock func() distlock.Lock) *Handlers {
	return &Handlers{
		service:        service,
		cache:          cache,
		startTime:      time.Now(),
		newRefreshLock: newRefreshLock,
	}
}

// Response helpers

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps insights errors to HTTP statuses.
func respondServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, insights.ErrNotLoaded) {
		respondError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	respondError(w, http.StatusInternalServerError, err.Error())
}

// parsePeriod extracts year and optional month query parameters. year is
// required; month defaults to 0, the whole year.
func parsePeriod(r *http.Request) (year, month int, err error) {
	yearStr := r.URL.Query().Get("year")
	if yearStr == "" {
		return 0, 0, errors.New("year query parameter is required")
	}
	year, err = strconv.Atoi(yearStr)
	if err != nil {
		return 0, 0, errors.New("year must be an integer")
	}
	if monthStr := r.URL.Query().Get("month"); monthStr != "" {
		month, err = strconv.Atoi(monthStr)
		if err != nil || month < 1 || month > 12 {
			return 0, 0, errors.New("month must be an integer between 1 and 12")
		}
	}
	return year, month, nil
}

// GetYears returns the purchase years available in the loaded dataset.
//
//	GET /api/years
func (h *Handlers) GetYears(w http.ResponseWriter, r *http.Request) {
	years, err := h.service.Years()
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"years": years})
}

// RefreshSnapshot reloads the dataset snapshot from the source and drops
// cached payloads.
//
//	POST /api/refresh
func (h *Handlers) RefreshSnapshot(w http.ResponseWriter, r *http.Request) {
	if h.newRefreshLock != nil {
		lock := h.newRefreshLock()
		acquired, err := lock.Acquire(r.Context())
		if err != nil {
			logger.Warn("refresh lock backend unavailable, proceeding unlocked", "error", err)
		} else if !acquired {
			respondError(w, http.StatusConflict, "refresh already in progress")
			return
		} else {
			defer lock.Release(context.Background())
		}
	}

	if err := h.service.Refresh(r.Context()); err != nil {
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	h.cache.Invalidate(r.Context(), dashboardCachePrefix)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "refreshed",
		"loaded_at": h.service.LoadedAt(),
	})
}

// GetSummary returns the headline KPIs for a period.
//
//	GET /api/metrics/summary?year=&month=
func (h *Handlers) GetSummary(w http.ResponseWriter, r *http.Request) {
	year, month, err := parsePeriod(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	summary, err := h.service.Summary(year, month)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	// AvgOrderValue is NaN for an empty period; marshal it as null.
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"period":          summary.Period,
		"total_revenue":   summary.TotalRevenue,
		"order_count":     summary.OrderCount,
		"avg_order_value": nullableFloat(summary.AvgOrderValue),
	})
}

// GetMonthlyRevenue returns revenue per month for one year.
//
//	GET /api/metrics/monthly-revenue?year=
func (h *Handlers) GetMonthlyRevenue(w http.ResponseWriter, r *http.Request) {
	year, _, err := parsePeriod(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	monthly, err := h.service.MonthlyRevenue(year)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"year":    year,
		"monthly": monthly,
	})
}

// GetCategories returns the category revenue ranking for a period.
//
//	GET /api/metrics/categories?year=&month=&limit=
func (h *Handlers) GetCategories(w http.ResponseWriter, r *http.Request) {
	year, month, err := parsePeriod(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if limit, err = strconv.Atoi(limitStr); err != nil || limit < 0 {
			respondError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
	}
	ranking, err := h.service.Categories(year, month, limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"categories": ranking})
}

// GetStates returns the state revenue ranking for a period.
//
//	GET /api/metrics/states?year=&month=
func (h *Handlers) GetStates(w http.ResponseWriter, r *http.Request) {
	year, month, err := parsePeriod(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	ranking, err := h.service.States(year, month)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"states": ranking})
}

// GetReviews returns the review score distribution and mean for a period.
//
//	GET /api/metrics/reviews?year=&month=
func (h *Handlers) GetReviews(w http.ResponseWriter, r *http.Request) {
	year, month, err := parsePeriod(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	stats, err := h.service.Reviews(year, month)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// GetOrderStatus returns the order status breakdown for one purchase year.
//
//	GET /api/metrics/order-status?year=
func (h *Handlers) GetOrderStatus(w http.ResponseWriter, r *http.Request) {
	year, _, err := parsePeriod(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	breakdown, err := h.service.StatusDistribution(year)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"statuses": breakdown})
}

func nullableFloat(v float64) *float64 {
	if v != v { // NaN
		return nil
	}
	return &v
}
