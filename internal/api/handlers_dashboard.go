package api

import (
	"encoding/json"
	"net/http"

	"github.com/ignite/commerce-insights/internal/metrics"
)

const dashboardCachePrefix = "dashboard:"

// GetDashboard returns the complete dashboard payload for a period:
// headline KPIs with prior-year comparison, the monthly revenue trend for
// both periods, category and state rankings, review and delivery metrics,
// and the order status breakdown. Rendered payloads are cached per period.
//
//	GET /api/dashboard?year=&month=
func (h *Handlers) GetDashboard(w http.ResponseWriter, r *http.Request) {
	year, month, err := parsePeriod(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	cacheKey := dashboardCachePrefix + metrics.PeriodLabel(year, month)
	if data, ok := h.cache.Get(r.Context(), cacheKey); ok {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Cache", "hit")
		w.WriteHeader(http.StatusOK)
		w.Write(data)
		return
	}

	dashboard, err := h.service.Dashboard(year, month)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	data, err := json.Marshal(dashboard)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.cache.Set(r.Context(), cacheKey, data)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", "miss")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
