package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/commerce-insights/internal/dataset"
	"github.com/ignite/commerce-insights/internal/insights"
	"github.com/ignite/commerce-insights/internal/pkg/distlock"
)

type fakeSource struct {
	tables *dataset.Tables
}

func (f *fakeSource) Load(ctx context.Context) (*dataset.Tables, error) {
	return f.tables, nil
}

func ts(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 10, 0, 0, 0, time.UTC)
}

func tsPtr(year, month, day int) *time.Time {
	t := ts(year, month, day)
	return &t
}

func apiTables() *dataset.Tables {
	return &dataset.Tables{
		Orders: []dataset.Order{
			{OrderID: "o1", CustomerID: "c1", Status: dataset.StatusDelivered,
				PurchasedAt: ts(2023, 3, 1), DeliveredCustomerAt: tsPtr(2023, 3, 4)},
			{OrderID: "o2", CustomerID: "c2", Status: dataset.StatusDelivered,
				PurchasedAt: ts(2023, 4, 2), DeliveredCustomerAt: tsPtr(2023, 4, 10)},
			{OrderID: "o3", CustomerID: "c3", Status: dataset.StatusCanceled,
				PurchasedAt: ts(2023, 4, 5)},
		},
		OrderItems: []dataset.OrderItem{
			{OrderID: "o1", ItemSeq: 1, ProductID: "p1", Price: 120},
			{OrderID: "o2", ItemSeq: 1, ProductID: "p2", Price: 60},
			{OrderID: "o3", ItemSeq: 1, ProductID: "p1", Price: 30},
		},
		Products: []dataset.Product{
			{ProductID: "p1", CategoryName: "books"},
			{ProductID: "p2", CategoryName: "games"},
		},
		Customers: []dataset.Customer{
			{CustomerID: "c1", State: "WA"},
			{CustomerID: "c2", State: "OR"},
			{CustomerID: "c3", State: "WA"},
		},
		Reviews: []dataset.Review{
			{ReviewID: "r1", OrderID: "o1", Score: 5},
			{ReviewID: "r2", OrderID: "o2", Score: 3},
		},
	}
}

// newTestRouter builds the full routed handler over a loaded service. The
// payload cache has no backing client, so caching is a no-op.
func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	svc := insights.New(&fakeSource{tables: apiTables()}, 10)
	require.NoError(t, svc.Refresh(context.Background()))
	return SetupRoutes(NewHandlers(svc, insights.NewPayloadCache(nil, 0), nil))
}

func doGet(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealthCheck(t *testing.T) {
	h := newTestRouter(t)
	rec := doGet(t, h, "/health")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "healthy", body["status"])
	assert.Contains(t, body, "snapshot_loaded_at")
}

func TestHealthCheck_BeforeLoad(t *testing.T) {
	svc := insights.New(&fakeSource{tables: apiTables()}, 10)
	h := SetupRoutes(NewHandlers(svc, insights.NewPayloadCache(nil, 0), nil))

	rec := doGet(t, h, "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "degraded", body["status"])
	assert.NotContains(t, body, "snapshot_loaded_at")
}

func TestGetYears(t *testing.T) {
	h := newTestRouter(t)
	rec := doGet(t, h, "/api/years")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, []interface{}{float64(2023)}, body["years"])
}

func TestGetSummary(t *testing.T) {
	h := newTestRouter(t)
	rec := doGet(t, h, "/api/metrics/summary?year=2023")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "2023", body["period"])
	assert.Equal(t, 180.0, body["total_revenue"])
	assert.Equal(t, float64(2), body["order_count"])
	assert.Equal(t, 90.0, body["avg_order_value"])
}

func TestGetSummary_EmptyPeriodNullAOV(t *testing.T) {
	h := newTestRouter(t)
	rec := doGet(t, h, "/api/metrics/summary?year=2019")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, 0.0, body["total_revenue"])
	assert.Nil(t, body["avg_order_value"])
}

func TestParsePeriodErrors(t *testing.T) {
	h := newTestRouter(t)

	tests := []struct {
		name string
		path string
	}{
		{"missing year", "/api/metrics/summary"},
		{"bad year", "/api/metrics/summary?year=twenty"},
		{"month too small", "/api/metrics/summary?year=2023&month=0"},
		{"month too large", "/api/metrics/summary?year=2023&month=13"},
		{"bad month", "/api/metrics/summary?year=2023&month=may"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doGet(t, h, tt.path)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, decodeBody(t, rec), "error")
		})
	}
}

func TestGetCategories(t *testing.T) {
	h := newTestRouter(t)
	rec := doGet(t, h, "/api/metrics/categories?year=2023")

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Categories []struct {
			Category string  `json:"category"`
			Revenue  float64 `json:"revenue"`
		} `json:"categories"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Categories, 2)
	assert.Equal(t, "books", body.Categories[0].Category)
	assert.Equal(t, 120.0, body.Categories[0].Revenue)
	assert.Equal(t, "games", body.Categories[1].Category)
}

func TestGetCategories_Limit(t *testing.T) {
	h := newTestRouter(t)
	rec := doGet(t, h, "/api/metrics/categories?year=2023&limit=1")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Len(t, body["categories"], 1)

	rec = doGet(t, h, "/api/metrics/categories?year=2023&limit=-1")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetStates(t *testing.T) {
	h := newTestRouter(t)
	rec := doGet(t, h, "/api/metrics/states?year=2023")

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		States []struct {
			State   string  `json:"state"`
			Revenue float64 `json:"revenue"`
		} `json:"states"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.States, 2)
	assert.Equal(t, "WA", body.States[0].State)
	assert.Equal(t, 120.0, body.States[0].Revenue)
}

func TestGetReviews(t *testing.T) {
	h := newTestRouter(t)
	rec := doGet(t, h, "/api/metrics/reviews?year=2023")

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Distribution []struct {
			Score int     `json:"score"`
			Share float64 `json:"share"`
		} `json:"distribution"`
		Average *float64 `json:"average"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotNil(t, body.Average)
	assert.InDelta(t, 4.0, *body.Average, 1e-9)
	require.Len(t, body.Distribution, 2)
	assert.Equal(t, 3, body.Distribution[0].Score)
}

func TestGetOrderStatus(t *testing.T) {
	h := newTestRouter(t)
	rec := doGet(t, h, "/api/metrics/order-status?year=2023")

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Statuses []struct {
			Status string  `json:"status"`
			Share  float64 `json:"share"`
		} `json:"statuses"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Statuses, 2)
	assert.Equal(t, dataset.StatusDelivered, body.Statuses[0].Status)
	assert.InDelta(t, 2.0/3, body.Statuses[0].Share, 1e-9)
}

func TestGetMonthlyRevenue(t *testing.T) {
	h := newTestRouter(t)
	rec := doGet(t, h, "/api/metrics/monthly-revenue?year=2023")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	monthly, ok := body["monthly"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, 120.0, monthly["3"])
	assert.Equal(t, 60.0, monthly["4"])
}

func TestGetDashboard(t *testing.T) {
	h := newTestRouter(t)
	rec := doGet(t, h, "/api/dashboard?year=2023&month=3")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "miss", rec.Header().Get("X-Cache"))
	body := decodeBody(t, rec)
	assert.Equal(t, "2023-03", body["period"])
	kpis, ok := body["kpis"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, 120.0, kpis["total_revenue"])
	assert.Nil(t, kpis["revenue_growth"], "no prior-year data")
}

func TestGetDashboard_NotLoaded(t *testing.T) {
	svc := insights.New(&fakeSource{tables: apiTables()}, 10)
	h := SetupRoutes(NewHandlers(svc, insights.NewPayloadCache(nil, 0), nil))

	rec := doGet(t, h, "/api/dashboard?year=2023")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGetDashboard_CacheRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	svc := insights.New(&fakeSource{tables: apiTables()}, 10)
	require.NoError(t, svc.Refresh(context.Background()))
	h := SetupRoutes(NewHandlers(svc, insights.NewPayloadCache(client, time.Minute), nil))

	first := doGet(t, h, "/api/dashboard?year=2023")
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "miss", first.Header().Get("X-Cache"))

	second := doGet(t, h, "/api/dashboard?year=2023")
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "hit", second.Header().Get("X-Cache"))
	assert.Equal(t, first.Body.String(), second.Body.String())

	// Refresh drops the cached payload
	req := httptest.NewRequest(http.MethodPost, "/api/refresh", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	third := doGet(t, h, "/api/dashboard?year=2023")
	assert.Equal(t, "miss", third.Header().Get("X-Cache"))
}

type stubLock struct {
	acquired bool
	released bool
}

func (l *stubLock) Acquire(ctx context.Context) (bool, error) { return l.acquired, nil }
func (l *stubLock) Release(ctx context.Context) error         { l.released = true; return nil }

func TestRefreshSnapshot_LockHeldElsewhere(t *testing.T) {
	svc := insights.New(&fakeSource{tables: apiTables()}, 10)
	lock := &stubLock{acquired: false}
	h := SetupRoutes(NewHandlers(svc, insights.NewPayloadCache(nil, 0),
		func() distlock.Lock { return lock }))

	req := httptest.NewRequest(http.MethodPost, "/api/refresh", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.True(t, svc.LoadedAt().IsZero(), "contended refresh must not reload")
}

func TestRefreshSnapshot_LockAcquired(t *testing.T) {
	svc := insights.New(&fakeSource{tables: apiTables()}, 10)
	lock := &stubLock{acquired: true}
	h := SetupRoutes(NewHandlers(svc, insights.NewPayloadCache(nil, 0),
		func() distlock.Lock { return lock }))

	req := httptest.NewRequest(http.MethodPost, "/api/refresh", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, lock.released)
	assert.False(t, svc.LoadedAt().IsZero())
}

func TestRefreshSnapshot(t *testing.T) {
	svc := insights.New(&fakeSource{tables: apiTables()}, 10)
	h := SetupRoutes(NewHandlers(svc, insights.NewPayloadCache(nil, 0), nil))

	req := httptest.NewRequest(http.MethodPost, "/api/refresh", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "refreshed", body["status"])
	assert.False(t, svc.LoadedAt().IsZero())
}
