// Package insights owns the loaded dataset snapshot and computes the
// dashboard views over it. It replaces the implicit module-level data cache
// of a notebook workflow with an explicit component: the data source is
// injected, the snapshot is guarded by a RWMutex, and Refresh is the one
// reload operation. Readers share the snapshot, which is safe because every
// metrics function treats its input as read-only.
package insights

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/ignite/commerce-insights/internal/dataset"
	"github.com/ignite/commerce-insights/internal/metrics"
	"github.com/ignite/commerce-insights/internal/pkg/logger"
	"github.com/ignite/commerce-insights/internal/sales"
)

// ErrNotLoaded is returned by read accessors before the first successful
// Refresh.
var ErrNotLoaded = errors.New("insights: dataset not loaded")

// Snapshot is one immutable view of the loaded data: the raw tables plus
// the assembled delivered sales records, annotated with delivery speed and
// category.
type Snapshot struct {
	Tables         *dataset.Tables
	DeliveredSales []sales.Record
	LoadedAt       time.Time
}

// Service loads table snapshots from an injected source and serves metric
// views computed over the latest one.
type Service struct {
	source        dataset.Source
	topCategories int

	mu   sync.RWMutex
	snap *Snapshot
}

// New creates a Service reading from the given source. topCategories caps
// the dashboard category ranking; 0 means no cap.
func New(source dataset.Source, topCategories int) *Service {
	return &Service{source: source, topCategories: topCategories}
}

// Refresh loads a fresh snapshot from the source and swaps it in. The
// previous snapshot stays visible to in-flight readers until they drop it.
func (s *Service) Refresh(ctx context.Context) error {
	tables, err := s.source.Load(ctx)
	if err != nil {
		return err
	}

	assembled := sales.Assemble(tables.Orders, tables.OrderItems)
	delivered := sales.FilterDelivered(assembled)
	delivered = sales.AddDeliverySpeed(delivered)
	delivered = sales.AddDeliveryCategory(delivered)

	snap := &Snapshot{
		Tables:         tables,
		DeliveredSales: delivered,
		LoadedAt:       time.Now().UTC(),
	}

	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()

	logger.Info("snapshot refreshed",
		"orders", len(tables.Orders),
		"order_items", len(tables.OrderItems),
		"delivered_records", len(delivered))
	return nil
}

// Snapshot returns the current snapshot, or ErrNotLoaded before the first
// Refresh.
func (s *Service) Snapshot() (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snap == nil {
		return nil, ErrNotLoaded
	}
	return s.snap, nil
}

// LoadedAt reports when the current snapshot was loaded; zero before the
// first Refresh.
func (s *Service) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snap == nil {
		return time.Time{}
	}
	return s.snap.LoadedAt
}

// Years lists the purchase years present in the delivered sales, newest
// first. The dashboard frontend uses it to populate its year selector.
func (s *Service) Years() ([]int, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	seen := make(map[int]struct{})
	for _, r := range snap.DeliveredSales {
		seen[r.Year] = struct{}{}
	}
	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years, nil
}

// Summary computes the headline KPIs for a period. Month 0 means the whole
// year.
func (s *Service) Summary(year, month int) (metrics.PeriodSummary, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return metrics.PeriodSummary{}, err
	}
	period := sales.FilterByPeriod(snap.DeliveredSales, year, month)
	return metrics.SummarizePeriod(period, year, month), nil
}

// MonthlyRevenue computes revenue per month for one year.
func (s *Service) MonthlyRevenue(year int) (map[int]float64, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	return metrics.MonthlyRevenue(sales.FilterByPeriod(snap.DeliveredSales, year, 0)), nil
}

// Categories ranks product categories by revenue for a period. limit 0
// returns the full ranking.
func (s *Service) Categories(year, month, limit int) ([]metrics.CategoryRevenue, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	period := sales.FilterByPeriod(snap.DeliveredSales, year, month)
	ranking := metrics.CategoryRevenueRanking(period, snap.Tables.Products)
	if limit > 0 && len(ranking) > limit {
		ranking = ranking[:limit]
	}
	return ranking, nil
}

// States ranks customer states by revenue for a period.
func (s *Service) States(year, month int) ([]metrics.StateRevenue, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	period := sales.FilterByPeriod(snap.DeliveredSales, year, month)
	return metrics.StateRevenueRanking(period, snap.Tables.Orders, snap.Tables.Customers), nil
}

// Reviews bundles the review score distribution and its mean for a period.
func (s *Service) Reviews(year, month int) (ReviewStats, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return ReviewStats{}, err
	}
	period := sales.FilterByPeriod(snap.DeliveredSales, year, month)
	return ReviewStats{
		Distribution: metrics.ReviewScoreDistribution(period, snap.Tables.Reviews),
		Average:      ratio(metrics.AverageReviewScore(period, snap.Tables.Reviews)),
	}, nil
}

// StatusDistribution computes the order status breakdown for one purchase
// year, across all orders rather than only delivered ones.
func (s *Service) StatusDistribution(year int) ([]metrics.StatusShare, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	return metrics.OrderStatusDistribution(snap.Tables.Orders, year), nil
}

// ReviewStats is the review view for one period. Average is nil when no
// review matched the period.
type ReviewStats struct {
	Distribution []metrics.ScoreShare `json:"distribution"`
	Average      *float64             `json:"average"`
}
