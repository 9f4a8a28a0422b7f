package insights

import (
	"math"
	"sort"
	"time"

	"github.com/ignite/commerce-insights/internal/metrics"
	"github.com/ignite/commerce-insights/internal/sales"
)

var monthLabels = [12]string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

// Dashboard is the full payload the dashboard frontend renders for one
// period, current versus the same period one year earlier. Growth and
// average fields are pointers: nil stands for "not computable" (zero prior
// period, no delivered orders) and marshals as JSON null, since NaN cannot
// be marshaled.
type Dashboard struct {
	GeneratedAt time.Time `json:"generated_at"`
	Period      string    `json:"period"`

	KPIs            KPISet                    `json:"kpis"`
	RevenueTrend    []TrendPoint              `json:"revenue_trend"`
	TopCategories   []metrics.CategoryRevenue `json:"top_categories"`
	StateRevenue    []metrics.StateRevenue    `json:"state_revenue"`
	DeliveryScores  []metrics.DeliveryScore   `json:"delivery_scores"`
	ReviewScores    []metrics.ScoreShare      `json:"review_scores"`
	StatusBreakdown []metrics.StatusShare     `json:"status_breakdown"`

	AvgReviewScore     *float64 `json:"avg_review_score"`
	AvgDeliveryDays    *float64 `json:"avg_delivery_days"`
	DeliveryTimeGrowth *float64 `json:"delivery_time_growth"`
}

// KPISet carries the headline numbers with their prior-period growth.
type KPISet struct {
	TotalRevenue     float64  `json:"total_revenue"`
	RevenueGrowth    *float64 `json:"revenue_growth"`
	AvgOrderValue    *float64 `json:"avg_order_value"`
	AOVGrowth        *float64 `json:"aov_growth"`
	OrderCount       int      `json:"order_count"`
	OrderCountGrowth *float64 `json:"order_count_growth"`
	AvgMonthlyGrowth *float64 `json:"avg_monthly_growth"`
}

// TrendPoint is one month on the revenue trend chart. Current or Prior is
// nil when that period has no revenue recorded for the month.
type TrendPoint struct {
	Month   int      `json:"month"`
	Label   string   `json:"label"`
	Current *float64 `json:"current"`
	Prior   *float64 `json:"prior"`
}

// Dashboard assembles the complete dashboard payload for a period. Month 0
// means the whole year; the comparison period is the same month (or whole
// year) of year-1.
func (s *Service) Dashboard(year, month int) (*Dashboard, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}

	current := sales.FilterByPeriod(snap.DeliveredSales, year, month)
	prior := sales.FilterByPeriod(snap.DeliveredSales, year-1, month)

	revCurrent := metrics.TotalRevenue(current)
	revPrior := metrics.TotalRevenue(prior)
	aovCurrent := metrics.AverageOrderValue(current)
	aovPrior := metrics.AverageOrderValue(prior)
	ordersCurrent := metrics.OrderCount(current)
	ordersPrior := metrics.OrderCount(prior)
	delCurrent := metrics.AverageDeliveryTime(current)
	delPrior := metrics.AverageDeliveryTime(prior)

	d := &Dashboard{
		GeneratedAt: time.Now().UTC(),
		Period:      metrics.PeriodLabel(year, month),
		KPIs: KPISet{
			TotalRevenue:     revCurrent,
			RevenueGrowth:    ratio(metrics.RevenueGrowth(revCurrent, revPrior)),
			AvgOrderValue:    ratio(aovCurrent),
			AOVGrowth:        ratio(metrics.RevenueGrowth(aovCurrent, aovPrior)),
			OrderCount:       ordersCurrent,
			OrderCountGrowth: ratio(metrics.RevenueGrowth(float64(ordersCurrent), float64(ordersPrior))),
			AvgMonthlyGrowth: ratio(meanGrowth(metrics.MonthlyGrowth(current))),
		},
		RevenueTrend:    trendPoints(metrics.MonthlyRevenue(current), metrics.MonthlyRevenue(prior)),
		TopCategories:   metrics.CategoryRevenueRanking(current, snap.Tables.Products),
		StateRevenue:    metrics.StateRevenueRanking(current, snap.Tables.Orders, snap.Tables.Customers),
		DeliveryScores:  metrics.DeliveryReviewCorrelation(current, snap.Tables.Reviews),
		ReviewScores:    metrics.ReviewScoreDistribution(current, snap.Tables.Reviews),
		StatusBreakdown: metrics.OrderStatusDistribution(snap.Tables.Orders, year),
		AvgReviewScore:  ratio(metrics.AverageReviewScore(current, snap.Tables.Reviews)),
		AvgDeliveryDays: ratio(delCurrent),
		// Faster is better here; whether a drop renders green is the
		// frontend's call.
		DeliveryTimeGrowth: ratio(metrics.RevenueGrowth(delCurrent, delPrior)),
	}
	if s.topCategories > 0 && len(d.TopCategories) > s.topCategories {
		d.TopCategories = d.TopCategories[:s.topCategories]
	}
	return d, nil
}

// trendPoints merges the current and prior monthly revenue series over the
// union of their months, ascending.
func trendPoints(current, prior map[int]float64) []TrendPoint {
	months := make(map[int]struct{})
	for m := range current {
		months[m] = struct{}{}
	}
	for m := range prior {
		months[m] = struct{}{}
	}
	ordered := make([]int, 0, len(months))
	for m := range months {
		ordered = append(ordered, m)
	}
	sort.Ints(ordered)

	out := make([]TrendPoint, 0, len(ordered))
	for _, m := range ordered {
		p := TrendPoint{Month: m, Label: monthLabels[m-1]}
		if v, ok := current[m]; ok {
			p.Current = &v
		}
		if v, ok := prior[m]; ok {
			p.Prior = &v
		}
		out = append(out, p)
	}
	return out
}

// meanGrowth averages the defined month-over-month growth rates, skipping
// the leading NaN. NaN when fewer than two months are present.
func meanGrowth(growth map[int]float64) float64 {
	var sum float64
	var n int
	for _, g := range growth {
		if math.IsNaN(g) {
			continue
		}
		sum += g
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

// ratio converts a possibly-NaN value to a nullable one for JSON.
func ratio(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}
