package metrics

import (
	"fmt"
	"math"
	"sort"

	"github.com/ignite/commerce-insights/internal/sales"
)

// TotalRevenue sums the item price over all records. Empty input yields 0.
func TotalRevenue(records []sales.Record) float64 {
	var total float64
	for _, r := range records {
		total += r.Price
	}
	return total
}

// RevenueGrowth is the relative change from previous to current. When the
// previous period is zero there is no meaningful ratio and the result is
// NaN, never a divide-by-zero panic and never a silent 0.
func RevenueGrowth(current, previous float64) float64 {
	if previous == 0 {
		return math.NaN()
	}
	return (current - previous) / previous
}

// MonthlyRevenue sums revenue per calendar month. Only months present in
// the input appear in the result.
func MonthlyRevenue(records []sales.Record) map[int]float64 {
	out := make(map[int]float64)
	for _, r := range records {
		out[r.Month] += r.Price
	}
	return out
}

// MonthlyGrowth is the month-over-month revenue change across the months
// present in the input, in ascending month order. The first present month
// has no prior month and is always NaN.
func MonthlyGrowth(records []sales.Record) map[int]float64 {
	monthly := MonthlyRevenue(records)
	months := sortedMonths(monthly)

	out := make(map[int]float64, len(months))
	for i, m := range months {
		if i == 0 {
			out[m] = math.NaN()
			continue
		}
		out[m] = RevenueGrowth(monthly[m], monthly[months[i-1]])
	}
	return out
}

// AverageOrderValue groups item prices by order, then averages the
// per-order totals. This is per-order, not per-item: total revenue divided
// by item count would be a different (smaller) number for multi-item
// orders. NaN when there are no orders.
func AverageOrderValue(records []sales.Record) float64 {
	perOrder := make(map[string]float64)
	for _, r := range records {
		perOrder[r.OrderID] += r.Price
	}
	if len(perOrder) == 0 {
		return math.NaN()
	}
	var total float64
	for _, v := range perOrder {
		total += v
	}
	return total / float64(len(perOrder))
}

// OrderCount counts distinct order identifiers.
func OrderCount(records []sales.Record) int {
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		seen[r.OrderID] = struct{}{}
	}
	return len(seen)
}

// SummarizePeriod bundles the headline KPIs for a year or a single month.
// Month 0 labels the period "YYYY"; 1-12 labels it "YYYY-MM". The records
// are expected to be pre-filtered to that period.
func SummarizePeriod(records []sales.Record, year, month int) PeriodSummary {
	return PeriodSummary{
		Period:        PeriodLabel(year, month),
		TotalRevenue:  TotalRevenue(records),
		OrderCount:    OrderCount(records),
		AvgOrderValue: AverageOrderValue(records),
	}
}

// PeriodLabel formats an analysis period as "YYYY" or "YYYY-MM".
func PeriodLabel(year, month int) string {
	if month == 0 {
		return fmt.Sprintf("%04d", year)
	}
	return fmt.Sprintf("%04d-%02d", year, month)
}

func sortedMonths(monthly map[int]float64) []int {
	months := make([]int, 0, len(monthly))
	for m := range monthly {
		months = append(months, m)
	}
	sort.Ints(months)
	return months
}
