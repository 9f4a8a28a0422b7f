// Package metrics computes descriptive business metrics over assembled sales
// records and the reference tables. Every function is a pure mapping from
// inputs to freshly allocated outputs; none holds state or performs I/O.
//
// Degenerate arithmetic (growth against a zero base, the mean of an empty
// set) is signaled with math.NaN rather than an error; callers format or
// drop it. Empty inputs yield zero sums and empty slices, never a failure.
package metrics

// CategoryRevenue is one product category's total revenue.
type CategoryRevenue struct {
	Category string  `json:"category"`
	Revenue  float64 `json:"revenue"`
}

// StateRevenue is one US state's total revenue.
type StateRevenue struct {
	State   string  `json:"state"`
	Revenue float64 `json:"revenue"`
}

// ScoreShare is the proportion of reviews carrying one score value.
type ScoreShare struct {
	Score int     `json:"score"`
	Share float64 `json:"share"`
}

// StatusShare is the proportion of orders in one fulfillment status.
type StatusShare struct {
	Status string  `json:"status"`
	Share  float64 `json:"share"`
}

// DeliveryScore is the average review score for one delivery speed bucket.
type DeliveryScore struct {
	Category string  `json:"category"`
	AvgScore float64 `json:"avg_score"`
}

// PeriodSummary bundles the headline KPIs for one analysis period.
// AvgOrderValue is NaN when the period has no orders.
type PeriodSummary struct {
	Period        string  `json:"period"`
	TotalRevenue  float64 `json:"total_revenue"`
	OrderCount    int     `json:"order_count"`
	AvgOrderValue float64 `json:"avg_order_value"`
}
