package metrics

import (
	"sort"

	"github.com/ignite/commerce-insights/internal/dataset"
	"github.com/ignite/commerce-insights/internal/sales"
)

// CategoryRevenueRanking sums revenue per product category, highest first.
// Inner-join semantics: an item whose product ID is absent from the catalog
// is excluded entirely, and products without a category name do not form an
// "unknown" bucket. Ties break on category name for a stable order.
func CategoryRevenueRanking(records []sales.Record, products []dataset.Product) []CategoryRevenue {
	categoryByProduct := make(map[string]string, len(products))
	for _, p := range products {
		categoryByProduct[p.ProductID] = p.CategoryName
	}

	totals := make(map[string]float64)
	for _, r := range records {
		category, ok := categoryByProduct[r.ProductID]
		if !ok || category == "" {
			continue
		}
		totals[category] += r.Price
	}

	out := make([]CategoryRevenue, 0, len(totals))
	for category, revenue := range totals {
		out = append(out, CategoryRevenue{Category: category, Revenue: revenue})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Revenue != out[j].Revenue {
			return out[i].Revenue > out[j].Revenue
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// StateRevenueRanking sums revenue per customer state, highest first. Two
// sequential inner joins: records to orders for the customer ID, then
// orders to customers for the state. Unmatched rows are dropped.
func StateRevenueRanking(records []sales.Record, orders []dataset.Order, customers []dataset.Customer) []StateRevenue {
	customerByOrder := make(map[string]string, len(orders))
	for _, o := range orders {
		customerByOrder[o.OrderID] = o.CustomerID
	}
	stateByCustomer := make(map[string]string, len(customers))
	for _, c := range customers {
		stateByCustomer[c.CustomerID] = c.State
	}

	totals := make(map[string]float64)
	for _, r := range records {
		customerID, ok := customerByOrder[r.OrderID]
		if !ok {
			continue
		}
		state, ok := stateByCustomer[customerID]
		if !ok {
			continue
		}
		totals[state] += r.Price
	}

	out := make([]StateRevenue, 0, len(totals))
	for state, revenue := range totals {
		out = append(out, StateRevenue{State: state, Revenue: revenue})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Revenue != out[j].Revenue {
			return out[i].Revenue > out[j].Revenue
		}
		return out[i].State < out[j].State
	})
	return out
}
