package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/commerce-insights/internal/dataset"
	"github.com/ignite/commerce-insights/internal/sales"
)

func prec(orderID, productID string, price float64) sales.Record {
	return sales.Record{OrderID: orderID, ProductID: productID, Price: price, Year: 2023, Month: 1}
}

func TestCategoryRevenueRanking(t *testing.T) {
	products := []dataset.Product{
		{ProductID: "p1", CategoryName: "toys"},
		{ProductID: "p2", CategoryName: "electronics"},
		{ProductID: "p3", CategoryName: "toys"},
		{ProductID: "p4"}, // no category
	}
	records := []sales.Record{
		prec("o1", "p1", 50),
		prec("o2", "p2", 500),
		prec("o3", "p3", 30),
		prec("o4", "p4", 75),      // category unknown, not bucketed
		prec("o5", "missing", 25), // not in the catalog, excluded entirely
	}

	ranking := CategoryRevenueRanking(records, products)
	require.Len(t, ranking, 2)

	assert.Equal(t, CategoryRevenue{Category: "electronics", Revenue: 500}, ranking[0])
	assert.Equal(t, CategoryRevenue{Category: "toys", Revenue: 80}, ranking[1])

	// Strictly non-increasing by revenue
	for i := 1; i < len(ranking); i++ {
		assert.GreaterOrEqual(t, ranking[i-1].Revenue, ranking[i].Revenue)
	}
}

func TestCategoryRevenueRanking_Empty(t *testing.T) {
	assert.Empty(t, CategoryRevenueRanking(nil, nil))
}

func TestStateRevenueRanking(t *testing.T) {
	orders := []dataset.Order{
		{OrderID: "o1", CustomerID: "c1"},
		{OrderID: "o2", CustomerID: "c2"},
		{OrderID: "o3", CustomerID: "c3"},
	}
	customers := []dataset.Customer{
		{CustomerID: "c1", State: "CA"},
		{CustomerID: "c2", State: "TX"},
		{CustomerID: "c3", State: "CA"},
	}
	records := []sales.Record{
		prec("o1", "p1", 100),
		prec("o2", "p1", 250),
		prec("o3", "p1", 60),
		prec("orphan", "p1", 999), // no matching order, dropped
	}

	ranking := StateRevenueRanking(records, orders, customers)
	require.Len(t, ranking, 2)
	assert.Equal(t, StateRevenue{State: "TX", Revenue: 250}, ranking[0])
	assert.Equal(t, StateRevenue{State: "CA", Revenue: 160}, ranking[1])
}

func TestStateRevenueRanking_UnknownCustomer(t *testing.T) {
	orders := []dataset.Order{{OrderID: "o1", CustomerID: "nobody"}}
	records := []sales.Record{prec("o1", "p1", 10)}

	assert.Empty(t, StateRevenueRanking(records, orders, nil))
}
