package sales

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/commerce-insights/internal/dataset"
)

func ts(year, month, day, hour int) time.Time {
	return time.Date(year, time.Month(month), day, hour, 0, 0, 0, time.UTC)
}

func tsPtr(year, month, day, hour int) *time.Time {
	t := ts(year, month, day, hour)
	return &t
}

func fixtureOrders() []dataset.Order {
	return []dataset.Order{
		{OrderID: "o1", CustomerID: "c1", Status: dataset.StatusDelivered,
			PurchasedAt: ts(2023, 5, 1, 10), DeliveredCustomerAt: tsPtr(2023, 5, 4, 16)},
		{OrderID: "o2", CustomerID: "c2", Status: dataset.StatusCanceled,
			PurchasedAt: ts(2023, 6, 10, 9)},
		{OrderID: "o3", CustomerID: "c3", Status: dataset.StatusDelivered,
			PurchasedAt: ts(2022, 12, 20, 8), DeliveredCustomerAt: tsPtr(2023, 1, 2, 12)},
	}
}

func fixtureItems() []dataset.OrderItem {
	return []dataset.OrderItem{
		{OrderID: "o1", ItemSeq: 1, ProductID: "p1", Price: 10},
		{OrderID: "o1", ItemSeq: 2, ProductID: "p2", Price: 20},
		{OrderID: "o2", ItemSeq: 1, ProductID: "p1", Price: 15},
		{OrderID: "o3", ItemSeq: 1, ProductID: "p3", Price: 99},
		{OrderID: "ghost", ItemSeq: 1, ProductID: "p1", Price: 1000},
	}
}

func TestAssemble(t *testing.T) {
	records := Assemble(fixtureOrders(), fixtureItems())

	// The item referencing a nonexistent order is dropped
	require.Len(t, records, 4)
	for _, r := range records {
		assert.NotEqual(t, "ghost", r.OrderID)
	}

	first := records[0]
	assert.Equal(t, "o1", first.OrderID)
	assert.Equal(t, dataset.StatusDelivered, first.Status)
	assert.Equal(t, 5, first.Month)
	assert.Equal(t, 2023, first.Year)
	require.NotNil(t, first.DeliveredAt)

	// December purchase keeps its purchase-month calendar fields even though
	// delivery slipped into the next year
	last := records[3]
	assert.Equal(t, 12, last.Month)
	assert.Equal(t, 2022, last.Year)
}

func TestAssemble_EmptyInputs(t *testing.T) {
	assert.Empty(t, Assemble(nil, fixtureItems()))
	assert.Empty(t, Assemble(fixtureOrders(), nil))
}

func TestFilterDelivered(t *testing.T) {
	records := Assemble(fixtureOrders(), fixtureItems())
	delivered := FilterDelivered(records)

	require.Len(t, delivered, 3)
	for _, r := range delivered {
		assert.Equal(t, dataset.StatusDelivered, r.Status)
	}

	// Output is an independent copy: mutating it leaves the input intact
	delivered[0].Price = -1
	assert.Equal(t, 10.0, records[0].Price)
}

func TestFilterByPeriod(t *testing.T) {
	records := Assemble(fixtureOrders(), fixtureItems())

	year2023 := FilterByPeriod(records, 2023, 0)
	require.Len(t, year2023, 3)

	may := FilterByPeriod(records, 2023, 5)
	require.Len(t, may, 2)
	for _, r := range may {
		assert.Equal(t, 5, r.Month)
	}

	assert.Empty(t, FilterByPeriod(records, 2019, 0))

	// Copy-independence
	before := records[0].Price
	may[0].Price = -1
	assert.Equal(t, before, records[0].Price)
}

func TestAddDeliverySpeed(t *testing.T) {
	records := Assemble(fixtureOrders(), fixtureItems())
	withSpeed := AddDeliverySpeed(records)

	// o1: 2023-05-01 10:00 to 2023-05-04 16:00 is 3.25 days, floored to 3
	require.NotNil(t, withSpeed[0].DeliverySpeedDays)
	assert.Equal(t, 3, *withSpeed[0].DeliverySpeedDays)

	// o2 was never delivered: speed stays nil, not zero
	var canceled *Record
	for i := range withSpeed {
		if withSpeed[i].OrderID == "o2" {
			canceled = &withSpeed[i]
		}
	}
	require.NotNil(t, canceled)
	assert.Nil(t, canceled.DeliverySpeedDays)

	// Input is not mutated
	for _, r := range records {
		assert.Nil(t, r.DeliverySpeedDays)
	}
}

func TestAddDeliveryCategory(t *testing.T) {
	records := AddDeliverySpeed(Assemble(fixtureOrders(), fixtureItems()))
	categorized := AddDeliveryCategory(records)

	assert.Equal(t, SpeedFast, categorized[0].DeliveryCategory)
	for _, r := range categorized {
		if r.DeliverySpeedDays == nil {
			assert.Empty(t, r.DeliveryCategory, "undelivered rows keep an empty category")
		}
	}
	for _, r := range records {
		assert.Empty(t, r.DeliveryCategory, "input is not mutated")
	}
}

func TestCategorizeDeliverySpeed(t *testing.T) {
	tests := []struct {
		days int
		want string
	}{
		{0, SpeedFast},
		{3, SpeedFast},
		{4, SpeedMedium},
		{7, SpeedMedium},
		{8, SpeedSlow},
		{30, SpeedSlow},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CategorizeDeliverySpeed(tt.days), "days=%d", tt.days)
	}
}
