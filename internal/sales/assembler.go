// Package sales assembles normalized order tables into a flat, analysis-ready
// record set. Every transformation returns a fresh slice: callers can filter
// and annotate derived data without touching the tables it came from.
package sales

import (
	"math"
	"time"

	"github.com/ignite/commerce-insights/internal/dataset"
)

// Record is one order item joined with its parent order's status and
// timestamps, plus calendar fields derived from the purchase timestamp.
// DeliverySpeedDays and DeliveryCategory are filled by AddDeliverySpeed and
// AddDeliveryCategory; a nil DeliverySpeedDays means the order was never
// delivered to the customer.
type Record struct {
	OrderID           string
	ItemSeq           int
	ProductID         string
	Price             float64
	Status            string
	PurchasedAt       time.Time
	DeliveredAt       *time.Time
	Month             int
	Year              int
	DeliverySpeedDays *int
	DeliveryCategory  string
}

// Delivery speed buckets, from fastest to slowest.
const (
	SpeedFast   = "1-3 days"
	SpeedMedium = "4-7 days"
	SpeedSlow   = "8+ days"
)

// Assemble inner-joins order items to orders on order ID. Items whose order
// ID has no matching order are dropped; orders with no items contribute
// nothing. The result never exceeds len(items) rows.
func Assemble(orders []dataset.Order, items []dataset.OrderItem) []Record {
	byID := make(map[string]*dataset.Order, len(orders))
	for i := range orders {
		byID[orders[i].OrderID] = &orders[i]
	}

	records := make([]Record, 0, len(items))
	for _, it := range items {
		o, ok := byID[it.OrderID]
		if !ok {
			continue
		}
		records = append(records, Record{
			OrderID:     it.OrderID,
			ItemSeq:     it.ItemSeq,
			ProductID:   it.ProductID,
			Price:       it.Price,
			Status:      o.Status,
			PurchasedAt: o.PurchasedAt,
			DeliveredAt: o.DeliveredCustomerAt,
			Month:       int(o.PurchasedAt.Month()),
			Year:        o.PurchasedAt.Year(),
		})
	}
	return records
}

// FilterDelivered returns the subset with status "delivered", as an
// independent copy.
func FilterDelivered(records []Record) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if r.Status == dataset.StatusDelivered {
			out = append(out, r)
		}
	}
	return out
}

// FilterByPeriod returns the rows for the given year, narrowed to one month
// when month is 1-12. Month 0 means the entire year.
func FilterByPeriod(records []Record, year, month int) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if r.Year != year {
			continue
		}
		if month != 0 && r.Month != month {
			continue
		}
		out = append(out, r)
	}
	return out
}

// AddDeliverySpeed returns a copy of records with DeliverySpeedDays set to
// the whole days between purchase and customer delivery, floored. Rows
// without a delivery timestamp keep a nil speed; they are never coerced to
// zero.
func AddDeliverySpeed(records []Record) []Record {
	out := make([]Record, len(records))
	copy(out, records)
	for i := range out {
		if out[i].DeliveredAt == nil {
			out[i].DeliverySpeedDays = nil
			continue
		}
		days := int(math.Floor(out[i].DeliveredAt.Sub(out[i].PurchasedAt).Hours() / 24))
		out[i].DeliverySpeedDays = &days
	}
	return out
}

// AddDeliveryCategory returns a copy of records with DeliveryCategory set
// from DeliverySpeedDays. Rows with a nil speed keep an empty category.
func AddDeliveryCategory(records []Record) []Record {
	out := make([]Record, len(records))
	copy(out, records)
	for i := range out {
		if out[i].DeliverySpeedDays == nil {
			out[i].DeliveryCategory = ""
			continue
		}
		out[i].DeliveryCategory = CategorizeDeliverySpeed(*out[i].DeliverySpeedDays)
	}
	return out
}

// CategorizeDeliverySpeed buckets a whole-day delivery time into a label.
func CategorizeDeliverySpeed(days int) string {
	switch {
	case days <= 3:
		return SpeedFast
	case days <= 7:
		return SpeedMedium
	default:
		return SpeedSlow
	}
}
