package dataset

import "time"

// Order statuses as they appear in the orders table.
const (
	StatusCreated     = "created"
	StatusApproved    = "approved"
	StatusProcessing  = "processing"
	StatusShipped     = "shipped"
	StatusDelivered   = "delivered"
	StatusCanceled    = "canceled"
	StatusUnavailable = "unavailable"
	StatusInvoiced    = "invoiced"
)

// Order is one purchase transaction. Timestamps after the purchase are
// nullable: an order that never reached the customer has no delivery date.
type Order struct {
	OrderID             string
	CustomerID          string
	Status              string
	PurchasedAt         time.Time
	ApprovedAt          *time.Time
	DeliveredCarrierAt  *time.Time
	DeliveredCustomerAt *time.Time
	EstimatedDeliveryAt time.Time
}

// OrderItem is one product line within an order. An order's total value is
// the sum of its items' prices.
type OrderItem struct {
	OrderID         string
	ItemSeq         int
	ProductID       string
	SellerID        string
	ShippingLimitAt time.Time
	Price           float64
	FreightValue    float64
}

// Product is a catalog entry. CategoryName is empty when the category is
// unknown.
type Product struct {
	ProductID         string
	CategoryName      string
	NameLength        int
	DescriptionLength int
	PhotosQty         int
	WeightGrams       float64
	LengthCM          float64
	HeightCM          float64
	WidthCM           float64
}

// Customer is one row per order, not per person: CustomerID changes with
// every order while UniqueID is the persistent person identifier.
type Customer struct {
	CustomerID string
	UniqueID   string
	ZIPPrefix  string
	City       string
	State      string
}

// Review is a customer review for one order, scored 1-5.
type Review struct {
	ReviewID       string
	OrderID        string
	Score          int
	CommentTitle   string
	CommentMessage string
	CreatedAt      time.Time
	AnsweredAt     *time.Time
}

// Tables holds one loaded snapshot of the five source tables.
type Tables struct {
	Orders     []Order
	OrderItems []OrderItem
	Products   []Product
	Customers  []Customer
	Reviews    []Review
}
