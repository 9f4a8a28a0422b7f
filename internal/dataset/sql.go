package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SQLSource loads the five tables from a relational database. The schema
// mirrors the CSV files column for column; connecting and driver selection
// (lib/pq in cmd/server) are the caller's concern.
type SQLSource struct {
	DB *sql.DB
}

// Load reads all five tables in one pass.
func (s *SQLSource) Load(ctx context.Context) (*Tables, error) {
	t := &Tables{}
	var err error
	if t.Orders, err = s.loadOrders(ctx); err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}
	if t.OrderItems, err = s.loadOrderItems(ctx); err != nil {
		return nil, fmt.Errorf("load order_items: %w", err)
	}
	if t.Products, err = s.loadProducts(ctx); err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	if t.Customers, err = s.loadCustomers(ctx); err != nil {
		return nil, fmt.Errorf("load customers: %w", err)
	}
	if t.Reviews, err = s.loadReviews(ctx); err != nil {
		return nil, fmt.Errorf("load reviews: %w", err)
	}
	return t, nil
}

func (s *SQLSource) loadOrders(ctx context.Context) ([]Order, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT order_id, customer_id, order_status,
		       order_purchase_timestamp, order_approved_at,
		       order_delivered_carrier_date, order_delivered_customer_date,
		       order_estimated_delivery_date
		FROM orders`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		var o Order
		var approved, carrier, customer sql.NullTime
		if err := rows.Scan(&o.OrderID, &o.CustomerID, &o.Status,
			&o.PurchasedAt, &approved, &carrier, &customer,
			&o.EstimatedDeliveryAt); err != nil {
			return nil, err
		}
		o.ApprovedAt = nullableTime(approved)
		o.DeliveredCarrierAt = nullableTime(carrier)
		o.DeliveredCustomerAt = nullableTime(customer)
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *SQLSource) loadOrderItems(ctx context.Context) ([]OrderItem, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT order_id, order_item_id, product_id, seller_id,
		       shipping_limit_date, price, freight_value
		FROM order_items`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OrderItem
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.OrderID, &it.ItemSeq, &it.ProductID,
			&it.SellerID, &it.ShippingLimitAt, &it.Price, &it.FreightValue); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (s *SQLSource) loadProducts(ctx context.Context) ([]Product, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT product_id, product_category_name,
		       product_name_length, product_description_length, product_photos_qty,
		       product_weight_g, product_length_cm, product_height_cm, product_width_cm
		FROM products`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		var category sql.NullString
		var nameLen, descLen, photos sql.NullInt64
		var weight, length, height, width sql.NullFloat64
		if err := rows.Scan(&p.ProductID, &category,
			&nameLen, &descLen, &photos,
			&weight, &length, &height, &width); err != nil {
			return nil, err
		}
		p.CategoryName = category.String
		p.NameLength = int(nameLen.Int64)
		p.DescriptionLength = int(descLen.Int64)
		p.PhotosQty = int(photos.Int64)
		p.WeightGrams = weight.Float64
		p.LengthCM = length.Float64
		p.HeightCM = height.Float64
		p.WidthCM = width.Float64
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQLSource) loadCustomers(ctx context.Context) ([]Customer, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT customer_id, customer_unique_id, customer_zip_code_prefix,
		       customer_city, customer_state
		FROM customers`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Customer
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.CustomerID, &c.UniqueID, &c.ZIPPrefix,
			&c.City, &c.State); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SQLSource) loadReviews(ctx context.Context) ([]Review, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT review_id, order_id, review_score,
		       review_comment_title, review_comment_message,
		       review_creation_date, review_answer_timestamp
		FROM order_reviews`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Review
	for rows.Next() {
		var rv Review
		var title, message sql.NullString
		var answered sql.NullTime
		if err := rows.Scan(&rv.ReviewID, &rv.OrderID, &rv.Score,
			&title, &message, &rv.CreatedAt, &answered); err != nil {
			return nil, err
		}
		rv.CommentTitle = title.String
		rv.CommentMessage = message.String
		rv.AnsweredAt = nullableTime(answered)
		out = append(out, rv)
	}
	return out, rows.Err()
}

func nullableTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	ts := t.Time
	return &ts
}
