package dataset

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// File names of the five source tables inside a dataset directory.
const (
	OrdersFile     = "orders_dataset.csv"
	OrderItemsFile = "order_items_dataset.csv"
	ProductsFile   = "products_dataset.csv"
	CustomersFile  = "customers_dataset.csv"
	ReviewsFile    = "order_reviews_dataset.csv"
)

var timeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// CSVSource loads the five tables from delimited files in a directory.
type CSVSource struct {
	Dir string
}

// Load reads and decodes all five dataset files.
func (s *CSVSource) Load(ctx context.Context) (*Tables, error) {
	t := &Tables{}
	steps := []struct {
		file   string
		decode func(io.Reader) error
	}{
		{OrdersFile, func(r io.Reader) (err error) { t.Orders, err = DecodeOrders(r); return }},
		{OrderItemsFile, func(r io.Reader) (err error) { t.OrderItems, err = DecodeOrderItems(r); return }},
		{ProductsFile, func(r io.Reader) (err error) { t.Products, err = DecodeProducts(r); return }},
		{CustomersFile, func(r io.Reader) (err error) { t.Customers, err = DecodeCustomers(r); return }},
		{ReviewsFile, func(r io.Reader) (err error) { t.Reviews, err = DecodeReviews(r); return }},
	}
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		f, err := os.Open(filepath.Join(s.Dir, step.file))
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", step.file, err)
		}
		err = step.decode(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", step.file, err)
		}
	}
	return t, nil
}

// columns maps header names to field positions for one CSV stream.
type columns struct {
	index map[string]int
}

func indexColumns(header []string, required ...string) (*columns, error) {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(name)] = i
	}
	for _, name := range required {
		if _, ok := idx[name]; !ok {
			return nil, fmt.Errorf("required column %q missing from header %v", name, header)
		}
	}
	return &columns{index: idx}, nil
}

func (c *columns) str(row []string, name string) string {
	i, ok := c.index[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (c *columns) float(row []string, name string) (float64, error) {
	s := c.str(row, name)
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

func (c *columns) int(row []string, name string) (int, error) {
	s := c.str(row, name)
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

// timeMust parses a timestamp cell that the schema declares non-null.
func (c *columns) timeMust(row []string, name string) (time.Time, error) {
	s := c.str(row, name)
	if s == "" {
		return time.Time{}, fmt.Errorf("column %q: empty timestamp", name)
	}
	return parseTime(s, name)
}

// timeOpt parses a nullable timestamp cell; an empty cell yields nil.
func (c *columns) timeOpt(row []string, name string) (*time.Time, error) {
	s := c.str(row, name)
	if s == "" {
		return nil, nil
	}
	ts, err := parseTime(s, name)
	if err != nil {
		return nil, err
	}
	return &ts, nil
}

func parseTime(s, name string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("column %q: unparseable timestamp %q", name, s)
}

func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(stripBOM(r))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	return cr
}

// stripBOM removes a UTF-8 byte order mark, if present, from the stream.
func stripBOM(r io.Reader) io.Reader {
	buf := make([]byte, 3)
	n, err := r.Read(buf)
	if err != nil || n < 3 {
		return io.MultiReader(strings.NewReader(string(buf[:n])), r)
	}
	if buf[0] == 0xEF && buf[1] == 0xBB && buf[2] == 0xBF {
		return r
	}
	return io.MultiReader(strings.NewReader(string(buf[:n])), r)
}

// DecodeOrders decodes the orders table from a CSV stream.
func DecodeOrders(r io.Reader) ([]Order, error) {
	cr := newReader(r)
	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols, err := indexColumns(header,
		"order_id", "customer_id", "order_status",
		"order_purchase_timestamp", "order_estimated_delivery_date")
	if err != nil {
		return nil, err
	}

	var out []Order
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		o := Order{
			OrderID:    cols.str(row, "order_id"),
			CustomerID: cols.str(row, "customer_id"),
			Status:     cols.str(row, "order_status"),
		}
		if o.PurchasedAt, err = cols.timeMust(row, "order_purchase_timestamp"); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if o.ApprovedAt, err = cols.timeOpt(row, "order_approved_at"); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if o.DeliveredCarrierAt, err = cols.timeOpt(row, "order_delivered_carrier_date"); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if o.DeliveredCustomerAt, err = cols.timeOpt(row, "order_delivered_customer_date"); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if o.EstimatedDeliveryAt, err = cols.timeMust(row, "order_estimated_delivery_date"); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, o)
	}
	return out, nil
}

// DecodeOrderItems decodes the order items table from a CSV stream.
func DecodeOrderItems(r io.Reader) ([]OrderItem, error) {
	cr := newReader(r)
	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols, err := indexColumns(header,
		"order_id", "order_item_id", "product_id", "price")
	if err != nil {
		return nil, err
	}

	var out []OrderItem
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		it := OrderItem{
			OrderID:   cols.str(row, "order_id"),
			ProductID: cols.str(row, "product_id"),
			SellerID:  cols.str(row, "seller_id"),
		}
		if it.ItemSeq, err = cols.int(row, "order_item_id"); err != nil {
			return nil, fmt.Errorf("line %d: order_item_id: %w", line, err)
		}
		if it.ShippingLimitAt, err = cols.timeMust(row, "shipping_limit_date"); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if it.Price, err = cols.float(row, "price"); err != nil {
			return nil, fmt.Errorf("line %d: price: %w", line, err)
		}
		if it.FreightValue, err = cols.float(row, "freight_value"); err != nil {
			return nil, fmt.Errorf("line %d: freight_value: %w", line, err)
		}
		out = append(out, it)
	}
	return out, nil
}

// DecodeProducts decodes the product catalog from a CSV stream. A missing
// category cell stays empty; it is not substituted with a placeholder.
func DecodeProducts(r io.Reader) ([]Product, error) {
	cr := newReader(r)
	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols, err := indexColumns(header, "product_id")
	if err != nil {
		return nil, err
	}

	var out []Product
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		p := Product{
			ProductID:    cols.str(row, "product_id"),
			CategoryName: cols.str(row, "product_category_name"),
		}
		if p.NameLength, err = cols.int(row, "product_name_length"); err != nil {
			return nil, fmt.Errorf("line %d: product_name_length: %w", line, err)
		}
		if p.DescriptionLength, err = cols.int(row, "product_description_length"); err != nil {
			return nil, fmt.Errorf("line %d: product_description_length: %w", line, err)
		}
		if p.PhotosQty, err = cols.int(row, "product_photos_qty"); err != nil {
			return nil, fmt.Errorf("line %d: product_photos_qty: %w", line, err)
		}
		if p.WeightGrams, err = cols.float(row, "product_weight_g"); err != nil {
			return nil, fmt.Errorf("line %d: product_weight_g: %w", line, err)
		}
		if p.LengthCM, err = cols.float(row, "product_length_cm"); err != nil {
			return nil, fmt.Errorf("line %d: product_length_cm: %w", line, err)
		}
		if p.HeightCM, err = cols.float(row, "product_height_cm"); err != nil {
			return nil, fmt.Errorf("line %d: product_height_cm: %w", line, err)
		}
		if p.WidthCM, err = cols.float(row, "product_width_cm"); err != nil {
			return nil, fmt.Errorf("line %d: product_width_cm: %w", line, err)
		}
		out = append(out, p)
	}
	return out, nil
}

// DecodeCustomers decodes the customers table from a CSV stream.
func DecodeCustomers(r io.Reader) ([]Customer, error) {
	cr := newReader(r)
	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols, err := indexColumns(header, "customer_id", "customer_state")
	if err != nil {
		return nil, err
	}

	var out []Customer
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, Customer{
			CustomerID: cols.str(row, "customer_id"),
			UniqueID:   cols.str(row, "customer_unique_id"),
			ZIPPrefix:  cols.str(row, "customer_zip_code_prefix"),
			City:       cols.str(row, "customer_city"),
			State:      cols.str(row, "customer_state"),
		})
	}
	return out, nil
}

// DecodeReviews decodes the reviews table from a CSV stream.
func DecodeReviews(r io.Reader) ([]Review, error) {
	cr := newReader(r)
	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols, err := indexColumns(header, "review_id", "order_id", "review_score")
	if err != nil {
		return nil, err
	}

	var out []Review
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rv := Review{
			ReviewID:       cols.str(row, "review_id"),
			OrderID:        cols.str(row, "order_id"),
			CommentTitle:   cols.str(row, "review_comment_title"),
			CommentMessage: cols.str(row, "review_comment_message"),
		}
		if rv.Score, err = cols.int(row, "review_score"); err != nil {
			return nil, fmt.Errorf("line %d: review_score: %w", line, err)
		}
		if rv.CreatedAt, err = cols.timeMust(row, "review_creation_date"); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if rv.AnsweredAt, err = cols.timeOpt(row, "review_answer_timestamp"); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, rv)
	}
	return out, nil
}
