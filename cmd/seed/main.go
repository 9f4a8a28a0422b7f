// Command seed writes a synthetic five-file CSV dataset for local
// development, so the dashboard can run without the real export.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/commerce-insights/internal/dataset"
)

const timeFormat = "2006-01-02 15:04:05"

var categories = []string{
	"electronics", "furniture", "toys", "sports_leisure", "health_beauty",
	"books", "garden_tools", "fashion", "pet_supplies", "auto",
}

var states = []string{"CA", "TX", "NY", "FL", "IL", "WA", "PA", "OH", "GA", "NC"}

var statuses = []struct {
	name   string
	weight int
}{
	{dataset.StatusDelivered, 90},
	{dataset.StatusShipped, 4},
	{dataset.StatusCanceled, 3},
	{dataset.StatusProcessing, 2},
	{dataset.StatusInvoiced, 1},
}

func pickStatus(rng *rand.Rand) string {
	total := 0
	for _, s := range statuses {
		total += s.weight
	}
	n := rng.Intn(total)
	for _, s := range statuses {
		if n < s.weight {
			return s.name
		}
		n -= s.weight
	}
	return dataset.StatusDelivered
}

func main() {
	out := flag.String("out", "ecommerce_data", "output directory")
	orders := flag.Int("orders", 5000, "number of orders to generate")
	products := flag.Int("products", 400, "number of catalog products")
	seed := flag.Int64("seed", 42, "random seed")
	flag.Parse()

	rng := rand.New(rand.NewSource(*seed))
	if err := os.MkdirAll(*out, 0o755); err != nil {
		log.Fatalf("create output dir: %v", err)
	}

	// Products
	productIDs := make([]string, *products)
	productRows := [][]string{{
		"product_id", "product_category_name", "product_name_length",
		"product_description_length", "product_photos_qty", "product_weight_g",
		"product_length_cm", "product_height_cm", "product_width_cm",
	}}
	for i := range productIDs {
		productIDs[i] = uuid.NewString()
		category := categories[rng.Intn(len(categories))]
		if rng.Intn(50) == 0 {
			category = "" // a small share of the catalog has no category
		}
		productRows = append(productRows, []string{
			productIDs[i], category,
			strconv.Itoa(20 + rng.Intn(40)),
			strconv.Itoa(100 + rng.Intn(900)),
			strconv.Itoa(1 + rng.Intn(5)),
			strconv.Itoa(100 + rng.Intn(5000)),
			strconv.Itoa(5 + rng.Intn(60)),
			strconv.Itoa(5 + rng.Intn(40)),
			strconv.Itoa(5 + rng.Intn(40)),
		})
	}

	orderRows := [][]string{{
		"order_id", "customer_id", "order_status", "order_purchase_timestamp",
		"order_approved_at", "order_delivered_carrier_date",
		"order_delivered_customer_date", "order_estimated_delivery_date",
	}}
	itemRows := [][]string{{
		"order_id", "order_item_id", "product_id", "seller_id",
		"shipping_limit_date", "price", "freight_value",
	}}
	customerRows := [][]string{{
		"customer_id", "customer_unique_id", "customer_zip_code_prefix",
		"customer_city", "customer_state",
	}}
	reviewRows := [][]string{{
		"review_id", "order_id", "review_score", "review_comment_title",
		"review_comment_message", "review_creation_date", "review_answer_timestamp",
	}}

	sellerIDs := make([]string, 40)
	for i := range sellerIDs {
		sellerIDs[i] = uuid.NewString()
	}

	start := time.Date(time.Now().Year()-2, time.January, 1, 0, 0, 0, 0, time.UTC)
	span := int(time.Now().Sub(start) / time.Hour)

	for i := 0; i < *orders; i++ {
		orderID := uuid.NewString()
		customerID := uuid.NewString()
		status := pickStatus(rng)
		purchased := start.Add(time.Duration(rng.Intn(span)) * time.Hour)

		approved := purchased.Add(time.Duration(1+rng.Intn(48)) * time.Hour)
		estimated := purchased.AddDate(0, 0, 10+rng.Intn(15))

		approvedCell, carrierCell, deliveredCell := "", "", ""
		var deliveryDays int
		if status != dataset.StatusCreated {
			approvedCell = approved.Format(timeFormat)
		}
		if status == dataset.StatusShipped || status == dataset.StatusDelivered {
			carrier := approved.Add(time.Duration(12+rng.Intn(72)) * time.Hour)
			carrierCell = carrier.Format(timeFormat)
			if status == dataset.StatusDelivered {
				deliveryDays = 1 + rng.Intn(14)
				delivered := purchased.AddDate(0, 0, deliveryDays).Add(time.Duration(rng.Intn(12)) * time.Hour)
				deliveredCell = delivered.Format(timeFormat)
			}
		}

		orderRows = append(orderRows, []string{
			orderID, customerID, status, purchased.Format(timeFormat),
			approvedCell, carrierCell, deliveredCell, estimated.Format(timeFormat),
		})
		customerRows = append(customerRows, []string{
			customerID, uuid.NewString(),
			fmt.Sprintf("%05d", 10000+rng.Intn(89999)),
			"springfield", states[rng.Intn(len(states))],
		})

		itemCount := 1 + rng.Intn(3)
		for seq := 1; seq <= itemCount; seq++ {
			price := 10 + rng.Float64()*290
			itemRows = append(itemRows, []string{
				orderID, strconv.Itoa(seq),
				productIDs[rng.Intn(len(productIDs))],
				sellerIDs[rng.Intn(len(sellerIDs))],
				purchased.AddDate(0, 0, 5).Format(timeFormat),
				fmt.Sprintf("%.2f", price),
				fmt.Sprintf("%.2f", 3+rng.Float64()*25),
			})
		}

		// Most delivered orders get a review; slow deliveries trend lower.
		if status == dataset.StatusDelivered && rng.Intn(10) < 8 {
			score := 5 - deliveryDays/4 - rng.Intn(2)
			if score < 1 {
				score = 1
			}
			created := purchased.AddDate(0, 0, deliveryDays+1)
			answeredCell := ""
			if rng.Intn(3) == 0 {
				answeredCell = created.AddDate(0, 0, 1+rng.Intn(5)).Format(timeFormat)
			}
			reviewRows = append(reviewRows, []string{
				uuid.NewString(), orderID, strconv.Itoa(score),
				"", "", created.Format(timeFormat), answeredCell,
			})
		}
	}

	files := map[string][][]string{
		dataset.OrdersFile:     orderRows,
		dataset.OrderItemsFile: itemRows,
		dataset.ProductsFile:   productRows,
		dataset.CustomersFile:  customerRows,
		dataset.ReviewsFile:    reviewRows,
	}
	for name, rows := range files {
		if err := writeCSV(filepath.Join(*out, name), rows); err != nil {
			log.Fatalf("write %s: %v", name, err)
		}
		log.Printf("wrote %s (%d rows)", name, len(rows)-1)
	}
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}
