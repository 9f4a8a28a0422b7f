// Command report prints a one-shot sales report for a period to stdout.
// It consumes the same dataset and metrics as the dashboard API, without
// running a server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"text/tabwriter"

	"github.com/ignite/commerce-insights/internal/dataset"
	"github.com/ignite/commerce-insights/internal/metrics"
	"github.com/ignite/commerce-insights/internal/sales"
)

func main() {
	dir := flag.String("data", "ecommerce_data", "directory containing the dataset CSV files")
	year := flag.Int("year", 0, "analysis year (required)")
	month := flag.Int("month", 0, "analysis month 1-12, 0 for the whole year")
	topN := flag.Int("top", 10, "number of categories and states to print")
	flag.Parse()

	if *year == 0 {
		flag.Usage()
		os.Exit(2)
	}
	if *month < 0 || *month > 12 {
		log.Fatalf("month must be between 1 and 12")
	}

	src := &dataset.CSVSource{Dir: *dir}
	tables, err := src.Load(context.Background())
	if err != nil {
		log.Fatalf("load dataset: %v", err)
	}

	delivered := sales.FilterDelivered(sales.Assemble(tables.Orders, tables.OrderItems))
	delivered = sales.AddDeliveryCategory(sales.AddDeliverySpeed(delivered))

	current := sales.FilterByPeriod(delivered, *year, *month)
	prior := sales.FilterByPeriod(delivered, *year-1, *month)

	summary := metrics.SummarizePeriod(current, *year, *month)
	growth := metrics.RevenueGrowth(summary.TotalRevenue, metrics.TotalRevenue(prior))

	fmt.Printf("Sales report for %s (delivered orders)\n\n", summary.Period)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Total revenue:\t$%.2f\n", summary.TotalRevenue)
	fmt.Fprintf(w, "Revenue vs prior year:\t%s\n", formatGrowth(growth))
	fmt.Fprintf(w, "Orders:\t%d\n", summary.OrderCount)
	fmt.Fprintf(w, "Average order value:\t%s\n", formatMoney(summary.AvgOrderValue))
	fmt.Fprintf(w, "Average delivery time:\t%s\n", formatDays(metrics.AverageDeliveryTime(current)))
	fmt.Fprintf(w, "Average review score:\t%s\n", formatScore(metrics.AverageReviewScore(current, tables.Reviews)))
	w.Flush()

	categories := metrics.CategoryRevenueRanking(current, tables.Products)
	if len(categories) > *topN {
		categories = categories[:*topN]
	}
	fmt.Printf("\nTop categories by revenue\n")
	w = tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for i, c := range categories {
		fmt.Fprintf(w, "%d.\t%s\t$%.2f\n", i+1, c.Category, c.Revenue)
	}
	w.Flush()

	states := metrics.StateRevenueRanking(current, tables.Orders, tables.Customers)
	if len(states) > *topN {
		states = states[:*topN]
	}
	fmt.Printf("\nTop states by revenue\n")
	w = tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for i, s := range states {
		fmt.Fprintf(w, "%d.\t%s\t$%.2f\n", i+1, s.State, s.Revenue)
	}
	w.Flush()

	fmt.Printf("\nReview score by delivery time\n")
	w = tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, d := range metrics.DeliveryReviewCorrelation(current, tables.Reviews) {
		fmt.Fprintf(w, "%s\t%.2f\n", d.Category, d.AvgScore)
	}
	w.Flush()
}

func formatGrowth(g float64) string {
	if math.IsNaN(g) {
		return "n/a"
	}
	return fmt.Sprintf("%+.2f%%", g*100)
}

func formatMoney(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("$%.2f", v)
}

func formatDays(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.1f days", v)
}

func formatScore(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.2f / 5", v)
}
