package metrics

import (
	"math"
	"sort"

	"github.com/ignite/commerce-insights/internal/dataset"
	"github.com/ignite/commerce-insights/internal/sales"
)

// relevantScores collects the scores of reviews whose order appears in the
// records, one entry per review.
func relevantScores(records []sales.Record, reviews []dataset.Review) []int {
	orderIDs := make(map[string]struct{}, len(records))
	for _, r := range records {
		orderIDs[r.OrderID] = struct{}{}
	}
	var scores []int
	for _, rv := range reviews {
		if _, ok := orderIDs[rv.OrderID]; ok {
			scores = append(scores, rv.Score)
		}
	}
	return scores
}

// ReviewScoreDistribution is the normalized frequency of each review score
// across the reviews belonging to the given records' orders, ascending by
// score. Scores with no occurrences are omitted, not zero-filled; the
// returned shares sum to 1 whenever any review matched.
func ReviewScoreDistribution(records []sales.Record, reviews []dataset.Review) []ScoreShare {
	scores := relevantScores(records, reviews)
	if len(scores) == 0 {
		return nil
	}
	counts := make(map[int]int)
	for _, s := range scores {
		counts[s]++
	}
	out := make([]ScoreShare, 0, len(counts))
	for score, n := range counts {
		out = append(out, ScoreShare{Score: score, Share: float64(n) / float64(len(scores))})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Score < out[j].Score })
	return out
}

// AverageReviewScore is the mean score over the same restricted review
// subset as ReviewScoreDistribution. NaN when no review matched.
func AverageReviewScore(records []sales.Record, reviews []dataset.Review) float64 {
	scores := relevantScores(records, reviews)
	if len(scores) == 0 {
		return math.NaN()
	}
	var sum int
	for _, s := range scores {
		sum += s
	}
	return float64(sum) / float64(len(scores))
}

// DeliveryReviewCorrelation averages the review score per delivery speed
// bucket. A multi-item order shares one order ID across several records but
// has a single review, so each order is counted exactly once. Records
// without a delivery category (undelivered) and orders without a review are
// skipped. Buckets come back sorted by label, which orders them fastest
// first.
func DeliveryReviewCorrelation(records []sales.Record, reviews []dataset.Review) []DeliveryScore {
	scoreByOrder := make(map[string]int, len(reviews))
	for _, rv := range reviews {
		scoreByOrder[rv.OrderID] = rv.Score
	}

	sums := make(map[string]int)
	counts := make(map[string]int)
	seen := make(map[string]struct{})
	for _, r := range records {
		if r.DeliveryCategory == "" {
			continue
		}
		if _, dup := seen[r.OrderID]; dup {
			continue
		}
		score, ok := scoreByOrder[r.OrderID]
		if !ok {
			continue
		}
		seen[r.OrderID] = struct{}{}
		sums[r.DeliveryCategory] += score
		counts[r.DeliveryCategory]++
	}

	out := make([]DeliveryScore, 0, len(sums))
	for category, sum := range sums {
		out = append(out, DeliveryScore{
			Category: category,
			AvgScore: float64(sum) / float64(counts[category]),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}

// AverageDeliveryTime is the mean delivery speed in days, ignoring records
// whose speed is unknown rather than counting them as zero. NaN when no
// record has a known speed.
func AverageDeliveryTime(records []sales.Record) float64 {
	var sum, n int
	for _, r := range records {
		if r.DeliverySpeedDays == nil {
			continue
		}
		sum += *r.DeliverySpeedDays
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return float64(sum) / float64(n)
}

// OrderStatusDistribution is the normalized frequency of each order status
// among orders purchased in the given year, descending by share. Statuses
// tie-break on name.
func OrderStatusDistribution(orders []dataset.Order, year int) []StatusShare {
	counts := make(map[string]int)
	total := 0
	for _, o := range orders {
		if o.PurchasedAt.Year() != year {
			continue
		}
		counts[o.Status]++
		total++
	}
	if total == 0 {
		return nil
	}
	out := make([]StatusShare, 0, len(counts))
	for status, n := range counts {
		out = append(out, StatusShare{Status: status, Share: float64(n) / float64(total)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Share != out[j].Share {
			return out[i].Share > out[j].Share
		}
		return out[i].Status < out[j].Status
	})
	return out
}
