package domain

import (
	"time"
)

// Rating bounds for product reviews.
const (
	MinRating = 1
	MaxRating = 5
)

// Review represents a product review submitted by a user. Reviews start out
// unapproved and only become publicly visible (and countable in the summary)
// once a moderator approves them.
type Review struct {
	ID           string    `json:"id"`
	ProductID    string    `json:"product_id"`
	UserID       string    `json:"user_id"`
	Rating       int       `json:"rating"`
	Title        string    `json:"title"`
	Body         string    `json:"body"`
	Images       []string  `json:"images"`
	IsApproved   bool      `json:"is_approved"`
	HelpfulCount int       `json:"helpful_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ReviewSummary contains aggregate rating statistics for a product, computed
// over approved reviews only.
type ReviewSummary struct {
	AverageRating      float64     `json:"average_rating"`
	TotalReviews       int         `json:"total_reviews"`
	RatingDistribution map[int]int `json:"rating_distribution"`
}

// BuildSummary computes the rating summary from per-star counts of approved
// reviews. Counts for star values outside 1..5 are ignored. When no approved
// reviews exist the summary is all zeroes with an empty distribution; callers
// must treat a missing star key and a zero count as equivalent. The average
// is the exact arithmetic mean; rounding is a presentation concern.
func BuildSummary(counts map[int]int) ReviewSummary {
	total := 0
	sum := 0
	for star := MinRating; star <= MaxRating; star++ {
		n := counts[star]
		if n <= 0 {
			continue
		}
		total += n
		sum += star * n
	}

	if total == 0 {
		return ReviewSummary{RatingDistribution: map[int]int{}}
	}

	distribution := make(map[int]int, MaxRating)
	for star := MinRating; star <= MaxRating; star++ {
		if n := counts[star]; n > 0 {
			distribution[star] = n
		} else {
			distribution[star] = 0
		}
	}

	return ReviewSummary{
		AverageRating:      float64(sum) / float64(total),
		TotalReviews:       total,
		RatingDistribution: distribution,
	}
}
