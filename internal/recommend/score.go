// Weddingbook - Wedding Service Booking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/weddingbook

package recommend

import (
	"math"
	"strings"

	"github.com/tomtom215/weddingbook/internal/models"
)

// Sub-score weights. Each group sums to 1.
const (
	venueBudgetWeight     = 0.25
	venueRatingWeight     = 0.40
	venuePopularityWeight = 0.15
	venueFitWeight        = 0.20

	dishRatingWeight     = 0.60
	dishPopularityWeight = 0.25
	dishBudgetWeight     = 0.15

	overBudgetScore   = 50
	neutralFitScore   = 50
	undersizedScore   = 20
	capacityFloor     = 80
	locationMatch     = 100
	locationMismatch  = 30
	venuePopularityX  = 2
	dishPopularityX   = 5
	venueBudgetSlope  = 30
	dishBudgetSlope   = 50
	capacityPenaltyX  = 20
	maxPopularity     = 100
	maxRating         = 5
	ratingScaleFactor = 100
)

// Breakdown exposes the unweighted sub-scores. Fit is capacity for venues,
// location for studios and unused for dishes. Sub-scores are not clamped:
// a very cheap item can push Budget above 100 and a dish priced above its
// sub-budget can drive Budget negative.
type Breakdown struct {
	Budget     float64 `json:"budget"`
	Rating     float64 `json:"rating"`
	Popularity float64 `json:"popularity"`
	Fit        float64 `json:"fit,omitempty"`
}

// Criteria is the per-category context a candidate is scored against.
type Criteria struct {
	Budget     float64
	Location   string
	GuestCount int
}

// BudgetScore rates price against budget: 100-(price/budget)*30 within
// budget, a flat 50 over it. A non-positive budget counts as over budget.
func BudgetScore(price, budget float64) float64 {
	if budget <= 0 || price > budget {
		return overBudgetScore
	}
	return 100 - (price/budget)*venueBudgetSlope
}

// RatingScore maps a 0..5 rating onto 0..100.
func RatingScore(rating float64) float64 {
	return rating / maxRating * ratingScaleFactor
}

func popularityScore(orderCount, multiplier int) float64 {
	return math.Min(float64(orderCount*multiplier), maxPopularity)
}

// CapacityScore is 50 without a guest count, 20 when the venue is too small,
// and otherwise 100 less a penalty proportional to unused capacity, never
// below 80.
func CapacityScore(capacity, guests int) float64 {
	if guests <= 0 {
		return neutralFitScore
	}
	if capacity < guests {
		return undersizedScore
	}
	unused := float64(capacity-guests) / float64(capacity)
	return math.Max(100-unused*capacityPenaltyX, capacityFloor)
}

// LocationScore is 50 without a requested location, 100 when the requested
// location is a case-insensitive substring of the studio's, 30 otherwise.
func LocationScore(studioLocation, wanted string) float64 {
	if wanted == "" {
		return neutralFitScore
	}
	if containsFold(studioLocation, wanted) {
		return locationMatch
	}
	return locationMismatch
}

// ScoreVenue returns the weighted venue score and its breakdown.
func ScoreVenue(v *models.Venue, c Criteria) (float64, Breakdown) {
	b := Breakdown{
		Budget:     BudgetScore(v.Price, c.Budget),
		Rating:     RatingScore(v.Rating),
		Popularity: popularityScore(v.OrderCount, venuePopularityX),
		Fit:        CapacityScore(v.Capacity, c.GuestCount),
	}
	return weighVenueLike(b), b
}

// ScoreStudio uses venue weights with location fit in place of capacity.
func ScoreStudio(s *models.Studio, c Criteria) (float64, Breakdown) {
	b := Breakdown{
		Budget:     BudgetScore(s.Price, c.Budget),
		Rating:     RatingScore(s.Rating),
		Popularity: popularityScore(s.OrderCount, venuePopularityX),
		Fit:        LocationScore(s.Location, c.Location),
	}
	return weighVenueLike(b), b
}

// ScoreDish scores against the per-category sub-budget.
func ScoreDish(d *models.Dish, subBudget float64) (float64, Breakdown) {
	b := Breakdown{
		Rating:     RatingScore(d.Rating),
		Popularity: popularityScore(d.OrderCount, dishPopularityX),
		Budget:     100 - (d.Price/subBudget)*dishBudgetSlope,
	}
	score := b.Rating*dishRatingWeight + b.Popularity*dishPopularityWeight + b.Budget*dishBudgetWeight
	return score, b
}

func weighVenueLike(b Breakdown) float64 {
	return b.Budget*venueBudgetWeight +
		b.Rating*venueRatingWeight +
		b.Popularity*venuePopularityWeight +
		b.Fit*venueFitWeight
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
