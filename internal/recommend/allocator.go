// Weddingbook - Wedding Service Booking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/weddingbook

package recommend

import (
	"sort"
	"strings"

	"github.com/tomtom215/weddingbook/internal/models"
)

const (
	// priceGrace lets venues and studios overrun their budget by 10%.
	priceGrace = 1.1

	// dishCeiling bounds dish prices relative to the category sub-budget.
	dishCeiling = 1.5

	// fallbackShare is the largest slice of the whole food budget the
	// cheapest-dish fallback may take.
	fallbackShare = 0.3
)

// ScoredVenue is a venue annotated with its score.
type ScoredVenue struct {
	models.Venue
	Score     float64   `json:"score"`
	Breakdown Breakdown `json:"breakdown"`
}

// ScoredStudio is a studio annotated with its score.
type ScoredStudio struct {
	models.Studio
	Score     float64   `json:"score"`
	Breakdown Breakdown `json:"breakdown"`
}

// ScoredDish is a dish annotated with its score and the category it won.
type ScoredDish struct {
	models.Dish
	CategoryName string    `json:"categoryName"`
	SubBudget    float64   `json:"subBudget"`
	Score        float64   `json:"score"`
	Breakdown    Breakdown `json:"breakdown"`
	Fallback     bool      `json:"fallback,omitempty"`
}

// Package is the recommended combination. Venue and Studio are nil when
// nothing qualified.
type Package struct {
	Venue              *ScoredVenue   `json:"venue"`
	Studio             *ScoredStudio  `json:"studio"`
	Dishes             []ScoredDish   `json:"dishes"`
	CategoriesIncluded []string       `json:"categoriesIncluded"`
	TotalPrice         float64        `json:"totalPrice"`
	Analysis           BudgetAnalysis `json:"budgetAnalysis"`
	Benefits           []string       `json:"benefits"`
	Insights           []string       `json:"insights"`
}

// Allocate builds a package from a catalog snapshot. It is pure and
// deterministic: ties resolve by catalog order. q must already be valid.
func Allocate(cat *models.Catalog, q Query) *Package {
	pkg := &Package{
		Venue:  bestVenue(cat.Venues, q),
		Studio: bestStudio(cat.Studios, q),
	}
	pkg.Dishes, pkg.CategoriesIncluded = allocateDishes(cat, q.FoodBudget)

	if pkg.Venue != nil {
		pkg.TotalPrice += pkg.Venue.Price
	}
	if pkg.Studio != nil {
		pkg.TotalPrice += pkg.Studio.Price
	}
	for i := range pkg.Dishes {
		pkg.TotalPrice += pkg.Dishes[i].Price
	}
	pkg.TotalPrice = models.RoundMoney(pkg.TotalPrice)

	pkg.Analysis = analyze(pkg, q)
	pkg.Benefits = benefits(pkg, q)
	pkg.Insights = insights(pkg, cat, q)
	return pkg
}

func bestVenue(venues []models.Venue, q Query) *ScoredVenue {
	c := Criteria{Budget: q.VenueBudget, Location: q.Location, GuestCount: q.GuestCount}
	var scored []ScoredVenue
	for i := range venues {
		v := &venues[i]
		if v.Price > q.VenueBudget*priceGrace {
			continue
		}
		if q.Location != "" && !containsFold(v.Location, q.Location) {
			continue
		}
		if q.GuestCount > 0 && v.Capacity < q.GuestCount {
			continue
		}
		score, b := ScoreVenue(v, c)
		scored = append(scored, ScoredVenue{Venue: *v, Score: score, Breakdown: b})
	}
	if len(scored) == 0 {
		return nil
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	return &scored[0]
}

func bestStudio(studios []models.Studio, q Query) *ScoredStudio {
	c := Criteria{Budget: q.StudioBudget, Location: q.Location}
	var scored []ScoredStudio
	for i := range studios {
		s := &studios[i]
		if s.Price > q.StudioBudget*priceGrace {
			continue
		}
		if q.Location != "" && !containsFold(s.Location, q.Location) {
			continue
		}
		if len(q.PreferredServices) > 0 && !sharesService(s.Services, q.PreferredServices) {
			continue
		}
		score, b := ScoreStudio(s, c)
		scored = append(scored, ScoredStudio{Studio: *s, Score: score, Breakdown: b})
	}
	if len(scored) == 0 {
		return nil
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	return &scored[0]
}

func sharesService(offered, wanted []string) bool {
	for _, w := range wanted {
		for _, o := range offered {
			if strings.EqualFold(strings.TrimSpace(o), strings.TrimSpace(w)) {
				return true
			}
		}
	}
	return false
}

// allocateDishes picks the best dish per category and then admits them
// greedily by score while the running total fits the food budget. A dish
// that would overflow is skipped, not substituted.
func allocateDishes(cat *models.Catalog, foodBudget float64) ([]ScoredDish, []string) {
	if len(cat.Categories) == 0 {
		return nil, nil
	}
	subBudget := foodBudget / float64(len(cat.Categories))

	byCategory := make(map[string][]*models.Dish, len(cat.Categories))
	for i := range cat.Dishes {
		d := &cat.Dishes[i]
		byCategory[d.CategoryID] = append(byCategory[d.CategoryID], d)
	}

	var bests []ScoredDish
	for _, category := range cat.Categories {
		if best := bestDish(byCategory[category.ID], category, subBudget, foodBudget); best != nil {
			bests = append(bests, *best)
		}
	}
	sort.SliceStable(bests, func(i, j int) bool { return bests[i].Score > bests[j].Score })

	var (
		selected []ScoredDish
		included []string
		running  float64
	)
	for _, d := range bests {
		if running+d.Price > foodBudget {
			continue
		}
		running += d.Price
		selected = append(selected, d)
		included = append(included, d.CategoryName)
	}
	return selected, included
}

func bestDish(dishes []*models.Dish, category models.CuisineCategory, subBudget, foodBudget float64) *ScoredDish {
	if len(dishes) == 0 {
		return nil
	}

	var candidates []*models.Dish
	for _, d := range dishes {
		if d.Price <= subBudget*dishCeiling {
			candidates = append(candidates, d)
		}
	}

	fallback := false
	if len(candidates) == 0 {
		cheapest := dishes[0]
		for _, d := range dishes[1:] {
			if d.Price < cheapest.Price {
				cheapest = d
			}
		}
		if cheapest.Price > foodBudget*fallbackShare {
			return nil
		}
		candidates = []*models.Dish{cheapest}
		fallback = true
	}

	var best *ScoredDish
	for _, d := range candidates {
		score, b := ScoreDish(d, subBudget)
		if best == nil || score > best.Score {
			best = &ScoredDish{
				Dish:         *d,
				CategoryName: category.Name,
				SubBudget:    subBudget,
				Score:        score,
				Breakdown:    b,
				Fallback:     fallback,
			}
		}
	}
	return best
}
