// Weddingbook - Wedding Service Booking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/weddingbook

package recommend

import (
	"fmt"

	"github.com/tomtom215/weddingbook/internal/models"
)

// BudgetLine reports spend against one budget.
type BudgetLine struct {
	Budget         float64 `json:"budget"`
	Spent          float64 `json:"spent"`
	Leftover       float64 `json:"leftover"`
	UtilizationPct float64 `json:"utilizationPct"`
}

// BudgetAnalysis covers the three budgets and their sum.
type BudgetAnalysis struct {
	Venue  BudgetLine `json:"venue"`
	Studio BudgetLine `json:"studio"`
	Food   BudgetLine `json:"food"`
	Total  BudgetLine `json:"total"`
}

func newBudgetLine(budget, spent float64) BudgetLine {
	line := BudgetLine{
		Budget:   models.RoundMoney(budget),
		Spent:    models.RoundMoney(spent),
		Leftover: models.RoundMoney(budget - spent),
	}
	if budget > 0 {
		line.UtilizationPct = models.RoundMoney(spent / budget * 100)
	}
	return line
}

func analyze(pkg *Package, q Query) BudgetAnalysis {
	var venue, studio, food float64
	if pkg.Venue != nil {
		venue = pkg.Venue.Price
	}
	if pkg.Studio != nil {
		studio = pkg.Studio.Price
	}
	for i := range pkg.Dishes {
		food += pkg.Dishes[i].Price
	}
	return BudgetAnalysis{
		Venue:  newBudgetLine(q.VenueBudget, venue),
		Studio: newBudgetLine(q.StudioBudget, studio),
		Food:   newBudgetLine(q.FoodBudget, food),
		Total:  newBudgetLine(q.VenueBudget+q.StudioBudget+q.FoodBudget, venue+studio+food),
	}
}

// benefits lists what the customer gains with this package.
func benefits(pkg *Package, q Query) []string {
	out := []string{}
	if v := pkg.Venue; v != nil {
		if v.Price <= q.VenueBudget {
			out = append(out, fmt.Sprintf("Venue %q fits your venue budget with %.2f to spare", v.Name, q.VenueBudget-v.Price))
		}
		if v.Rating >= 4.5 {
			out = append(out, fmt.Sprintf("Venue %q is one of our top rated venues (%.1f/5)", v.Name, v.Rating))
		}
		if q.GuestCount > 0 {
			out = append(out, fmt.Sprintf("Venue %q seats all %d guests", v.Name, q.GuestCount))
		}
	}
	if s := pkg.Studio; s != nil {
		if s.Price <= q.StudioBudget {
			out = append(out, fmt.Sprintf("Studio %q fits your studio budget with %.2f to spare", s.Name, q.StudioBudget-s.Price))
		}
		if len(s.Services) > 0 {
			out = append(out, fmt.Sprintf("Studio %q offers %d services", s.Name, len(s.Services)))
		}
	}
	if n := len(pkg.Dishes); n > 0 {
		out = append(out, fmt.Sprintf("Menu covers %d cuisine categories within your food budget", n))
	}
	return out
}

// insights are advisory notes about gaps and budget headroom.
func insights(pkg *Package, cat *models.Catalog, q Query) []string {
	out := []string{}
	if pkg.Venue == nil {
		out = append(out, fmt.Sprintf("No venue found within budget %.2f", q.VenueBudget))
	} else if pkg.Venue.Price > q.VenueBudget {
		out = append(out, fmt.Sprintf("Venue %q exceeds your venue budget by %.2f", pkg.Venue.Name, pkg.Venue.Price-q.VenueBudget))
	}
	if pkg.Studio == nil {
		out = append(out, fmt.Sprintf("No studio found within budget %.2f", q.StudioBudget))
	} else if pkg.Studio.Price > q.StudioBudget {
		out = append(out, fmt.Sprintf("Studio %q exceeds your studio budget by %.2f", pkg.Studio.Name, pkg.Studio.Price-q.StudioBudget))
	}

	if len(cat.Categories) == 0 {
		out = append(out, "No cuisine categories are available yet")
	} else if missing := len(cat.Categories) - len(pkg.Dishes); missing > 0 {
		out = append(out, fmt.Sprintf("%d cuisine categories could not be covered with food budget %.2f", missing, q.FoodBudget))
	}
	for i := range pkg.Dishes {
		if pkg.Dishes[i].Fallback {
			out = append(out, fmt.Sprintf("Only the cheapest %s option fit your food budget", pkg.Dishes[i].CategoryName))
		}
	}

	if pct := pkg.Analysis.Total.UtilizationPct; pct > 0 && pct < 70 {
		out = append(out, fmt.Sprintf("You are using %.0f%% of your total budget; consider upgrading a service", pct))
	}
	return out
}
