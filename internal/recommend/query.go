// Weddingbook - Wedding Service Booking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/weddingbook

package recommend

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/tomtom215/weddingbook/internal/models"
)

// Query is one recommendation request.
type Query struct {
	VenueBudget       float64
	StudioBudget      float64
	FoodBudget        float64
	Location          string
	GuestCount        int
	PreferredServices []string
}

// ParseQuery reads a query from URL parameters. Budgets must be present,
// numeric and positive; guestCount, when given, a non-negative integer.
// preferredServices is comma separated.
func ParseQuery(values url.Values) (Query, error) {
	var q Query
	var err error

	if q.VenueBudget, err = parseBudget(values, "venueBudget"); err != nil {
		return Query{}, err
	}
	if q.StudioBudget, err = parseBudget(values, "studioBudget"); err != nil {
		return Query{}, err
	}
	if q.FoodBudget, err = parseBudget(values, "foodBudget"); err != nil {
		return Query{}, err
	}

	q.Location = strings.TrimSpace(values.Get("location"))

	if raw := strings.TrimSpace(values.Get("guestCount")); raw != "" {
		n, convErr := strconv.Atoi(raw)
		if convErr != nil || n < 0 {
			return Query{}, models.NewValidationError("guestCount must be a non-negative integer")
		}
		q.GuestCount = n
	}

	if raw := values.Get("preferredServices"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				q.PreferredServices = append(q.PreferredServices, s)
			}
		}
	}
	return q, q.Validate()
}

func parseBudget(values url.Values, name string) (float64, error) {
	raw := strings.TrimSpace(values.Get(name))
	if raw == "" {
		return 0, models.NewValidationError("%s is required", name)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, models.NewValidationError("%s must be a number", name)
	}
	return v, nil
}

// Validate rejects non-positive or non-finite budgets.
func (q Query) Validate() error {
	budgets := []struct {
		name  string
		value float64
	}{
		{"venueBudget", q.VenueBudget},
		{"studioBudget", q.StudioBudget},
		{"foodBudget", q.FoodBudget},
	}
	for _, b := range budgets {
		if math.IsNaN(b.value) || math.IsInf(b.value, 0) || b.value <= 0 {
			return models.NewValidationError("%s must be a positive number", b.name)
		}
	}
	if q.GuestCount < 0 {
		return models.NewValidationError("guestCount must not be negative")
	}
	return nil
}
