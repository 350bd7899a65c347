// Weddingbook - Wedding Service Booking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/weddingbook

package models

import "time"

// ItemType identifies which catalog an order line refers to.
type ItemType string

const (
	ItemVenue  ItemType = "venue"
	ItemStudio ItemType = "studio"
	ItemDish   ItemType = "dish"
)

// RequiresBooking reports whether the item needs a booking window.
func (t ItemType) RequiresBooking() bool {
	return t == ItemVenue || t == ItemStudio
}

func (t ItemType) Valid() bool {
	return t == ItemVenue || t == ItemStudio || t == ItemDish
}

// Venue is a bookable wedding venue. Price is in major currency units.
type Venue struct {
	ID          string    `json:"id"`
	Name        string    `json:"name" validate:"required,max=200"`
	Location    string    `json:"location" validate:"required,max=200"`
	Description string    `json:"description,omitempty" validate:"max=4000"`
	Price       float64   `json:"price" validate:"gte=0"`
	Capacity    int       `json:"capacity" validate:"gte=0"`
	Rating      float64   `json:"rating" validate:"gte=0,lte=5"`
	OrderCount  int       `json:"orderCount" validate:"gte=0"`
	Images      []string  `json:"images,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Studio is a photography/video studio.
type Studio struct {
	ID          string    `json:"id"`
	Name        string    `json:"name" validate:"required,max=200"`
	Location    string    `json:"location" validate:"required,max=200"`
	Description string    `json:"description,omitempty" validate:"max=4000"`
	Price       float64   `json:"price" validate:"gte=0"`
	Services    []string  `json:"services,omitempty" validate:"dive,max=100"`
	Rating      float64   `json:"rating" validate:"gte=0,lte=5"`
	OrderCount  int       `json:"orderCount" validate:"gte=0"`
	Images      []string  `json:"images,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CuisineCategory groups dishes, e.g. "Starters" or "Desserts".
type CuisineCategory struct {
	ID          string    `json:"id"`
	Name        string    `json:"name" validate:"required,max=100"`
	Description string    `json:"description,omitempty" validate:"max=1000"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Dish belongs to exactly one cuisine category.
type Dish struct {
	ID          string    `json:"id"`
	CategoryID  string    `json:"categoryId" validate:"required"`
	Name        string    `json:"name" validate:"required,max=200"`
	Description string    `json:"description,omitempty" validate:"max=2000"`
	Price       float64   `json:"price" validate:"gte=0"`
	Rating      float64   `json:"rating" validate:"gte=0,lte=5"`
	OrderCount  int       `json:"orderCount" validate:"gte=0"`
	Images      []string  `json:"images,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Decoration is browsable catalog content; it is not orderable.
type Decoration struct {
	ID          string    `json:"id"`
	Name        string    `json:"name" validate:"required,max=200"`
	Theme       string    `json:"theme,omitempty" validate:"max=100"`
	Description string    `json:"description,omitempty" validate:"max=2000"`
	Price       float64   `json:"price" validate:"gte=0"`
	Images      []string  `json:"images,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Catalog is a read-only snapshot used by one recommendation request.
// Slices keep catalog (creation) order.
type Catalog struct {
	Venues     []Venue
	Studios    []Studio
	Categories []CuisineCategory
	Dishes     []Dish
}
