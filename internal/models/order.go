// Weddingbook - Wedding Service Booking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/weddingbook

package models

import (
	"math"
	"time"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderDraft      OrderStatus = "draft"
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderConfirmed  OrderStatus = "confirmed"
	OrderCompleted  OrderStatus = "completed"
	OrderCancelled  OrderStatus = "cancelled"
)

// Terminal reports whether the order is read-only for customers.
func (s OrderStatus) Terminal() bool {
	return s == OrderCompleted || s == OrderCancelled
}

// PaymentStatus tracks how much of the order has been collected.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentPartial   PaymentStatus = "partial"
	PaymentCompleted PaymentStatus = "completed"
)

// PaymentType records how the customer chose to pay.
type PaymentType string

const (
	PaymentCashAfterService PaymentType = "cash_after_service"
	PaymentAdvance          PaymentType = "advance_payment"
)

// PaymentAmount is the client's choice of online charge.
type PaymentAmount string

const (
	AmountQuarter PaymentAmount = "25_percent"
	AmountFull    PaymentAmount = "full_payment"
)

func (a PaymentAmount) Valid() bool {
	return a == AmountQuarter || a == AmountFull
}

// Fraction is the share of the order total this choice charges.
func (a PaymentAmount) Fraction() float64 {
	if a == AmountQuarter {
		return 0.25
	}
	return 1
}

// BookingStatus applies to venue and studio lines only.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

// CartItem is a line in the customer's cart. Price is captured from the
// catalog when the item is added.
type CartItem struct {
	ItemID     string     `json:"itemId"`
	ItemType   ItemType   `json:"itemType"`
	Name       string     `json:"name"`
	Price      float64    `json:"price"`
	Quantity   int        `json:"quantity"`
	BookedFrom *time.Time `json:"bookedFrom,omitempty"`
	BookedTill *time.Time `json:"bookedTill,omitempty"`
}

// Cart belongs to exactly one user.
type Cart struct {
	UserID    string     `json:"userId"`
	Items     []CartItem `json:"items"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Total sums price times quantity over all lines.
func (c *Cart) Total() float64 {
	var total float64
	for _, it := range c.Items {
		total += it.Price * float64(it.Quantity)
	}
	return RoundMoney(total)
}

// OrderItem is a cart line frozen into an order.
type OrderItem struct {
	CartItem
	BookingStatus BookingStatus `json:"bookingStatus,omitempty"`
}

// Order is created at checkout and then driven by the payment workflow.
type Order struct {
	ID                    string        `json:"id"`
	UserID                string        `json:"userId"`
	Status                OrderStatus   `json:"status"`
	Items                 []OrderItem   `json:"items"`
	TotalAmount           float64       `json:"totalAmount"`
	PaymentType           PaymentType   `json:"paymentType,omitempty"`
	PaymentAmount         PaymentAmount `json:"paymentAmount,omitempty"`
	PaidAmount            float64       `json:"paidAmount"`
	RemainingAmount       float64       `json:"remainingAmount"`
	PaymentStatus         PaymentStatus `json:"paymentStatus"`
	StripeSessionID       string        `json:"stripeSessionId,omitempty"`
	StripePaymentIntentID string        `json:"stripePaymentIntentId,omitempty"`
	CreatedAt             time.Time     `json:"createdAt"`
	UpdatedAt             time.Time     `json:"updatedAt"`
}

// SetBookingStatus updates every venue and studio line.
func (o *Order) SetBookingStatus(s BookingStatus) {
	for i := range o.Items {
		if o.Items[i].ItemType.RequiresBooking() {
			o.Items[i].BookingStatus = s
		}
	}
}

// PaymentSession records who started a checkout session so status polls
// can be authorized without calling the processor.
type PaymentSession struct {
	SessionID string        `json:"sessionId"`
	OrderID   string        `json:"orderId"`
	UserID    string        `json:"userId"`
	Amount    PaymentAmount `json:"amount"`
	Charged   float64       `json:"charged"`
	CreatedAt time.Time     `json:"createdAt"`
}

// RoundMoney rounds to two decimals.
func RoundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}

// ToMinorUnits converts a major-unit amount to cents, rounding half away
// from zero.
func ToMinorUnits(v float64) int64 {
	return int64(math.Round(v * 100))
}

// FromMinorUnits converts cents to major units.
func FromMinorUnits(v int64) float64 {
	return float64(v) / 100
}
