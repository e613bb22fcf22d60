// Copyright 2026 The GroSnap Authors
// SPDX-License-Identifier: Apache-2.0

// Package orders keeps the orders customers place with registered stores.
package orders

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// Status of an order.
type Status string

const (
	Pending  Status = "pending"
	Accepted Status = "accepted"
	Rejected Status = "rejected"
	Shipped  Status = "shipped"
)

var (
	// ErrInvalidTransition is returned when an order cannot move to the
	// requested status.
	ErrInvalidTransition = errors.New("invalid order status transition")

	// ErrNotFound is returned when an order does not exist.
	ErrNotFound = errors.New("order not found")

	// ErrInvalidOrder is returned for orders without store, customer or items.
	ErrInvalidOrder = errors.New("invalid order")
)

var transitions = map[Status][]Status{
	Pending:  {Accepted, Rejected},
	Accepted: {Shipped},
}

// Item is a line of an order.
type Item struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// Order is placed by a customer with a single store.
type Order struct {
	ID        string    `json:"id"`
	StoreID   string    `json:"storeId"`
	Customer  string    `json:"customer"`
	Items     []Item    `json:"items"`
	Total     float64   `json:"total"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Validate checks the order can be placed.
func (o *Order) Validate() error {
	if strings.TrimSpace(o.StoreID) == "" {
		return fmt.Errorf("%w: missing store", ErrInvalidOrder)
	}

	if strings.TrimSpace(o.Customer) == "" {
		return fmt.Errorf("%w: missing customer", ErrInvalidOrder)
	}

	if len(o.Items) == 0 {
		return fmt.Errorf("%w: no items", ErrInvalidOrder)
	}

	for i, item := range o.Items {
		if strings.TrimSpace(item.Name) == "" {
			return fmt.Errorf("%w: item #%d has no name", ErrInvalidOrder, i+1)
		}

		if item.Quantity <= 0 {
			return fmt.Errorf("%w: item %q has quantity %d", ErrInvalidOrder, item.Name, item.Quantity)
		}

		if item.Price < 0 || math.IsNaN(item.Price) {
			return fmt.Errorf("%w: item %q has price %v", ErrInvalidOrder, item.Name, item.Price)
		}
	}

	return nil
}

// ComputeTotal sums quantity times price over the items, rounded to cents.
func (o *Order) ComputeTotal() float64 {
	var total float64
	for _, item := range o.Items {
		total += float64(item.Quantity) * item.Price
	}

	return math.Round(total*100) / 100
}

// CanTransition reports whether from may move to to.
func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}

	return false
}

// Transition moves the order to status to.
func (o *Order) Transition(to Status, now time.Time) error {
	if !CanTransition(o.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, to)
	}

	o.Status = to
	o.UpdatedAt = now

	return nil
}
