// Copyright 2026 The GroSnap Authors
// SPDX-License-Identifier: Apache-2.0

// Package stores provides the store registry, the shopkeeper inventories and
// the geographic store query service.
package stores

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/grosnap/grosnap/ranking"
	"github.com/grosnap/grosnap/spatial"
)

// DefaultCategory tags stores without a declared shop type.
const DefaultCategory = "store"

// UnnamedStore is the display name of stores without one.
const UnnamedStore = "Unnamed Store"

// Store is a shop in the registry.
type Store struct {
	ID        string         `json:"id"`
	Name      string         `json:"shopName"`
	Owner     string         `json:"ownerName"`
	Email     string         `json:"ownerEmail"`
	Phone     string         `json:"phone"`
	Address   string         `json:"shopAddress"`
	City      string         `json:"city"`
	Category  string         `json:"category"`
	Point     *spatial.Point `json:"point,omitempty"`
	UserID    string         `json:"userId,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	H3Res7    int64          `json:"-"`
}

// Candidate returns the ranking view of the store.
func (s *Store) Candidate() ranking.Candidate {
	return ranking.Candidate{
		ID:       s.ID,
		Name:     s.Name,
		Point:    s.Point,
		Category: s.Category,
		Address:  s.Address,
	}
}

func (s *Store) computeH3() error {
	s.H3Res7 = 0
	if s.Point == nil {
		return nil
	}

	cell, err := s.Point.Cell()
	if err != nil {
		return err
	}

	s.H3Res7 = cell

	return nil
}

// Product is an inventory entry of a store.
type Product struct {
	ID        string    `json:"id"`
	StoreID   string    `json:"storeId"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Price     float64   `json:"price"`
	Stock     int       `json:"stock"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// InStock reports whether the product can be sold.
func (p *Product) InStock() bool {
	return p.Stock > 0
}

const (
	maxNameLen    = 200
	maxAddressLen = 500
)

// sanitize trims every free text field.
func (s *Store) sanitize() {
	s.Name = strings.TrimSpace(s.Name)
	s.Owner = strings.TrimSpace(s.Owner)
	s.Email = strings.TrimSpace(s.Email)
	s.Phone = strings.TrimSpace(s.Phone)
	s.Address = strings.TrimSpace(s.Address)
	s.City = strings.TrimSpace(s.City)
	s.Category = strings.ToLower(strings.TrimSpace(s.Category))

	if s.Category == "" {
		s.Category = DefaultCategory
	}
}

// Validate checks a store before it is saved.
func (s *Store) Validate() error {
	if s.Name == "" {
		return errors.New("shop name can't be empty")
	}

	if len(s.Name) > maxNameLen {
		return fmt.Errorf("shop name too long (max %d characters)", maxNameLen)
	}

	if len(s.Address) > maxAddressLen {
		return fmt.Errorf("address too long (max %d characters)", maxAddressLen)
	}

	if s.Email != "" {
		if _, err := mail.ParseAddress(s.Email); err != nil {
			return fmt.Errorf("invalid owner email %q: %w", s.Email, err)
		}
	}

	if s.Point != nil {
		if err := s.Point.Validate(); err != nil {
			return fmt.Errorf("invalid coordinates: %w", err)
		}
	}

	return nil
}

// Validate checks a product before it is saved.
func (p *Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("product name can't be empty")
	}

	if len(p.Name) > maxNameLen {
		return fmt.Errorf("product name too long (max %d characters)", maxNameLen)
	}

	if p.StoreID == "" {
		return errors.New("product must belong to a store")
	}

	if p.Price < 0 {
		return fmt.Errorf("price can't be negative (received: %f)", p.Price)
	}

	if p.Stock < 0 {
		return fmt.Errorf("stock can't be negative (received: %d)", p.Stock)
	}

	return nil
}
