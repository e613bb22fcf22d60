// Copyright 2026 The GroSnap Authors
// SPDX-License-Identifier: Apache-2.0

package orders

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/grosnap/grosnap/stores"
)

// Repository persists orders next to the store registry.
type Repository interface {
	// CreateSchema creates the orders table
	CreateSchema() error

	// Create places a new pending order
	Create(order *Order) error

	// Get returns an order or ErrNotFound
	Get(id string) (*Order, error)

	// ListByStore returns the orders of a store, newest first
	ListByStore(storeID string) ([]*Order, error)

	// Transition moves an order to a new status
	Transition(id string, to Status) (*Order, error)
}

type sqlRepository struct {
	db      *sql.DB
	dialect stores.Dialect
	now     func() time.Time
}

// NewRepository creates an order repository over db.
func NewRepository(db *sql.DB, dialect stores.Dialect) Repository {
	return &sqlRepository{db: db, dialect: dialect, now: time.Now}
}

func (r *sqlRepository) CreateSchema() error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS orders (
			id VARCHAR PRIMARY KEY,
			store_id VARCHAR NOT NULL,
			customer VARCHAR NOT NULL,
			items TEXT NOT NULL,
			total DOUBLE PRECISION NOT NULL,
			status VARCHAR NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("creating orders table: %w", err)
	}

	return nil
}

const orderColumns = `id, store_id, customer, items, total, status, created_at, updated_at`

func (r *sqlRepository) Create(o *Order) error {
	if err := o.Validate(); err != nil {
		return err
	}

	items, err := json.Marshal(o.Items)
	if err != nil {
		return err
	}

	if o.ID == "" {
		o.ID = uuid.NewString()
	}

	o.Status = Pending
	o.Total = o.ComputeTotal()
	o.CreatedAt = r.now().UTC()
	o.UpdatedAt = o.CreatedAt

	_, err = r.db.Exec(r.dialect.Rebind(`INSERT INTO orders (`+orderColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		o.ID, o.StoreID, o.Customer, string(items), o.Total, string(o.Status), o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating order: %w", err)
	}

	return nil
}

func (r *sqlRepository) query(query string, args ...any) ([]*Order, error) {
	rows, err := r.db.Query(r.dialect.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*Order

	for rows.Next() {
		var (
			o      Order
			items  string
			status string
		)

		if err := rows.Scan(&o.ID, &o.StoreID, &o.Customer, &items, &o.Total, &status, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}

		if err := json.Unmarshal([]byte(items), &o.Items); err != nil {
			return nil, fmt.Errorf("decoding items of order %s: %w", o.ID, err)
		}

		o.Status = Status(status)
		orders = append(orders, &o)
	}

	return orders, rows.Err()
}

func (r *sqlRepository) Get(id string) (*Order, error) {
	orders, err := r.query(`SELECT `+orderColumns+` FROM orders WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("getting order %s: %w", id, err)
	}

	if len(orders) == 0 {
		return nil, fmt.Errorf("order %s: %w", id, ErrNotFound)
	}

	return orders[0], nil
}

func (r *sqlRepository) ListByStore(storeID string) ([]*Order, error) {
	orders, err := r.query(`SELECT `+orderColumns+` FROM orders WHERE store_id = ? ORDER BY created_at DESC, id`, storeID)
	if err != nil {
		return nil, fmt.Errorf("listing orders of %s: %w", storeID, err)
	}

	return orders, nil
}

func (r *sqlRepository) Transition(id string, to Status) (*Order, error) {
	o, err := r.Get(id)
	if err != nil {
		return nil, err
	}

	from := o.Status
	if err := o.Transition(to, r.now().UTC()); err != nil {
		return nil, err
	}

	// The status guard keeps concurrent transitions from both succeeding.
	res, err := r.db.Exec(r.dialect.Rebind(`UPDATE orders SET status = ?, updated_at = ? WHERE id = ? AND status = ?`),
		string(o.Status), o.UpdatedAt, o.ID, string(from))
	if err != nil {
		return nil, fmt.Errorf("updating order %s: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}

	if n == 0 {
		return nil, fmt.Errorf("%w: order %s changed concurrently", ErrInvalidTransition, id)
	}

	return o, nil
}

// IsNotFound reports whether err means the order does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
