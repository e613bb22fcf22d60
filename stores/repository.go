// Copyright 2026 The GroSnap Authors
// SPDX-License-Identifier: Apache-2.0

package stores

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/grosnap/grosnap/spatial"
)

// Dialect selects the placeholder style of the underlying driver.
type Dialect int

const (
	// DuckDB uses ? placeholders.
	DuckDB Dialect = iota
	// Postgres uses $n placeholders.
	Postgres
)

// DialectFor returns the dialect of a database/sql driver name.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case "duckdb", "":
		return DuckDB, nil
	case "postgres", "pq":
		return Postgres, nil
	default:
		return DuckDB, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// Rebind rewrites ? placeholders for the dialect.
func (d Dialect) Rebind(query string) string {
	if d != Postgres {
		return query
	}

	var sb strings.Builder

	n := 0

	for _, r := range query {
		if r == '?' {
			n++

			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))

			continue
		}

		sb.WriteRune(r)
	}

	return sb.String()
}

// StoreFilter narrows ListStores. Query matches name, address or city.
type StoreFilter struct {
	Query  string
	Limit  int
	Offset int
}

// Repository persists the store registry and the shopkeeper inventories.
type Repository interface {
	// CreateSchema creates the stores and products tables
	CreateSchema() error

	// SaveStore inserts or updates a store, assigning an ID when missing
	SaveStore(store *Store) error

	// BulkSaveStores saves many stores in a single transaction
	BulkSaveStores(stores []*Store) error

	// GetStore returns a store or ErrNotFound
	GetStore(id string) (*Store, error)

	// ListStores returns the stores ordered by name
	ListStores(filter StoreFilter) ([]*Store, error)

	// CountStores returns the total number of stores
	CountStores() (int, error)

	// StoresInCells returns the stores indexed in any of the given H3 cells
	StoresInCells(cells []int64) ([]*Store, error)

	// SaveProduct inserts or updates a product of an existing store
	SaveProduct(product *Product) error

	// GetProduct returns a product of a store or ErrNotFound
	GetProduct(storeID, id string) (*Product, error)

	// DeleteProduct removes a product of a store
	DeleteProduct(storeID, id string) error

	// ListProducts returns the inventory of a store ordered by name
	ListProducts(storeID string) ([]*Product, error)

	// ListAllProducts returns every product ordered by store and name
	ListAllProducts() ([]*Product, error)

	// DB returns the underlying database connection
	DB() *sql.DB
}

type sqlRepository struct {
	db      *sql.DB
	dialect Dialect
	now     func() time.Time
}

// NewRepository creates a registry over db.
func NewRepository(db *sql.DB, dialect Dialect) Repository {
	return &sqlRepository{db: db, dialect: dialect, now: time.Now}
}

func (r *sqlRepository) DB() *sql.DB {
	return r.db
}

func (r *sqlRepository) CreateSchema() error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS stores (
			id VARCHAR PRIMARY KEY,
			name VARCHAR NOT NULL,
			owner_name VARCHAR NOT NULL DEFAULT '',
			owner_email VARCHAR NOT NULL DEFAULT '',
			phone VARCHAR NOT NULL DEFAULT '',
			address VARCHAR NOT NULL DEFAULT '',
			city VARCHAR NOT NULL DEFAULT '',
			category VARCHAR NOT NULL DEFAULT '',
			user_id VARCHAR NOT NULL DEFAULT '',
			lat DOUBLE PRECISION,
			lng DOUBLE PRECISION,
			h3_res7 BIGINT,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		);

		CREATE TABLE IF NOT EXISTS products (
			id VARCHAR PRIMARY KEY,
			store_id VARCHAR NOT NULL,
			name VARCHAR NOT NULL,
			category VARCHAR NOT NULL DEFAULT '',
			price DOUBLE PRECISION NOT NULL DEFAULT 0,
			stock INTEGER NOT NULL DEFAULT 0,
			updated_at TIMESTAMP NOT NULL
		);
	`)

	return err
}

const storeColumns = `id, name, owner_name, owner_email, phone, address, city, category, user_id,
	lat, lng, h3_res7, created_at, updated_at`

const upsertStore = `
	INSERT INTO stores (` + storeColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (id) DO UPDATE SET
		name = excluded.name,
		owner_name = excluded.owner_name,
		owner_email = excluded.owner_email,
		phone = excluded.phone,
		address = excluded.address,
		city = excluded.city,
		category = excluded.category,
		user_id = excluded.user_id,
		lat = excluded.lat,
		lng = excluded.lng,
		h3_res7 = excluded.h3_res7,
		updated_at = excluded.updated_at
`

// prepareStore validates s and fills the derived fields.
func (r *sqlRepository) prepareStore(s *Store) error {
	s.sanitize()

	if err := s.Validate(); err != nil {
		return err
	}

	if err := s.computeH3(); err != nil {
		return err
	}

	if s.ID == "" {
		s.ID = uuid.NewString()
	}

	s.UpdatedAt = r.now().UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = s.UpdatedAt
	}

	return nil
}

func storeArgs(s *Store) []any {
	var lat, lng, cell any
	if s.Point != nil {
		lat, lng, cell = s.Point.Lat, s.Point.Lng, s.H3Res7
	}

	return []any{
		s.ID, s.Name, s.Owner, s.Email, s.Phone, s.Address, s.City, s.Category, s.UserID,
		lat, lng, cell, s.CreatedAt, s.UpdatedAt,
	}
}

func (r *sqlRepository) SaveStore(s *Store) error {
	if err := r.prepareStore(s); err != nil {
		return err
	}

	if _, err := r.db.Exec(r.dialect.Rebind(upsertStore), storeArgs(s)...); err != nil {
		return fmt.Errorf("saving store %s: %w", s.ID, err)
	}

	return nil
}

func (r *sqlRepository) BulkSaveStores(stores []*Store) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(r.dialect.Rebind(upsertStore))
	if err != nil {
		if rErr := tx.Rollback(); rErr != nil {
			err = errors.Join(err, rErr)
		}

		return err
	}
	defer stmt.Close()

	for i, s := range stores {
		err = r.prepareStore(s)
		if err == nil {
			_, err = stmt.Exec(storeArgs(s)...)
		}

		if err != nil {
			if rErr := tx.Rollback(); rErr != nil {
				err = errors.Join(err, rErr)
			}

			return fmt.Errorf("saving store #%d (%s): %w", i+1, s.Name, err)
		}
	}

	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStore(row rowScanner) (*Store, error) {
	var (
		s        Store
		lat, lng sql.NullFloat64
		cell     sql.NullInt64
	)

	err := row.Scan(&s.ID, &s.Name, &s.Owner, &s.Email, &s.Phone, &s.Address, &s.City, &s.Category, &s.UserID,
		&lat, &lng, &cell, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if lat.Valid && lng.Valid {
		s.Point = &spatial.Point{Lat: lat.Float64, Lng: lng.Float64}
		s.H3Res7 = cell.Int64
	}

	return &s, nil
}

func (r *sqlRepository) queryStores(query string, args ...any) ([]*Store, error) {
	rows, err := r.db.Query(r.dialect.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stores []*Store

	for rows.Next() {
		s, err := scanStore(rows)
		if err != nil {
			return nil, err
		}

		stores = append(stores, s)
	}

	return stores, rows.Err()
}

func (r *sqlRepository) GetStore(id string) (*Store, error) {
	row := r.db.QueryRow(r.dialect.Rebind(`SELECT `+storeColumns+` FROM stores WHERE id = ?`), id)

	s, err := scanStore(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("store %s: %w", id, ErrNotFound)
	}

	return s, err
}

func (r *sqlRepository) ListStores(filter StoreFilter) ([]*Store, error) {
	query := `SELECT ` + storeColumns + ` FROM stores`

	var args []any

	if q := strings.ToLower(strings.TrimSpace(filter.Query)); q != "" {
		like := "%" + q + "%"
		query += ` WHERE lower(name) LIKE ? OR lower(address) LIKE ? OR lower(city) LIKE ?`
		args = append(args, like, like, like)
	}

	query += ` ORDER BY name, id`

	if filter.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, filter.Limit, filter.Offset)
	}

	stores, err := r.queryStores(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing stores: %w", err)
	}

	return stores, nil
}

func (r *sqlRepository) CountStores() (int, error) {
	var count int

	err := r.db.QueryRow(`SELECT COUNT(*) FROM stores`).Scan(&count)

	return count, err
}

func (r *sqlRepository) StoresInCells(cells []int64) ([]*Store, error) {
	if len(cells) == 0 {
		return nil, nil
	}

	args := make([]any, len(cells))
	for i, c := range cells {
		args[i] = c
	}

	query := `SELECT ` + storeColumns + ` FROM stores WHERE h3_res7 IN (?` +
		strings.Repeat(", ?", len(cells)-1) + `) ORDER BY name, id`

	stores, err := r.queryStores(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing stores by cell: %w", err)
	}

	return stores, nil
}

const productColumns = `id, store_id, name, category, price, stock, updated_at`

func (r *sqlRepository) SaveProduct(p *Product) error {
	p.Name = strings.TrimSpace(p.Name)
	p.Category = strings.TrimSpace(p.Category)

	if err := p.Validate(); err != nil {
		return err
	}

	if _, err := r.GetStore(p.StoreID); err != nil {
		return err
	}

	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	p.UpdatedAt = r.now().UTC()

	_, err := r.db.Exec(r.dialect.Rebind(`
		INSERT INTO products (`+productColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			category = excluded.category,
			price = excluded.price,
			stock = excluded.stock,
			updated_at = excluded.updated_at
	`), p.ID, p.StoreID, p.Name, p.Category, p.Price, p.Stock, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("saving product %s: %w", p.ID, err)
	}

	return nil
}

func (r *sqlRepository) queryProducts(query string, args ...any) ([]*Product, error) {
	rows, err := r.db.Query(r.dialect.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*Product

	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.StoreID, &p.Name, &p.Category, &p.Price, &p.Stock, &p.UpdatedAt); err != nil {
			return nil, err
		}

		products = append(products, &p)
	}

	return products, rows.Err()
}

func (r *sqlRepository) GetProduct(storeID, id string) (*Product, error) {
	products, err := r.queryProducts(`SELECT `+productColumns+` FROM products WHERE store_id = ? AND id = ?`, storeID, id)
	if err != nil {
		return nil, fmt.Errorf("getting product %s: %w", id, err)
	}

	if len(products) == 0 {
		return nil, fmt.Errorf("product %s: %w", id, ErrNotFound)
	}

	return products[0], nil
}

func (r *sqlRepository) DeleteProduct(storeID, id string) error {
	res, err := r.db.Exec(r.dialect.Rebind(`DELETE FROM products WHERE store_id = ? AND id = ?`), storeID, id)
	if err != nil {
		return fmt.Errorf("deleting product %s: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if n == 0 {
		return fmt.Errorf("product %s: %w", id, ErrNotFound)
	}

	return nil
}

func (r *sqlRepository) ListProducts(storeID string) ([]*Product, error) {
	products, err := r.queryProducts(`SELECT `+productColumns+` FROM products WHERE store_id = ? ORDER BY name, id`, storeID)
	if err != nil {
		return nil, fmt.Errorf("listing products of %s: %w", storeID, err)
	}

	return products, nil
}

func (r *sqlRepository) ListAllProducts() ([]*Product, error) {
	products, err := r.queryProducts(`SELECT ` + productColumns + ` FROM products ORDER BY store_id, name, id`)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}

	return products, nil
}
