// Copyright 2026 The GroSnap Authors
// SPDX-License-Identifier: Apache-2.0

// Package grocery turns free-form text into grocery lists and reconciles them
// against store inventories.
package grocery

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Item is a single non-blank, trimmed line of a grocery list.
type Item string

// List is an immutable named sequence of items.
type List struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Items     []Item    `json:"items"`
	CreatedAt time.Time `json:"createdAt"`
}

// Names returns the items as plain strings, in list order.
func (l *List) Names() []string {
	names := make([]string, len(l.Items))
	for i, item := range l.Items {
		names[i] = string(item)
	}

	return names
}

var lineBreaks = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// NormalizeToItems splits raw text into items: one per line, trimmed, blank
// lines dropped. Order and duplicates are preserved.
func NormalizeToItems(raw string) []Item {
	lines := strings.Split(lineBreaks.Replace(raw), "\n")
	items := make([]Item, 0, len(lines))

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		items = append(items, Item(line))
	}

	return items
}

// Builder creates lists. The zero value uses time.Now and random UUIDs.
type Builder struct {
	Now   func() time.Time
	NewID func() string
}

// Build returns a new list holding a copy of items.
func (b Builder) Build(name string, items []Item) (*List, error) {
	if len(items) == 0 {
		return nil, ErrEmptyList
	}

	now := time.Now
	if b.Now != nil {
		now = b.Now
	}

	newID := uuid.NewString
	if b.NewID != nil {
		newID = b.NewID
	}

	return &List{
		ID:        newID(),
		Name:      strings.TrimSpace(name),
		Items:     append([]Item(nil), items...),
		CreatedAt: now(),
	}, nil
}

// BuildList is Builder{}.Build.
func BuildList(name string, items []Item) (*List, error) {
	return Builder{}.Build(name, items)
}
