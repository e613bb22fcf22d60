// Copyright 2026 The GroSnap Authors
// SPDX-License-Identifier: Apache-2.0

// Package session holds the per-user state of the application: role, login
// and intro flags, grocery lists and the OCR flow.
package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/grosnap/grosnap/grocery"
	"github.com/grosnap/grosnap/utils/textutils"
)

// Role of the user owning a session.
type Role string

const (
	Guest      Role = ""
	Customer   Role = "customer"
	Shopkeeper Role = "shopkeeper"
)

const (
	// ListPrefix names typed lists created without a name.
	ListPrefix = "Grocery List"
	// OCRListPrefix names lists submitted through the OCR flow without a name.
	OCRListPrefix = "OCR List"
)

var (
	// ErrListNotFound is returned when a list is not part of the session.
	ErrListNotFound = errors.New("list not found")

	// ErrInvalidRole is returned when logging in with an unknown role.
	ErrInvalidRole = errors.New("invalid role")

	// ErrMissingUser is returned when a shopkeeper logs in without a user,
	// which would leave the stores they register without an owner.
	ErrMissingUser = errors.New("shopkeeper login requires a user")
)

// ParseRole validates a role name.
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case Customer, Shopkeeper:
		return r, nil
	default:
		return Guest, fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
}

// Context is the state of one user session. It is safe for concurrent use.
type Context struct {
	ID        string
	CreatedAt time.Time

	// Flow is the OCR flow of the session.
	Flow *grocery.Flow

	mu         sync.Mutex
	role       Role
	user       string
	loggedIn   bool
	introShown bool
	lists      []*grocery.List
	typedLists int
	ocrLists   int
	lastSeen   time.Time
}

// Info is a copy of the flags of a session.
type Info struct {
	ID         string `json:"id"`
	Role       Role   `json:"role,omitempty"`
	User       string `json:"user,omitempty"`
	LoggedIn   bool   `json:"loggedIn"`
	IntroShown bool   `json:"introShown"`
	Lists      int    `json:"lists"`
}

// Info returns the current flags.
func (c *Context) Info() Info {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Info{
		ID:         c.ID,
		Role:       c.role,
		User:       c.user,
		LoggedIn:   c.loggedIn,
		IntroShown: c.introShown,
		Lists:      len(c.lists),
	}
}

// Role returns the role of the logged in user, Guest otherwise.
func (c *Context) Role() Role {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.role
}

// MarkIntroShown records that the user went through the introduction.
func (c *Context) MarkIntroShown() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.introShown = true
}

// Login records the identity established by the authentication provider.
func (c *Context) Login(role Role, user string) error {
	if role != Customer && role != Shopkeeper {
		return fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}

	user = strings.TrimSpace(user)
	if role == Shopkeeper && user == "" {
		return ErrMissingUser
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.role = role
	c.user = user
	c.loggedIn = true

	return nil
}

// Logout clears the identity. Lists and the intro flag are kept.
func (c *Context) Logout() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.role = Guest
	c.user = ""
	c.loggedIn = false
}

// AddList builds a list from raw text. An empty name gets the next
// "Grocery List N", numbers are not reused after deletions.
func (c *Context) AddList(name, raw string) (*grocery.List, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if strings.TrimSpace(name) == "" {
		name = textutils.NumberedName(ListPrefix, c.typedLists)
	}

	list, err := grocery.BuildList(name, grocery.NormalizeToItems(raw))
	if err != nil {
		return nil, err
	}

	c.typedLists++
	c.lists = append(c.lists, list)

	return list, nil
}

// NextOCRListName returns the default name of the next OCR list.
func (c *Context) NextOCRListName() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return textutils.NumberedName(OCRListPrefix, c.ocrLists)
}

// KeepOCRList stores a list produced by the OCR flow.
func (c *Context) KeepOCRList(list *grocery.List) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ocrLists++
	c.lists = append(c.lists, list)
}

// Lists returns the lists of the session in creation order.
func (c *Context) Lists() []*grocery.List {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]*grocery.List(nil), c.lists...)
}

// List returns a list by ID.
func (c *Context) List(id string) (*grocery.List, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, l := range c.lists {
		if l.ID == id {
			return l, nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrListNotFound, id)
}

// DeleteList removes a list by ID.
func (c *Context) DeleteList(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, l := range c.lists {
		if l.ID == id {
			c.lists = append(c.lists[:i], c.lists[i+1:]...)

			return nil
		}
	}

	return fmt.Errorf("%w: %s", ErrListNotFound, id)
}

func (c *Context) touch(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lastSeen = now
}

func (c *Context) idleSince(now time.Time) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	return now.Sub(c.lastSeen)
}

// Manager owns the live sessions.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Context
	now      func() time.Time
}

// NewManager returns a manager without sessions.
func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Context), now: time.Now}
}

// Start creates a new session.
func (m *Manager) Start() *Context {
	now := m.now()
	c := &Context{ID: uuid.NewString(), CreatedAt: now, Flow: grocery.NewFlow(), lastSeen: now}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[c.ID] = c

	return c
}

// Get returns a live session.
func (m *Manager) Get(id string) (*Context, bool) {
	m.mu.Lock()
	c, ok := m.sessions[id]
	m.mu.Unlock()

	if ok {
		c.touch(m.now())
	}

	return c, ok
}

// End tears a session down, discarding its lists and flow.
func (m *Manager) End(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, id)
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.sessions)
}

// Expire ends the sessions idle for longer than ttl and returns how many
// were removed.
func (m *Manager) Expire(ttl time.Duration) int {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0

	for id, c := range m.sessions {
		if c.idleSince(now) > ttl {
			delete(m.sessions, id)
			n++
		}
	}

	return n
}
