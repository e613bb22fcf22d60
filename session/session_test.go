// Copyright 2026 The GroSnap Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/grosnap/grosnap/grocery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerLifecycle(t *testing.T) {
	m := NewManager()

	c := m.Start()
	require.NotEmpty(t, c.ID)
	require.NotNil(t, c.Flow)
	assert.Equal(t, grocery.Idle, c.Flow.State())
	assert.Equal(t, 1, m.Len())

	got, ok := m.Get(c.ID)
	require.True(t, ok)
	assert.Same(t, c, got)

	m.End(c.ID)
	_, ok = m.Get(c.ID)
	assert.False(t, ok)
	assert.Equal(t, 0, m.Len())
}

func TestSessionsAreIsolated(t *testing.T) {
	m := NewManager()
	a, b := m.Start(), m.Start()
	require.NotEqual(t, a.ID, b.ID)

	_, err := a.AddList("", "milk")
	require.NoError(t, err)
	a.MarkIntroShown()

	assert.Len(t, a.Lists(), 1)
	assert.Empty(t, b.Lists())
	assert.False(t, b.Info().IntroShown)
}

func TestLoginLogout(t *testing.T) {
	c := NewManager().Start()

	err := c.Login("admin", "x")
	assert.True(t, errors.Is(err, ErrInvalidRole))
	assert.False(t, c.Info().LoggedIn)

	err = c.Login(Shopkeeper, "  ")
	assert.ErrorIs(t, err, ErrMissingUser)
	assert.False(t, c.Info().LoggedIn)

	require.NoError(t, c.Login(Customer, ""), "customers may stay anonymous")
	assert.Equal(t, Customer, c.Role())

	require.NoError(t, c.Login(Shopkeeper, " ravi "))
	assert.Equal(t, Info{ID: c.ID, Role: Shopkeeper, User: "ravi", LoggedIn: true}, c.Info())

	_, err = c.AddList("", "milk")
	require.NoError(t, err)
	c.Logout()

	info := c.Info()
	assert.False(t, info.LoggedIn)
	assert.Equal(t, Guest, info.Role)
	assert.Equal(t, 1, info.Lists)
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole(" Customer ")
	require.NoError(t, err)
	assert.Equal(t, Customer, r)

	_, err = ParseRole("")
	assert.Error(t, err)
}

func TestListNaming(t *testing.T) {
	c := NewManager().Start()

	first, err := c.AddList("", "milk\nbread")
	require.NoError(t, err)
	assert.Equal(t, "Grocery List 1", first.Name)
	assert.Equal(t, []grocery.Item{"milk", "bread"}, first.Items)

	named, err := c.AddList("  Party  ", "chips")
	require.NoError(t, err)
	assert.Equal(t, "Party", named.Name)

	assert.Equal(t, "OCR List 1", c.NextOCRListName())
	c.KeepOCRList(&grocery.List{ID: "ocr", Name: c.NextOCRListName(), Items: []grocery.Item{"rice"}})
	assert.Equal(t, "OCR List 2", c.NextOCRListName())

	require.NoError(t, c.DeleteList(first.ID))

	third, err := c.AddList("", "eggs")
	require.NoError(t, err)
	assert.Equal(t, "Grocery List 3", third.Name)

	names := []string{}
	for _, l := range c.Lists() {
		names = append(names, l.Name)
	}

	assert.Equal(t, []string{"Party", "OCR List 1", "Grocery List 3"}, names)
}

func TestEmptyListIsNotKept(t *testing.T) {
	c := NewManager().Start()

	_, err := c.AddList("", " \n\t\n")
	assert.ErrorIs(t, err, grocery.ErrEmptyList)
	assert.Empty(t, c.Lists())

	list, err := c.AddList("", "milk")
	require.NoError(t, err)
	assert.Equal(t, "Grocery List 1", list.Name)
}

func TestGetAndDeleteList(t *testing.T) {
	c := NewManager().Start()

	list, err := c.AddList("", "milk")
	require.NoError(t, err)

	got, err := c.List(list.ID)
	require.NoError(t, err)
	assert.Same(t, list, got)

	require.NoError(t, c.DeleteList(list.ID))

	_, err = c.List(list.ID)
	assert.ErrorIs(t, err, ErrListNotFound)
	assert.ErrorIs(t, c.DeleteList(list.ID), ErrListNotFound)
}

func TestExpire(t *testing.T) {
	m := NewManager()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	old := m.Start()
	now = now.Add(time.Hour)
	fresh := m.Start()

	assert.Equal(t, 1, m.Expire(30*time.Minute))

	_, ok := m.Get(old.ID)
	assert.False(t, ok)
	_, ok = m.Get(fresh.ID)
	assert.True(t, ok)
}

func TestConcurrentLists(t *testing.T) {
	c := NewManager().Start()

	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, err := c.AddList("", "milk")
			assert.NoError(t, err)
		}()
	}

	wg.Wait()

	seen := make(map[string]bool)
	for _, l := range c.Lists() {
		seen[l.Name] = true
	}

	assert.Len(t, seen, 20)
}
