// Copyright 2026 The GroSnap Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"log"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

const (
	// CookieName is the name of the session cookie.
	CookieName = "grosnap_session"

	idKey      = "sid"
	contextKey = "grosnap.session"
)

// NewCookieStore returns a store keeping the session ID in a cookie signed
// with secret.
func NewCookieStore(secret []byte) sessions.Store {
	store := cookie.NewStore(secret)
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   7 * 24 * 3600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return store
}

// Middleware returns the handlers binding each request to its session,
// starting one when the cookie is missing or stale.
func Middleware(m *Manager, store sessions.Store) []gin.HandlerFunc {
	return []gin.HandlerFunc{
		sessions.Sessions(CookieName, store),
		func(c *gin.Context) {
			s := sessions.Default(c)

			id, _ := s.Get(idKey).(string)

			ctx, ok := m.Get(id)
			if !ok {
				ctx = m.Start()

				s.Set(idKey, ctx.ID)

				if err := s.Save(); err != nil {
					log.Printf("saving session cookie: %v", err)
				}
			}

			c.Set(contextKey, ctx)
			c.Next()
		},
	}
}

// From returns the session bound to the request by Middleware.
func From(c *gin.Context) *Context {
	return c.MustGet(contextKey).(*Context)
}

// Terminate ends the session of the request and clears its cookie.
func Terminate(c *gin.Context, m *Manager) {
	m.End(From(c).ID)

	s := sessions.Default(c)
	s.Clear()
	s.Options(sessions.Options{Path: "/", MaxAge: -1})

	if err := s.Save(); err != nil {
		log.Printf("clearing session cookie: %v", err)
	}
}
