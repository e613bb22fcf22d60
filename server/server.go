// Copyright 2026 The GroSnap Authors
// SPDX-License-Identifier: Apache-2.0

// Package server exposes the store ranking, list resolution, OCR and order
// operations as a JSON API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/grosnap/grosnap/grocery"
	"github.com/grosnap/grosnap/orders"
	"github.com/grosnap/grosnap/session"
	"github.com/grosnap/grosnap/stores"
)

// Deps are the collaborators of the Server.
type Deps struct {
	Stores    *stores.Service
	Orders    orders.Repository
	Matcher   grocery.ItemMatcher
	Extractor grocery.TextExtractor
	Sessions  *session.Manager
	Cookies   sessions.Store

	// RequestTimeout bounds every outbound call made on behalf of a request
	RequestTimeout time.Duration

	// SessionTTL ends sessions idle for longer
	SessionTTL time.Duration

	Version string
}

// Server serves the JSON API over the collaborators in Deps.
type Server struct {
	Deps
}

// New creates a Server.
func New(deps Deps) *Server {
	if deps.Sessions == nil {
		deps.Sessions = session.NewManager()
	}

	if deps.Cookies == nil {
		deps.Cookies = session.NewCookieStore([]byte(uuid.NewString()))
	}

	if deps.RequestTimeout <= 0 {
		deps.RequestTimeout = 30 * time.Second
	}

	return &Server{Deps: deps}
}

// Handler returns the router with every route registered.
func (s *Server) Handler() *gin.Engine {
	r := gin.Default()
	r.MaxMultipartMemory = maxUploadSize

	r.GET("/health", s.health)
	r.POST("/find-items", s.findItems)

	api := r.Group("/api")
	api.Use(session.Middleware(s.Sessions, s.Cookies)...)

	api.GET("/session", s.getSession)
	api.POST("/session/intro", s.markIntroShown)
	api.POST("/session/login", s.login)
	api.POST("/session/logout", s.logout)
	api.DELETE("/session", s.endSession)

	api.GET("/stores/nearby", s.nearbyStores)
	api.GET("/stores", s.listStores)
	api.GET("/stores/:id", s.getStore)
	api.GET("/stores/:id/products", s.listProducts)

	shop := api.Group("", requireRole(session.Shopkeeper))
	shop.POST("/stores", s.registerStore)
	shop.POST("/orders/:id/:action", s.transitionOrder)

	owned := shop.Group("/stores/:id", s.requireStoreOwner)
	owned.POST("/products", s.createProduct)
	owned.PUT("/products/:pid", s.updateProduct)
	owned.DELETE("/products/:pid", s.deleteProduct)
	owned.GET("/orders", s.listOrders)

	api.GET("/lists", s.listLists)
	api.POST("/lists", s.createList)
	api.GET("/lists/:id", s.getList)
	api.DELETE("/lists/:id", s.deleteList)
	api.POST("/lists/:id/resolve", s.resolveList)

	api.GET("/ocr", s.ocrState)
	api.POST("/ocr/upload", s.ocrUpload)
	api.PUT("/ocr/text", s.ocrEditText)
	api.POST("/ocr/submit", s.ocrSubmit)
	api.POST("/ocr/retry", s.ocrRetry)
	api.DELETE("/ocr", s.ocrReset)

	api.POST("/orders", s.placeOrder)
	api.GET("/orders/:id", s.getOrder)

	return r
}

// Run serves on addr until ctx is canceled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.SessionTTL > 0 {
		go s.expireSessions(ctx)
	}

	errCh := make(chan error, 1)

	go func() {
		log.Printf("listening on %s", addr)

		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}

	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *Server) expireSessions(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sessions.Expire(s.SessionTTL); n > 0 {
				log.Printf("expired %d idle sessions", n)
			}
		}
	}
}

// outbound returns the context for calls to collaborators.
func (s *Server) outbound(ctx *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx.Request.Context(), s.RequestTimeout)
}

func (s *Server) health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok", "version": s.Version})
}

func requireRole(role session.Role) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if session.From(ctx).Role() != role {
			ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": fmt.Sprintf("%s login required", role)})

			return
		}

		ctx.Next()
	}
}

// authorizeStore checks that the logged in shopkeeper registered storeID.
// Stores loaded by the CLI have no owner and cannot be managed over the API.
func (s *Server) authorizeStore(ctx *gin.Context, storeID string) error {
	st, err := s.Stores.GetStore(ctx.Request.Context(), storeID)
	if err != nil {
		return err
	}

	if user := session.From(ctx).Info().User; st.UserID == "" || st.UserID != user {
		return fmt.Errorf("%w: %s", errNotStoreOwner, st.Name)
	}

	return nil
}

func (s *Server) requireStoreOwner(ctx *gin.Context) {
	if err := s.authorizeStore(ctx, ctx.Param("id")); err != nil {
		respondError(ctx, err)

		return
	}

	ctx.Next()
}

// bind decodes the JSON body into v.
func bind(ctx *gin.Context, v any) error {
	if err := ctx.ShouldBindJSON(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}

	return nil
}
