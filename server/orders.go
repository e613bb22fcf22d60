// Copyright 2026 The GroSnap Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/grosnap/grosnap/orders"
	"github.com/grosnap/grosnap/session"
)

var orderActions = map[string]orders.Status{
	"accept": orders.Accepted,
	"reject": orders.Rejected,
	"ship":   orders.Shipped,
}

type placeOrderRequest struct {
	StoreID  string        `json:"storeId" binding:"required"`
	Customer string        `json:"customer"`
	Items    []orders.Item `json:"items"`
}

// placeOrder creates a pending order. The customer defaults to the logged in
// user.
func (s *Server) placeOrder(ctx *gin.Context) {
	var req placeOrderRequest
	if err := bind(ctx, &req); err != nil {
		respondError(ctx, err)

		return
	}

	if _, err := s.Stores.GetStore(ctx.Request.Context(), req.StoreID); err != nil {
		respondError(ctx, err)

		return
	}

	o := &orders.Order{StoreID: req.StoreID, Customer: req.Customer, Items: req.Items}
	if o.Customer == "" {
		o.Customer = session.From(ctx).Info().User
	}

	if err := s.Orders.Create(o); err != nil {
		respondError(ctx, err)

		return
	}

	ctx.JSON(http.StatusCreated, o)
}

func (s *Server) getOrder(ctx *gin.Context) {
	o, err := s.Orders.Get(ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)

		return
	}

	ctx.JSON(http.StatusOK, o)
}

func (s *Server) listOrders(ctx *gin.Context) {
	list, err := s.Orders.ListByStore(ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)

		return
	}

	if list == nil {
		list = []*orders.Order{}
	}

	ctx.JSON(http.StatusOK, gin.H{"orders": list})
}

func (s *Server) transitionOrder(ctx *gin.Context) {
	to, ok := orderActions[ctx.Param("action")]
	if !ok {
		respondError(ctx, fmt.Errorf("%w: unknown action %q", errBadRequest, ctx.Param("action")))

		return
	}

	o, err := s.Orders.Get(ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)

		return
	}

	if err := s.authorizeStore(ctx, o.StoreID); err != nil {
		respondError(ctx, err)

		return
	}

	o, err = s.Orders.Transition(o.ID, to)
	if err != nil {
		respondError(ctx, err)

		return
	}

	ctx.JSON(http.StatusOK, o)
}
