// Copyright 2026 The GroSnap Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/grosnap/grosnap/position"
	"github.com/grosnap/grosnap/ranking"
	"github.com/grosnap/grosnap/session"
	"github.com/grosnap/grosnap/spatial"
	"github.com/grosnap/grosnap/stores"
)

type rankedResponse struct {
	Origin   spatial.Point `json:"origin"`
	RadiusKm float64       `json:"radius_km,omitempty"`
	*ranking.Result
}

// nearbyStores ranks the shops around the reading carried by the query. With
// source=registry only registered stores within the radius are considered.
func (s *Server) nearbyStores(ctx *gin.Context) {
	origin, err := position.Query(ctx.Request.URL.Query()).Locate(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)

		return
	}

	octx, cancel := s.outbound(ctx)
	defer cancel()

	var res *ranking.Result

	switch source := ctx.DefaultQuery("source", "osm"); source {
	case "osm":
		res, err = s.Stores.Nearby(octx, origin)
	case "registry":
		res, err = s.Stores.NearbyRegistered(octx, origin)
	default:
		err = fmt.Errorf("%w: unknown source %q", errBadRequest, source)
	}

	if err != nil {
		respondError(ctx, err)

		return
	}

	ctx.JSON(http.StatusOK, rankedResponse{Origin: origin, RadiusKm: s.Stores.RadiusKm(), Result: res})
}

func storeFilter(ctx *gin.Context) (stores.StoreFilter, error) {
	filter := stores.StoreFilter{Query: ctx.Query("q")}

	for name, dst := range map[string]*int{"limit": &filter.Limit, "offset": &filter.Offset} {
		raw := ctx.Query(name)
		if raw == "" {
			continue
		}

		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return filter, fmt.Errorf("%w: invalid %s %q", errBadRequest, name, raw)
		}

		*dst = n
	}

	return filter, nil
}

// listStores returns the registry, ranked by distance when the query carries
// a position.
func (s *Server) listStores(ctx *gin.Context) {
	filter, err := storeFilter(ctx)
	if err != nil {
		respondError(ctx, err)

		return
	}

	q := position.Query(ctx.Request.URL.Query())
	if !q.Has() {
		list, err := s.Stores.ListRegistered(ctx.Request.Context(), filter)
		if err != nil {
			respondError(ctx, err)

			return
		}

		if list == nil {
			list = []*stores.Store{}
		}

		ctx.JSON(http.StatusOK, gin.H{"stores": list})

		return
	}

	origin, err := q.Locate(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)

		return
	}

	res, err := s.Stores.RankRegistered(ctx.Request.Context(), origin, filter)
	if err != nil {
		respondError(ctx, err)

		return
	}

	ctx.JSON(http.StatusOK, rankedResponse{Origin: origin, Result: res})
}

func (s *Server) getStore(ctx *gin.Context) {
	st, err := s.Stores.GetStore(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)

		return
	}

	ctx.JSON(http.StatusOK, st)
}

func (s *Server) registerStore(ctx *gin.Context) {
	var st stores.Store
	if err := bind(ctx, &st); err != nil {
		respondError(ctx, err)

		return
	}

	st.ID = ""
	st.UserID = session.From(ctx).Info().User

	octx, cancel := s.outbound(ctx)
	defer cancel()

	if err := s.Stores.Register(octx, &st); err != nil {
		respondError(ctx, err)

		return
	}

	ctx.JSON(http.StatusCreated, st)
}

func (s *Server) listProducts(ctx *gin.Context) {
	products, err := s.Stores.Products(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)

		return
	}

	if products == nil {
		products = []*stores.Product{}
	}

	ctx.JSON(http.StatusOK, gin.H{"products": products})
}

func (s *Server) createProduct(ctx *gin.Context) {
	s.saveProduct(ctx, "", http.StatusCreated)
}

func (s *Server) updateProduct(ctx *gin.Context) {
	s.saveProduct(ctx, ctx.Param("pid"), http.StatusOK)
}

func (s *Server) saveProduct(ctx *gin.Context, id string, status int) {
	var p stores.Product
	if err := bind(ctx, &p); err != nil {
		respondError(ctx, err)

		return
	}

	p.ID = id

	if err := s.Stores.SaveProduct(ctx.Request.Context(), ctx.Param("id"), &p); err != nil {
		respondError(ctx, err)

		return
	}

	ctx.JSON(status, p)
}

func (s *Server) deleteProduct(ctx *gin.Context) {
	if err := s.Stores.DeleteProduct(ctx.Request.Context(), ctx.Param("id"), ctx.Param("pid")); err != nil {
		respondError(ctx, err)

		return
	}

	ctx.Status(http.StatusNoContent)
}
