// Copyright 2026 The GroSnap Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/grosnap/grosnap/grocery"
	"github.com/grosnap/grosnap/matching"
	"github.com/grosnap/grosnap/session"
)

type createListRequest struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

type resolvedList struct {
	List    *grocery.List              `json:"list"`
	Reports []grocery.StoreMatchReport `json:"store_results"`
}

func (s *Server) listLists(ctx *gin.Context) {
	lists := session.From(ctx).Lists()
	if lists == nil {
		lists = []*grocery.List{}
	}

	ctx.JSON(http.StatusOK, gin.H{"lists": lists})
}

func (s *Server) createList(ctx *gin.Context) {
	var req createListRequest
	if err := bind(ctx, &req); err != nil {
		respondError(ctx, err)

		return
	}

	list, err := session.From(ctx).AddList(req.Name, req.Text)
	if err != nil {
		respondError(ctx, err)

		return
	}

	ctx.JSON(http.StatusCreated, list)
}

func (s *Server) getList(ctx *gin.Context) {
	list, err := session.From(ctx).List(ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)

		return
	}

	ctx.JSON(http.StatusOK, list)
}

func (s *Server) deleteList(ctx *gin.Context) {
	if err := session.From(ctx).DeleteList(ctx.Param("id")); err != nil {
		respondError(ctx, err)

		return
	}

	ctx.Status(http.StatusNoContent)
}

func (s *Server) resolveList(ctx *gin.Context) {
	list, err := session.From(ctx).List(ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)

		return
	}

	octx, cancel := s.outbound(ctx)
	defer cancel()

	reports, err := grocery.ResolveAgainstStores(octx, list, s.Matcher)
	if err != nil {
		respondError(ctx, err)

		return
	}

	ctx.JSON(http.StatusOK, resolvedList{List: list, Reports: reports})
}

// findItems serves the item matching contract used by the OCR page: a block
// of text in, per store partitions out.
func (s *Server) findItems(ctx *gin.Context) {
	var req matching.FindItemsRequest
	if err := bind(ctx, &req); err != nil {
		respondError(ctx, err)

		return
	}

	list, err := grocery.BuildList("find-items", grocery.NormalizeToItems(req.Text))
	if err != nil {
		respondError(ctx, err)

		return
	}

	octx, cancel := s.outbound(ctx)
	defer cancel()

	reports, err := grocery.ResolveAgainstStores(octx, list, s.Matcher)
	if err != nil {
		respondError(ctx, err)

		return
	}

	ctx.JSON(http.StatusOK, matching.FindItemsResponse{
		StoreResults: reports,
		Message:      "Items matched successfully",
	})
}
