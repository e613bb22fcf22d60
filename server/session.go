// Copyright 2026 The GroSnap Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/grosnap/grosnap/session"
)

func (s *Server) getSession(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, session.From(ctx).Info())
}

func (s *Server) markIntroShown(ctx *gin.Context) {
	sess := session.From(ctx)
	sess.MarkIntroShown()

	ctx.JSON(http.StatusOK, sess.Info())
}

type loginRequest struct {
	Role string `json:"role" binding:"required"`
	User string `json:"user"`
}

// login records the identity established by the authentication provider in
// front of the API.
func (s *Server) login(ctx *gin.Context) {
	var req loginRequest
	if err := bind(ctx, &req); err != nil {
		respondError(ctx, err)

		return
	}

	role, err := session.ParseRole(req.Role)
	if err != nil {
		respondError(ctx, err)

		return
	}

	sess := session.From(ctx)
	if err := sess.Login(role, req.User); err != nil {
		respondError(ctx, err)

		return
	}

	ctx.JSON(http.StatusOK, sess.Info())
}

func (s *Server) logout(ctx *gin.Context) {
	sess := session.From(ctx)
	sess.Logout()

	ctx.JSON(http.StatusOK, sess.Info())
}

func (s *Server) endSession(ctx *gin.Context) {
	session.Terminate(ctx, s.Sessions)
	ctx.Status(http.StatusNoContent)
}
