// Copyright 2026 The GroSnap Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/grosnap/grosnap/grocery"
	"github.com/grosnap/grosnap/orders"
	"github.com/grosnap/grosnap/position"
	"github.com/grosnap/grosnap/session"
	"github.com/grosnap/grosnap/spatial"
	"github.com/grosnap/grosnap/stores"
)

var (
	// errBadRequest marks malformed request bodies and parameters.
	errBadRequest = errors.New("bad request")

	// errNotStoreOwner is returned when a shopkeeper acts on a store
	// registered by someone else.
	errNotStoreOwner = errors.New("store is managed by another shopkeeper")
)

// statusFor maps the error taxonomy to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, spatial.ErrInvalidCoordinate),
		position.IsPositioningError(err),
		stores.IsValidationError(err),
		errors.Is(err, orders.ErrInvalidOrder),
		errors.Is(err, session.ErrInvalidRole),
		errors.Is(err, session.ErrMissingUser):
		return http.StatusBadRequest
	case errors.Is(err, errNotStoreOwner):
		return http.StatusForbidden
	case errors.Is(err, grocery.ErrEmptyList):
		return http.StatusUnprocessableEntity
	case errors.Is(err, grocery.ErrBusy),
		errors.Is(err, grocery.ErrInvalidTransition),
		errors.Is(err, orders.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, stores.ErrNotFound),
		errors.Is(err, orders.ErrNotFound),
		errors.Is(err, session.ErrListNotFound):
		return http.StatusNotFound
	case isRegistryError(err):
		return http.StatusInternalServerError
	case grocery.IsMatchError(err),
		grocery.IsExtractionError(err),
		stores.IsQueryError(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func isRegistryError(err error) bool {
	var qe *stores.QueryError

	return errors.As(err, &qe) && qe.Type == stores.ErrorTypeRegistry
}

// respondError writes {"error": message}. Internal failures are logged and
// their details withheld.
func respondError(ctx *gin.Context, err error) {
	status := statusFor(err)

	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.Printf("%s %s: %v", ctx.Request.Method, ctx.FullPath(), err)

		msg = "internal server error"
	}

	ctx.AbortWithStatusJSON(status, gin.H{"error": msg})
}
