// Copyright 2026 The GroSnap Authors
// SPDX-License-Identifier: Apache-2.0

// Package position obtains the customer's current coordinate.
package position

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/grosnap/grosnap/spatial"
)

// ErrorKind classifies positioning failures.
type ErrorKind int

const (
	// Unavailable the source cannot produce a reading.
	Unavailable ErrorKind = iota
	// Denied the user did not grant access to their location.
	Denied
	// Timeout no reading arrived in time.
	Timeout
	// Invalid the reading is not a valid coordinate.
	Invalid
)

var kindNames = map[ErrorKind]string{
	Unavailable: "location unavailable",
	Denied:      "location permission denied",
	Timeout:     "location request timed out",
	Invalid:     "invalid location",
}

func (k ErrorKind) String() string {
	return kindNames[k]
}

// Error is a positioning failure.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}

	return e.Kind.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsPositioningError reports whether err comes from a Source.
func IsPositioningError(err error) bool {
	var pe *Error

	return errors.As(err, &pe)
}

// Source yields a single reading on request.
type Source interface {
	Locate(ctx context.Context) (spatial.Point, error)
}

// Fixed always returns the same point, typically taken from CLI flags.
type Fixed spatial.Point

// Locate implements Source.
func (f Fixed) Locate(ctx context.Context) (spatial.Point, error) {
	if err := ctx.Err(); err != nil {
		return spatial.Point{}, &Error{Kind: Timeout, Err: err}
	}

	p := spatial.Point(f)
	if err := p.Validate(); err != nil {
		return spatial.Point{}, &Error{Kind: Invalid, Err: err}
	}

	return p, nil
}

// Query reads a browser geolocation reading forwarded as query parameters:
// lat and lon, or error with one of denied, unavailable or timeout when the
// browser could not produce one.
type Query url.Values

// Locate implements Source.
func (q Query) Locate(_ context.Context) (spatial.Point, error) {
	v := url.Values(q)

	switch strings.ToLower(v.Get("error")) {
	case "":
	case "denied", "permission_denied":
		return spatial.Point{}, &Error{Kind: Denied}
	case "timeout":
		return spatial.Point{}, &Error{Kind: Timeout}
	default:
		return spatial.Point{}, &Error{Kind: Unavailable, Err: errors.New(v.Get("error"))}
	}

	latStr, lonStr := v.Get("lat"), v.Get("lon")
	if lonStr == "" {
		lonStr = v.Get("lng")
	}

	if latStr == "" || lonStr == "" {
		return spatial.Point{}, &Error{Kind: Unavailable, Err: errors.New("lat and lon are required")}
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return spatial.Point{}, &Error{Kind: Invalid, Err: fmt.Errorf("parsing lat: %w", err)}
	}

	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return spatial.Point{}, &Error{Kind: Invalid, Err: fmt.Errorf("parsing lon: %w", err)}
	}

	p, err := spatial.NewPoint(lat, lon)
	if err != nil {
		return spatial.Point{}, &Error{Kind: Invalid, Err: err}
	}

	return p, nil
}

// Has reports whether the query carries any positioning information.
func (q Query) Has() bool {
	v := url.Values(q)

	return v.Has("lat") || v.Has("lon") || v.Has("lng") || v.Has("error")
}
