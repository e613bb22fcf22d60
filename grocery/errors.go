// Copyright 2026 The GroSnap Authors
// SPDX-License-Identifier: Apache-2.0

package grocery

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyList is returned when a list would end up with no items. It is
	// a local validation failure: no request is issued.
	ErrEmptyList = errors.New("grocery list has no items")

	// ErrBusy is returned when an action is triggered while the previous
	// request of the same flow is still outstanding.
	ErrBusy = errors.New("a request is already in progress")

	// ErrInvalidTransition is returned when an action is not allowed in the
	// current state of the flow.
	ErrInvalidTransition = errors.New("action not allowed in current state")
)

// MatchError wraps any failure of the item matcher collaborator.
type MatchError struct {
	Err error
}

func (e *MatchError) Error() string {
	return fmt.Sprintf("matching items: %v", e.Err)
}

func (e *MatchError) Unwrap() error {
	return e.Err
}

// ExtractionError reports a failed or empty text extraction.
type ExtractionError struct {
	Message string
	Err     error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extracting text: %s: %v", e.Message, e.Err)
	}

	return "extracting text: " + e.Message
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// IsMatchError reports whether err was produced by the item matcher.
func IsMatchError(err error) bool {
	var me *MatchError

	return errors.As(err, &me)
}

// IsExtractionError reports whether err was produced by the text extractor.
func IsExtractionError(err error) bool {
	var ee *ExtractionError

	return errors.As(err, &ee)
}
