// Copyright 2026 The GroSnap Authors
// SPDX-License-Identifier: Apache-2.0

package grocery

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
)

// State of an OCR flow.
type State int

const (
	// Idle no file selected yet.
	Idle State = iota
	// FileSelected an image is ready to upload.
	FileSelected
	// Uploading the image is being sent to the text extractor.
	Uploading
	// TextExtracted text is available for the user to edit.
	TextExtracted
	// Submitting the edited text is being matched against stores.
	Submitting
	// ResultsReady matching finished.
	ResultsReady
	// Failed the last request failed, Retry returns to the prior stable state.
	Failed
)

var stateNames = map[State]string{
	Idle:          "idle",
	FileSelected:  "file_selected",
	Uploading:     "uploading",
	TextExtracted: "text_extracted",
	Submitting:    "submitting",
	ResultsReady:  "results_ready",
	Failed:        "error",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}

	return fmt.Sprintf("State(%d)", int(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// TextExtractor turns an image into text.
type TextExtractor interface {
	Extract(ctx context.Context, filename string, image io.Reader) (string, error)
}

// Image is a selected file kept in memory until it is uploaded.
type Image struct {
	Name string
	Data []byte
}

// Snapshot is a copy of the observable state of a Flow.
type Snapshot struct {
	State   State              `json:"state"`
	File    string             `json:"file,omitempty"`
	Text    string             `json:"text"`
	List    *List              `json:"list,omitempty"`
	Reports []StoreMatchReport `json:"store_results,omitempty"`
	Error   string             `json:"error,omitempty"`
}

// Flow drives the upload, edit and submit cycle of an OCR list. At most one
// request is outstanding at any time; actions triggered meanwhile fail with
// ErrBusy.
type Flow struct {
	mu      sync.Mutex
	state   State
	prior   State
	busy    bool
	image   *Image
	text    string
	list    *List
	reports []StoreMatchReport
	err     error
	builder Builder
}

// NewFlow returns an idle flow.
func NewFlow() *Flow {
	return &Flow{}
}

// Snapshot returns the current state.
func (f *Flow) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	s := Snapshot{
		State:   f.state,
		Text:    f.text,
		List:    f.list,
		Reports: f.reports,
	}

	if f.image != nil {
		s.File = f.image.Name
	}

	if f.err != nil {
		s.Error = f.err.Error()
	}

	return s
}

// State returns the current state.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.state
}

// SelectFile stores img for a later upload. Previous text and results are
// kept until a new extraction succeeds.
func (f *Flow) SelectFile(img Image) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.busy {
		return ErrBusy
	}

	if img.Name == "" || len(img.Data) == 0 {
		return &ExtractionError{Message: "no file selected"}
	}

	f.image = &img
	f.state = FileSelected
	f.err = nil

	return nil
}

// EditText replaces the working text. Allowed once text has been extracted.
func (f *Flow) EditText(text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.busy {
		return ErrBusy
	}

	switch {
	case f.state == TextExtracted, f.state == ResultsReady:
	case f.state == Failed && f.prior == TextExtracted:
	default:
		return fmt.Errorf("%w: editing text while %s", ErrInvalidTransition, f.state)
	}

	f.text = text
	f.state = TextExtracted
	f.err = nil

	return nil
}

// Retry leaves the Failed state back to the last stable one.
func (f *Flow) Retry() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != Failed {
		return fmt.Errorf("%w: retry while %s", ErrInvalidTransition, f.state)
	}

	f.state = f.prior
	f.err = nil

	return nil
}

// Reset discards everything and goes back to Idle.
func (f *Flow) Reset() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.busy {
		return ErrBusy
	}

	f.state, f.prior, f.busy = Idle, Idle, false
	f.image, f.text, f.list, f.reports, f.err = nil, "", nil, nil, nil

	return nil
}

// Upload sends the selected image to extractor.
func (f *Flow) Upload(ctx context.Context, extractor TextExtractor) (string, error) {
	img, err := f.beginUpload()
	if err != nil {
		return "", err
	}

	text, err := extractor.Extract(ctx, img.Name, bytes.NewReader(img.Data))
	if err == nil && strings.TrimSpace(text) == "" {
		err = &ExtractionError{Message: "no text found in image"}
	}

	if err != nil && !IsExtractionError(err) {
		err = &ExtractionError{Message: "text extraction failed", Err: err}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.busy = false

	if err != nil {
		f.fail(FileSelected, err)

		return "", err
	}

	f.text = text
	f.state = TextExtracted

	return text, nil
}

func (f *Flow) beginUpload() (*Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.busy {
		return nil, ErrBusy
	}

	if f.state != FileSelected {
		return nil, fmt.Errorf("%w: upload while %s", ErrInvalidTransition, f.state)
	}

	f.busy = true
	f.state = Uploading

	return f.image, nil
}

// Submit normalizes the current text into a list named name and resolves it
// with matcher. An empty list is rejected before any request is made.
func (f *Flow) Submit(ctx context.Context, name string, matcher ItemMatcher) (*List, []StoreMatchReport, error) {
	list, err := f.beginSubmit(name)
	if err != nil {
		return nil, nil, err
	}

	reports, err := ResolveAgainstStores(ctx, list, matcher)

	f.mu.Lock()
	defer f.mu.Unlock()

	f.busy = false

	if err != nil {
		if !IsMatchError(err) {
			err = &MatchError{Err: err}
		}

		f.fail(TextExtracted, err)

		return nil, nil, err
	}

	f.list = list
	f.reports = reports
	f.state = ResultsReady

	return list, reports, nil
}

func (f *Flow) beginSubmit(name string) (*List, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.busy {
		return nil, ErrBusy
	}

	if f.state != TextExtracted {
		return nil, fmt.Errorf("%w: submit while %s", ErrInvalidTransition, f.state)
	}

	list, err := f.builder.Build(name, NormalizeToItems(f.text))
	if err != nil {
		return nil, err
	}

	f.busy = true
	f.state = Submitting

	return list, nil
}

func (f *Flow) fail(prior State, err error) {
	f.prior = prior
	f.state = Failed
	f.err = err
}

// Err returns the error that moved the flow to Failed, if any.
func (f *Flow) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.err
}

// IsStateError reports whether err is a rejected action rather than a
// collaborator failure.
func IsStateError(err error) bool {
	return errors.Is(err, ErrBusy) || errors.Is(err, ErrInvalidTransition)
}
