// Copyright 2026 The GroSnap Authors
// SPDX-License-Identifier: Apache-2.0

// Package ocr is the client of the text extraction service.
package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/grosnap/grosnap/grocery"
)

const (
	// UploadPath is the route of the text extraction service.
	UploadPath = "/upload"
	// FileField is the multipart field carrying the image.
	FileField = "file"
	// MaxImageSize bounds the images accepted for extraction.
	MaxImageSize = 10 << 20
)

// Reply is the body returned by the text extraction service. Exactly one of
// the fields is set.
type Reply struct {
	Text  string `json:"text,omitempty"`
	Error string `json:"error,omitempty"`
}

// Client sends images to the text extraction service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ grocery.TextExtractor = (*Client)(nil)

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

// Extract implements grocery.TextExtractor. Every failure, including an
// image without text, is a *grocery.ExtractionError.
func (c *Client) Extract(ctx context.Context, filename string, image io.Reader) (string, error) {
	var body bytes.Buffer

	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile(FileField, filepath.Base(filename))
	if err != nil {
		return "", &grocery.ExtractionError{Message: "building upload", Err: err}
	}

	n, err := io.Copy(part, io.LimitReader(image, MaxImageSize+1))
	if err != nil {
		return "", &grocery.ExtractionError{Message: "reading image", Err: err}
	}

	if n > MaxImageSize {
		return "", &grocery.ExtractionError{Message: fmt.Sprintf("image larger than %d bytes", MaxImageSize)}
	}

	if err := mw.Close(); err != nil {
		return "", &grocery.ExtractionError{Message: "building upload", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+UploadPath, &body)
	if err != nil {
		return "", &grocery.ExtractionError{Message: "creating request", Err: err}
	}

	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &grocery.ExtractionError{Message: "sending image", Err: err}
	}
	defer resp.Body.Close()

	var reply Reply

	decodeErr := json.NewDecoder(resp.Body).Decode(&reply)

	if resp.StatusCode != http.StatusOK {
		msg := fmt.Sprintf("service returned status %d", resp.StatusCode)
		if decodeErr == nil && reply.Error != "" {
			msg += ": " + reply.Error
		}

		return "", &grocery.ExtractionError{Message: msg}
	}

	if decodeErr != nil {
		return "", &grocery.ExtractionError{Message: "decoding reply", Err: decodeErr}
	}

	if reply.Error != "" {
		return "", &grocery.ExtractionError{Message: reply.Error}
	}

	if strings.TrimSpace(reply.Text) == "" {
		return "", &grocery.ExtractionError{Message: "no text found in image"}
	}

	return reply.Text, nil
}
