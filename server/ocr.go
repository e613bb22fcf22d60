// Copyright 2026 The GroSnap Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/grosnap/grosnap/grocery"
	"github.com/grosnap/grosnap/ocr"
	"github.com/grosnap/grosnap/session"
)

const maxUploadSize = ocr.MaxImageSize

func (s *Server) ocrState(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, session.From(ctx).Flow.Snapshot())
}

// ocrUpload selects the image in the "file" field and extracts its text.
func (s *Server) ocrUpload(ctx *gin.Context) {
	ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, maxUploadSize+1<<20)

	header, err := ctx.FormFile(ocr.FileField)
	if err != nil {
		respondError(ctx, fmt.Errorf("%w: %v", errBadRequest, err))

		return
	}

	if header.Size > maxUploadSize {
		respondError(ctx, fmt.Errorf("%w: image larger than %d bytes", errBadRequest, maxUploadSize))

		return
	}

	if ct := header.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "image/") {
		respondError(ctx, fmt.Errorf("%w: %s is not an image", errBadRequest, ct))

		return
	}

	f, err := header.Open()
	if err != nil {
		respondError(ctx, err)

		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		respondError(ctx, err)

		return
	}

	flow := session.From(ctx).Flow
	if err := flow.SelectFile(grocery.Image{Name: header.Filename, Data: data}); err != nil {
		respondError(ctx, err)

		return
	}

	octx, cancel := s.outbound(ctx)
	defer cancel()

	if _, err := flow.Upload(octx, s.Extractor); err != nil {
		respondError(ctx, err)

		return
	}

	ctx.JSON(http.StatusOK, flow.Snapshot())
}

type editTextRequest struct {
	Text string `json:"text"`
}

func (s *Server) ocrEditText(ctx *gin.Context) {
	var req editTextRequest
	if err := bind(ctx, &req); err != nil {
		respondError(ctx, err)

		return
	}

	flow := session.From(ctx).Flow
	if err := flow.EditText(req.Text); err != nil {
		respondError(ctx, err)

		return
	}

	ctx.JSON(http.StatusOK, flow.Snapshot())
}

type submitRequest struct {
	Name string `json:"name"`
}

// ocrSubmit turns the edited text into a list kept in the session and
// resolves it against the stores.
func (s *Server) ocrSubmit(ctx *gin.Context) {
	var req submitRequest
	if ctx.Request.ContentLength > 0 {
		if err := bind(ctx, &req); err != nil {
			respondError(ctx, err)

			return
		}
	}

	sess := session.From(ctx)
	if strings.TrimSpace(req.Name) == "" {
		req.Name = sess.NextOCRListName()
	}

	octx, cancel := s.outbound(ctx)
	defer cancel()

	list, reports, err := sess.Flow.Submit(octx, req.Name, s.Matcher)
	if err != nil {
		respondError(ctx, err)

		return
	}

	sess.KeepOCRList(list)

	ctx.JSON(http.StatusOK, resolvedList{List: list, Reports: reports})
}

func (s *Server) ocrRetry(ctx *gin.Context) {
	flow := session.From(ctx).Flow
	if err := flow.Retry(); err != nil {
		respondError(ctx, err)

		return
	}

	ctx.JSON(http.StatusOK, flow.Snapshot())
}

func (s *Server) ocrReset(ctx *gin.Context) {
	flow := session.From(ctx).Flow
	if err := flow.Reset(); err != nil {
		respondError(ctx, err)

		return
	}

	ctx.JSON(http.StatusOK, flow.Snapshot())
}
