// Copyright 2026 The GroSnap Authors
// SPDX-License-Identifier: Apache-2.0

// Package htmlutils provides utility functions for working with HTML.
package htmlutils

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// ErrNotHTML is returned by AsReader when the response is not an HTML document.
var ErrNotHTML = errors.New("not an HTML response")

// Node2string appends the trimmed text content of n to sb, separating text
// nodes with a single space. Script and style elements are ignored.
func Node2string(n *html.Node, sb *strings.Builder) (err error) {
	switch {
	case n.Type == html.TextNode:
		tmp := strings.Join(strings.Fields(n.Data), " ")

		// a REPLACEMENT CHARACTER (U+FFFD) means we decoded with the wrong charset
		if idx := strings.IndexRune(tmp, utf8.RuneError); idx != -1 {
			return fmt.Errorf("charset mismatch found: `%s'", tmp)
		}

		if len(tmp) > 0 {
			if sb.Len() != 0 {
				sb.WriteByte(' ')
			}

			sb.WriteString(tmp)
		}
	case n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style"):
	default:
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			err = Node2string(child, sb)
			if err != nil {
				break
			}
		}
	}

	return err
}

// Validates that response seems to be an HTML response.
func hasHTMLContentType(media string) bool {
	const expectedMedia = "text/html"

	return strings.EqualFold(
		expectedMedia,
		media[0:min(len(media), len(expectedMedia))],
	)
}

// AsReader converts an HTTP response body to an io.Reader with the correct
// charset. Error pages are HTML too, so the status code is not checked.
func AsReader(resp *http.Response) (io.Reader, error) {
	media := resp.Header.Get("Content-Type")
	if !hasHTMLContentType(media) {
		return nil, fmt.Errorf("%w: media type is %q", ErrNotHTML, media)
	}

	rr, err := charset.NewReader(resp.Body, media)
	if err != nil {
		return nil, err
	}

	return rr, nil
}

// AsNode parses an io.Reader as an HTML node.
func AsNode(r io.Reader) (*html.Node, error) {
	n, err := html.Parse(r)
	if nil != err {
		return nil, fmt.Errorf("parsing body as HTML: %w", err)
	}

	return n, nil
}

// ErrorMessages returns the text of the paragraphs of n that start with
// "Error", the way Overpass and similar services report failures. When none
// is found the document title is returned.
func ErrorMessages(n *html.Node) []string {
	var (
		messages []string
		title    string
		walk     func(*html.Node)
	)

	walk = func(node *html.Node) {
		if node.Type == html.ElementNode {
			switch strings.ToLower(node.Data) {
			case "p":
				sb := strings.Builder{}
				if err := Node2string(node, &sb); err == nil {
					text := sb.String()
					if strings.HasPrefix(strings.ToLower(text), "error") {
						messages = append(messages, text)
					}
				}

				return
			case "title":
				sb := strings.Builder{}
				if err := Node2string(node, &sb); err == nil {
					title = sb.String()
				}

				return
			}
		}

		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}

	walk(n)

	if len(messages) == 0 && title != "" {
		messages = append(messages, title)
	}

	return messages
}

// ResponseError summarizes an HTML error response in a single line. It
// returns an empty string when the body is not HTML or has no message.
func ResponseError(resp *http.Response) string {
	r, err := AsReader(resp)
	if err != nil {
		return ""
	}

	n, err := AsNode(io.LimitReader(r, 1<<20))
	if err != nil {
		return ""
	}

	return strings.Join(ErrorMessages(n), "; ")
}
