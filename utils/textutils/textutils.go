// Copyright 2026 The GroSnap Authors
// SPDX-License-Identifier: Apache-2.0

// Package textutils provides text normalization and formatting helpers.
package textutils

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// LowerASCIIFolding normalizes a string by removing accents, lowercasing, and trimming spaces.
func LowerASCIIFolding(s string) string {
	s, _, _ = transform.String(
		transform.Chain(
			norm.NFD,
			runes.Remove(runes.In(unicode.Mn)),
			norm.NFC,
		),
		strings.TrimSpace(strings.ToLower(s)),
	)

	return s
}

// FormatInt formats an integer with commas for human readability.
func FormatInt(n int64) string {
	in := strconv.FormatInt(n, 10)

	numOfDigits := len(in)
	if n < 0 {
		numOfDigits-- // First character is the - sign (not a digit)
	}

	numOfCommas := (numOfDigits - 1) / 3

	out := make([]byte, len(in)+numOfCommas)
	if n < 0 {
		in, out[0] = in[1:], '-'
	}

	for i, j, k := len(in)-1, len(out)-1, 0; ; i, j = i-1, j-1 {
		out[j] = in[i]
		if i == 0 {
			return string(out)
		}

		if k++; k == 3 {
			j, k = j-1, 0
			out[j] = ','
		}
	}
}

// FormatKm renders a distance for people: meters below one kilometer.
func FormatKm(km float64) string {
	if km < 1 {
		return fmt.Sprintf("%d m", int(km*1000+0.5))
	}

	return fmt.Sprintf("%.1f km", km)
}

// NumberedName returns "<prefix> <n+1>", the default name of the next list
// when n lists exist.
func NumberedName(prefix string, n int) string {
	return prefix + " " + strconv.Itoa(n+1)
}
