// Copyright 2026 The GroSnap Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/grosnap/grosnap/cmd"
)

var Version = "development"

func main() {
	cmd.Execute(Version)
}
