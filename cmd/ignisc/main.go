// ==============================================================================================
// FILE: cmd/ignisc/main.go
// ==============================================================================================
// PACKAGE: main
// PURPOSE: The ignisc command-line front-end. All real work happens in
//          internal/driver; this package only parses flags, picks an output
//          path, and writes the result. This file runs the root command.
// ==============================================================================================

package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
