// Package main provides the entry point for the supertui CLI.
package main

import (
	"os"

	"github.com/tteejj/supertui/cmd/supertui/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
