// Package main is the entry point for the houzzhunt site binary.
package main

import (
	"fmt"
	"os"

	"github.com/houzzhunt/hh/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
