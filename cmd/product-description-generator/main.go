// Package main is the command line entry point of the product description
// generator: an HTTP service and a one-shot pipeline run.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
