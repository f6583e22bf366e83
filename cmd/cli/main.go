// Package main is the entry point for the clinic-tariff CLI.
package main

import (
	"os"

	"clinic-tariff/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
