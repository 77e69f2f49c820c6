// Package main is the entry point for the trendctl CLI.
// The CLI is the developer terminal tool for interacting with the monitoring API.
package main

import (
	"os"

	"github.com/Pranjal6955/TrendCatcherEngine/cmd/trendctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
