// Command bggstats summarizes BoardGameGeek collections by category,
// mechanic and release year, and serves the same views as a JSON API.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
