// Package main provides the nugettest CLI, the end-to-end verification
// harness for nuget-inspector. It runs the inspector across the test data
// tree and compares normalized output against golden -expected.json fixtures.
package main

import (
	"os"

	"github.com/aboutcode-org/nuget-inspector/internal/cli"
)

func main() {
	app := cli.NewApp()
	rootCmd := app.CreateRootCommand()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
