package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/nerdneilsfield/go-xliff-filters/internal/cli"
	"github.com/nerdneilsfield/go-xliff-filters/internal/version"
)

// Version information
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	if version.Version == "" && Version != "dev" {
		version.Version = Version
	}

	rootCmd := cli.NewRootCommand(Version, Commit, BuildDate)
	if err := rootCmd.Execute(); err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, fmt.Sprintf("✗ %v", err))
		os.Exit(1)
	}
}
