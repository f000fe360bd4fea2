// Package main is the entry point for the eksops CLI.
//
// eksops provisions and manages the lifecycle of EKS clusters: create with
// node groups and addons, status with orphan scanning, diagnostics, and
// confirmed teardown.
//
// Commands: create, delete, status, diagnose, version.
//
// For detailed usage information, run:
//
//	eksops --help
package main

import (
	"fmt"
	"os"

	"github.com/imamik/eksops/cmd/eksops/commands"
	"github.com/imamik/eksops/cmd/eksops/handlers"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(handlers.ExitCode(err))
	}
}
