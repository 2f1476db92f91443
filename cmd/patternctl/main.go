// Package main is the entry point for the patternctl CLI.
//
// patternctl installs and removes multi-component patterns on a managed
// cluster: operator subscriptions, declaratively synced applications,
// supporting infrastructure charts, and the controlling Pattern custom
// resource.
//
// Commands: install, uninstall.
//
// For detailed usage information, run:
//
//	patternctl --help
package main

import (
	"fmt"
	"os"

	"github.com/patternforge/patternctl/cmd/patternctl/commands"
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
		os.Exit(1)
	}
}
