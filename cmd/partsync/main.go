// partsync - PartBench library browser CLI.
package main

import (
	"fmt"
	"os"

	"github.com/partbench/partsync/internal/cli"
	"github.com/partbench/partsync/internal/version"
)

// Version information - overridden via LDFLAGS on release builds.
var (
	Version   = "v1.2.0"
	BuildTime = "2026-08-24"
)

func main() {
	version.Version = Version
	version.BuildTime = BuildTime

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
