package main

import (
	"os"

	"github.com/kailas-cloud/recdex/internal/cli"
	"github.com/kailas-cloud/recdex/internal/version"
)

func main() {
	cmd := cli.NewRootCommand(version.Version, version.Commit, version.Date)
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
