// Command omniticket turns labelled receipt emails into a spending ledger.
package main

import (
	"os"

	"github.com/custodia-labs/omniticket-cli/internal/adapters/driving/cli"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cli.SetVersion(version)
	cli.SetBootstrap(bootstrap)

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
