package main

import (
	"os"

	"github.com/causewayhq/causeway/cmd/causeway-admin/commands"
)

// Overridden at build time via -ldflags.
var version = "dev"

func main() {
	if err := commands.Execute(version); err != nil {
		os.Exit(1)
	}
}
