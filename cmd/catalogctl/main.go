// Command catalogctl inspects and reorganizes the category catalog from the
// command line.
package main

import (
	"os"

	"phonestore/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
