// Command roster manages hourly and salaried worker records.
package main

import (
	"os"

	"github.com/mesh-intelligence/roster/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
