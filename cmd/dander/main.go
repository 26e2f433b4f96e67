// dander normalizes JSON and XML files and splits JSON collections.
package main

import (
	"os"

	"github.com/hupe1980/dander/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
