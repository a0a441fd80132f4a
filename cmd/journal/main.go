package main

import (
	"os"

	"github.com/idilsaglam/journal/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
