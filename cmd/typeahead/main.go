package main

import (
	"os"

	"github.com/andyrewlee/typeahead/internal/cli"
)

// Version info set via ldflags
var version = "dev"

func main() {
	os.Exit(cli.Run(os.Args[1:], version))
}
