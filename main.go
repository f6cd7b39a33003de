package main

import (
	"fmt"
	"os"

	"github.com/jonesrussell/north-cloud/search-probe/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
