// Package main provides the inventoryctl command line tool.
package main

import (
	"fmt"
	"os"

	"github.com/retailplus/inventory-engine/cmd/inventoryctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
