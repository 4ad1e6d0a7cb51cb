// Package main is the entry point for the datapack CLI binary.
package main

import (
	"os"

	"datapack/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
