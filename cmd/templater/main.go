// Package main is the entry point for the recipe templater.
package main

import (
	"os"

	"github.com/emberjson/runtests/internal/cli"
)

func main() {
	os.Exit(cli.RunTemplater(os.Args[1:]))
}
