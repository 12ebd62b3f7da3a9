// Package main is the entry point for the runtests CLI.
package main

import (
	"os"

	"github.com/emberjson/runtests/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
