// Package main provides the entry point for the codemate CLI.
package main

import (
	"os"

	"github.com/mvp-joe/codemate/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
