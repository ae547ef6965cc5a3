//go:build !tinygo

package main

import (
	"os"

	"tonefirmata/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
