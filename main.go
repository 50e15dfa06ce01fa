package main

import (
	"os"

	"shopnotes-app/internal/app/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
