package main

import (
	"os"

	"prodplan/cmd/prodplan/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
