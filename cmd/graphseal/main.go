package main

import (
	"os"

	"graphseal/cmd/graphseal/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
