package main

import (
	"os"

	"github.com/uzzielvz/cartera-generator/internal/cli/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
