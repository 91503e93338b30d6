package main

import (
	"github.com/honk-lang/honk/cmd"

	// Register the robotgo-backed platform provider.
	_ "github.com/honk-lang/honk/internal/platform/robot"
)

func main() {
	cmd.Execute()
}
