package main

import (
	"os"

	"github.com/kbukum/wiring/cmd/wiring/internal/command"
)

func main() {
	os.Exit(command.Execute())
}
