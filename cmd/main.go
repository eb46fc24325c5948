package main

import (
	"os"

	"github.com/JesusVicken/brain-school/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
