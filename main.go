package main

import (
	"os"

	"github.com/libroteca/libroteca/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
