package main

import (
	"os"

	"github.com/recallkit/recallkit/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
