package main

import (
	"os"

	"github.com/mlippuner/swissbench/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
