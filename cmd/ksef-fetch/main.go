package main

import (
	"os"

	"github.com/Filip850/ksef-fetch-demo/cmd/ksef-fetch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
