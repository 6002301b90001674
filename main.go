package main

import (
	"os"

	"github.com/drillbook/drillbook/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
