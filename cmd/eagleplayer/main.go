package main

import (
	"os"

	"github.com/KaIKuxy/eagle-library-player/cmd/eagleplayer/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
