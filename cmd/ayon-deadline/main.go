package main

import (
	"os"

	"github.com/RajMahato-tech/ayon-deadline/cmd/ayon-deadline/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
