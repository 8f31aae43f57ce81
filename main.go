package main

import (
	"os"

	"github.com/amrixahmad/questionsmith/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
