package main

import (
	"fmt"
	"os"

	"go-laser/cmd"
)

func main() {
	// Commands log their own failures; argument errors are printed here.
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
