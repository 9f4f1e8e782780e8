package main

import (
	"fmt"
	"log"
	"os"

	"matrixfx/internal/cli"
)

func main() {
	log.SetFlags(log.Lshortfile | log.Ltime)
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
