// Command patchwork inspects patchwork projects and running sessions.
package main

import (
	"fmt"
	"os"

	"github.com/go-drift/patchwork/cmd/patchwork/cmd"
)

func main() {
	if err := cmd.Execute(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
