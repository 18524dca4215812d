package main

import (
	"fmt"
	"os"

	"sleeve/internal/services"
)

// exitCancelled is the conventional 128+SIGINT shell status, distinct from
// the generic failure status.
const exitCancelled = 130

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if services.IsCancelled(err) {
			os.Exit(exitCancelled)
		}
		fmt.Fprintf(os.Stderr, "sleeve: %v\n", err)
		os.Exit(1)
	}
}
