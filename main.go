package main

import (
	"fmt"
	"os"

	"github.com/triagehq/blackbox/internal/cmd"
	"github.com/triagehq/blackbox/internal/errors"
)

func main() {
	if err := cmd.Execute(); err != nil {
		if errors.IsUsage(err) {
			fmt.Fprintf(os.Stderr, "Usage error: %v\n", err)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
