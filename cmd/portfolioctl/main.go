package main

import (
	"fmt"
	"os"

	"portfolio-api/internal/config"
)

func main() {
	cfg := config.LoadClient()

	if err := newRootCmd(cfg).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
