package main

import (
	"fmt"
	"os"

	"orders_console/internal"
	"orders_console/internal/cli"
)

func main() {
	if err := internal.Run(); err != nil {
		fmt.Fprintln(os.Stderr, cli.FriendlyError(err))
		os.Exit(1)
	}
}
