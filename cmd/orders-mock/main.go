package main

import (
	"fmt"
	"os"

	"orders_console/internal"
)

func main() {
	if err := internal.RunMock(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
