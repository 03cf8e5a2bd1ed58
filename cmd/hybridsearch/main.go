// Command hybridsearch is a thin wrapper over the hybridsearch library: it
// builds an index from standard input, searches a saved index, and prints
// index metadata. No business logic lives here.
package main

import (
	"fmt"
	"os"

	"github.com/amancerp/hybridsearch/cmd/hybridsearch/internal/cmd"
)

func main() {
	if err := cmd.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
