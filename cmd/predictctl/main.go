// Command predictctl submits prediction requests straight to the
// prediction service and prints the reconciled results in the terminal.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
