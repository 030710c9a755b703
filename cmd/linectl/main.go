// Command linectl is an operator tool for business line routing: it checks
// business hours, previews routing decisions offline and mints admin API tokens.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
