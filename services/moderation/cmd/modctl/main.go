// Command modctl is the operator CLI for the moderation store.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd(defaultOpener).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
