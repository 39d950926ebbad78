// Command seed prepares a PostgreSQL database for the datasets server:
// it creates the schema and loads YAML fixtures.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
