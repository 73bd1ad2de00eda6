// catalog builds the joined course dataset and answers questions about it.
package main

import (
	"os"

	"courserag/cmd/catalog/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
