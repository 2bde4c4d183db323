// prose CLI - tooling for the prose scripting language front end
package main

import (
	"os"

	"github.com/chazu/prose/cmd/prose/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
