// main is the entry point for the hubstats CLI.
package main

import (
	"fmt"
	"os"

	"github.com/huangsam/hubstats/cmd"
	"github.com/huangsam/hubstats/internal/iostore"
)

func main() {
	cmd.SetStoreManager(iostore.Manager)
	err := cmd.Execute()
	iostore.CloseStores()
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}
