// Command namedump is the offline tooling for captured name catalogs.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/namedump/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
