// Command voidstar is the diagnostic harness for the SDK binding. It exists
// to smoke-test the binding outside a host test program; library consumers
// never need it.
package main

import (
	"fmt"
	"os"

	"github.com/voidstarhq/voidstar-go/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
