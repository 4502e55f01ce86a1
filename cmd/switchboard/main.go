// Command switchboard runs the HTTP broadcasting proxy, or validates and
// scaffolds its configuration.
package main

import (
	"fmt"
	"os"

	"github.com/julienandreu/switchboard/cmd/switchboard/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
