// Command bicache manages the compressed report cache behind the analytics
// dashboard.
package main

import (
	"fmt"
	"os"

	"github.com/samm329-ui/businessIntelligence-sub004/internal/cli"
	"github.com/samm329-ui/businessIntelligence-sub004/pkg/version"
)

func main() {
	os.Exit(run())
}

func run() int {
	root := cli.NewRootCmd(version.GetVersion())
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}
