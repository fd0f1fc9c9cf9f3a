package main

import (
	"os"

	"github.com/rshade/carbonbuddy/internal/cli"
	"github.com/rshade/carbonbuddy/pkg/version"
)

func main() {
	os.Exit(run())
}

// run executes the CLI and returns the process exit code. Split from
// main so tests can reference it.
func run() int {
	return cli.Execute(version.GetVersion())
}
