// Command mlfqsim runs workloads on the simulated feedback-queue kernel.
package main

import (
	"os"

	"github.com/poltergeist/mlfq/pkg/cli"
)

var version = "1.0.0"

func main() {
	if err := cli.ExecuteWithVersion(version); err != nil {
		os.Exit(1)
	}
}
