// Command onsetgo runs the streaming correntropy onset/offset
// detection CLI: load configuration, start logging, and dispatch to the
// requested subcommand.
package main

import (
	"fmt"
	"os"

	"github.com/onsetgo/correntropy/cmd"
	"github.com/onsetgo/correntropy/internal/conf"
	"github.com/onsetgo/correntropy/internal/logging"
)

func main() {
	settings, err := conf.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading configuration: %v\n", err)
		os.Exit(1)
	}

	logging.Init()

	if err := cmd.RootCommand(settings).Execute(); err != nil {
		os.Exit(1)
	}
}
