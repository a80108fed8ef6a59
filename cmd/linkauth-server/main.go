// Command linkauth-server serves signed, time-limited links and cookie
// sessions over HTTP.
package main

import (
	"fmt"
	"os"

	"github.com/yndnr/linkauth-go/internal/server/command"
)

func main() {
	if err := command.App().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
