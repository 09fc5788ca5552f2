/*
main.go - Application entry point

PURPOSE:
  Loads configuration and logging, then hands over to the cobra command
  tree (serve, report).

ENVIRONMENT:
  All settings come from TAXMAN_* variables, optionally via a .env file.
  See config/config.go for the full list.

SEE ALSO:
  - serve.go: HTTP server with graceful shutdown
  - report.go: BAS report on the command line
*/
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
