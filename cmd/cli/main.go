// honeylog - SSH honeypot log analyzer
//
// honeylog is a batch tool that extracts login attempts, connections,
// client fingerprints and shell commands from cowrie-style honeypot logs
// and reports them as aligned text tables.
package main

import (
	"os"

	"github.com/ccollicutt/honeylog/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
