// Command fpgapr runs the placement-and-routing engine end to end:
// architecture + netlist in, a legal, routed placement file out.
package main

import (
	"os"

	"github.com/sarchlab/fpgapr/cliapp"
	"github.com/sarchlab/fpgapr/parser"
)

func main() {
	root := cliapp.New(parser.StubLoader{})

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
